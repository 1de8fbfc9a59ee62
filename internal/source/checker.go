package source

import (
	"context"
	"time"

	"github.com/linksleuth/linksleuth/internal/model"
)

// Checker defines the interface for threat source checkers.
// Each implementation queries one external reputation or scanning signal.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. Different vendors require vastly different request/response handling
//  2. Allows for easy mocking in tests
//  3. The orchestrator can fan out over all sources uniformly
type Checker interface {
	// Classify queries the source about the URL.
	// It never returns an error: failures are folded into a SourceResult
	// with StatusUnknown and the Err field populated.
	//
	// The context should be used for cancellation; implementations bound
	// their own network calls with the configured timeout.
	Classify(ctx context.Context, url string) model.SourceResult

	// Name returns the canonical source name used as the key in the
	// evidence bundle (model.SourceReputation, model.SourceScan, ...).
	Name() string
}

// unknown builds the degraded result for a failed source query.
func unknown(err error) model.SourceResult {
	return model.SourceResult{Status: model.StatusUnknown, Err: err.Error()}
}

// boundContext derives a context bounded by the checker's timeout.
// A zero timeout keeps the parent deadline as-is.
func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
