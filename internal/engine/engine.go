package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/infra"
	"github.com/linksleuth/linksleuth/internal/linkcheck"
	"github.com/linksleuth/linksleuth/internal/model"
	"github.com/linksleuth/linksleuth/internal/score"
	"github.com/linksleuth/linksleuth/internal/source"
)

var (
	// ErrInvalidURL is returned when the input cannot yield a hostname.
	ErrInvalidURL = errors.New("invalid url")

	// ErrHostUnreachable is returned when the hostname does not resolve.
	// Nothing is cached for an unresolvable host.
	ErrHostUnreachable = errors.New("host does not resolve")
)

// InfraInspector gathers hosting evidence for a URL.
// The infra package provides the production implementation.
type InfraInspector interface {
	Inspect(ctx context.Context, rawURL string) model.InfraDescriptor
}

// LinkAnalyzer gathers structural and content evidence for a URL.
// The linkcheck package provides the production implementation.
type LinkAnalyzer interface {
	Analyze(ctx context.Context, rawURL string) model.LinkAnalysis
}

// ResultStore persists completed assessments between runs.
// The cache package provides the production implementation.
type ResultStore interface {
	Get(ctx context.Context, url string) (*model.RiskAssessment, error)
	Put(ctx context.Context, url string, ra *model.RiskAssessment) error
}

// Resolver performs the DNS pre-check. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Engine runs the full assessment sequence for a URL: cache lookup, DNS
// pre-check, concurrent evidence gathering, scoring, cache write.
//
// Design decision: The engine takes its collaborators as small interfaces
// rather than concrete types because:
//  1. Tests can substitute in-process fakes for every outbound surface
//  2. The CLI wires real checkers only when their API keys are configured
//  3. The sweeper reuses the engine through the same seam (Refresh)
type Engine struct {
	// checkers are the external threat sources consulted per assessment.
	// Each checker's verdict lands in the evidence bundle under its Name().
	checkers []source.Checker

	// inspector gathers the hosting posture of the URL's hostname.
	inspector InfraInspector

	// analyzer gathers link heuristics and page structure.
	analyzer LinkAnalyzer

	// scorer turns the completed evidence bundle into a verdict.
	scorer *score.Scorer

	// store caches assessments. Nil disables caching entirely.
	store ResultStore

	// resolver performs the DNS pre-check before any evidence gathering.
	resolver Resolver

	// logger receives per-assessment diagnostics.
	logger *slog.Logger

	// locks serializes cache writes per URL so concurrent assessments of
	// the same target do not interleave their persistence.
	locks keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithCheckers sets the threat source checkers to consult.
func WithCheckers(checkers ...source.Checker) Option {
	return func(e *Engine) {
		e.checkers = checkers
	}
}

// WithInspector sets the infrastructure inspector.
func WithInspector(inspector InfraInspector) Option {
	return func(e *Engine) {
		e.inspector = inspector
	}
}

// WithAnalyzer sets the link analyzer.
func WithAnalyzer(analyzer LinkAnalyzer) Option {
	return func(e *Engine) {
		e.analyzer = analyzer
	}
}

// WithScorer sets the scorer. Default uses config.DefaultPolicy.
func WithScorer(scorer *score.Scorer) Option {
	return func(e *Engine) {
		e.scorer = scorer
	}
}

// WithStore enables result caching through the given store.
func WithStore(store ResultStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithResolver replaces the DNS resolver used for the pre-check.
func WithResolver(resolver Resolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// WithLogger sets the logger for assessment diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine with production defaults: a default-policy scorer,
// the system resolver, a real inspector and analyzer, no checkers and no
// cache until the caller wires them.
func New(opts ...Option) *Engine {
	e := &Engine{
		inspector: infra.NewInspector(),
		analyzer:  linkcheck.NewAnalyzer(),
		scorer:    score.NewScorer(config.DefaultPolicy()),
		resolver:  net.DefaultResolver,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Assess produces a risk assessment for the raw URL, reusing a fresh cached
// result when one exists. A persistence failure is logged and never hides
// the computed assessment from the caller.
func (e *Engine) Assess(ctx context.Context, rawURL string) (*model.RiskAssessment, error) {
	target := model.NormalizeURL(rawURL)
	host := model.Hostname(target)
	if host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if e.store != nil {
		cached, err := e.store.Get(ctx, target)
		if err != nil {
			e.logger.Warn("cache read failed", "url", target, "error", err)
		} else if cached != nil {
			e.logger.Debug("cache hit", "url", target, "level", cached.LevelText)
			return cached, nil
		}
	}

	// DNS pre-check: an unresolvable host gets no verdict and no cache row.
	if _, err := e.resolver.LookupHost(ctx, host); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHostUnreachable, host)
	}

	start := time.Now()
	eb := e.gather(ctx, target)

	ra := e.scorer.Assess(target, eb)
	ra.ComputedAt = time.Now().UTC()

	e.logger.Info("assessment complete",
		"url", target,
		"level", ra.LevelText,
		"score", ra.Score,
		"elapsed", time.Since(start),
	)

	if e.store != nil {
		unlock := e.locks.lock(target)
		err := e.store.Put(ctx, target, ra)
		unlock()
		if err != nil {
			e.logger.Warn("failed to persist assessment", "url", target, "error", err)
		}
	}

	return ra, nil
}

// gather runs every constituent concurrently, each writing its own slot.
// Constituents fold their failures into degraded evidence, so the group
// always settles without an error.
func (e *Engine) gather(ctx context.Context, target string) model.EvidenceBundle {
	var eb model.EvidenceBundle
	results := make([]model.SourceResult, len(e.checkers))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range e.checkers {
		g.Go(func() error {
			results[i] = c.Classify(gctx, target)
			return nil
		})
	}
	if e.inspector != nil {
		g.Go(func() error {
			eb.Infra = e.inspector.Inspect(gctx, target)
			return nil
		})
	}
	if e.analyzer != nil {
		g.Go(func() error {
			eb.Links = e.analyzer.Analyze(gctx, target)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	eb.Sources = make(map[string]model.SourceResult, len(e.checkers))
	for i, c := range e.checkers {
		eb.Sources[c.Name()] = results[i]
	}

	return eb
}

// Refresh recomputes and persists the assessment for a URL. The cache
// sweeper calls this for expired entries whose target is still reachable.
func (e *Engine) Refresh(ctx context.Context, url string) error {
	_, err := e.Assess(ctx, url)
	return err
}

// keyedMutex hands out one mutex per key. Entries are never released, which
// is acceptable for the lifetime of a CLI run or a single sweep.
type keyedMutex struct {
	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.keys == nil {
		k.keys = make(map[string]*sync.Mutex)
	}
	m, ok := k.keys[key]
	if !ok {
		m = &sync.Mutex{}
		k.keys[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
