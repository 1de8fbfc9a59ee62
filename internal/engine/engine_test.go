package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linksleuth/linksleuth/internal/cache"
	"github.com/linksleuth/linksleuth/internal/model"
	"github.com/linksleuth/linksleuth/internal/source"
)

// fakeChecker is a source.Checker returning a canned result.
type fakeChecker struct {
	name   string
	result model.SourceResult
	delay  time.Duration
	calls  atomic.Int64
}

func (f *fakeChecker) Name() string { return f.name }

func (f *fakeChecker) Classify(ctx context.Context, url string) model.SourceResult {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.SourceResult{Status: model.StatusUnknown, Err: ctx.Err().Error()}
		}
	}
	return f.result
}

// fakeInspector returns a canned hosting posture.
type fakeInspector struct {
	infra model.InfraDescriptor
}

func (f *fakeInspector) Inspect(ctx context.Context, rawURL string) model.InfraDescriptor {
	return f.infra
}

// fakeAnalyzer returns canned link heuristics.
type fakeAnalyzer struct {
	links model.LinkAnalysis
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, rawURL string) model.LinkAnalysis {
	return f.links
}

// fakeResolver resolves every host, or none when err is set.
type fakeResolver struct {
	err error
}

func (f *fakeResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"192.0.2.1"}, nil
}

// memStore is an in-memory ResultStore that records its traffic.
type memStore struct {
	mu      sync.Mutex
	entries map[string]*model.RiskAssessment
	puts    int
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]*model.RiskAssessment)}
}

func (m *memStore) Get(ctx context.Context, url string) (*model.RiskAssessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[url], nil
}

func (m *memStore) Put(ctx context.Context, url string, ra *model.RiskAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[url] = ra
	m.puts++
	return nil
}

// safeInfra is a hosting posture that triggers no scoring rules.
func safeInfra() model.InfraDescriptor {
	return model.InfraDescriptor{
		Hostname: "example.com",
		IsHTTPS:  true,
		SSL:      &model.SSLInfo{Valid: true},
		Whois:    &model.WhoisInfo{AgeDays: 2000, Freshness: model.FreshnessEstablished},
	}
}

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithInspector(&fakeInspector{infra: safeInfra()}),
		WithAnalyzer(&fakeAnalyzer{}),
		WithResolver(&fakeResolver{}),
	}
	return New(append(base, opts...)...)
}

func TestAssessScoresGatheredEvidence(t *testing.T) {
	t.Parallel()

	reputation := &fakeChecker{
		name:   model.SourceReputation,
		result: model.SourceResult{Status: model.StatusDanger},
	}
	scan := &fakeChecker{
		name:   model.SourceScan,
		result: model.SourceResult{Status: model.StatusClean},
	}
	e := newTestEngine(WithCheckers(reputation, scan))

	ra, err := e.Assess(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}

	if ra.Score != 50 || ra.Level != model.LevelMedium {
		t.Errorf("got (%d, %v), expected (50, MEDIUM)", ra.Score, ra.Level)
	}
	if got := ra.Evidence.Source(model.SourceReputation).Status; got != model.StatusDanger {
		t.Errorf("reputation evidence = %v, expected danger", got)
	}
	if got := ra.Evidence.Source(model.SourceScan).Status; got != model.StatusClean {
		t.Errorf("scan evidence = %v, expected clean", got)
	}
	if ra.ComputedAt.IsZero() {
		t.Error("ComputedAt not set")
	}
	if ra.URL != "https://example.com" {
		t.Errorf("URL = %q", ra.URL)
	}
}

func TestAssessNormalizesBareHostname(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	ra, err := e.Assess(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if ra.URL != "https://example.com" {
		t.Errorf("URL = %q, expected https scheme prepended", ra.URL)
	}
}

func TestAssessInvalidURL(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	_, err := e.Assess(context.Background(), "   ")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("err = %v, expected ErrInvalidURL", err)
	}
}

func TestAssessUnresolvableHostIsNotCached(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	e := newTestEngine(
		WithResolver(&fakeResolver{err: errors.New("no such host")}),
		WithStore(store),
	)

	_, err := e.Assess(context.Background(), "https://gone.example")
	if !errors.Is(err, ErrHostUnreachable) {
		t.Fatalf("err = %v, expected ErrHostUnreachable", err)
	}
	if store.puts != 0 {
		t.Errorf("store received %d writes for unresolvable host, expected 0", store.puts)
	}
}

func TestAssessCacheHitShortCircuits(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	cached := &model.RiskAssessment{
		URL:        "https://example.com",
		Level:      model.LevelHigh,
		LevelText:  "HIGH",
		Score:      90,
		ComputedAt: time.Now().UTC(),
	}
	store.entries[cached.URL] = cached

	checker := &fakeChecker{name: model.SourceReputation, result: model.SourceResult{Status: model.StatusDanger}}
	e := newTestEngine(WithCheckers(checker), WithStore(store))

	ra, err := e.Assess(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if ra.Score != 90 {
		t.Errorf("score = %d, expected cached 90", ra.Score)
	}
	if n := checker.calls.Load(); n != 0 {
		t.Errorf("checker called %d times on cache hit, expected 0", n)
	}
}

func TestAssessPersistFailureStillReturnsResult(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.putErr = errors.New("disk full")
	e := newTestEngine(WithStore(store))

	ra, err := e.Assess(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Assess failed on persistence error: %v", err)
	}
	if ra == nil {
		t.Fatal("expected assessment despite persistence failure")
	}
}

func TestAssessDegradedCheckerStillScores(t *testing.T) {
	t.Parallel()

	reputation := &fakeChecker{
		name:   model.SourceReputation,
		result: model.SourceResult{Status: model.StatusUnknown, Err: "connection refused"},
	}
	blacklist := &fakeChecker{
		name:   model.SourceBlacklist,
		result: model.SourceResult{Status: model.StatusDanger},
	}
	e := newTestEngine(WithCheckers(reputation, blacklist))

	ra, err := e.Assess(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if ra.Score != 20 {
		t.Errorf("score = %d, expected 20 (blacklist only; unknown scores zero)", ra.Score)
	}
}

func TestAssessConcurrentSameURL(t *testing.T) {
	t.Parallel()

	store, err := cache.Open(t.TempDir(), cache.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	checker := &fakeChecker{
		name:   model.SourceReputation,
		result: model.SourceResult{Status: model.StatusDanger},
		delay:  10 * time.Millisecond,
	}
	e := newTestEngine(WithCheckers(checker), WithStore(store))

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*model.RiskAssessment, workers)
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = e.Assess(context.Background(), "https://example.com")
		}()
	}
	wg.Wait()

	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if results[i].Score != 50 {
			t.Errorf("worker %d score = %d, expected 50", i, results[i].Score)
		}
	}

	n, err := store.Len(context.Background())
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Errorf("store holds %d rows for one URL, expected 1", n)
	}
}

func TestRefreshOverwritesCachedResult(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	checker := &fakeChecker{name: model.SourceReputation, result: model.SourceResult{Status: model.StatusDanger}}
	e := newTestEngine(WithCheckers(checker), WithStore(store))

	if err := e.Refresh(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if store.puts != 1 {
		t.Errorf("store received %d writes, expected 1", store.puts)
	}
}

// Engine must satisfy the sweeper's refresher seam.
var _ interface {
	Refresh(ctx context.Context, url string) error
} = (*Engine)(nil)

// The production checkers must satisfy the engine's checker seam.
var _ source.Checker = (*fakeChecker)(nil)
