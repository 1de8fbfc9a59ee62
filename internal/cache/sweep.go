package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/linksleuth/linksleuth/internal/config"
)

// Clock abstracts time for the sweeper so tests can drive the schedule.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After waits for the duration to elapse and delivers the current time.
	After(d time.Duration) <-chan time.Time
}

// systemClock is the real-time Clock used outside tests.
type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// ReachabilityChecker reports whether a URL still responds.
// The probe package provides the production implementation.
type ReachabilityChecker interface {
	IsReachable(ctx context.Context, url string) bool
}

// Refresher recomputes and stores a fresh assessment for a URL.
// The engine provides the production implementation.
type Refresher interface {
	Refresh(ctx context.Context, url string) error
}

// Sweeper revalidates the whole cache on a daily schedule. For every entry
// whose TTL has elapsed it probes the URL: unreachable entries are evicted,
// reachable ones are reassessed in place.
//
// Design decision: The sweeper only touches expired entries rather than
// everything because:
//  1. A fresh entry will be revalidated by its own TTL soon enough
//  2. Reassessing fresh entries would multiply outbound traffic for no
//     change in answers
//  3. The daily pass exists to catch links that died while nobody asked
type Sweeper struct {
	// store is the cache being swept.
	store *Store

	// prober decides whether an expired entry's URL is still alive.
	prober ReachabilityChecker

	// refresher reassesses URLs that are expired but still alive.
	// A nil refresher leaves reachable expired entries for their next Get.
	refresher Refresher

	// clock drives the schedule.
	clock Clock

	// interval is the gap between passes after the first one.
	interval time.Duration

	// logger receives per-entry outcomes.
	logger *slog.Logger
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithClock replaces the real-time clock, mainly for tests.
func WithClock(clock Clock) SweeperOption {
	return func(s *Sweeper) {
		s.clock = clock
	}
}

// WithInterval sets the gap between sweep passes after the first one.
func WithInterval(interval time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.interval = interval
	}
}

// WithRefresher sets the component that reassesses reachable expired URLs.
func WithRefresher(refresher Refresher) SweeperOption {
	return func(s *Sweeper) {
		s.refresher = refresher
	}
}

// WithSweepLogger sets the logger for sweep diagnostics.
func WithSweepLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// NewSweeper creates a sweeper over the given store and prober.
func NewSweeper(store *Store, prober ReachabilityChecker, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		store:    store,
		prober:   prober,
		clock:    systemClock{},
		interval: config.DefaultSweepInterval,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run blocks, sweeping first at the next local midnight and then every
// interval, until the context is canceled. It returns the context's error.
func (s *Sweeper) Run(ctx context.Context) error {
	now := s.clock.Now()
	wait := nextMidnight(now).Sub(now)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(wait):
		}

		if err := s.Sweep(ctx); err != nil {
			s.logger.Warn("sweep pass failed", "error", err)
		}

		wait = s.interval
	}
}

// Sweep performs one pass over every stored entry. Failures on individual
// entries are logged and skipped; the pass only fails when the store itself
// cannot be read.
func (s *Sweeper) Sweep(ctx context.Context) error {
	entries, err := s.store.All(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	swept, evicted, refreshed := 0, 0, 0

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.Expired(now) {
			continue
		}
		swept++

		if !s.prober.IsReachable(ctx, entry.URL) {
			if err := s.store.Evict(ctx, entry.URL); err != nil {
				s.logger.Warn("failed to evict dead entry", "url", entry.URL, "error", err)
				continue
			}
			s.logger.Debug("evicted unreachable entry", "url", entry.URL)
			evicted++
			continue
		}

		if s.refresher == nil {
			continue
		}
		if err := s.refresher.Refresh(ctx, entry.URL); err != nil {
			s.logger.Warn("failed to refresh entry", "url", entry.URL, "error", err)
			continue
		}
		refreshed++
	}

	s.logger.Info("sweep pass complete",
		"entries", len(entries),
		"expired", swept,
		"evicted", evicted,
		"refreshed", refreshed,
	)

	return nil
}

// nextMidnight returns the first local midnight strictly after now.
func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
