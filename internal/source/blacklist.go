package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/model"
)

// maxFeedBytes caps how much of a blacklist feed is read.
// Public phishing feeds run to a few megabytes; 16MB leaves headroom while
// bounding memory against a hostile or misconfigured feed.
const maxFeedBytes = 16 * 1024 * 1024

// BlacklistChecker checks the URL against one or more static blacklist
// feeds: plain-text lists of known-bad URLs published by phishing trackers.
//
// Feeds are consulted in order and the first hit wins. A feed that cannot
// be fetched is skipped; if every feed fails the checker degrades to
// Unknown instead of silently reporting clean.
type BlacklistChecker struct {
	// client is the HTTP client used to fetch feeds.
	client *http.Client

	// feeds are the feed URLs, consulted in order.
	feeds []string

	// timeout bounds each individual feed fetch.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// BlacklistOption configures a BlacklistChecker.
type BlacklistOption func(*BlacklistChecker)

// WithBlacklistClient sets a custom HTTP client.
func WithBlacklistClient(client *http.Client) BlacklistOption {
	return func(c *BlacklistChecker) {
		c.client = client
	}
}

// WithBlacklistTimeout bounds each feed fetch.
func WithBlacklistTimeout(d time.Duration) BlacklistOption {
	return func(c *BlacklistChecker) {
		c.timeout = d
	}
}

// WithBlacklistLogger sets a custom logger.
func WithBlacklistLogger(logger *slog.Logger) BlacklistOption {
	return func(c *BlacklistChecker) {
		c.logger = logger
	}
}

// NewBlacklistChecker creates a static-blacklist checker over the given
// feed URLs. An empty list falls back to the default feeds.
func NewBlacklistChecker(feeds []string, opts ...BlacklistOption) *BlacklistChecker {
	if len(feeds) == 0 {
		feeds = config.DefaultBlacklistFeeds
	}

	c := &BlacklistChecker{
		client:  &http.Client{},
		feeds:   feeds,
		timeout: config.DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the canonical source name.
func (c *BlacklistChecker) Name() string {
	return model.SourceBlacklist
}

// Classify checks every feed for the URL.
// A hit means danger and names the feed; all feeds clean means clean;
// every feed failing means unknown.
func (c *BlacklistChecker) Classify(ctx context.Context, url string) model.SourceResult {
	var lastErr error
	checked := 0

	for _, feed := range c.feeds {
		found, err := c.checkFeed(ctx, feed, url)
		if err != nil {
			c.logger.Debug("blacklist feed fetch failed", "feed", feed, "error", err)
			lastErr = err
			continue
		}
		checked++
		if found {
			return model.SourceResult{
				Status:  model.StatusDanger,
				Details: map[string]any{"blacklist": feed},
			}
		}
	}

	if checked == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no blacklist feeds configured")
		}
		return unknown(lastErr)
	}
	return model.SourceResult{Status: model.StatusClean}
}

// checkFeed fetches one feed and reports whether it contains the URL.
func (c *BlacklistChecker) checkFeed(ctx context.Context, feed, url string) (bool, error) {
	ctx, cancel := boundContext(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return false, err
	}

	return strings.Contains(string(body), url), nil
}
