package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/linksleuth/linksleuth/internal/model"
)

// Prober checks whether a URL still responds over HTTP.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (redirect policy, timeouts) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with mock transport
type Prober struct {
	// client is the HTTP client used for probe requests.
	client *http.Client

	// userAgent is the User-Agent header to use for requests.
	userAgent string

	// timeout is the per-probe timeout.
	timeout time.Duration

	// logger receives debug output.
	logger *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithHTTPClient sets the HTTP client used for probe requests.
func WithHTTPClient(client *http.Client) ProberOption {
	return func(p *Prober) {
		p.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ProberOption {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithTimeout sets the per-probe timeout.
func WithTimeout(timeout time.Duration) ProberOption {
	return func(p *Prober) {
		p.timeout = timeout
	}
}

// WithLogger sets the logger for probe diagnostics.
func WithLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a prober with sane defaults.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		client:    &http.Client{},
		userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
		timeout:   15 * time.Second,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// IsReachable reports whether the URL answers with a successful status.
//
// Design decision: Only a 2xx after redirects counts as reachable because:
//  1. The sweeper deletes entries for URLs this returns false for, and a
//     page answering 404 or 410 is as dead as one that refuses connections
//  2. Redirect-to-parking-page schemes usually end in an error status
//  3. The body is never inspected, so the status is the only signal
func (p *Prober) IsReachable(ctx context.Context, rawURL string) bool {
	target := model.NormalizeURL(rawURL)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("probe failed", "url", target, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))

	reachable := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !reachable {
		p.logger.Debug("probe got error status", "url", target, "status", resp.StatusCode)
	}
	return reachable
}
