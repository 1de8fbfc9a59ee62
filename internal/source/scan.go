package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/model"
)

// ScanChecker queries a multi-engine malware scanning service with
// submit-then-poll semantics: the URL is submitted for analysis, then the
// aggregated engine statistics are fetched under the returned analysis ID.
//
// When the analysis has not completed by the time we poll, the checker
// returns StatusSubmitted. The scorer weighs Submitted as zero, identical
// to Unknown, but callers can render it as "analysis pending".
type ScanChecker struct {
	// client is the HTTP client used for API calls.
	client *http.Client

	// baseURL is the URL submission endpoint; the analysis fetch appends
	// the URL identifier as a path element.
	baseURL string

	// apiKey is sent as the x-apikey header.
	apiKey string

	// timeout bounds the combined submit+poll exchange.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// ScanOption configures a ScanChecker.
type ScanOption func(*ScanChecker)

// WithScanBaseURL overrides the API endpoint, mainly for tests.
func WithScanBaseURL(u string) ScanOption {
	return func(c *ScanChecker) {
		c.baseURL = u
	}
}

// WithScanClient sets a custom HTTP client.
func WithScanClient(client *http.Client) ScanOption {
	return func(c *ScanChecker) {
		c.client = client
	}
}

// WithScanTimeout bounds the submit+poll exchange.
func WithScanTimeout(d time.Duration) ScanOption {
	return func(c *ScanChecker) {
		c.timeout = d
	}
}

// WithScanLogger sets a custom logger.
func WithScanLogger(logger *slog.Logger) ScanOption {
	return func(c *ScanChecker) {
		c.logger = logger
	}
}

// NewScanChecker creates a malware-scan checker.
func NewScanChecker(apiKey string, opts ...ScanOption) *ScanChecker {
	c := &ScanChecker{
		client:  &http.Client{},
		baseURL: config.DefaultScanBaseURL,
		apiKey:  apiKey,
		timeout: config.DefaultTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the canonical source name.
func (c *ScanChecker) Name() string {
	return model.SourceScan
}

// submitResponse is the subset of the submission response we consume.
type submitResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// analysisResponse is the subset of the analysis response we consume.
type analysisResponse struct {
	Data struct {
		Attributes struct {
			Status            string         `json:"status"`
			LastAnalysisStats map[string]int `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Classify submits the URL and polls the analysis statistics once.
// Engines reporting malicious or suspicious verdicts mean danger; a
// completed clean analysis means clean; a queued analysis means submitted.
func (c *ScanChecker) Classify(ctx context.Context, target string) model.SourceResult {
	ctx, cancel := boundContext(ctx, c.timeout)
	defer cancel()

	id, err := c.submit(ctx, target)
	if err != nil {
		c.logger.Debug("scan submission failed", "url", target, "error", err)
		return unknown(err)
	}

	stats, queued, err := c.fetchAnalysis(ctx, id)
	if err != nil {
		c.logger.Debug("scan analysis fetch failed", "url", target, "error", err)
		return unknown(err)
	}
	if queued {
		return model.SourceResult{
			Status:  model.StatusSubmitted,
			Details: map[string]any{"analysis_id": id},
		}
	}

	details := map[string]any{"stats": stats}
	if stats["malicious"] > 0 || stats["suspicious"] > 0 {
		return model.SourceResult{Status: model.StatusDanger, Details: details}
	}
	return model.SourceResult{Status: model.StatusClean, Details: details}
}

// submit posts the URL for analysis and returns the analysis identifier.
func (c *ScanChecker) submit(ctx context.Context, target string) (string, error) {
	form := url.Values{"url": {target}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scan submission returned HTTP %d", resp.StatusCode)
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode submission response: %w", err)
	}
	if sr.Data.ID == "" {
		return "", fmt.Errorf("scan submission returned no analysis id")
	}
	return sr.Data.ID, nil
}

// fetchAnalysis retrieves the aggregated engine statistics for an analysis.
// The queued return is true when the analysis has not completed yet.
func (c *ScanChecker) fetchAnalysis(ctx context.Context, id string) (map[string]int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+id, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("analysis fetch returned HTTP %d", resp.StatusCode)
	}

	var ar analysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, false, fmt.Errorf("decode analysis response: %w", err)
	}

	if ar.Data.Attributes.Status == "queued" || len(ar.Data.Attributes.LastAnalysisStats) == 0 {
		return nil, true, nil
	}
	return ar.Data.Attributes.LastAnalysisStats, false, nil
}
