package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/model"
)

// brandKeywords are well-known brand names whose presence in a subdomain
// suggests a "brand.impersonator.tld" masking pattern. This is a heuristic
// for typosquatting, not a trademark check.
var brandKeywords = []string{"google", "apple", "bank", "paypal", "amazon"}

// phishingKeywords are scanned for in the lower-cased landing page text.
var phishingKeywords = []string{
	"login", "secure", "verify", "update", "bank", "paypal", "signin", "account",
}

// trackingPrefixes are query parameter key fragments that indicate
// click-tracking or campaign attribution.
var trackingPrefixes = []string{
	"utm_", "ref", "fbclid", "gclid", "mc_eid", "yclid", "igshid", "si",
}

// punycodePrefix is the ASCII-compatible-encoding marker in hostnames.
const punycodePrefix = "xn--"

// maxRedirects bounds how many redirect hops the fetch step follows.
const maxRedirects = 10

// Analyzer performs structural and content analysis of URLs.
type Analyzer struct {
	// transport is shared across fetches for connection pooling. Each
	// Analyze call builds its own http.Client on top so the redirect
	// counter is per-request.
	transport http.RoundTripper

	// timeout bounds the page fetch.
	timeout time.Duration

	// maxBodySize limits how much of the landing page is read.
	maxBodySize int64

	// userAgent is sent with the page fetch.
	userAgent string

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTransport sets a custom HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) AnalyzerOption {
	return func(a *Analyzer) {
		a.transport = rt
	}
}

// WithTimeout bounds the page fetch.
func WithTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.timeout = d
	}
}

// WithMaxBodySize limits landing-page bytes read.
func WithMaxBodySize(n int64) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header for page fetches.
func WithUserAgent(ua string) AnalyzerOption {
	return func(a *Analyzer) {
		a.userAgent = ua
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates a link heuristics analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		transport:   http.DefaultTransport,
		timeout:     config.DefaultTimeout,
		maxBodySize: config.DefaultMaxBodySize,
		userAgent:   config.DefaultUserAgent,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze inspects the URL's structure and, best-effort, its landing page.
// It never fails: an unfetchable page leaves the structural findings intact
// and records the reason in FetchErr.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) model.LinkAnalysis {
	normalized := model.NormalizeURL(rawURL)
	result := model.LinkAnalysis{}

	parsed, err := url.Parse(normalized)
	if err != nil {
		result.FetchErr = fmt.Sprintf("parse URL: %v", err)
		return result
	}
	hostname := parsed.Hostname()

	a.checkMasking(hostname, &result)
	a.checkPunycode(hostname, &result)
	a.checkTrackingParams(parsed, &result)
	a.fetchAndInspect(ctx, normalized, &result)

	return result
}

// checkMasking flags hostnames of the form brand.something.tld where a
// known brand name hides in the subdomain labels.
func (a *Analyzer) checkMasking(hostname string, result *model.LinkAnalysis) {
	labels := strings.Split(hostname, ".")
	if len(labels) <= 2 {
		return
	}

	registrable := strings.Join(labels[len(labels)-2:], ".")
	subdomain := strings.ToLower(strings.Join(labels[:len(labels)-2], "."))

	for _, brand := range brandKeywords {
		if strings.Contains(subdomain, brand) {
			result.MaskedDomain = fmt.Sprintf("%s impersonated in subdomain of %s", brand, registrable)
			result.RiskFlags = append(result.RiskFlags, model.FlagMaskedDomain)
			return
		}
	}
}

// checkPunycode flags ASCII-compatible-encoding hostnames and records their
// decoded Unicode form so callers can see what the address renders as.
func (a *Analyzer) checkPunycode(hostname string, result *model.LinkAnalysis) {
	if !strings.Contains(hostname, punycodePrefix) {
		return
	}

	result.IsPunycode = true
	result.RiskFlags = append(result.RiskFlags, model.FlagPunycode)

	if decoded, err := idna.ToUnicode(hostname); err == nil && decoded != hostname {
		result.UnicodeHost = decoded
	}
}

// checkTrackingParams collects query keys matching known tracking prefixes.
func (a *Analyzer) checkTrackingParams(u *url.URL, result *model.LinkAnalysis) {
	for key := range u.Query() {
		lower := strings.ToLower(key)
		for _, prefix := range trackingPrefixes {
			if strings.Contains(lower, prefix) {
				result.TrackingParams = append(result.TrackingParams, key)
				break
			}
		}
	}

	if len(result.TrackingParams) > 0 {
		result.RiskFlags = append(result.RiskFlags, model.FlagTracking)
	}
}
