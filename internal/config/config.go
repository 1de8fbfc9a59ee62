package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values follow the reference deployment the engine was captured from,
// adjusted for clearnet latency characteristics.
const (
	// DefaultTimeout bounds every individual network call the engine makes:
	// TLS handshake, DNS resolution, threat source query, page fetch.
	// 8 seconds sits inside the 5-10 second window that keeps a full
	// fan-out comfortably under a chat-style caller's patience while still
	// tolerating slow reputation APIs.
	DefaultTimeout = 8 * time.Second

	// DefaultCacheTTL is how long a cached assessment stays fresh.
	// Threat intelligence moves fast: 30 minutes limits how long a newly
	// blacklisted URL can keep serving a stale "low risk" verdict.
	DefaultCacheTTL = 30 * time.Minute

	// DefaultSweepInterval is the period of the background cache sweep.
	// The sweep fires at local midnight and then every interval after.
	DefaultSweepInterval = 24 * time.Hour

	// DefaultBatchSize of 10 concurrent assessments balances throughput
	// with the rate limits of the external reputation APIs.
	DefaultBatchSize = 10

	// DefaultMaxBodySize limits the landing-page bytes read by the link
	// heuristics analyzer. 5MB covers real HTML pages while preventing
	// memory exhaustion from hostile responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies linksleuth in HTTP requests.
	// A descriptive User-Agent lets site operators identify scanner traffic.
	DefaultUserAgent = "linksleuth/1.0 (+https://github.com/linksleuth/linksleuth)"

	// DefaultGeoAPIBaseURL is the geolocation/ASN lookup endpoint.
	// The %s-free base is joined with "/{ip}/json/" at call time.
	DefaultGeoAPIBaseURL = "https://ipapi.co"

	// DefaultRDAPBaseURL is the registration-data lookup endpoint.
	DefaultRDAPBaseURL = "https://rdap.org"

	// DefaultSafeBrowsingBaseURL is the reputation-list lookup endpoint.
	DefaultSafeBrowsingBaseURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

	// DefaultScanBaseURL is the multi-engine malware scan endpoint.
	DefaultScanBaseURL = "https://www.virustotal.com/api/v3/urls"

	// AppName is the application name used for XDG directory paths.
	AppName = "linksleuth"
)

// DefaultBlacklistFeeds are the static phishing blacklist feeds consulted
// by the blacklist checker. Each is a plain-text list of known-bad URLs.
var DefaultBlacklistFeeds = []string{
	"https://openphish.com/feed.txt",
	"https://phishunt.io/feed.txt",
}

// Config holds all configuration options for the assessment engine.
// This struct is populated from defaults, the optional YAML config file,
// environment variables, and CLI flags, then passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., SourceConfig, CacheConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit. The scoring policy is the one exception: it is a table, not a
// handful of scalars, so it lives in its own Policy type.
type Config struct {
	// Timeout bounds each individual network call.
	Timeout time.Duration

	// CacheTTL is how long a cached assessment stays fresh.
	CacheTTL time.Duration

	// SweepInterval is the period of the background cache sweep.
	SweepInterval time.Duration

	// BatchSize is the number of concurrent assessments when processing
	// multiple URLs.
	BatchSize int

	// MaxBodySize limits landing-page bytes read during link analysis.
	MaxBodySize int64

	// UserAgent is sent on every outbound HTTP request.
	UserAgent string

	// SafeBrowsingAPIKey authenticates the reputation-list checker.
	// Falls back to the GOOGLE_SAFE_BROWSING_KEY environment variable.
	SafeBrowsingAPIKey string

	// ScanAPIKey authenticates the malware-scan checker.
	// Falls back to the VIRUSTOTAL_KEY environment variable.
	ScanAPIKey string

	// BlacklistFeeds are the static blacklist feed URLs to consult.
	BlacklistFeeds []string

	// DBDir is the directory holding the SQLite result cache.
	// Defaults to the XDG data directory (~/.local/share/linksleuth on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Policy is the scoring policy table (weights and thresholds).
	Policy Policy
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, TTL).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:            DefaultTimeout,
		CacheTTL:           DefaultCacheTTL,
		SweepInterval:      DefaultSweepInterval,
		BatchSize:          DefaultBatchSize,
		MaxBodySize:        DefaultMaxBodySize,
		UserAgent:          DefaultUserAgent,
		SafeBrowsingAPIKey: os.Getenv("GOOGLE_SAFE_BROWSING_KEY"),
		ScanAPIKey:         os.Getenv("VIRUSTOTAL_KEY"),
		BlacklistFeeds:     append([]string(nil), DefaultBlacklistFeeds...),
		DBDir:              XDGDataDir(),
		Policy:             DefaultPolicy(),
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return c.Policy.Validate()
}

// XDGDataDir returns the XDG data directory for linksleuth.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/linksleuth
// On macOS: ~/Library/Application Support/linksleuth
// On Windows: %LOCALAPPDATA%\linksleuth
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
