// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard slog
// package.
//
// The assessment engine talks to several authenticated threat-intelligence
// APIs, so request details routinely carry API keys. The SecureHandler
// masks those values before they reach the underlying handler:
//   - HTTP auth headers (Authorization, Cookie, X-Apikey)
//   - API keys and tokens detected by key name or value pattern
//   - Session identifiers
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of credentials in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("source queried",
//	    "x-apikey", "abc123",          // Will be masked
//	    "url", "https://example.com",
//	)
//
//	slog.SetDefault(logger)
package log
