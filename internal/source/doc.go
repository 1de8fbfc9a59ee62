// Package source implements the threat source checkers: uniform clients for
// the external reputation and scanning services consulted during a URL
// assessment.
//
// Every checker implements the Checker interface and degrades gracefully:
// a network failure, malformed response, or timeout yields a SourceResult
// with StatusUnknown rather than an error, so the orchestrator can treat
// all sources uniformly and one broken vendor cannot abort an assessment.
package source
