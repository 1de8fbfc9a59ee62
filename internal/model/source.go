package model

// SourceStatus is the verdict a single threat source reached about a URL.
//
// Design decision: We use a closed enum rather than free-form strings so the
// scorer can match exhaustively. "Submitted" is deliberately distinct from
// "Unknown": both score as zero weight, but callers may want to tell a user
// that an analysis is still pending rather than that the source had no data.
type SourceStatus int

const (
	// StatusUnknown means the source could not produce a verdict: the query
	// failed, timed out, or returned something unparseable. Absence of
	// evidence is not evidence of risk, so Unknown contributes zero weight.
	StatusUnknown SourceStatus = iota

	// StatusClean means the source explicitly found nothing wrong.
	StatusClean

	// StatusDanger means the source flagged the URL as malicious.
	StatusDanger

	// StatusSubmitted means the URL was submitted for analysis but the
	// verdict is not yet available (submit-then-poll sources).
	StatusSubmitted
)

// String returns a human-readable representation of the source status.
func (s SourceStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusDanger:
		return "danger"
	case StatusSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// SourceResult is the uniform result type produced by every threat source
// checker. Checkers never return Go errors to the orchestrator; failures are
// folded into StatusUnknown with Err populated so one broken vendor cannot
// abort an assessment.
type SourceResult struct {
	// Status is the source's verdict.
	Status SourceStatus `json:"status"`

	// Details carries source-specific evidence, such as analysis statistics
	// or the name of the matching blacklist feed. Opaque to the scorer.
	Details map[string]any `json:"details,omitempty"`

	// Err records why the source degraded to Unknown, if it did.
	Err string `json:"error,omitempty"`
}
