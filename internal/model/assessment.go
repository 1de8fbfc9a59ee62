package model

import "time"

// Canonical source names used as keys in EvidenceBundle.Sources.
// The scorer's reputation/scan/blacklist rules look evidence up under
// these names, so custom checkers must reuse them to influence the score.
const (
	SourceReputation = "reputation"
	SourceScan       = "scan"
	SourceBlacklist  = "blacklist"
)

// EvidenceBundle aggregates everything gathered about one URL in one
// assessment pass. It is assembled once by the orchestrator, after every
// constituent check has settled, and is treated as immutable from then on:
// the scorer reads it, the cache stores it, renderers display it.
type EvidenceBundle struct {
	// Sources maps source name (SourceReputation, ...) to that source's
	// verdict. A missing key scores identically to StatusUnknown.
	Sources map[string]SourceResult `json:"sources"`

	// Infra is the hosting posture of the URL's hostname.
	Infra InfraDescriptor `json:"infra"`

	// Links is the structural/content analysis of the URL.
	Links LinkAnalysis `json:"link_analysis"`
}

// Source returns the named source's result, or a zero-value Unknown result
// when the source never reported. This lets the scorer treat "checker was
// not configured" and "checker failed" identically.
func (eb *EvidenceBundle) Source(name string) SourceResult {
	if r, ok := eb.Sources[name]; ok {
		return r
	}
	return SourceResult{Status: StatusUnknown}
}

// Reason explains one triggered scoring rule: which finding fired, the
// weight it added, and the concrete evidence behind it.
type Reason struct {
	// Finding is the stable rule identifier (e.g. "reputation_danger").
	Finding string `json:"finding"`

	// Detail is the human-readable explanation shown to callers.
	Detail string `json:"detail"`

	// Weight is the number of points the rule contributed.
	Weight int `json:"weight"`
}

// RiskAssessment is the scored result for one URL. It is the unit persisted
// in the result cache and rendered to callers.
type RiskAssessment struct {
	// URL is the normalized URL the assessment applies to.
	URL string `json:"url"`

	// Level is the bucketed risk level, always consistent with Score.
	Level Level `json:"level"`

	// LevelText is Level.String(), duplicated for JSON consumers.
	LevelText string `json:"level_text"`

	// Score is the additive risk score, clamped to [0,100].
	Score int `json:"score"`

	// Reasons lists every triggered rule in policy-table order.
	Reasons []Reason `json:"reasons,omitempty"`

	// Evidence is the full bundle the score was derived from.
	Evidence EvidenceBundle `json:"evidence"`

	// ComputedAt is when the assessment was produced.
	ComputedAt time.Time `json:"computed_at"`
}
