package model

// Level represents the overall risk level of an assessed URL.
// It is always derived from the numeric score via the scoring policy
// thresholds; the two must never disagree.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Level int

const (
	// LevelLow indicates no or weak risk signals (score below the medium
	// threshold). The URL is probably safe, within the limits of the
	// evidence available at assessment time.
	LevelLow Level = iota

	// LevelMedium indicates a combination of moderate signals that warrants
	// caution, such as a young domain or missing HTTPS.
	LevelMedium

	// LevelHigh indicates strong signals of phishing, typosquatting, or
	// malware distribution, such as a reputation-list match.
	LevelHigh
)

// String returns a human-readable representation of the risk level.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}
