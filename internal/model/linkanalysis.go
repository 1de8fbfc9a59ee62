package model

// Risk flag names accumulated by the link heuristics analyzer.
// These are stable identifiers: the scorer and renderers match on them.
const (
	FlagMaskedDomain     = "masked_domain"
	FlagPunycode         = "punycode"
	FlagTracking         = "tracking"
	FlagPhishingKeywords = "phishing_keywords"
)

// LinkAnalysis holds structural and content findings about a URL.
//
// Structural findings (masking, punycode, tracking parameters) are derived
// from the URL string alone and survive a failed page fetch. Content
// findings (redirects, iframes, link counts, keywords) require fetching the
// landing page; when the fetch fails they stay at their zero values and
// FetchErr records why.
type LinkAnalysis struct {
	// MaskedDomain is a human-readable description of a detected
	// "brand.impersonator.tld" pattern, or empty if none was found.
	MaskedDomain string `json:"masked_domain,omitempty"`

	// IsPunycode is true when the hostname contains an ASCII-compatible
	// encoding label (xn--), a possible homograph attack.
	IsPunycode bool `json:"is_punycode"`

	// UnicodeHost is the decoded form of a punycode hostname, shown to
	// callers so they can see what the address actually renders as.
	UnicodeHost string `json:"unicode_host,omitempty"`

	// RedirectCount is the number of redirect hops followed to reach the
	// final page.
	RedirectCount int `json:"redirect_count"`

	// IframeCount is the number of iframe elements on the final page.
	IframeCount int `json:"iframe_count"`

	// InternalLinks and ExternalLinks count anchors on the final page,
	// classified by whether the resolved target stays on the origin URL.
	InternalLinks int `json:"internal_links"`
	ExternalLinks int `json:"external_links"`

	// TrackingParams lists query parameter keys that match known tracking
	// prefixes (utm_, fbclid, gclid, ...).
	TrackingParams []string `json:"tracking_params,omitempty"`

	// RiskFlags accumulates the names of all triggered heuristics.
	RiskFlags []string `json:"risk_flags,omitempty"`

	// FetchErr records why the page fetch failed, if it did.
	FetchErr string `json:"error,omitempty"`
}

// HasFlag reports whether the named heuristic triggered.
func (la *LinkAnalysis) HasFlag(name string) bool {
	for _, f := range la.RiskFlags {
		if f == name {
			return true
		}
	}
	return false
}
