package model

// FreshnessTier buckets a domain's registration age into a risk label.
type FreshnessTier int

const (
	// FreshnessUndetermined means no registration data was available.
	// This is an explicit state: a missing WHOIS record must never be
	// silently treated as an old, trustworthy domain.
	FreshnessUndetermined FreshnessTier = iota

	// FreshnessNew is a domain registered less than 90 days ago.
	// Phishing campaigns overwhelmingly use freshly registered domains.
	FreshnessNew

	// FreshnessYoung is a domain registered between 90 days and a year ago.
	FreshnessYoung

	// FreshnessEstablished is a domain registered more than a year ago.
	FreshnessEstablished
)

// String returns a human-readable representation of the freshness tier.
func (f FreshnessTier) String() string {
	switch f {
	case FreshnessNew:
		return "new (<90 days)"
	case FreshnessYoung:
		return "young (90-365 days)"
	case FreshnessEstablished:
		return "established (>1 year)"
	default:
		return "undetermined"
	}
}

// SSLInfo describes the TLS certificate presented on port 443.
// A failed handshake yields Valid=false with Err set; the rest of the
// infrastructure inspection continues regardless.
type SSLInfo struct {
	Valid     bool   `json:"valid"`
	IssuedTo  string `json:"issued_to,omitempty"`
	IssuedBy  string `json:"issued_by,omitempty"`
	ValidFrom string `json:"valid_from,omitempty"`
	ValidTo   string `json:"valid_to,omitempty"`
	DaysLeft  int    `json:"days_left,omitempty"`
	Err       string `json:"error,omitempty"`
}

// IPInfo describes where the hostname resolves and who hosts it.
// If the geolocation lookup fails after resolution succeeded, only IP and
// Err are populated.
type IPInfo struct {
	IP      string `json:"ip"`
	Country string `json:"country,omitempty"`
	Org     string `json:"org,omitempty"`
	ASN     string `json:"asn,omitempty"`
	Err     string `json:"error,omitempty"`
}

// WhoisInfo describes the domain's registration record as reported by RDAP.
type WhoisInfo struct {
	Registrar string        `json:"registrar,omitempty"`
	Created   string        `json:"created,omitempty"`
	Expires   string        `json:"expires,omitempty"`
	AgeDays   int           `json:"age_days"`
	AgeYears  int           `json:"age_years"`
	Freshness FreshnessTier `json:"freshness"`
	Err       string        `json:"error,omitempty"`
}

// InfraDescriptor characterizes the network and hosting posture of a URL's
// hostname. Every sub-field degrades independently: a TLS handshake failure,
// an unanswered geolocation query, or a missing RDAP record each mark their
// own slice of the descriptor and leave the others intact.
type InfraDescriptor struct {
	// Hostname is the host component of the assessed URL.
	Hostname string `json:"hostname"`

	// IsHTTPS reports whether the URL itself uses the https scheme.
	IsHTTPS bool `json:"is_https"`

	// SSL holds certificate details, or nil if the TLS step never ran.
	SSL *SSLInfo `json:"ssl_info,omitempty"`

	// IP holds resolution and hosting details, or nil if the step never ran.
	IP *IPInfo `json:"ip_info,omitempty"`

	// CDN names the detected CDN vendor, or "undetermined".
	CDN string `json:"cdn,omitempty"`

	// ProxySuspect is true when the hosting organization name suggests a
	// VPN, proxy, Tor exit, or bulk hosting provider.
	ProxySuspect bool `json:"proxy_suspect"`

	// Whois holds the registration record, or nil if the step never ran.
	Whois *WhoisInfo `json:"whois,omitempty"`
}
