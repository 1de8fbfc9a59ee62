package config

// Reference scoring weights. These are the observed policy of the reference
// deployment; operators can recalibrate any of them through the config file
// without touching the engine.
const (
	defaultWeightReputationDanger = 50
	defaultWeightScanDanger       = 30
	defaultWeightBlacklistDanger  = 20
	defaultWeightYoungDomain      = 30
	defaultWeightNoHTTPS          = 20
	defaultWeightInvalidTLS       = 20
	defaultWeightMaskedDomain     = 15
	defaultWeightPunycode         = 15
	defaultWeightManyRedirects    = 10
	defaultWeightTracking         = 10
	defaultWeightProxySuspect     = 15
)

// Policy is the configurable scoring policy: one weight per finding plus
// the level thresholds. A weight of zero disables its finding entirely.
//
// Design decision: Weights are a struct of named integers rather than a
// map keyed by finding name so that the YAML file is self-documenting and
// a typo in a key becomes a decode error instead of a silently ignored
// entry.
type Policy struct {
	// ReputationDanger fires when the reputation-list source reports danger.
	ReputationDanger int `yaml:"reputationDanger"`

	// ScanDanger fires when the malware-scan source reports danger.
	ScanDanger int `yaml:"scanDanger"`

	// BlacklistDanger fires when the static blacklist source reports danger.
	BlacklistDanger int `yaml:"blacklistDanger"`

	// YoungDomain fires when the domain is less than 90 days old.
	YoungDomain int `yaml:"youngDomain"`

	// NoHTTPS fires when the URL does not use the https scheme.
	NoHTTPS int `yaml:"noHTTPS"`

	// InvalidTLS fires when the TLS certificate is missing or invalid.
	InvalidTLS int `yaml:"invalidTLS"`

	// MaskedDomain fires on a brand.impersonator.tld subdomain pattern.
	MaskedDomain int `yaml:"maskedDomain"`

	// Punycode fires on an ASCII-compatible-encoding hostname.
	Punycode int `yaml:"punycode"`

	// ManyRedirects fires when more than RedirectLimit redirects were followed.
	ManyRedirects int `yaml:"manyRedirects"`

	// Tracking fires when tracking query parameters are present.
	Tracking int `yaml:"tracking"`

	// ProxySuspect fires on a vpn/proxy/tor/hosting organization match.
	ProxySuspect int `yaml:"proxySuspect"`

	// RedirectLimit is the redirect count above which ManyRedirects fires.
	RedirectLimit int `yaml:"redirectLimit"`

	// HighThreshold is the minimum score for LevelHigh.
	HighThreshold int `yaml:"highThreshold"`

	// MediumThreshold is the minimum score for LevelMedium.
	MediumThreshold int `yaml:"mediumThreshold"`
}

// DefaultPolicy returns the reference scoring policy:
// score >= 60 is high risk, 30-59 medium, below 30 low.
func DefaultPolicy() Policy {
	return Policy{
		ReputationDanger: defaultWeightReputationDanger,
		ScanDanger:       defaultWeightScanDanger,
		BlacklistDanger:  defaultWeightBlacklistDanger,
		YoungDomain:      defaultWeightYoungDomain,
		NoHTTPS:          defaultWeightNoHTTPS,
		InvalidTLS:       defaultWeightInvalidTLS,
		MaskedDomain:     defaultWeightMaskedDomain,
		Punycode:         defaultWeightPunycode,
		ManyRedirects:    defaultWeightManyRedirects,
		Tracking:         defaultWeightTracking,
		ProxySuspect:     defaultWeightProxySuspect,
		RedirectLimit:    2,
		HighThreshold:    60,
		MediumThreshold:  30,
	}
}

// Validate checks the policy for internally inconsistent values.
func (p Policy) Validate() error {
	if p.MediumThreshold <= 0 || p.HighThreshold <= p.MediumThreshold {
		return ErrInvalidThresholds
	}
	return nil
}
