package score

import (
	"fmt"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/model"
)

// ageCutoffDays is the registration age below which the young-domain
// finding fires. Kept in sync with the infrastructure inspector's
// "new" freshness tier.
const ageCutoffDays = 90

// Finding identifiers, in policy-table order. Reasons are always emitted
// in this order so two assessments of the same evidence render identically.
const (
	FindingReputationDanger = "reputation_danger"
	FindingScanDanger       = "scan_danger"
	FindingBlacklistDanger  = "blacklist_danger"
	FindingYoungDomain      = "young_domain"
	FindingNoHTTPS          = "no_https"
	FindingInvalidTLS       = "invalid_tls"
	FindingMaskedDomain     = "masked_domain"
	FindingPunycode         = "punycode"
	FindingManyRedirects    = "many_redirects"
	FindingTracking         = "tracking_params"
	FindingProxySuspect     = "proxy_suspect"
)

// Scorer maps evidence bundles to risk assessments under one policy.
type Scorer struct {
	policy config.Policy
}

// NewScorer creates a scorer with the given policy.
func NewScorer(policy config.Policy) *Scorer {
	return &Scorer{policy: policy}
}

// rule is one row of the evaluation table: a finding name, its configured
// weight, and a predicate producing the evidence detail when it fires.
type rule struct {
	finding string
	weight  int
	check   func(*model.EvidenceBundle) (bool, string)
}

// rules builds the evaluation table in the fixed policy order.
func (s *Scorer) rules() []rule {
	p := s.policy
	return []rule{
		{FindingReputationDanger, p.ReputationDanger, func(eb *model.EvidenceBundle) (bool, string) {
			if eb.Source(model.SourceReputation).Status == model.StatusDanger {
				return true, "flagged by the real-time reputation list"
			}
			return false, ""
		}},
		{FindingScanDanger, p.ScanDanger, func(eb *model.EvidenceBundle) (bool, string) {
			if eb.Source(model.SourceScan).Status == model.StatusDanger {
				return true, "flagged by multi-engine malware scan"
			}
			return false, ""
		}},
		{FindingBlacklistDanger, p.BlacklistDanger, func(eb *model.EvidenceBundle) (bool, string) {
			r := eb.Source(model.SourceBlacklist)
			if r.Status == model.StatusDanger {
				detail := "listed on a known phishing blacklist"
				if feed, ok := r.Details["blacklist"].(string); ok {
					detail = fmt.Sprintf("listed on phishing blacklist %s", feed)
				}
				return true, detail
			}
			return false, ""
		}},
		{FindingYoungDomain, p.YoungDomain, func(eb *model.EvidenceBundle) (bool, string) {
			w := eb.Infra.Whois
			if w == nil || w.Err != "" || w.Freshness == model.FreshnessUndetermined {
				return false, "" // unknown age is not evidence of risk
			}
			if w.AgeDays < ageCutoffDays {
				return true, fmt.Sprintf("domain registered %d days ago (under 3 months)", w.AgeDays)
			}
			return false, ""
		}},
		{FindingNoHTTPS, p.NoHTTPS, func(eb *model.EvidenceBundle) (bool, string) {
			if !eb.Infra.IsHTTPS {
				return true, "connection is not protected by HTTPS"
			}
			return false, ""
		}},
		{FindingInvalidTLS, p.InvalidTLS, func(eb *model.EvidenceBundle) (bool, string) {
			ssl := eb.Infra.SSL
			if ssl != nil && !ssl.Valid {
				detail := "TLS certificate is invalid or missing"
				if ssl.Err != "" {
					detail = fmt.Sprintf("TLS certificate is invalid or missing (%s)", ssl.Err)
				}
				return true, detail
			}
			return false, ""
		}},
		{FindingMaskedDomain, p.MaskedDomain, func(eb *model.EvidenceBundle) (bool, string) {
			if eb.Links.MaskedDomain != "" {
				return true, fmt.Sprintf("domain masking detected: %s", eb.Links.MaskedDomain)
			}
			return false, ""
		}},
		{FindingPunycode, p.Punycode, func(eb *model.EvidenceBundle) (bool, string) {
			if eb.Links.IsPunycode {
				detail := "hostname uses punycode (possible homograph attack)"
				if eb.Links.UnicodeHost != "" {
					detail = fmt.Sprintf("hostname uses punycode, renders as %q", eb.Links.UnicodeHost)
				}
				return true, detail
			}
			return false, ""
		}},
		{FindingManyRedirects, p.ManyRedirects, func(eb *model.EvidenceBundle) (bool, string) {
			if eb.Links.RedirectCount > p.RedirectLimit {
				return true, fmt.Sprintf("excessive redirect chain (%d hops)", eb.Links.RedirectCount)
			}
			return false, ""
		}},
		{FindingTracking, p.Tracking, func(eb *model.EvidenceBundle) (bool, string) {
			if len(eb.Links.TrackingParams) > 0 {
				return true, fmt.Sprintf("tracking parameters in URL: %v", eb.Links.TrackingParams)
			}
			return false, ""
		}},
		{FindingProxySuspect, p.ProxySuspect, func(eb *model.EvidenceBundle) (bool, string) {
			if eb.Infra.ProxySuspect {
				detail := "hosted on a suspicious proxy/hosting provider"
				if eb.Infra.IP != nil && eb.Infra.IP.Org != "" {
					detail = fmt.Sprintf("hosted on a suspicious provider (%s)", eb.Infra.IP.Org)
				}
				return true, detail
			}
			return false, ""
		}},
	}
}

// Score evaluates the policy table over the bundle.
// It is pure and deterministic: the same bundle always yields the same
// level, score, and reasons. The score is defensively clamped to [0,100]
// and the level is derived from it, so the two can never disagree.
func (s *Scorer) Score(eb *model.EvidenceBundle) (model.Level, int, []model.Reason) {
	total := 0
	var reasons []model.Reason

	for _, r := range s.rules() {
		if r.weight <= 0 {
			continue // negative weight disables the finding
		}
		fired, detail := r.check(eb)
		if !fired {
			continue
		}
		total += r.weight
		reasons = append(reasons, model.Reason{
			Finding: r.finding,
			Detail:  detail,
			Weight:  r.weight,
		})
	}

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return s.levelFor(total), total, reasons
}

// levelFor maps a clamped score onto a level using the policy thresholds.
func (s *Scorer) levelFor(score int) model.Level {
	switch {
	case score >= s.policy.HighThreshold:
		return model.LevelHigh
	case score >= s.policy.MediumThreshold:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

// Assess packages Score's output into a RiskAssessment for the URL.
func (s *Scorer) Assess(url string, eb model.EvidenceBundle) *model.RiskAssessment {
	level, total, reasons := s.Score(&eb)
	return &model.RiskAssessment{
		URL:       url,
		Level:     level,
		LevelText: level.String(),
		Score:     total,
		Reasons:   reasons,
		Evidence:  eb,
	}
}
