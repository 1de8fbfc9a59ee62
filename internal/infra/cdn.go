package infra

import "strings"

// CDNUndetermined is reported when no known CDN vendor matches the hosting
// organization name.
const CDNUndetermined = "undetermined"

// cdnVendor pairs an organization-name pattern with the CDN product name
// it indicates.
type cdnVendor struct {
	pattern string
	name    string
}

// cdnVendors is the fixed detection table, checked in order: the first
// case-insensitive substring match of the hosting organization wins.
// Order matters where patterns overlap (none currently do).
var cdnVendors = []cdnVendor{
	{"cloudflare", "Cloudflare"},
	{"akamai", "Akamai"},
	{"fastly", "Fastly"},
	{"amazon", "Amazon CloudFront"},
	{"google", "Google CDN"},
	{"microsoft", "Azure CDN"},
	{"incapsula", "Imperva/Incapsula"},
	{"bunny", "BunnyCDN"},
	{"stackpath", "StackPath CDN"},
	{"tencent", "Tencent CDN"},
}

// proxyKeywords marks hosting organizations that suggest the site sits
// behind a VPN, proxy, Tor exit, or anonymous bulk hosting.
var proxyKeywords = []string{"vpn", "proxy", "tor", "hosting", "server"}

// DetectCDN pattern-matches the hosting organization name against the
// known CDN vendor table. An empty or unmatched name yields
// CDNUndetermined.
func DetectCDN(org string) string {
	if org == "" {
		return CDNUndetermined
	}

	lower := strings.ToLower(org)
	for _, v := range cdnVendors {
		if strings.Contains(lower, v.pattern) {
			return v.name
		}
	}
	return CDNUndetermined
}

// IsProxySuspect reports whether the hosting organization name matches any
// of the proxy/hosting keywords.
func IsProxySuspect(org string) bool {
	lower := strings.ToLower(org)
	for _, kw := range proxyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
