package model

import (
	"net/url"
	"strings"
)

// NormalizeURL returns the cache identity key for a raw URL string.
//
// The only canonicalization performed is defaulting the scheme to https
// when none is present. Trailing slashes and query parameter order are
// deliberately preserved: two URLs differing in either are distinct keys,
// because they can legitimately serve different content.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

// Hostname extracts the host component (without port) of a raw or
// normalized URL. It returns an empty string for unparseable input.
func Hostname(rawURL string) string {
	u, err := url.Parse(NormalizeURL(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// RegistrableDomain approximates the registrable domain of a hostname by
// taking its last two labels. This is a heuristic, not a public-suffix-list
// lookup: "login.example.co.uk" yields "co.uk". It is good enough for RDAP
// queries and the masking heuristic, which only care about the tail.
func RegistrableDomain(hostname string) string {
	labels := strings.Split(hostname, ".")
	if len(labels) <= 2 {
		return hostname
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
