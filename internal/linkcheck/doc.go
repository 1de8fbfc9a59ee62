// Package linkcheck implements the link heuristics analyzer: structural and
// content red flags for a URL.
//
// Structural checks (brand-masking subdomains, punycode hostnames, tracking
// query parameters) need only the URL string. Content checks (redirect
// chains, iframes, internal/external link ratio, phishing keywords) fetch
// the landing page best-effort with a bounded timeout; when the fetch fails
// the structural findings survive and the content counters stay at zero.
package linkcheck
