// Package probe answers a single question: is a URL still reachable?
//
// The cache sweeper uses it to decide whether an expired entry should be
// dropped or reassessed. The check is deliberately shallow: one bounded
// GET request, no body inspection, no scoring.
package probe
