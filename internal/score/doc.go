// Package score implements the risk scorer: a pure, deterministic mapping
// from an evidence bundle to a risk level, a clamped 0-100 score, and an
// ordered list of human-readable reasons.
//
// The scorer performs no I/O and keeps no state. Weights and thresholds
// come from a policy table so deployments can recalibrate them without
// touching the engine; absent or unknown evidence always contributes zero
// weight, because absence of evidence is not evidence of risk.
package score
