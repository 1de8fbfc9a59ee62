// Package engine orchestrates a full risk assessment for one URL.
//
// An assessment is a fixed sequence: cache lookup, DNS pre-check, concurrent
// evidence gathering (threat sources, infrastructure, link heuristics),
// scoring, cache write. Evidence gathering is all-or-nothing only for the
// DNS pre-check; every other constituent degrades in place, so a single
// unreachable API never blocks a verdict.
package engine
