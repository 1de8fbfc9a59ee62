// Package cache persists completed risk assessments in SQLite.
//
// An assessment for a URL is reused until its TTL elapses; expired rows are
// treated as misses and deleted on read. A Sweeper walks the whole store
// once a day, dropping entries whose URL no longer responds and refreshing
// the rest, so the cache tracks link rot instead of accumulating it.
//
// Design decision: We use SQLite over an in-memory map because assessments
// must survive process restarts (a CLI run is short-lived) and because the
// single-file database keeps deployment to "copy the binary".
package cache
