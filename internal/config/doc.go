// Package config provides configuration structures and utilities for
// linksleuth. It defines the defaults for network timeouts, cache TTL and
// sweep scheduling, the API credentials for the external threat sources,
// and the configurable scoring policy table.
package config
