// Package main provides the entry point for the linksleuth CLI.
//
// linksleuth assesses the risk of URLs by combining external threat
// intelligence, infrastructure inspection, and link heuristics into a
// single weighted verdict.
//
// Usage:
//
//	linksleuth assess <url>
//	linksleuth assess --json <url> <url> ...
//
// See --help for all available options.
package main

// main is the entry point for linksleuth.
func main() {
	Execute()
}
