// Package main provides the entry point for the leadscan CLI.
//
// leadscan crawls a classifieds site for fresh private-owner property
// listings, enriches them with contact phone numbers, and exports the
// result as CSV.
//
// Usage:
//
//	leadscan run --mode rent --recency recent --city 4000
//	leadscan crawl --mode sale
//	leadscan cancel
//
// See --help for all available options.
package main

// main is the entry point for leadscan.
func main() {
	Execute()
}
