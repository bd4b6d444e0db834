// Package store persists captured leads and run results in SQLite. The
// crawl loop asks it whether a listing URL was already captured by an
// earlier run, and the supervisor records the outcome of each run. Lead
// identity is the hash of the listing token, so the database carries no
// reversible listing identifiers.
package store
