// Package report renders the final run report for the operator, as
// plain terminal text or as a markdown summary suitable for sharing.
package report
