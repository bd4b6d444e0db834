// Package monitor watches a run from the outside. It polls the snapshot
// files the crawl and extraction processes write, detects stalls and
// cancellation, and always ends in exactly one terminal state with a
// reconciled final report. The monitor never writes pipeline state; its
// only inputs are the snapshot files, the cancellation token, and the
// clock.
package monitor
