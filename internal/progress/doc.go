// Package progress implements the on-disk progress snapshot exchange
// between the pipeline's OS processes and the monitor: run-scoped file
// naming, an atomic single-writer snapshot writer, and a tolerant reader
// that rejects stale or half-written snapshots.
package progress
