package model

import "time"

// Stage identifies what a pipeline process is currently doing.
// It is written into every progress snapshot and drives the monitor's
// phase transitions.
type Stage string

// Stages in the order a run moves through them. A process only ever
// writes its own stage; the monitor only reads.
const (
	// StageStarting is written once before the first page fetch, so the
	// monitor can pick up the page budget before any real progress.
	StageStarting Stage = "starting"

	// StageChecking is the crawl loop walking listings page by page.
	StageChecking Stage = "checking"

	// StageExtracting is the detail/phone extraction worker.
	StageExtracting Stage = "extracting"

	// StageCompleted marks normal termination of the writing process.
	StageCompleted Stage = "completed"

	// StageError marks a hard failure inside the writing process.
	StageError Stage = "error"
)

// Terminal reports whether the stage ends the writing process's work.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// ProgressSnapshot is the single current-state record a process writes to
// report its progress. It is overwritten atomically on every unit of work
// and never appended. Exactly one process writes a given snapshot file;
// the progress monitor only reads it.
type ProgressSnapshot struct {
	// Stage is what the writing process is doing right now.
	Stage Stage `json:"stage"`

	// Seq increases by one on every write. Readers must discard a
	// snapshot whose Seq is not greater than the last one they consumed,
	// which shields the monitor from out-of-order reads.
	Seq int64 `json:"seq"`

	// Current is the index of the item being processed, counted across
	// all pages. It never legitimately returns to zero while the same
	// run is active; readers treat such a drop as a transient artifact.
	Current int `json:"current"`

	// Total is the number of items the process expects to handle. For
	// the crawl stage this is an estimate (listings per page times the
	// page budget) until the last page is known.
	Total int `json:"total"`

	// Page and TotalPages locate the crawl within its page budget.
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`

	// Found is the cumulative count of kept listings.
	Found int `json:"found"`

	// Duplicates is the cumulative count of listings skipped because the
	// record store already knew them.
	Duplicates int `json:"duplicates"`

	// PhonesFound is the cumulative count of enriched phone numbers.
	// Only the extraction stage advances it.
	PhonesFound int `json:"phones_found"`

	// Label is free text describing the current item, shown to the
	// operator verbatim.
	Label string `json:"label"`

	// UpdatedAt is when the snapshot was written.
	UpdatedAt time.Time `json:"updated_at"`
}
