package model

import "time"

// RunStatus is the terminal outcome of one pipeline run.
type RunStatus string

// The three terminal states the monitor can end in, plus Failed for a
// spawn failure that never produced any pipeline state.
const (
	// StatusCompleted means the crawl and extraction both finished.
	StatusCompleted RunStatus = "completed"

	// StatusCancelled means the operator cancelled the run. Partial
	// output is preserved and reported, not discarded.
	StatusCancelled RunStatus = "cancelled"

	// StatusTimeout means progress stalled for longer than the stall
	// threshold. Counters reflect the last valid snapshot before the
	// stall began.
	StatusTimeout RunStatus = "timeout"

	// StatusFailed means the crawl process could not be started at all.
	StatusFailed RunStatus = "failed"
)

// Terminal reports whether the status is one of the monitor's end states.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusTimeout, StatusFailed:
		return true
	}
	return false
}

// RunParams holds the operator's choices for one run.
type RunParams struct {
	// Mode selects the listing market: "rent" or "sale".
	Mode string

	// Recency is "recent" to keep only listings published in the last
	// 24 hours, or "all" for no date filtering.
	Recency string

	// CityCode optionally restricts the crawl to one region.
	CityCode string

	// PageBudget is the maximum number of list pages to fetch.
	// Zero means the configured default applies.
	PageBudget int
}

// RunReport is the final reconciled status of one run. The monitor fills
// it on its terminal transition; pipeline steps before the monitor may
// record the run identity and paths.
type RunReport struct {
	// RunName identifies the run's on-disk artifacts
	// (<City>_<mode>_<filter>_<date>).
	RunName string

	// Params echoes the operator's request.
	Params RunParams

	// Status is the terminal state the monitor ended in.
	Status RunStatus

	// Kept is the number of listings in the export file.
	Kept int

	// PhonesFound is how many of those carry a real phone number.
	PhonesFound int

	// Duplicates is how many listings the crawl skipped as already known.
	Duplicates int

	// Page and TotalPages are where the crawl stopped.
	Page       int
	TotalPages int

	// OutputPath is the completed export file, when one exists. A
	// cancelled or timed-out run may still have partial output here.
	OutputPath string

	// Err records the spawn failure for StatusFailed. Terminal states
	// reached through the monitor leave this nil.
	Err error

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns the wall-clock duration of the run.
func (r *RunReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
