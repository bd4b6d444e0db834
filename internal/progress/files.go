package progress

import (
	"os"
	"path/filepath"
)

// Files derives every on-disk artifact path for one run from the data
// directory and the run name. All three participants (crawl process,
// extraction process, monitor) build the same paths from the same inputs,
// which is the only coordination they share.
type Files struct {
	// Dir is the data directory.
	Dir string

	// RunName is the run identity (<City>_<mode>_<filter>_<date>).
	RunName string
}

// NewFiles creates the path set for a run.
func NewFiles(dir, runName string) Files {
	return Files{Dir: dir, RunName: runName}
}

// CrawlSnapshot is the crawl process's progress snapshot file.
func (f Files) CrawlSnapshot() string {
	return filepath.Join(f.Dir, f.RunName+"_checking_progress.json")
}

// ExtractSnapshot is the extraction worker's progress snapshot file.
func (f Files) ExtractSnapshot() string {
	return filepath.Join(f.Dir, f.RunName+"_progress.json")
}

// CancelFlag is the cross-process cancellation marker file.
func (f Files) CancelFlag() string {
	return filepath.Join(f.Dir, f.RunName+"_cancel.flag")
}

// Intermediate is the kept-listing CSV the crawl hands to extraction.
func (f Files) Intermediate() string {
	return filepath.Join(f.Dir, f.RunName+".csv")
}

// Final is the enriched CSV produced by the extraction worker.
func (f Files) Final() string {
	return filepath.Join(f.Dir, f.RunName+"_with_phones.csv")
}

// CleanupGlobs are the patterns the supervisor deletes before a new run
// so a leftover snapshot from a previous run is never read as current.
// day is the date segment of the run name (2006-01-02).
func CleanupGlobs(dir, day string) []string {
	return []string{
		filepath.Join(dir, "*_progress.json"),
		filepath.Join(dir, "*_cancel.flag"),
		filepath.Join(dir, "*"+day+"*.csv"),
	}
}

// RemoveStale deletes every file matching the cleanup globs. Individual
// removal failures are collected into the returned count rather than
// aborting; a file that cannot be removed will be overwritten by the new
// run anyway.
func RemoveStale(dir, day string) (removed int, firstErr error) {
	for _, pattern := range CleanupGlobs(dir, day) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			removed++
		}
	}
	return removed, firstErr
}
