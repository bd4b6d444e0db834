package supervisor

import "errors"

var (
	// ErrRunActive is returned by StartRun when the requester already
	// has a run in flight. The active run keeps running.
	ErrRunActive = errors.New("a run is already active for this requester")

	// ErrSpawnFailed wraps the failure to start the crawl process. The
	// only hard error the supervisor surfaces; everything after a
	// successful spawn resolves through the monitor.
	ErrSpawnFailed = errors.New("failed to start crawl process")
)
