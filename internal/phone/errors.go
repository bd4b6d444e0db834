package phone

import "errors"

// ErrCancelled is returned by the worker when the run's cancellation
// token is set mid-stage. The partial output file is still written
// before the worker returns.
var ErrCancelled = errors.New("extraction cancelled")
