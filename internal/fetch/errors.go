package fetch

import "errors"

// ErrRenderFailed is returned when the rendering service answers with a
// non-OK status. The status code and target are wrapped around it, so
// callers can match with errors.Is while logs keep the detail.
var ErrRenderFailed = errors.New("render service returned an error")
