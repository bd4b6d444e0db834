package store

import "errors"

// ErrNotFound is returned when a lookup matches no stored row.
var ErrNotFound = errors.New("not found in lead store")
