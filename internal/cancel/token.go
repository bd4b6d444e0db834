package cancel

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Token is a cancellation flag for one run. Once set it stays set for the
// run's lifetime; a new run gets a new token.
type Token interface {
	// Cancelled reports whether the run has been cancelled.
	Cancelled() bool

	// Cancel sets the flag. It is idempotent.
	Cancel() error
}

// MemoryToken is the in-process backend: an atomic bool checked by the
// supervisor and monitor goroutines.
type MemoryToken struct {
	flag atomic.Bool
}

// NewMemoryToken creates an unset in-memory token.
func NewMemoryToken() *MemoryToken {
	return &MemoryToken{}
}

// Cancelled implements Token.
func (t *MemoryToken) Cancelled() bool {
	return t.flag.Load()
}

// Cancel implements Token.
func (t *MemoryToken) Cancel() error {
	t.flag.Store(true)
	return nil
}

// FileToken is the cross-process backend: a marker file keyed by run
// identity. The crawl and extraction processes check for the file at
// their defined cancellation points; the supervisor creates it.
type FileToken struct {
	// path is the marker file location.
	path string

	// by is written into the marker for post-mortem attribution.
	by string
}

// NewFileToken creates a token backed by the marker file at path.
// by identifies who cancelled (typically the requester id) and is
// written into the file body.
func NewFileToken(path, by string) *FileToken {
	return &FileToken{path: path, by: by}
}

// Cancelled implements Token. Any stat error other than non-existence is
// treated as not cancelled; a run must never be aborted because of a
// transient filesystem hiccup.
func (t *FileToken) Cancelled() bool {
	_, err := os.Stat(t.path)
	return err == nil
}

// Cancel implements Token by creating the marker file.
func (t *FileToken) Cancel() error {
	if err := os.WriteFile(t.path, []byte("cancelled_by_"+t.by), 0600); err != nil {
		return fmt.Errorf("failed to write cancel flag %s: %w", t.path, err)
	}
	return nil
}

// Path returns the marker file location.
func (t *FileToken) Path() string {
	return t.path
}

// MultiToken combines backends: cancelled when any backend is cancelled,
// and Cancel fans out to all of them best-effort. The supervisor uses it
// so loop-side tasks observe cancellation instantly through the memory
// backend while the OS processes pick it up from the file.
type MultiToken struct {
	tokens []Token
}

// NewMultiToken combines the given tokens.
func NewMultiToken(tokens ...Token) *MultiToken {
	return &MultiToken{tokens: tokens}
}

// Cancelled implements Token.
func (t *MultiToken) Cancelled() bool {
	for _, tok := range t.tokens {
		if tok.Cancelled() {
			return true
		}
	}
	return false
}

// Cancel implements Token. All backends are attempted; the first error
// is returned after the fan-out completes.
func (t *MultiToken) Cancel() error {
	var firstErr error
	for _, tok := range t.tokens {
		if err := tok.Cancel(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
