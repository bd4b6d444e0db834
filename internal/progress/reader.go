package progress

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/yad2bot/leadscan/internal/model"
)

// Reader polls a snapshot file written by another process. It remembers
// the last consumed sequence number and refuses to hand back a snapshot
// that is not strictly newer, so a rename race or a re-read of an old
// file never moves the monitor backwards.
type Reader struct {
	path    string
	lastSeq int64
}

// NewReader creates a Reader for the given snapshot path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Sentinel results from Read. Both are expected during normal operation
// and callers poll again rather than failing.
var (
	// ErrNotReady means the snapshot file does not exist yet or does not
	// parse (a writer may be mid-rotation on a filesystem without atomic
	// rename semantics).
	ErrNotReady = errors.New("progress snapshot not available")

	// ErrStale means the file parsed but its sequence number is not
	// newer than the last snapshot already consumed.
	ErrStale = errors.New("progress snapshot is stale")
)

// Read returns the next snapshot, or ErrNotReady / ErrStale.
func (r *Reader) Read() (model.ProgressSnapshot, error) {
	var snap model.ProgressSnapshot

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, ErrNotReady
		}
		return snap, err
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, ErrNotReady
	}

	if snap.Seq <= r.lastSeq {
		return snap, ErrStale
	}
	r.lastSeq = snap.Seq
	return snap, nil
}

// LastSeq returns the sequence number of the last consumed snapshot.
func (r *Reader) LastSeq() int64 {
	return r.lastSeq
}
