package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yad2bot/leadscan/internal/model"
)

// Writer persists progress snapshots for exactly one process. It owns the
// write sequence number; the snapshot file is single-writer by contract,
// so no locking is needed beyond atomic replacement.
type Writer struct {
	// path is the snapshot file this writer owns.
	path string

	// seq is the last written sequence number.
	seq int64
}

// NewWriter creates a Writer for the given snapshot path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write stamps the snapshot with the next sequence number and the current
// time, then replaces the file atomically (write to a temp path in the
// same directory, rename over the target). Readers therefore never
// observe a half-written snapshot.
func (w *Writer) Write(snap model.ProgressSnapshot) error {
	w.seq++
	snap.Seq = w.seq
	snap.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Seq returns the last written sequence number.
func (w *Writer) Seq() int64 {
	return w.seq
}
