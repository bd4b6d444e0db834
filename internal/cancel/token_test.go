package cancel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestMemoryToken tests the in-process backend.
func TestMemoryToken(t *testing.T) {
	t.Parallel()

	tok := NewMemoryToken()
	if tok.Cancelled() {
		t.Error("new token must not be cancelled")
	}

	if err := tok.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tok.Cancelled() {
		t.Error("token must be cancelled after Cancel")
	}

	// Idempotent.
	if err := tok.Cancel(); err != nil {
		t.Fatalf("unexpected error on repeat cancel: %v", err)
	}
	if !tok.Cancelled() {
		t.Error("token must stay cancelled")
	}
}

// TestFileToken tests the cross-process backend.
func TestFileToken(t *testing.T) {
	t.Parallel()

	t.Run("cancel creates the marker file with attribution", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "run_cancel.flag")
		tok := NewFileToken(path, "user_42")

		if tok.Cancelled() {
			t.Error("token must not be cancelled before the file exists")
		}
		if err := tok.Cancel(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tok.Cancelled() {
			t.Error("token must be cancelled once the file exists")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "user_42") {
			t.Errorf("marker should record who cancelled, got %q", data)
		}
	})

	t.Run("observes a flag created by another writer", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "run_cancel.flag")
		if err := os.WriteFile(path, []byte("cancelled_by_other"), 0600); err != nil {
			t.Fatal(err)
		}
		if !NewFileToken(path, "me").Cancelled() {
			t.Error("token must observe an externally created flag")
		}
	})
}

// TestMultiToken tests backend combination.
func TestMultiToken(t *testing.T) {
	t.Parallel()

	mem := NewMemoryToken()
	file := NewFileToken(filepath.Join(t.TempDir(), "c.flag"), "me")
	multi := NewMultiToken(mem, file)

	if multi.Cancelled() {
		t.Error("multi token must not start cancelled")
	}

	if err := mem.Cancel(); err != nil {
		t.Fatal(err)
	}
	if !multi.Cancelled() {
		t.Error("multi token must report cancellation from any backend")
	}

	if err := multi.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !file.Cancelled() {
		t.Error("multi cancel must fan out to the file backend")
	}
}
