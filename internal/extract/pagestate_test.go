package extract

import (
	"errors"
	"testing"
)

// TestPageState tests embedded state extraction.
func TestPageState(t *testing.T) {
	t.Parallel()

	t.Run("decodes the embedded script", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"x":1}}}</script>
</body></html>`

		state, err := PageState(html)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if digString(state, "props", "pageProps", "x") != "1" {
			t.Error("expected decoded page props")
		}
	})

	t.Run("missing script returns ErrNoPageState", func(t *testing.T) {
		t.Parallel()

		if _, err := PageState("<html><body>blocked</body></html>"); !errors.Is(err, ErrNoPageState) {
			t.Errorf("expected ErrNoPageState, got %v", err)
		}
	})

	t.Run("invalid json returns an error", func(t *testing.T) {
		t.Parallel()

		html := `<script id="__NEXT_DATA__">{broken</script>`
		if _, err := PageState(html); err == nil {
			t.Error("expected a decode error")
		}
	})
}

// TestDigHelpers tests tree navigation over decoded JSON.
func TestDigHelpers(t *testing.T) {
	t.Parallel()

	node := map[string]any{
		"a": map[string]any{
			"b":     map[string]any{"s": "text", "n": 3.0, "f": 2.5, "ok": true},
			"items": []any{"x"},
		},
	}

	if got := digString(node, "a", "b", "s"); got != "text" {
		t.Errorf("unexpected string: %q", got)
	}
	if got := digString(node, "a", "b", "n"); got != "3" {
		t.Errorf("whole numbers must render without a fraction, got %q", got)
	}
	if got := digString(node, "a", "b", "f"); got != "2.5" {
		t.Errorf("unexpected float rendering: %q", got)
	}
	if got := digString(node, "a", "b", "ok"); got != "true" {
		t.Errorf("unexpected bool rendering: %q", got)
	}
	if got := digString(node, "a", "missing", "s"); got != "" {
		t.Errorf("missing paths must be empty, got %q", got)
	}
	if got := digList(node, "a", "items"); len(got) != 1 {
		t.Errorf("expected one item, got %d", len(got))
	}
	if digMap(node, "a", "b", "s") != nil {
		t.Error("digging through a non-object must return nil")
	}
}
