package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yad2bot/leadscan/internal/model"
)

func sampleReport() *model.RunReport {
	return &model.RunReport{
		RunName: "Haifa_rent_recent_2026-08-27",
		Params: model.RunParams{
			Mode:    "rent",
			Recency: "recent",
		},
		Status:      model.StatusCompleted,
		Kept:        12,
		PhonesFound: 9,
		Duplicates:  3,
		Page:        4,
		TotalPages:  5,
		OutputPath:  "/data/out.csv",
		StartedAt:   time.Now().Add(-90 * time.Second),
		FinishedAt:  time.Now(),
	}
}

// TestSimpleWriter tests the text report.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders the run summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(sampleReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"Haifa_rent_recent_2026-08-27",
			"completed",
			"12 kept, 3 duplicates skipped",
			"9 found",
			"4/5",
			"/data/out.csv",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("renders the error line for failed runs", func(t *testing.T) {
		t.Parallel()

		rep := sampleReport()
		rep.Status = model.StatusFailed
		rep.Err = errors.New("render quota exhausted")

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(rep); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "render quota exhausted") {
			t.Errorf("expected the error in output:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the markdown report.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders a table summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Run Report",
			"Property",
			"Haifa_rent_recent_2026-08-27",
			"12",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("renders a warning for failed runs", func(t *testing.T) {
		t.Parallel()

		rep := sampleReport()
		rep.Status = model.StatusTimeout
		rep.Err = errors.New("no progress for 5m")

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(rep); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "no progress for 5m") {
			t.Errorf("expected the error in output:\n%s", buf.String())
		}
	})
}
