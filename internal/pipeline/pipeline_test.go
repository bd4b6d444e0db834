package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/yad2bot/leadscan/internal/model"
)

// mockStep records execution order and optionally fails.
type mockStep struct {
	name string
	err  error
	log  *[]string
}

func (s *mockStep) Do(_ context.Context, _ *model.RunReport) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func (s *mockStep) Name() string { return s.name }

// TestPipelineExecute tests step sequencing.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var log []string
		p := New()
		p.AddSteps(
			&mockStep{name: "crawl", log: &log},
			&mockStep{name: "extract", log: &log},
			&mockStep{name: "record", log: &log},
		)

		if err := p.Execute(context.Background(), &model.RunReport{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"crawl", "extract", "record"}
		if len(log) != len(want) {
			t.Fatalf("expected %d steps, got %d", len(want), len(log))
		}
		for i, name := range want {
			if log[i] != name {
				t.Errorf("step %d = %s, want %s", i, log[i], name)
			}
		}
	})

	t.Run("a failing step stops the pipeline", func(t *testing.T) {
		t.Parallel()

		var log []string
		wantErr := errors.New("boom")
		p := New()
		p.AddSteps(
			&mockStep{name: "first", log: &log},
			&mockStep{name: "second", err: wantErr, log: &log},
			&mockStep{name: "third", log: &log},
		)

		if err := p.Execute(context.Background(), &model.RunReport{}); !errors.Is(err, wantErr) {
			t.Fatalf("expected the step error, got %v", err)
		}
		if len(log) != 2 {
			t.Errorf("expected execution to stop after the failure, got %v", log)
		}
	})

	t.Run("context cancellation stops between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var log []string
		p := New()
		p.AddSteps(&mockStep{name: "never", log: &log})

		if err := p.Execute(ctx, &model.RunReport{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(log) != 0 {
			t.Errorf("no step should run after cancellation, got %v", log)
		}
	})

	t.Run("an empty pipeline succeeds", func(t *testing.T) {
		t.Parallel()

		if err := New().Execute(context.Background(), &model.RunReport{}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
