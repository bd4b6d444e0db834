package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/yad2bot/leadscan/internal/model"
)

// Step is one stage of a pipeline process. Steps execute in sequence,
// each receiving the report accumulated by the previous ones.
type Step interface {
	// Do executes the step. A returned error stops the pipeline;
	// recoverable problems belong in the report instead.
	Do(ctx context.Context, report *model.RunReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes an ordered list of steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline. Add steps with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order, stopping on the first error or on
// context cancellation between steps. Steps handle cancellation within
// themselves; the check here covers the gaps between them.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", ctx.Err())
			return ctx.Err()
		default:
		}

		start := time.Now()
		p.logger.Debug("step started", "step", step.Name())
		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "error", err)
			return err
		}
		p.logger.Debug("step finished", "step", step.Name(), "elapsed", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
