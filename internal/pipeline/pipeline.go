package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
)

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Do executes the step. Phase summaries are added to run.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepFunc adapts a function to Step.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, run *Run) error
}

// NewStep creates a Step named name that calls fn.
func NewStep(name string, fn func(ctx context.Context, run *Run) error) StepFunc {
	return StepFunc{name: name, fn: fn}
}

// Do implements Step.
func (s StepFunc) Do(ctx context.Context, run *Run) error {
	return s.fn(ctx, run)
}

// Name implements Step.
func (s StepFunc) Name() string {
	return s.name
}

// StepError records a failed step.
type StepError struct {
	Step string
	Err  error
}

// Run is the state shared by the steps of one execution.
type Run struct {
	Started time.Time
	// Completed lists the steps that returned nil, in order.
	Completed []string
	// Summaries holds the summary of every crawl phase that ran, failed
	// or not.
	Summaries []crawler.Summary
	// Failures lists failed steps in order.
	Failures []StepError
	// Interrupted is set when ctx was cancelled.
	Interrupted bool
}

// AddSummary records a phase summary.
func (r *Run) AddSummary(s crawler.Summary) {
	r.Summaries = append(r.Summaries, s)
}

// Err returns the first step failure, or nil.
func (r *Run) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return r.Failures[0].Err
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. A later phase then works from whatever the
// earlier phases left on disk. Cancellation always stops the pipeline.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Context cancellation is checked before each step; a step that returns
// a cancellation error also stops the pipeline.
//
// Returns the first error encountered if continueOnError is false,
// or the first error after all steps ran otherwise. run always records
// what happened.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	if run.Started.IsZero() {
		run.Started = time.Now()
	}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			run.Interrupted = true
			return err
		}

		p.logger.Info("executing step", "step", step.Name())

		if err := step.Do(ctx, run); err != nil {
			run.Failures = append(run.Failures, StepError{Step: step.Name(), Err: err})

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				p.logger.Warn("step interrupted", "step", step.Name())
				run.Interrupted = true
				return err
			}

			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed", "step", step.Name())
		run.Completed = append(run.Completed, step.Name())
	}

	return run.Err()
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
