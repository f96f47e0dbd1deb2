package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, run *Run) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, run *Run) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, run)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to be false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "partition"})
	p.AddSteps(&mockStep{name: "tiles"}, NewStep("manifest", func(context.Context, *Run) error { return nil }))

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}

	expected := []string{"partition", "tiles", "manifest"}
	for i, name := range p.StepNames() {
		if name != expected[i] {
			t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
		}
	}
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(WithLogger(quietLogger()))
		for _, name := range []string{"partition", "tiles", "manifest", "details"} {
			p.AddStep(NewStep(name, func(_ context.Context, run *Run) error {
				order = append(order, name)
				run.AddSummary(crawler.Summary{Phase: name})
				return nil
			}))
		}

		run := &Run{}
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 4 || order[0] != "partition" || order[3] != "details" {
			t.Errorf("unexpected order %v", order)
		}
		if len(run.Completed) != 4 || len(run.Summaries) != 4 {
			t.Errorf("completed = %v, summaries = %d", run.Completed, len(run.Summaries))
		}
		if run.Started.IsZero() {
			t.Error("expected Started to be set")
		}
		if run.Err() != nil {
			t.Errorf("Err() = %v", run.Err())
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("tile crawl failed")
		failing := &mockStep{name: "tiles", doFunc: func(context.Context, *Run) error { return boom }}
		after := &mockStep{name: "manifest"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "partition"}, failing, after)

		run := &Run{}
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, boom) {
			t.Fatalf("expected %v, got %v", boom, err)
		}
		if after.callCount != 0 {
			t.Error("expected later steps to be skipped")
		}
		if len(run.Failures) != 1 || run.Failures[0].Step != "tiles" {
			t.Errorf("unexpected failures %+v", run.Failures)
		}
		if len(run.Completed) != 1 || run.Completed[0] != "partition" {
			t.Errorf("unexpected completed %v", run.Completed)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("manifest failed")
		after := &mockStep{name: "details"}

		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(&mockStep{name: "manifest", doFunc: func(context.Context, *Run) error { return boom }}, after)

		run := &Run{}
		err := p.Execute(context.Background(), run)
		if !errors.Is(err, boom) {
			t.Fatalf("expected first error to be returned, got %v", err)
		}
		if after.callCount != 1 {
			t.Error("expected later step to run")
		}
		if len(run.Completed) != 1 || run.Completed[0] != "details" {
			t.Errorf("unexpected completed %v", run.Completed)
		}
	})

	t.Run("cancellation stops even with continue on error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		after := &mockStep{name: "details"}
		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(&mockStep{name: "tiles", doFunc: func(ctx context.Context, _ *Run) error {
			cancel()
			return fmt.Errorf("run stopped: %w", context.Canceled)
		}}, after)

		run := &Run{}
		err := p.Execute(ctx, run)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !run.Interrupted {
			t.Error("expected Interrupted")
		}
		if after.callCount != 0 {
			t.Error("expected later step to be skipped")
		}
	})

	t.Run("checks context before each step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "partition"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		run := &Run{}
		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
		if !run.Interrupted {
			t.Error("expected Interrupted")
		}
	})
}
