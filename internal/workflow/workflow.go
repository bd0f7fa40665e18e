// Package workflow orchestrates the three generation stages that turn a
// topic into a complete document state: title, outline, and per-section
// content. Every stage validates generator output and falls back to the
// synth package when the output is unusable, so a run always yields a
// usable state; stage errors are recorded but never abort the pipeline.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docgen/internal/document"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/metrics"
)

// defaultSectionConcurrency bounds parallel per-section generator calls.
const defaultSectionConcurrency = 3

// Workflow sequences the generation stages over a DocumentState. A single
// Workflow is safe for concurrent Run calls; each run owns its state.
type Workflow struct {
	gen         generator.TextGenerator
	recorder    metrics.Recorder
	concurrency int
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Workflow) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithSectionConcurrency bounds how many section bodies are generated in
// parallel during the content stage.
func WithSectionConcurrency(n int) Option {
	return func(w *Workflow) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// New creates a workflow around the given text generator.
func New(gen generator.TextGenerator, opts ...Option) *Workflow {
	w := &Workflow{
		gen:         gen,
		recorder:    metrics.NoopRecorder{},
		concurrency: defaultSectionConcurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Request describes one workflow invocation.
type Request struct {
	Topic     string
	Type      document.Type
	PageLimit int

	// Initial resumes from a prior state instead of starting fresh. The
	// state is cloned; the caller's copy is never mutated.
	Initial *document.State

	// StopAt, when set, returns as soon as the named step is reached, so
	// partial pipelines (title-only, outline-only) reuse the same stage
	// logic.
	StopAt document.Step
}

// Run executes the stages the current step still requires and returns the
// resulting state. Stage-level problems degrade to synthesized output and
// are recorded in the state's ErrorMessage; Run itself fails only on an
// invalid request. Anything escaping the per-stage fallbacks is caught
// here, marked workflow_failed, and the best-effort partial state is
// still returned.
func (w *Workflow) Run(ctx context.Context, req Request) (out *document.State, err error) {
	st := req.Initial
	if st == nil {
		st = document.NewState(req.Topic, req.Type, req.PageLimit)
	} else {
		st = st.Clone()
		if req.Topic != "" {
			st.Topic = req.Topic
		}
		if req.Type != "" {
			st.Type = req.Type
		}
		if req.PageLimit > 0 {
			st.PageLimit = req.PageLimit
		}
		if st.CurrentStep == "" {
			st.CurrentStep = document.StepStarted
		}
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow request: %w", err)
	}

	start := time.Now()
	defer func() {
		w.recorder.ObserveWorkflowDuration(time.Since(start))
		w.recorder.IncWorkflowOutcome(workflowOutcome(st))
	}()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Workflow panicked", "topic", st.Topic, "panic", r)
			st.RecordError(fmt.Sprintf("工作流执行错误: %v", r))
			st.CurrentStep = document.StepWorkflowFailed
			out, err = st, nil
		}
	}()

	slog.Info("Running document workflow",
		"topic", st.Topic,
		"document_type", string(st.Type),
		"page_limit", st.PageLimit,
		"current_step", string(st.CurrentStep))

	if req.StopAt != "" && st.CurrentStep == req.StopAt {
		return st, nil
	}

	if st.CurrentStep == document.StepStarted {
		w.runTitle(ctx, st)
		if stopRequested(req.StopAt, document.StepTitleGenerated, st.CurrentStep) {
			return st, nil
		}
	}

	if st.CurrentStep.HasTitle() && !st.CurrentStep.HasOutline() {
		w.runOutline(ctx, st)
		if stopRequested(req.StopAt, document.StepOutlineGenerated, st.CurrentStep) {
			return st, nil
		}
	}

	if st.CurrentStep.HasOutline() && !st.CurrentStep.HasContent() {
		w.runContent(ctx, st)
	}

	slog.Info("Document workflow finished",
		"topic", st.Topic,
		"current_step", string(st.CurrentStep))

	return st, nil
}

// stopRequested matches a stop_at target against the stage that just
// completed. The target matches both the clean step and its degraded
// variant.
func stopRequested(stopAt, canonical, actual document.Step) bool {
	if stopAt == "" {
		return false
	}
	return stopAt == canonical || stopAt == actual
}

func workflowOutcome(st *document.State) string {
	switch {
	case st.CurrentStep == document.StepWorkflowFailed:
		return "failed"
	case st.ErrorMessage != "":
		return "completed_with_errors"
	default:
		return "completed"
	}
}
