package metrics

import "time"

// OutcomeLabel enumerates stage outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSucceeded OutcomeLabel = "succeeded"
	OutcomeDegraded  OutcomeLabel = "degraded"
	OutcomeFailed    OutcomeLabel = "failed"
)

// Recorder defines observability hooks for workflow and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All
// methods must be safe on a nil receiver so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveWorkflowDuration(d time.Duration)
	IncStageOutcome(stage string, outcome OutcomeLabel)
	IncWorkflowOutcome(outcome string) // outcome: completed|completed_with_errors|failed
	ObserveSectionDuration(d time.Duration, success bool)
	IncGeneratorRetry(stage string)
	SetSectionConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveWorkflowDuration(time.Duration)      {}
func (NoopRecorder) IncStageOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) IncWorkflowOutcome(string)                  {}
func (NoopRecorder) ObserveSectionDuration(time.Duration, bool) {}
func (NoopRecorder) IncGeneratorRetry(string)                   {}
func (NoopRecorder) SetSectionConcurrency(int)                  {}
