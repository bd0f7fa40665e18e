package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	stageDuration      *prom.HistogramVec
	workflowDuration   prom.Histogram
	stageOutcomes      *prom.CounterVec
	workflowOutcomes   *prom.CounterVec
	sectionDuration    *prom.HistogramVec
	generatorRetries   *prom.CounterVec
	sectionConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics
// (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docgen",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.workflowDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docgen",
			Name:      "workflow_duration_seconds",
			Help:      "Total workflow run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "stage_outcomes_total",
			Help:      "Stage outcome counts",
		}, []string{"stage", "outcome"})
		pr.workflowOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "workflow_outcomes_total",
			Help:      "Workflow outcomes by final status",
		}, []string{"outcome"})
		pr.sectionDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docgen",
			Name:      "section_duration_seconds",
			Help:      "Duration of individual section content generation",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.generatorRetries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docgen",
			Name:      "generator_retries_total",
			Help:      "Quality-gate regeneration attempts per stage",
		}, []string{"stage"})
		pr.sectionConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: "docgen",
			Name:      "section_concurrency",
			Help:      "Configured section generation concurrency",
		})
		reg.MustRegister(pr.stageDuration, pr.workflowDuration, pr.stageOutcomes,
			pr.workflowOutcomes, pr.sectionDuration, pr.generatorRetries, pr.sectionConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveWorkflowDuration(d time.Duration) {
	if p == nil || p.workflowDuration == nil {
		return
	}
	p.workflowDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageOutcome(stage string, outcome OutcomeLabel) {
	if p == nil || p.stageOutcomes == nil {
		return
	}
	p.stageOutcomes.WithLabelValues(stage, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncWorkflowOutcome(outcome string) {
	if p == nil || p.workflowOutcomes == nil {
		return
	}
	p.workflowOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveSectionDuration(d time.Duration, success bool) {
	if p == nil || p.sectionDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.sectionDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGeneratorRetry(stage string) {
	if p == nil || p.generatorRetries == nil {
		return
	}
	p.generatorRetries.WithLabelValues(stage).Inc()
}

func (p *PrometheusRecorder) SetSectionConcurrency(n int) {
	if p == nil || p.sectionConcurrency == nil {
		return
	}
	p.sectionConcurrency.Set(float64(n))
}
