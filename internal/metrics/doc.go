// Package metrics provides observability hooks for the document
// generation workflow.
//
// The package implements the Null Object pattern so metrics collection
// never requires nil checks at call sites. Components receive a Recorder
// through dependency injection and default to NoopRecorder, whose no-op
// methods inline to nothing. When Prometheus is configured, the server
// swaps in a PrometheusRecorder backed by a dedicated registry and
// exposes it on /metrics.
package metrics
