// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the flight-data pipelines.
//
// The package exposes a narrow Backend interface (counters and duration
// observations) behind a global, pluggable backend that defaults to a no-op
// implementation, so instrumentation calls are always safe even when no real
// backend is configured. Concrete metric systems (Prometheus Pushgateway,
// Datadog) live in subpackages and are selected at startup; the pipeline
// code depends only on this package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one pipeline stage: latency plus a success/failure
// count. Stage names follow the pipeline vocabulary: "load", "filter",
// "project", "dedupe", "enrich", "write", "query".
func RecordStage(pipeline, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"pipeline": pipeline,
		"stage":    stage,
		"status":   status,
	}

	backend.IncCounter("flight_stage_total", 1, lbls)
	backend.ObserveDuration("flight_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given pipeline and kind.
//
// Typical kinds mirror the run summary fields:
//   - "in"        rows loaded
//   - "out"       rows written
//   - "skipped"   rows soft-failed at parse time
//   - "unmatched" rows without an aircraft-type match
func RecordRows(pipeline, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("flight_rows_total", float64(delta), Labels{
		"pipeline": pipeline,
		"kind":     kind,
	})
}
