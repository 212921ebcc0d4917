// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by mapping
// the pipeline labels (pipeline, stage, status, kind) onto CounterVec and
// SummaryVec collectors and pushing the registry to a Pushgateway at the end
// of a run. Pipelines here are short-lived batch jobs, which is exactly the
// case the Pushgateway exists for; a scrape endpoint would outlive the
// process it describes.
//
// All Prometheus-specific dependencies are contained in this package so the
// rest of the module can swap backends without changes.
package prompush

import (
	"fmt"

	"flightetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // "flight_stage_total"
	stageDuration *prometheus.SummaryVec // "flight_stage_duration_seconds"
	rowCounter    *prometheus.CounterVec // "flight_rows_total"
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key, typically the pipeline name.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "flightetl"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flight_stage_total",
			Help: "Pipeline stage executions, partitioned by pipeline, stage, and status.",
		},
		[]string{"pipeline", "stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "flight_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"pipeline", "stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flight_rows_total",
			Help: "Row-level counts per pipeline and kind (in, out, skipped, unmatched).",
		},
		[]string{"pipeline", "kind"},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "flight_stage_total":
		b.stageCounter.WithLabelValues(labels["pipeline"], labels["stage"], labels["status"]).Add(delta)
	case "flight_rows_total":
		b.rowCounter.WithLabelValues(labels["pipeline"], labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "flight_stage_duration_seconds" {
		return
	}
	b.stageDuration.WithLabelValues(labels["pipeline"], labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
