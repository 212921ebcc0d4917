// Package cli holds the wiring shared by the pipeline binaries: metrics
// backend selection and fatal-error reporting. Each binary stays a thin
// flag-parsing layer over its pipeline Run function.
package cli

import (
	"fmt"
	"log"
	"os"
	"strings"

	"flightetl/internal/metrics"
	"flightetl/internal/metrics/datadog"
	"flightetl/internal/metrics/prompush"
)

// Fatalf prints one diagnostic line to stderr and exits non-zero.
func Fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// SetupMetrics installs the requested metrics backend and returns a flush
// function for a deferred call in main. Selection order is flag value,
// then the METRICS_BACKEND environment variable; empty or "none" leaves
// the no-op backend in place. A backend that fails to initialize logs and
// degrades to no-op rather than aborting the run.
func SetupMetrics(job, backend, pushURL, statsdAddr string) func() {
	if backend == "" {
		backend = os.Getenv("METRICS_BACKEND")
	}

	switch backend {
	case "pushgateway":
		if pushURL == "" {
			pushURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if pushURL == "" {
			pushURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, pushURL)
		if err != nil {
			log.Printf("metrics: pushgateway init failed: %v; metrics disabled", err)
			break
		}
		log.Printf("metrics: backend=pushgateway url=%s job=%s", pushURL, job)
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = os.Getenv("DD_AGENT_ADDR")
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: statsdAddr, Namespace: "flightetl."})
		if err != nil {
			log.Printf("metrics: datadog init failed: %v; metrics disabled", err)
			break
		}
		log.Printf("metrics: backend=datadog addr=%s", statsdAddr)
		metrics.SetBackend(b)

	case "", "none":
		// No-op backend remains.

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backend)
	}

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// SplitList splits a comma-separated flag value into trimmed, non-empty
// elements.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
