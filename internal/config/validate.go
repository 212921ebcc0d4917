// Validation for the pipeline configs. Checks are static and run before any
// file or network I/O; callers surface the issues and refuse to start on the
// first error-severity finding.
package config

import (
	"fmt"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but not fatal.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasError reports whether any issue is of error severity.
func HasError(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the merge pipeline config.
func (c Merge) Validate() []Issue {
	var issues []Issue
	if len(c.Inputs) == 0 {
		issues = append(issues, Issue{SeverityError, "inputs", "at least one input CSV is required"})
	}
	for i, p := range c.Inputs {
		if strings.TrimSpace(p) == "" {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("inputs[%d]", i), "input path must not be empty"})
		}
	}
	if strings.TrimSpace(c.Out) == "" {
		issues = append(issues, Issue{SeverityError, "out", "output path must not be empty"})
	}
	if c.FilterAA && len(c.Airports) == 0 {
		issues = append(issues, Issue{SeverityWarning, "airports", "filter-aa with an empty airport list filters on carrier only"})
	}
	for i, k := range c.DedupeKeys {
		if strings.TrimSpace(k) == "" {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("dedupe[%d]", i), "dedupe key column must not be empty"})
		}
	}
	issues = append(issues, c.Storage.validate()...)
	return issues
}

// Validate checks the final-merge pipeline config.
func (c FinalMerge) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(c.AATest) == "" {
		issues = append(issues, Issue{SeverityError, "aa_test", "flight test extract path must not be empty"})
	}
	if strings.TrimSpace(c.Merged) == "" {
		issues = append(issues, Issue{SeverityError, "merged", "merged summary path must not be empty"})
	}
	if strings.TrimSpace(c.Out) == "" {
		issues = append(issues, Issue{SeverityError, "out", "output path must not be empty"})
	}
	if c.FilterHubs && len(c.Hubs) == 0 {
		issues = append(issues, Issue{SeverityError, "hubs", "filter-hubs requires a non-empty hub list"})
	}
	issues = append(issues, c.Storage.validate()...)
	return issues
}

// Validate checks the position-query pipeline config.
func (c Positions) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(c.Token) == "" {
		issues = append(issues, Issue{SeverityError, "token", "API token is required (flag or FR24_API_TOKEN)"})
	}
	if c.Start.IsZero() || c.End.IsZero() {
		issues = append(issues, Issue{SeverityError, "start/end", "both start and end timestamps are required"})
	} else if c.End.Before(c.Start) {
		issues = append(issues, Issue{SeverityError, "end", "end must not be before start"})
	}
	if c.Interval < time.Minute {
		issues = append(issues, Issue{SeverityError, "interval", "interval must be at least one minute"})
	}
	if len(c.Routes) == 0 {
		issues = append(issues, Issue{SeverityError, "routes", "at least one route (e.g. JFK-LAX) is required"})
	}
	for i, r := range c.Routes {
		if !strings.Contains(r, "-") {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("routes[%d]", i), fmt.Sprintf("route %q is not an ORIG-DEST pair", r)})
		}
	}
	if c.BatchSize <= 0 || c.BatchSize > 15 {
		issues = append(issues, Issue{SeverityError, "batch-size", "batch size must be between 1 and 15 (API request cap)"})
	}
	if c.OutJSON == "" && c.OutCSV == "" {
		issues = append(issues, Issue{SeverityError, "out-json/out-csv", "at least one output path is required"})
	}
	return issues
}

// Validate checks the weather-attachment config.
func (c Weather) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(c.Flights) == "" {
		issues = append(issues, Issue{SeverityError, "flights", "flights path must not be empty"})
	}
	if strings.TrimSpace(c.Obs) == "" {
		issues = append(issues, Issue{SeverityError, "weather", "weather path must not be empty"})
	}
	if strings.TrimSpace(c.Out) == "" {
		issues = append(issues, Issue{SeverityError, "out", "output path must not be empty"})
	}
	return issues
}

func (s Storage) validate() []Issue {
	var issues []Issue
	switch s.Kind {
	case "", "csv":
		// CSV-only output; DSN and table are ignored.
	case "sqlite", "postgres":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{SeverityError, "storage.dsn", fmt.Sprintf("%s storage requires a DSN", s.Kind)})
		}
		if strings.TrimSpace(s.Table) == "" {
			issues = append(issues, Issue{SeverityError, "storage.table", fmt.Sprintf("%s storage requires a table name", s.Kind)})
		}
	default:
		issues = append(issues, Issue{SeverityError, "storage.kind", fmt.Sprintf("unknown storage kind %q (want csv, sqlite, or postgres)", s.Kind)})
	}
	return issues
}
