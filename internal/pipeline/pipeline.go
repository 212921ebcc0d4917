// Package pipeline wires the building blocks (loader, transformers, writer,
// sinks, API client) into the runnable flight-data pipelines. Each Run
// function validates its config up front, executes the fixed stage order,
// and returns a Summary of row counts for the final log line.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"flightetl/internal/config"
	"flightetl/internal/metrics"
	"flightetl/internal/storage"
	"flightetl/internal/table"
	"flightetl/internal/writer"
)

// Summary reports the row accounting of one pipeline run.
type Summary struct {
	RowsIn    int
	RowsOut   int
	Skipped   int
	Unmatched int
}

func (s Summary) String() string {
	return fmt.Sprintf("rows in=%d out=%d skipped=%d unmatched=%d",
		s.RowsIn, s.RowsOut, s.Skipped, s.Unmatched)
}

// validatable is implemented by every pipeline config.
type validatable interface {
	Validate() []config.Issue
}

// checkConfig logs warnings and returns the first error-severity issue.
func checkConfig(c validatable) error {
	issues := c.Validate()
	for _, i := range issues {
		if i.Severity == config.SeverityWarning {
			log.Printf("config: %v", i)
		}
	}
	for _, i := range issues {
		if i.Severity == config.SeverityError {
			return i
		}
	}
	return nil
}

// stage runs fn and records its outcome and latency under the given
// pipeline and stage names.
func stage(pipeline, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStage(pipeline, name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// deliver writes the final table to the CSV path and, when a database sink
// is configured, lands it there as well.
func deliver(ctx context.Context, pipeline string, st config.Storage, out string, t *table.Table) error {
	if err := stage(pipeline, "write", func() error {
		return writer.WriteCSV(out, t)
	}); err != nil {
		return err
	}

	switch st.Kind {
	case "", "csv":
		return nil
	}
	return stage(pipeline, "store", func() error {
		repo, err := storage.New(ctx, storage.Config{Kind: st.Kind, DSN: st.DSN, Table: st.Table})
		if err != nil {
			return err
		}
		defer repo.Close()
		n, err := storage.WriteTable(ctx, repo, st.Table, t)
		if err != nil {
			return err
		}
		log.Printf("%s: stored %d rows in %s table %s", pipeline, n, st.Kind, st.Table)
		return nil
	})
}
