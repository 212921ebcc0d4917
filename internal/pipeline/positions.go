package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"flightetl/internal/config"
	"flightetl/internal/fr24"
	"flightetl/internal/metrics"
	"flightetl/internal/writer"
)

// RunPositions executes the position-query pipeline: sweep the configured
// time range against the historical-position API and write the collected
// records as JSON and/or CSV. The client is passed in so the caller
// controls authentication and endpoint.
func RunPositions(ctx context.Context, cfg config.Positions, client *fr24.Client) (*Summary, error) {
	const name = "positions"

	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	var positions []fr24.Position
	if err := stage(name, "query", func() error {
		var err error
		positions, err = client.FetchRange(ctx, fr24.FetchConfig{
			Start:       cfg.Start,
			End:         cfg.End,
			Interval:    cfg.Interval,
			Routes:      cfg.Routes,
			BatchSize:   cfg.BatchSize,
			Bounds:      cfg.Bounds,
			OperatingAs: cfg.OperatingAs,
			PaintedAs:   cfg.PaintedAs,
			Limit:       cfg.Limit,
			Dedupe:      cfg.Dedupe,
		})
		return err
	}); err != nil {
		return nil, err
	}

	sum := &Summary{RowsIn: len(positions), RowsOut: len(positions)}

	if cfg.OutJSON != "" {
		if err := stage(name, "write", func() error {
			return writeJSON(cfg.OutJSON, positions)
		}); err != nil {
			return nil, err
		}
	}
	if cfg.OutCSV != "" {
		if err := stage(name, "write", func() error {
			return writer.WriteCSV(cfg.OutCSV, fr24.ToTable(positions))
		}); err != nil {
			return nil, err
		}
	}

	metrics.RecordRows(name, "out", int64(sum.RowsOut))
	log.Printf("positions: %s", sum)
	return sum, nil
}

// writeJSON writes the raw position records as an indented JSON array,
// the interchange form consumed by the CSV conversion step and ad-hoc
// analysis notebooks.
func writeJSON(path string, positions []fr24.Position) error {
	data, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
