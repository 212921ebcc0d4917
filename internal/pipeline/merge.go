package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"flightetl/internal/config"
	"flightetl/internal/loader"
	"flightetl/internal/metrics"
	"flightetl/internal/transformer/builtin"
)

// Column candidates per concept: the yearly extracts are not perfectly
// consistent about naming, so each concept is resolved against the loaded
// header once, case-insensitively, in preference order.
var (
	carrierCandidates  = []string{"UNIQUE_CARRIER", "OP_UNIQUE_CARRIER", "MKT_UNIQUE_CARRIER", "REPORTING_AIRLINE", "CARRIER"}
	originCandidates   = []string{"ORIGIN", "ORIGIN_AIRPORT", "ORIGIN_AIRPORT_ID"}
	destCandidates     = []string{"DEST", "DEST_AIRPORT", "DEST_AIRPORT_ID"}
	yearCandidates     = []string{"YEAR", "FLIGHT_YEAR"}
	monthCandidates    = []string{"MONTH", "MONTH_NUM"}
	aircraftCandidates = []string{"AIRCRAFT_TYPE", "AIRCRAFT_CONFIG", "AIRCRAFT_GROUP", "AIRCRAFT_TYPE_CODE"}
)

// RunMerge executes the T-100 merge pipeline: multi-file load, optional AA
// hub filter, optional minimal projection, keyed de-duplication, optional
// aircraft-type enrichment, then CSV (and sink) output.
func RunMerge(ctx context.Context, cfg config.Merge) (*Summary, error) {
	const name = "merge"

	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	// Year and month cells coerce to int at load; rows with unparseable
	// values are soft-skipped and counted.
	intCols := append(append([]string(nil), yearCandidates...), monthCandidates...)

	var res *loader.Result
	if err := stage(name, "load", func() error {
		var err error
		res, err = loader.LoadFiles(cfg.Inputs, loader.Options{Latin1: cfg.Latin1, IntColumns: intCols})
		return err
	}); err != nil {
		return nil, err
	}
	t := res.Table
	sum := &Summary{RowsIn: len(t.Rows), Skipped: res.Skipped}

	carrierCol := pickColumn(t.Columns, carrierCandidates)
	originCol := pickColumn(t.Columns, originCandidates)
	destCol := pickColumn(t.Columns, destCandidates)
	yearCol := pickColumn(t.Columns, yearCandidates)
	monthCol := pickColumn(t.Columns, monthCandidates)
	aircraftCol := pickColumn(t.Columns, aircraftCandidates)

	if cfg.FilterAA {
		if carrierCol == "" || originCol == "" || destCol == "" {
			return nil, fmt.Errorf("filter: no carrier/origin/dest columns among %v", t.Columns)
		}
		airports := cfg.Airports
		if len(airports) == 0 {
			airports = config.DefaultAirports
		}
		if err := stage(name, "filter", func() error {
			var err error
			t, err = builtin.CarrierFilter(carrierCol, "AA", originCol, destCol, airports).Apply(t)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if cfg.ProjectMinimal {
		if carrierCol == "" || originCol == "" || destCol == "" || yearCol == "" || monthCol == "" {
			return nil, fmt.Errorf("project: input lacks one of carrier/origin/dest/year/month: %v", t.Columns)
		}
		cols := []string{carrierCol, originCol, destCol, yearCol, monthCol}
		rename := map[string]string{
			carrierCol: "UNIQUE_CARRIER",
			originCol:  "ORIGIN",
			destCol:    "DEST",
			yearCol:    "YEAR",
			monthCol:   "MONTH",
		}
		if aircraftCol != "" {
			cols = append(cols, aircraftCol)
			rename[aircraftCol] = "AIRCRAFT_TYPE"
			aircraftCol = "AIRCRAFT_TYPE"
		}
		if err := stage(name, "project", func() error {
			var err error
			t, err = builtin.Project{Columns: cols, Rename: rename}.Apply(t)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if len(cfg.DedupeKeys) > 0 {
		if err := stage(name, "dedupe", func() error {
			var err error
			t, err = builtin.DeDup{Keys: cfg.DedupeKeys}.Apply(t)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if cfg.AircraftTypes != "" {
		if aircraftCol == "" {
			log.Printf("merge: no aircraft-type column in input, skipping enrichment")
		} else {
			enr, err := loadAircraftTypes(cfg.AircraftTypes)
			if err != nil {
				return nil, err
			}
			enr.BaseCode = aircraftCol
			if err := stage(name, "enrich", func() error {
				var err error
				t, err = enr.Apply(t)
				return err
			}); err != nil {
				return nil, err
			}
			sum.Unmatched = enr.Unmatched
		}
	}

	if err := deliver(ctx, name, cfg.Storage, cfg.Out, t); err != nil {
		return nil, err
	}
	sum.RowsOut = len(t.Rows)

	metrics.RecordRows(name, "in", int64(sum.RowsIn))
	metrics.RecordRows(name, "out", int64(sum.RowsOut))
	metrics.RecordRows(name, "skipped", int64(sum.Skipped))
	metrics.RecordRows(name, "unmatched", int64(sum.Unmatched))
	log.Printf("merge: %s", sum)
	return sum, nil
}

// loadAircraftTypes reads the DOT aircraft-type reference and prepares the
// enrichment join. The code column is "Code" when present, else the first
// column; the description column is "Description" when present, else the
// second, and is renamed DESCRIPTION in the output.
func loadAircraftTypes(path string) (*builtin.Enrich, error) {
	res, err := loader.LoadFile(path, loader.Options{})
	if err != nil {
		return nil, fmt.Errorf("aircraft-types: %w", err)
	}
	ref := res.Table
	if len(ref.Columns) < 2 {
		return nil, fmt.Errorf("aircraft-types: %s has fewer than two columns", path)
	}

	codeCol := pickColumn(ref.Columns, []string{"Code"})
	if codeCol == "" {
		codeCol = ref.Columns[0]
	}
	descCol := pickColumn(ref.Columns, []string{"Description"})
	if descCol == "" {
		descCol = ref.Columns[1]
	}

	return &builtin.Enrich{
		Ref:     ref,
		RefCode: codeCol,
		Rename:  map[string]string{descCol: "DESCRIPTION"},
	}, nil
}

// pickColumn resolves the first candidate present in columns, compared
// case-insensitively, returning the column's actual name.
func pickColumn(columns []string, candidates []string) string {
	byUpper := make(map[string]string, len(columns))
	for _, c := range columns {
		byUpper[strings.ToUpper(c)] = c
	}
	for _, cand := range candidates {
		if actual, ok := byUpper[strings.ToUpper(cand)]; ok {
			return actual
		}
	}
	return ""
}
