package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"flightetl/internal/config"
	"flightetl/internal/loader"
	"flightetl/internal/metrics"
	"flightetl/internal/table"
	"flightetl/internal/transformer/builtin"
	"flightetl/internal/weather"
	"flightetl/pkg/records"
)

// flightTestColumns is the fixed schema of the flight-level test extract.
// The file's own header is known to arrive mangled (a column name split
// across lines), so it is overridden wholesale at load time.
var flightTestColumns = []string{
	"FL_DATE", "MKT_UNIQUE_CARRIER", "OP_CARRIER_FL_NUM", "ORIGIN", "DEST",
	"CRS_DEP_TIME", "DEP_TIME", "WHEELS_OFF", "CRS_ARR_TIME", "ARR_TIME", "WHEELS_ON",
	"CANCELLED", "DIVERTED",
}

// timeColumns are normalized to 4-digit zero-padded clock strings.
var timeColumns = []string{"CRS_DEP_TIME", "DEP_TIME", "WHEELS_OFF", "CRS_ARR_TIME", "ARR_TIME", "WHEELS_ON"}

// routeKey is the composite join key of the enrichment: route plus month.
type routeKey struct {
	origin, dest string
	year, month  int
}

// RunFinalMerge executes the enrichment join: the flight test extract is
// left-joined against the merged T-100 summary on ORIGIN, DEST, YEAR,
// MONTH, gaining AIRCRAFT_TYPE and DESCRIPTION. Missing codes are
// optionally recovered from DESCRIPTION via the aircraft-type reference.
func RunFinalMerge(ctx context.Context, cfg config.FinalMerge) (*Summary, error) {
	const name = "finalmerge"

	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	var flights *table.Table
	sum := &Summary{}
	if err := stage(name, "load", func() error {
		res, err := loader.LoadFile(cfg.AATest, loader.Options{
			OverrideColumns: flightTestColumns,
			LazyQuotes:      true,
		})
		if err != nil {
			return err
		}
		flights = res.Table
		sum.Skipped += res.Skipped
		return nil
	}); err != nil {
		return nil, err
	}
	sum.RowsIn = len(flights.Rows)

	normalizeClocks(flights)
	deriveYearMonth(flights)

	var merged *table.Table
	if err := stage(name, "load", func() error {
		res, err := loader.LoadFile(cfg.Merged, loader.Options{IntColumns: []string{"YEAR", "MONTH"}})
		if err != nil {
			return err
		}
		merged = res.Table
		sum.Skipped += res.Skipped
		return nil
	}); err != nil {
		return nil, err
	}

	// Join columns must exist in both inputs before any row work; a silent
	// partial join is worse than an aborted run.
	if err := flights.RequireColumns("ORIGIN", "DEST", "YEAR", "MONTH"); err != nil {
		return nil, fmt.Errorf("flight extract %s: %w", cfg.AATest, err)
	}
	if err := merged.RequireColumns("ORIGIN", "DEST", "YEAR", "MONTH"); err != nil {
		return nil, fmt.Errorf("merged summary %s: %w", cfg.Merged, err)
	}
	merged.EnsureColumn("AIRCRAFT_TYPE")
	merged.EnsureColumn("DESCRIPTION")

	var out *table.Table
	if err := stage(name, "enrich", func() error {
		out = joinSummary(flights, merged, sum)
		return nil
	}); err != nil {
		return nil, err
	}

	if cfg.AircraftTypes != "" {
		if err := stage(name, "backfill", func() error {
			return backfillCodes(out, cfg.AircraftTypes)
		}); err != nil {
			return nil, err
		}
	}

	if cfg.FilterHubs {
		hubs := cfg.Hubs
		if len(hubs) == 0 {
			hubs = config.DefaultAirports
		}
		if err := stage(name, "filter", func() error {
			var err error
			out, err = builtin.AirportFilter("ORIGIN", "DEST", hubs).Apply(out)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := deliver(ctx, name, cfg.Storage, cfg.Out, out); err != nil {
		return nil, err
	}
	sum.RowsOut = len(out.Rows)

	metrics.RecordRows(name, "in", int64(sum.RowsIn))
	metrics.RecordRows(name, "out", int64(sum.RowsOut))
	metrics.RecordRows(name, "skipped", int64(sum.Skipped))
	metrics.RecordRows(name, "unmatched", int64(sum.Unmatched))
	log.Printf("finalmerge: %s", sum)
	return sum, nil
}

// normalizeClocks rewrites the clock columns as 4-digit zero-padded digit
// strings ("726.0" becomes "0726"); unparseable cells become nil.
func normalizeClocks(t *table.Table) {
	for _, r := range t.Rows {
		for _, c := range timeColumns {
			raw, ok := r.String(c)
			if !ok {
				continue
			}
			h, m, parsed := weather.ParseClock(raw)
			if !parsed {
				r[c] = nil
				continue
			}
			r[c] = fmt.Sprintf("%02d%02d", h, m)
		}
	}
}

// deriveYearMonth adds YEAR and MONTH integer columns from FL_DATE. Rows
// with an unparseable date keep nil and will not join.
func deriveYearMonth(t *table.Table) {
	t.EnsureColumn("YEAR")
	t.EnsureColumn("MONTH")
	for _, r := range t.Rows {
		raw, ok := r.String("FL_DATE")
		if !ok {
			continue
		}
		d, parsed := weather.ParseDate(raw)
		if !parsed {
			continue
		}
		r["YEAR"] = d.Year()
		r["MONTH"] = int(d.Month())
	}
}

// joinSummary left-joins the flights against a (route, month) index of the
// merged summary, adding AIRCRAFT_TYPE and DESCRIPTION. The first summary
// row per key wins; flights with no match keep nil and bump Unmatched.
func joinSummary(flights, merged *table.Table, sum *Summary) *table.Table {
	index := make(map[routeKey]records.Record, len(merged.Rows))
	for _, r := range merged.Rows {
		k, ok := keyOf(r)
		if !ok {
			continue
		}
		if _, seen := index[k]; seen {
			continue
		}
		index[k] = r
	}

	out := flights.Clone()
	out.EnsureColumn("AIRCRAFT_TYPE")
	out.EnsureColumn("DESCRIPTION")
	for _, r := range out.Rows {
		k, ok := keyOf(r)
		if !ok {
			sum.Unmatched++
			continue
		}
		m, found := index[k]
		if !found {
			sum.Unmatched++
			continue
		}
		r["AIRCRAFT_TYPE"] = m["AIRCRAFT_TYPE"]
		r["DESCRIPTION"] = m["DESCRIPTION"]
	}
	if sum.Unmatched > 0 {
		log.Printf("finalmerge: %d flights had no summary match (kept with nulls)", sum.Unmatched)
	}
	return out
}

func keyOf(r records.Record) (routeKey, bool) {
	origin, okO := r.String("ORIGIN")
	dest, okD := r.String("DEST")
	year, okY := r.Int("YEAR")
	month, okM := r.Int("MONTH")
	if !okO || !okD || !okY || !okM {
		return routeKey{}, false
	}
	return routeKey{
		origin: strings.ToUpper(strings.TrimSpace(origin)),
		dest:   strings.ToUpper(strings.TrimSpace(dest)),
		year:   year,
		month:  month,
	}, true
}

// backfillCodes recovers AIRCRAFT_TYPE from DESCRIPTION for rows that
// gained a description but no code, using the reference's reverse mapping.
// Descriptions compare upper-cased with collapsed whitespace; codes are
// normalized to three digits.
func backfillCodes(t *table.Table, refPath string) error {
	res, err := loader.LoadFile(refPath, loader.Options{})
	if err != nil {
		return fmt.Errorf("aircraft-types: %w", err)
	}
	ref := res.Table
	if len(ref.Columns) < 2 {
		return fmt.Errorf("aircraft-types: %s has fewer than two columns", refPath)
	}
	codeCol, descCol := ref.Columns[0], ref.Columns[1]

	descToCode := make(map[string]string, len(ref.Rows))
	for _, r := range ref.Rows {
		desc, _ := r.String(descCol)
		code, _ := r.String(codeCol)
		norm := normalizeDescription(desc)
		if norm == "" {
			continue
		}
		if _, seen := descToCode[norm]; seen {
			continue
		}
		descToCode[norm] = builtin.NormalizeTypeCode(code)
	}

	filled := 0
	for _, r := range t.Rows {
		if !r.Empty("AIRCRAFT_TYPE") {
			continue
		}
		desc, _ := r.String("DESCRIPTION")
		if code, ok := descToCode[normalizeDescription(desc)]; ok && code != "" {
			r["AIRCRAFT_TYPE"] = code
			filled++
		}
	}
	if filled > 0 {
		log.Printf("finalmerge: backfilled %d aircraft-type codes from descriptions", filled)
	}
	return nil
}

// normalizeDescription upper-cases and collapses internal whitespace.
func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
