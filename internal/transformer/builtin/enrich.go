package builtin

import (
	"fmt"
	"log"
	"strings"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// AmbiguousReferenceError reports a reference table carrying two rows for
// one aircraft-type code. The reference is expected to be unique per code;
// a violation is surfaced rather than resolved by silently picking a row.
type AmbiguousReferenceError struct {
	Code string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("aircraft-type reference has multiple rows for code %q", e.Code)
}

// Enrich left-joins a flight-level table against an aircraft-type reference
// table on type-code equality. Output rows carry the base columns plus every
// reference column except the join column; on a column-name collision the
// base value wins and the reference value is discarded. A base row without a
// reference match keeps nil in the enrichment columns and bumps Unmatched
// instead of being dropped.
//
// Codes on both sides are normalized before comparison: digits only,
// zero-padded to three (the DOT extracts render code 12 variously as "12",
// "012", and "12 ").
type Enrich struct {
	Ref *table.Table

	// BaseCode and RefCode name the join column in the base and reference
	// tables respectively.
	BaseCode string
	RefCode  string

	// Rename optionally maps reference column names to output names
	// (e.g. Description -> DESCRIPTION).
	Rename map[string]string

	// Unmatched counts base rows with no reference match, accumulated by
	// Apply.
	Unmatched int
}

func (e *Enrich) Apply(in *table.Table) (*table.Table, error) {
	if err := in.RequireColumns(e.BaseCode); err != nil {
		return nil, err
	}
	if err := e.Ref.RequireColumns(e.RefCode); err != nil {
		return nil, fmt.Errorf("aircraft-type reference: %w", err)
	}

	// Enrichment columns: every reference column except the join code.
	var refCols, outCols []string
	for _, c := range e.Ref.Columns {
		if c == e.RefCode {
			continue
		}
		refCols = append(refCols, c)
		if n, ok := e.Rename[c]; ok && n != "" {
			outCols = append(outCols, n)
		} else {
			outCols = append(outCols, c)
		}
	}

	// Index the reference once per run. Duplicate normalized codes are a
	// data-quality failure, not a tie to break.
	index := make(map[string]records.Record, len(e.Ref.Rows))
	for _, r := range e.Ref.Rows {
		raw, _ := r.String(e.RefCode)
		code := NormalizeTypeCode(raw)
		if code == "" {
			continue
		}
		if _, dup := index[code]; dup {
			return nil, &AmbiguousReferenceError{Code: code}
		}
		index[code] = r
	}

	columns := append(append([]string(nil), in.Columns...), missingOnly(in.Columns, outCols)...)
	baseCols := make(map[string]struct{}, len(in.Columns))
	for _, c := range in.Columns {
		baseCols[c] = struct{}{}
	}
	out := table.New(columns)
	out.Rows = make([]records.Record, 0, len(in.Rows))

	for _, r := range in.Rows {
		row := r.Clone()
		raw, _ := r.String(e.BaseCode)
		ref, ok := index[NormalizeTypeCode(raw)]
		if !ok {
			for _, c := range outCols {
				if _, exists := row[c]; !exists {
					row[c] = nil
				}
			}
			e.Unmatched++
		} else {
			for i, src := range refCols {
				// Base columns win on name collision.
				if _, collides := baseCols[outCols[i]]; collides {
					continue
				}
				row[outCols[i]] = ref[src]
			}
		}
		out.Rows = append(out.Rows, row)
	}

	if e.Unmatched > 0 {
		log.Printf("enrich: %d rows had no aircraft-type match (kept with nulls)", e.Unmatched)
	}
	return out, nil
}

// NormalizeTypeCode reduces an aircraft-type code to its digits, zero-padded
// to three. Non-numeric codes normalize to the empty string and never match.
func NormalizeTypeCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if d == "" {
		return ""
	}
	for len(d) < 3 {
		d = "0" + d
	}
	return d
}

// missingOnly returns the names in add that are not already in have.
func missingOnly(have, add []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, c := range have {
		set[c] = struct{}{}
	}
	var out []string
	for _, c := range add {
		if _, ok := set[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
