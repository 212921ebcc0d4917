// Package loader reads CSV extracts into the in-memory table model. It
// normalizes headers (BOM strip, whitespace trim), soft-fails unusable rows
// with a running skip count, coerces declared numeric columns to integers,
// and concatenates multi-file inputs that share one schema.
//
// Header names are kept in their original case: the government extracts use
// exact upper-case names (YEAR, MONTH, UNIQUE_CARRIER, ...) and every
// downstream stage references columns by those exact names.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// logLimit caps per-row skip logging so a badly broken file cannot flood the
// output; skips beyond the limit are still counted.
const logLimit = 400

// Options configures a load. The zero value reads a comma-separated,
// header-carrying UTF-8 file with whitespace trimming.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// TrimSpace disables cell trimming when set. Trimming is the default
	// because the carrier summaries pad cells inconsistently.
	NoTrimSpace bool

	// IntColumns are coerced to int after load. A cell that fails to parse
	// makes the whole row a soft-failed RowParseError (skipped and counted).
	// Empty cells stay nil.
	IntColumns []string

	// Latin1 decodes the input as ISO 8859-1 before CSV parsing. Some older
	// carrier summaries are not UTF-8; decoding is strictly opt-in, never
	// guessed.
	Latin1 bool

	// OverrideColumns replaces the file's header row with the given column
	// names. The first line of the file is still consumed (it is assumed to
	// be the header being overridden). Used for the flight test extract,
	// whose header is known to arrive mangled.
	OverrideColumns []string

	// LazyQuotes relaxes quote handling for files with stray quotes.
	LazyQuotes bool
}

// Result is a loaded table plus its soft-failure count.
type Result struct {
	Table   *table.Table
	Skipped int
}

// LoadFile reads one CSV file into a Table.
func LoadFile(path string, opt Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return load(f, path, opt)
}

// LoadFiles reads every path and concatenates rows into one Table,
// preserving first-seen-file-then-row order. All files must share the first
// file's column set; a differing set is a SchemaMismatchError.
func LoadFiles(paths []string, opt Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	var out *Result
	for _, p := range paths {
		res, err := LoadFile(p, opt)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = res
			continue
		}
		if !table.SameSchema(out.Table, res.Table) {
			return nil, &table.SchemaMismatchError{
				File: p,
				Want: out.Table.Columns,
				Got:  res.Table.Columns,
			}
		}
		// Rows from later files are re-keyed to the first file's column
		// order via Append, so differing column order is tolerated.
		for _, r := range res.Table.Rows {
			out.Table.Append(r)
		}
		out.Skipped += res.Skipped
	}
	return out, nil
}

// load parses CSV from r. name is used in diagnostics only.
func load(r io.Reader, name string, opt Options) (*Result, error) {
	if opt.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1 // width enforced after read, as soft-fail
	cr.LazyQuotes = opt.LazyQuotes

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header of %s: %w", name, err)
	}
	columns := normalizeHeader(header)
	if len(opt.OverrideColumns) > 0 {
		columns = append([]string(nil), opt.OverrideColumns...)
	}

	intCols := make(map[string]struct{}, len(opt.IntColumns))
	for _, c := range opt.IntColumns {
		intCols[c] = struct{}{}
	}

	t := table.New(columns)
	skipped := 0
	skip := func(line int, col string, cause error) {
		e := &table.RowParseError{File: name, Line: line, Column: col, Err: cause}
		if skipped < logLimit {
			log.Printf("skipping row: %v", e)
		}
		skipped++
	}

	// Data starts on line 2; the header consumed line 1.
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skip(line, "", err)
			continue
		}
		if len(row) != len(columns) {
			skip(line, "", fmt.Errorf("expected %d fields, got %d", len(columns), len(row)))
			continue
		}

		rec := make(records.Record, len(columns))
		bad := false
		for i, col := range columns {
			val := row[i]
			if !opt.NoTrimSpace {
				val = strings.TrimSpace(val)
			}
			if val == "" {
				rec[col] = nil
				continue
			}
			if _, isInt := intCols[col]; isInt {
				n, err := strconv.Atoi(val)
				if err != nil {
					skip(line, col, err)
					bad = true
					break
				}
				rec[col] = n
				continue
			}
			rec[col] = val
		}
		if bad {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	return &Result{Table: t, Skipped: skipped}, nil
}

// normalizeHeader trims each cell and strips a UTF-8 BOM from the first one.
func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		c = strings.TrimSpace(c)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		out[i] = c
	}
	return out
}
