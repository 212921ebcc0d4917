// Package table defines the in-memory tabular model produced by the loader
// and consumed by every transform stage. A Table couples an ordered column
// list with a slice of records; the column order is authoritative for CSV
// output, and every row is expected to carry exactly the declared columns
// (missing cells are nil, never omitted).
package table

import (
	"flightetl/pkg/records"
)

// Table is an ordered sequence of rows sharing one column schema.
type Table struct {
	Columns []string
	Rows    []records.Record
}

// New returns an empty Table with the given column order.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row, filling any column the record does not carry with nil so
// the schema invariant holds. Keys outside the schema are ignored.
func (t *Table) Append(r records.Record) {
	row := make(records.Record, len(t.Columns))
	for _, c := range t.Columns {
		if v, ok := r[c]; ok {
			row[c] = v
		} else {
			row[c] = nil
		}
	}
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether name is part of the schema.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns verifies that every named column is present in the schema.
// It returns a MissingColumnError for the first absent column, so stages can
// fail before touching any row.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return &MissingColumnError{Column: n, Have: t.Columns}
		}
	}
	return nil
}

// EnsureColumn extends the schema with name when absent, backfilling nil into
// existing rows. Used when a downstream join expects a column the input file
// happened not to carry.
func (t *Table) EnsureColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, r := range t.Rows {
		r[name] = nil
	}
}

// Clone returns a deep-enough copy: fresh column slice, fresh row slice,
// cloned records. Stages that mutate cells work on clones so inputs stay
// untouched.
func (t *Table) Clone() *Table {
	out := New(t.Columns)
	out.Rows = make([]records.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, r.Clone())
	}
	return out
}

// SameSchema reports whether both tables declare the same column set,
// ignoring order. Column order may legitimately differ between yearly
// extracts of the same report.
func SameSchema(a, b *Table) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	set := make(map[string]struct{}, len(a.Columns))
	for _, c := range a.Columns {
		set[c] = struct{}{}
	}
	for _, c := range b.Columns {
		if _, ok := set[c]; !ok {
			return false
		}
	}
	return true
}
