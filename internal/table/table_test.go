package table

import (
	"errors"
	"reflect"
	"testing"

	"flightetl/pkg/records"
)

func TestAppend_FillsMissingWithNil(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"ORIGIN", "DEST", "SEATS"})
	tbl.Append(records.Record{"ORIGIN": "JFK", "EXTRA": "dropped"})

	r := tbl.Rows[0]
	if got, _ := r.String("ORIGIN"); got != "JFK" {
		t.Fatalf("ORIGIN = %q", got)
	}
	if v, ok := r["DEST"]; !ok || v != nil {
		t.Fatalf("missing column must be present as nil, got %v (ok=%v)", v, ok)
	}
	if _, ok := r["EXTRA"]; ok {
		t.Fatalf("out-of-schema key must be dropped")
	}
}

func TestRequireColumns(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"ORIGIN", "DEST"})
	if err := tbl.RequireColumns("ORIGIN", "DEST"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := tbl.RequireColumns("ORIGIN", "YEAR")
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if missing.Column != "YEAR" {
		t.Fatalf("Column = %q, want YEAR", missing.Column)
	}
}

func TestEnsureColumn(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"ORIGIN"})
	tbl.Append(records.Record{"ORIGIN": "JFK"})
	tbl.EnsureColumn("YEAR")
	tbl.EnsureColumn("ORIGIN") // no-op

	if !reflect.DeepEqual(tbl.Columns, []string{"ORIGIN", "YEAR"}) {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if v, ok := tbl.Rows[0]["YEAR"]; !ok || v != nil {
		t.Fatalf("backfill missing: %v (ok=%v)", v, ok)
	}
}

func TestClone_DeepEnough(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"ORIGIN"})
	tbl.Append(records.Record{"ORIGIN": "JFK"})

	c := tbl.Clone()
	c.Rows[0]["ORIGIN"] = "LAX"
	c.Columns[0] = "CHANGED"

	if got, _ := tbl.Rows[0].String("ORIGIN"); got != "JFK" {
		t.Fatalf("row mutation leaked into original")
	}
	if tbl.Columns[0] != "ORIGIN" {
		t.Fatalf("column mutation leaked into original")
	}
}

func TestSameSchema_OrderInsensitive(t *testing.T) {
	t.Parallel()

	a := New([]string{"ORIGIN", "DEST"})
	b := New([]string{"DEST", "ORIGIN"})
	c := New([]string{"ORIGIN", "YEAR"})
	d := New([]string{"ORIGIN"})

	if !SameSchema(a, b) {
		t.Fatalf("order must not matter")
	}
	if SameSchema(a, c) || SameSchema(a, d) {
		t.Fatalf("differing column sets reported equal")
	}
}
