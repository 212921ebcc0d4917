package builtin

import (
	"errors"
	"reflect"
	"testing"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

func summaryTable() *table.Table {
	t := table.New([]string{"UNIQUE_CARRIER", "ORIGIN", "DEST", "YEAR", "MONTH", "SEATS"})
	t.Append(records.Record{"UNIQUE_CARRIER": "AA", "ORIGIN": "JFK", "DEST": "LAX", "YEAR": "2023", "MONTH": "1", "SEATS": "180"})
	t.Append(records.Record{"UNIQUE_CARRIER": "DL", "ORIGIN": "JFK", "DEST": "LAX", "YEAR": "2023", "MONTH": "1", "SEATS": "190"})
	t.Append(records.Record{"UNIQUE_CARRIER": "aa ", "ORIGIN": "DFW", "DEST": "ORD", "YEAR": "2023", "MONTH": "2", "SEATS": "170"})
	t.Append(records.Record{"UNIQUE_CARRIER": "AA", "ORIGIN": "JFK", "DEST": "ATL", "YEAR": "2023", "MONTH": "1", "SEATS": "150"})
	return t
}

func TestCarrierFilter(t *testing.T) {
	t.Parallel()

	in := summaryTable()
	out, err := CarrierFilter("UNIQUE_CARRIER", "AA", "ORIGIN", "DEST",
		[]string{"JFK", "LAX", "DFW", "ORD"}).Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// DL dropped, JFK-ATL outside the airport set, "aa " matches after
	// trim/upper. Relative order preserved.
	if len(out.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(out.Rows))
	}
	if got, _ := out.Rows[0].String("DEST"); got != "LAX" {
		t.Fatalf("row 0 DEST = %q", got)
	}
	if got, _ := out.Rows[1].String("ORIGIN"); got != "DFW" {
		t.Fatalf("row 1 ORIGIN = %q", got)
	}
}

func TestCarrierFilter_NoAirports(t *testing.T) {
	t.Parallel()

	out, err := CarrierFilter("UNIQUE_CARRIER", "AA", "ORIGIN", "DEST", nil).Apply(summaryTable())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Rows) != 3 {
		t.Fatalf("carrier-only filter rows = %d, want 3", len(out.Rows))
	}
}

func TestFilter_MissingColumnExcludes(t *testing.T) {
	t.Parallel()

	in := table.New([]string{"ORIGIN"})
	in.Append(records.Record{"ORIGIN": "JFK"})

	out, err := CarrierFilter("UNIQUE_CARRIER", "AA", "ORIGIN", "DEST", nil).Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Rows) != 0 {
		t.Fatalf("rows with missing predicate column must be excluded, got %d", len(out.Rows))
	}
}

func TestProject(t *testing.T) {
	t.Parallel()

	in := summaryTable()
	out, err := Project{
		Columns: []string{"UNIQUE_CARRIER", "ORIGIN", "DEST"},
		Rename:  map[string]string{"UNIQUE_CARRIER": "CARRIER"},
	}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !reflect.DeepEqual(out.Columns, []string{"CARRIER", "ORIGIN", "DEST"}) {
		t.Fatalf("columns = %v", out.Columns)
	}
	if len(out.Rows) != len(in.Rows) {
		t.Fatalf("row count changed: %d", len(out.Rows))
	}
	if got, _ := out.Rows[0].String("CARRIER"); got != "AA" {
		t.Fatalf("CARRIER = %q", got)
	}
	if _, ok := out.Rows[0]["SEATS"]; ok {
		t.Fatalf("unprojected column leaked through")
	}
}

func TestProject_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := Project{Columns: []string{"NO_SUCH"}}.Apply(summaryTable())
	var missing *table.MissingColumnError
	if !errors.As(err, &missing) || missing.Column != "NO_SUCH" {
		t.Fatalf("expected MissingColumnError for NO_SUCH, got %v", err)
	}
}

func dupTable() *table.Table {
	t := table.New([]string{"YEAR", "MONTH", "ORIGIN", "DEST", "UNIQUE_CARRIER", "SEATS"})
	t.Append(records.Record{"YEAR": "2023", "MONTH": "1", "ORIGIN": "JFK", "DEST": "LAX", "UNIQUE_CARRIER": "AA", "SEATS": "180"})
	t.Append(records.Record{"YEAR": "2023", "MONTH": "1", "ORIGIN": "JFK", "DEST": "LAX", "UNIQUE_CARRIER": "AA", "SEATS": "999"})
	t.Append(records.Record{"YEAR": "2023", "MONTH": "2", "ORIGIN": "JFK", "DEST": "LAX", "UNIQUE_CARRIER": "AA", "SEATS": "170"})
	return t
}

func TestDeDup_KeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	keys := []string{"YEAR", "MONTH", "ORIGIN", "DEST", "UNIQUE_CARRIER"}
	out, err := DeDup{Keys: keys}.Apply(dupTable())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(out.Rows))
	}
	// The first-seen instance survives, trailing columns and all.
	if got, _ := out.Rows[0].String("SEATS"); got != "180" {
		t.Fatalf("survivor SEATS = %q, want first instance", got)
	}
}

func TestDeDup_Idempotent(t *testing.T) {
	t.Parallel()

	keys := []string{"YEAR", "MONTH", "ORIGIN", "DEST", "UNIQUE_CARRIER"}
	once, err := DeDup{Keys: keys}.Apply(dupTable())
	if err != nil {
		t.Fatal(err)
	}
	twice, err := DeDup{Keys: keys}.Apply(once)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once.Rows, twice.Rows) {
		t.Fatalf("dedup not idempotent")
	}
}

func TestDeDup_NullEquality(t *testing.T) {
	t.Parallel()

	in := table.New([]string{"A", "B"})
	in.Append(records.Record{"A": nil, "B": "x"})
	in.Append(records.Record{"A": nil, "B": "y"})
	// nil and "" are distinct key values.
	in.Append(records.Record{"A": "", "B": "z"})

	out, err := DeDup{Keys: []string{"A"}}.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (nil==nil, nil!=\"\")", len(out.Rows))
	}
}

func TestDeDup_MissingKeyColumn(t *testing.T) {
	t.Parallel()

	_, err := DeDup{Keys: []string{"NOPE"}}.Apply(dupTable())
	var missing *table.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
}

func refTable(rows ...[2]string) *table.Table {
	t := table.New([]string{"Code", "Description"})
	for _, r := range rows {
		t.Append(records.Record{"Code": r[0], "Description": r[1]})
	}
	return t
}

func TestEnrich_LeftJoin(t *testing.T) {
	t.Parallel()

	base := table.New([]string{"ORIGIN", "AIRCRAFT_TYPE"})
	base.Append(records.Record{"ORIGIN": "JFK", "AIRCRAFT_TYPE": "612"})
	base.Append(records.Record{"ORIGIN": "DFW", "AIRCRAFT_TYPE": "12"}) // normalizes to 012
	base.Append(records.Record{"ORIGIN": "LGA", "AIRCRAFT_TYPE": "999"})

	e := &Enrich{
		Ref:      refTable([2]string{"612", "BOEING 737-800"}, [2]string{"012", "SMALL PROP"}),
		BaseCode: "AIRCRAFT_TYPE",
		RefCode:  "Code",
		Rename:   map[string]string{"Description": "DESCRIPTION"},
	}
	out, err := e.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// N rows in, N rows out.
	if len(out.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(out.Rows))
	}
	if got, _ := out.Rows[0].String("DESCRIPTION"); got != "BOEING 737-800" {
		t.Fatalf("row 0 DESCRIPTION = %q", got)
	}
	if got, _ := out.Rows[1].String("DESCRIPTION"); got != "SMALL PROP" {
		t.Fatalf("code normalization failed: %q", got)
	}
	if v := out.Rows[2]["DESCRIPTION"]; v != nil {
		t.Fatalf("unmatched row DESCRIPTION = %v, want nil", v)
	}
	if e.Unmatched != 1 {
		t.Fatalf("Unmatched = %d, want 1", e.Unmatched)
	}
}

func TestEnrich_BaseColumnWinsOnCollision(t *testing.T) {
	t.Parallel()

	base := table.New([]string{"ORIGIN", "AIRCRAFT_TYPE", "DESCRIPTION"})
	base.Append(records.Record{"ORIGIN": "JFK", "AIRCRAFT_TYPE": "612", "DESCRIPTION": "ALREADY SET"})
	base.Append(records.Record{"ORIGIN": "LGA", "AIRCRAFT_TYPE": "999", "DESCRIPTION": "NO MATCH"})

	e := &Enrich{
		Ref:      refTable([2]string{"612", "BOEING 737-800"}),
		BaseCode: "AIRCRAFT_TYPE",
		RefCode:  "Code",
		Rename:   map[string]string{"Description": "DESCRIPTION"},
	}
	out, err := e.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// DESCRIPTION is a base column here, so a reference match must not
	// replace its value on either the matched or the unmatched row.
	if got, _ := out.Rows[0].String("DESCRIPTION"); got != "ALREADY SET" {
		t.Fatalf("matched row DESCRIPTION = %q, want base value", got)
	}
	if got, _ := out.Rows[1].String("DESCRIPTION"); got != "NO MATCH" {
		t.Fatalf("unmatched row DESCRIPTION = %q, want base value", got)
	}
	if !reflect.DeepEqual(out.Columns, base.Columns) {
		t.Fatalf("columns = %v, want unchanged schema", out.Columns)
	}
}

func TestEnrich_AmbiguousReference(t *testing.T) {
	t.Parallel()

	base := table.New([]string{"AIRCRAFT_TYPE"})
	base.Append(records.Record{"AIRCRAFT_TYPE": "612"})

	// "612" and "612 " normalize to the same code.
	e := &Enrich{
		Ref:      refTable([2]string{"612", "A"}, [2]string{"612 ", "B"}),
		BaseCode: "AIRCRAFT_TYPE",
		RefCode:  "Code",
	}
	_, err := e.Apply(base)
	var ambiguous *AmbiguousReferenceError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousReferenceError, got %v", err)
	}
	if ambiguous.Code != "612" {
		t.Fatalf("Code = %q, want 612", ambiguous.Code)
	}
}

func TestNormalizeTypeCode(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"612", "612"},
		{"12", "012"},
		{"012", "012"},
		{"12 ", "012"},
		{"N/A", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeTypeCode(tc.in); got != tc.want {
			t.Errorf("NormalizeTypeCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
