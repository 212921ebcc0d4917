package config

import (
	"strings"
	"testing"
	"time"
)

func TestMergeValidate(t *testing.T) {
	t.Parallel()

	valid := Merge{Inputs: []string{"a.csv"}, Out: "out.csv"}
	if issues := valid.Validate(); HasError(issues) {
		t.Fatalf("valid config reported errors: %v", issues)
	}

	if issues := (Merge{Out: "out.csv"}).Validate(); !HasError(issues) {
		t.Fatalf("missing inputs must be an error")
	}
	if issues := (Merge{Inputs: []string{"a.csv"}}).Validate(); !HasError(issues) {
		t.Fatalf("missing out must be an error")
	}
	if issues := (Merge{Inputs: []string{"a.csv"}, Out: "o", DedupeKeys: []string{" "}}).Validate(); !HasError(issues) {
		t.Fatalf("blank dedupe key must be an error")
	}
}

func TestMergeValidate_FilterAAWarning(t *testing.T) {
	t.Parallel()

	issues := (Merge{Inputs: []string{"a.csv"}, Out: "o", FilterAA: true}).Validate()
	if HasError(issues) {
		t.Fatalf("warning-only config reported fatal: %v", issues)
	}
	found := false
	for _, i := range issues {
		if i.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning for filter-aa without airports")
	}
}

func TestStorageValidate(t *testing.T) {
	t.Parallel()

	base := Merge{Inputs: []string{"a.csv"}, Out: "o"}

	base.Storage = Storage{Kind: "sqlite"}
	if !HasError(base.Validate()) {
		t.Fatalf("sqlite without DSN/table must be an error")
	}

	base.Storage = Storage{Kind: "sqlite", DSN: "x.db", Table: "t"}
	if HasError(base.Validate()) {
		t.Fatalf("complete sqlite config rejected")
	}

	base.Storage = Storage{Kind: "oracle", DSN: "x", Table: "t"}
	if !HasError(base.Validate()) {
		t.Fatalf("unknown storage kind must be an error")
	}
}

func TestPositionsValidate(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := Positions{
		Token:     "tok",
		Start:     start,
		End:       start.Add(time.Hour),
		Interval:  15 * time.Minute,
		Routes:    []string{"JFK-LAX"},
		BatchSize: 15,
		OutCSV:    "out.csv",
	}
	if issues := valid.Validate(); HasError(issues) {
		t.Fatalf("valid config reported errors: %v", issues)
	}

	bad := valid
	bad.End = start.Add(-time.Hour)
	if !HasError(bad.Validate()) {
		t.Fatalf("end before start must be an error")
	}

	bad = valid
	bad.BatchSize = 16
	if !HasError(bad.Validate()) {
		t.Fatalf("batch size over the API cap must be an error")
	}

	bad = valid
	bad.Routes = []string{"JFKLAX"}
	if !HasError(bad.Validate()) {
		t.Fatalf("route without a dash must be an error")
	}

	bad = valid
	bad.OutCSV = ""
	if !HasError(bad.Validate()) {
		t.Fatalf("no output path must be an error")
	}
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	var cfg Merge
	good := `{"inputs": ["a.csv"], "out": "o.csv", "filter-aa": true}`
	if err := DecodeStrict(strings.NewReader(good), &cfg); err != nil {
		t.Fatalf("DecodeStrict: %v", err)
	}
	if !cfg.FilterAA || len(cfg.Inputs) != 1 {
		t.Fatalf("decoded = %+v", cfg)
	}

	var cfg2 Merge
	bad := `{"inputs": ["a.csv"], "outt": "typo.csv"}`
	if err := DecodeStrict(strings.NewReader(bad), &cfg2); err == nil {
		t.Fatalf("unknown key must be rejected")
	}
}
