// Package config defines the flat, validated option sets for each pipeline
// binary. Every pipeline takes an explicit struct with named fields; there
// is no option hierarchy and no free-form bag. Configs can also be decoded
// from a JSON file, in which case unknown keys are rejected outright.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// DefaultAirports are the ten AA hub airports the analysis project focuses
// on. Used when -filter-aa or -filter-hubs is requested without an explicit
// airport list.
var DefaultAirports = []string{"DFW", "LGA", "JFK", "PHL", "DCA", "CLT", "MIA", "ORD", "PHX", "LAX"}

// Storage selects where a pipeline's output table lands. Kind "csv" writes
// only the CSV file; "sqlite" and "postgres" additionally load the table
// into a database.
type Storage struct {
	Kind  string `json:"kind"`
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// Merge configures the T-100 merge pipeline.
type Merge struct {
	// Inputs are the yearly carrier-summary CSV paths, order preserved.
	Inputs []string `json:"inputs"`

	// Out is the output CSV path.
	Out string `json:"out"`

	// FilterAA keeps only AA rows between the configured airports.
	FilterAA bool `json:"filter-aa"`

	// Airports is the hub set used with FilterAA.
	Airports []string `json:"airports"`

	// ProjectMinimal reduces output to UNIQUE_CARRIER, ORIGIN, DEST, YEAR,
	// MONTH (plus AIRCRAFT_TYPE when the input carries it).
	ProjectMinimal bool `json:"project-minimal"`

	// DedupeKeys is the ordered composite key for de-duplication; empty
	// means no dedupe stage.
	DedupeKeys []string `json:"dedupe"`

	// AircraftTypes is the path of the aircraft-type reference CSV; when
	// set, a DESCRIPTION column is attached by code lookup.
	AircraftTypes string `json:"aircraft-types"`

	// Latin1 decodes inputs as ISO 8859-1.
	Latin1 bool `json:"latin1"`

	Storage Storage `json:"storage"`
}

// FinalMerge configures the enrichment join of the flight test extract with
// the merged T-100 summary.
type FinalMerge struct {
	// AATest is the flight-level test extract (fixed 13-column schema).
	AATest string `json:"aa_test"`

	// Merged is the merged T-100 summary produced by the merge pipeline.
	Merged string `json:"merged"`

	// Out is the enriched output CSV path.
	Out string `json:"out"`

	// AircraftTypes optionally recovers missing AIRCRAFT_TYPE codes from
	// DESCRIPTION via the reference table.
	AircraftTypes string `json:"aircraft-types"`

	// FilterHubs keeps only flights between Hubs.
	FilterHubs bool     `json:"filter-hubs"`
	Hubs       []string `json:"hubs"`

	Storage Storage `json:"storage"`
}

// Positions configures the historical position-query pipeline.
type Positions struct {
	// Token authenticates against the position API. Falls back to the
	// FR24_API_TOKEN environment variable when empty.
	Token string `json:"token"`

	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Interval time.Duration `json:"interval"`

	// Routes are origin-destination pairs like "JFK-LAX", queried in
	// batches of BatchSize per request.
	Routes    []string `json:"routes"`
	BatchSize int      `json:"batch-size"`

	// Bounds restricts results to a lat/lon box "north,south,west,east".
	Bounds      string `json:"bounds"`
	OperatingAs string `json:"operating-as"`
	PaintedAs   string `json:"painted-as"`
	Limit       int    `json:"limit"`

	OutJSON string `json:"out-json"`
	OutCSV  string `json:"out-csv"`

	// Dedupe drops repeated (fr24_id, timestamp) records across batches.
	Dedupe bool `json:"dedupe"`
}

// Weather configures the weather-attachment pipeline.
type Weather struct {
	Flights string `json:"flights"`
	Obs     string `json:"weather"`
	Out     string `json:"out"`
}

// DecodeStrict decodes a JSON config into v, rejecting unknown keys so a
// typo'd option fails at startup instead of being silently ignored.
func DecodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
