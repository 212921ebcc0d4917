package fr24

import (
	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// Columns is the flattened column order for position records, matching the
// field order of the API payload.
var Columns = []string{
	"fr24_id", "flight", "callsign",
	"lat", "lon", "track", "alt", "gspeed", "vspeed",
	"squawk", "timestamp", "source", "hex", "type", "reg",
	"painted_as", "operating_as",
	"orig_iata", "orig_icao", "dest_iata", "dest_icao", "eta",
}

// ToTable flattens position records into a tabular form suitable for the
// CSV writer and storage sinks.
func ToTable(positions []Position) *table.Table {
	t := table.New(Columns)
	for _, p := range positions {
		t.Rows = append(t.Rows, records.Record{
			"fr24_id":      p.FR24ID,
			"flight":       p.Flight,
			"callsign":     p.Callsign,
			"lat":          p.Lat,
			"lon":          p.Lon,
			"track":        p.Track,
			"alt":          p.Alt,
			"gspeed":       p.GSpeed,
			"vspeed":       p.VSpeed,
			"squawk":       p.Squawk,
			"timestamp":    p.Timestamp,
			"source":       p.Source,
			"hex":          p.Hex,
			"type":         p.Type,
			"reg":          p.Reg,
			"painted_as":   p.PaintedAs,
			"operating_as": p.OperatingAs,
			"orig_iata":    p.OrigIATA,
			"orig_icao":    p.OrigICAO,
			"dest_iata":    p.DestIATA,
			"dest_icao":    p.DestICAO,
			"eta":          p.ETA,
		})
	}
	return t
}
