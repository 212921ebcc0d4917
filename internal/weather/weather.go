package weather

import (
	"fmt"
	"log"
	"strings"
	"time"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// obsKey addresses one observation bucket: an upper-cased station code and
// a quarter-hour timestamp.
type obsKey struct {
	station string
	at      time.Time
}

// Map holds observations indexed by (station, quarter hour). Columns lists
// the observation fields carried into flight rows, in source order.
type Map struct {
	entries map[obsKey]records.Record
	Columns []string
}

// BuildMap indexes an observation table by station and rounded timestamp.
// The table must carry "station" and "valid" columns; rows whose valid
// time does not parse are dropped. The first observation in a bucket wins.
func BuildMap(obs *table.Table) (*Map, error) {
	if err := obs.RequireColumns("station", "valid"); err != nil {
		return nil, fmt.Errorf("weather observations: %w", err)
	}

	var cols []string
	for _, c := range obs.Columns {
		if c == "station" || c == "valid" {
			continue
		}
		cols = append(cols, c)
	}

	m := &Map{
		entries: make(map[obsKey]records.Record, len(obs.Rows)),
		Columns: cols,
	}
	dropped := 0
	for _, r := range obs.Rows {
		station, _ := r.String("station")
		station = strings.ToUpper(strings.TrimSpace(station))
		validRaw, _ := r.String("valid")
		valid, ok := ParseDate(validRaw)
		if !ok {
			dropped++
			continue
		}
		k := obsKey{station: station, at: RoundToQuarter(valid)}
		if _, exists := m.entries[k]; exists {
			continue
		}
		m.entries[k] = r
	}
	if dropped > 0 {
		log.Printf("weather: dropped %d observations with unparseable valid time", dropped)
	}
	return m, nil
}

// Len returns the number of indexed (station, quarter hour) buckets.
func (m *Map) Len() int { return len(m.entries) }

// Lookup returns the observation for station at the quarter hour nearest t.
func (m *Map) Lookup(station string, t time.Time) (records.Record, bool) {
	r, ok := m.entries[obsKey{
		station: strings.ToUpper(strings.TrimSpace(station)),
		at:      RoundToQuarter(t),
	}]
	return r, ok
}

// AttachResult counts match outcomes of one Attach run.
type AttachResult struct {
	Rows       int
	DepMatched int
	ArrMatched int
}

// Attach adds the observation columns to flights twice, prefixed DEP_ and
// ARR_: departure weather looked up at (ORIGIN, DEP_TIME) and arrival
// weather at (DEST, ARR_TIME), each resolved against the flight's date.
// Rows whose clock or date does not parse keep nil weather cells.
func Attach(flights *table.Table, m *Map) (*table.Table, AttachResult, error) {
	if err := flights.RequireColumns("ORIGIN", "DEST"); err != nil {
		return nil, AttachResult{}, fmt.Errorf("flights: %w", err)
	}

	out := flights.Clone()
	for _, wc := range m.Columns {
		out.EnsureColumn("DEP_" + wc)
		out.EnsureColumn("ARR_" + wc)
	}

	res := AttachResult{Rows: len(out.Rows)}
	for _, r := range out.Rows {
		origin, _ := r.String("ORIGIN")
		dest, _ := r.String("DEST")

		if at, ok := flightTime(r, "DEP_TIME"); ok {
			if w, found := m.Lookup(origin, at); found {
				res.DepMatched++
				for _, wc := range m.Columns {
					r["DEP_"+wc] = w[wc]
				}
			}
		}
		if at, ok := flightTime(r, "ARR_TIME"); ok {
			if w, found := m.Lookup(dest, at); found {
				res.ArrMatched++
				for _, wc := range m.Columns {
					r["ARR_"+wc] = w[wc]
				}
			}
		}
	}

	log.Printf("weather: attached to %d rows (dep matched %d, arr matched %d)",
		res.Rows, res.DepMatched, res.ArrMatched)
	return out, res, nil
}

// flightTime resolves the wall-clock moment of a flight event: the named
// clock column combined with FL_DATE, or with YEAR/MONTH (day 1) when the
// row has no parseable date.
func flightTime(r records.Record, clockCol string) (time.Time, bool) {
	raw, _ := r.String(clockCol)
	h, min, ok := ParseClock(raw)
	if !ok {
		return time.Time{}, false
	}

	if dateRaw, has := r.String("FL_DATE"); has {
		if d, parsed := ParseDate(dateRaw); parsed {
			return time.Date(d.Year(), d.Month(), d.Day(), h, min, 0, 0, time.UTC), true
		}
	}
	year, okY := r.Int("YEAR")
	month, okM := r.Int("MONTH")
	if !okY || !okM || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, h, min, 0, 0, time.UTC), true
}
