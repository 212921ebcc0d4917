// Package builtin contains the reusable table transformers of the merge
// pipelines: row filtering, column projection, keyed de-duplication, and the
// aircraft-type enrichment join.
package builtin

import (
	"strings"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// Filter keeps rows satisfying Pred, preserving input order. A predicate
// that cannot evaluate (missing column, nil cell) must return false; rows
// are excluded rather than erroring out.
type Filter struct {
	Pred func(records.Record) bool
}

func (f Filter) Apply(in *table.Table) (*table.Table, error) {
	out := table.New(in.Columns)
	for _, r := range in.Rows {
		if f.Pred(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out, nil
}

// CarrierFilter builds a Filter keeping rows whose carrier column equals
// code (case-insensitive, trimmed). When airports is non-empty, both origin
// and destination must additionally be members of the set; this is the
// hub-restriction used by the AA analysis runs.
func CarrierFilter(carrierCol, code string, originCol, destCol string, airports []string) Filter {
	want := strings.ToUpper(strings.TrimSpace(code))
	var hubs map[string]struct{}
	if len(airports) > 0 {
		hubs = make(map[string]struct{}, len(airports))
		for _, a := range airports {
			hubs[strings.ToUpper(strings.TrimSpace(a))] = struct{}{}
		}
	}

	return Filter{Pred: func(r records.Record) bool {
		c, ok := r.String(carrierCol)
		if !ok || strings.ToUpper(strings.TrimSpace(c)) != want {
			return false
		}
		if hubs == nil {
			return true
		}
		return inSet(r, originCol, hubs) && inSet(r, destCol, hubs)
	}}
}

// AirportFilter keeps rows whose origin and destination are both in the
// given set, independent of carrier.
func AirportFilter(originCol, destCol string, airports []string) Filter {
	hubs := make(map[string]struct{}, len(airports))
	for _, a := range airports {
		hubs[strings.ToUpper(strings.TrimSpace(a))] = struct{}{}
	}
	return Filter{Pred: func(r records.Record) bool {
		return inSet(r, originCol, hubs) && inSet(r, destCol, hubs)
	}}
}

func inSet(r records.Record, col string, set map[string]struct{}) bool {
	v, ok := r.String(col)
	if !ok {
		return false
	}
	_, member := set[strings.ToUpper(strings.TrimSpace(v))]
	return member
}
