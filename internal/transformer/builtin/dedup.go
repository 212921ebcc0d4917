package builtin

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// DeDup drops rows whose composite key has been seen before, keeping the
// first occurrence. Surviving rows stay in first-occurrence order; the pass
// is O(n) over rows with one seen-set entry per distinct key.
//
// Keys are the joined key-column values separated by an unlikely byte
// ("\x1f"), with nil rendered as "\x00" so null equality participates in
// duplicate detection. The seen set is keyed by the xxh3 hash of that
// string; the full key strings are kept per hash bucket so a hash collision
// can never silently drop a distinct row.
type DeDup struct {
	Keys []string
}

func (d DeDup) Apply(in *table.Table) (*table.Table, error) {
	if len(d.Keys) == 0 {
		return in, nil
	}
	if err := in.RequireColumns(d.Keys...); err != nil {
		return nil, err
	}

	seen := make(map[uint64][]string)
	out := table.New(in.Columns)
	for _, r := range in.Rows {
		key := keyOf(r, d.Keys)
		h := xxh3.HashString(key)
		bucket := seen[h]
		dup := false
		for _, k := range bucket {
			if k == key {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(bucket, key)
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

func keyOf(r records.Record, keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch v := r[k].(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(v)
		default:
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
