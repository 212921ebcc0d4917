// Package records defines the dynamic row model shared by every pipeline
// stage. A Record is an untyped map from column name to cell value; values
// are strings as loaded from CSV, ints after coercion, or nil for missing
// cells. Typed access helpers perform only minimal coercion and leave
// anything ambiguous to the caller.
package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a single row keyed by column name. A nil value represents an
// explicit null; a missing key means the column is not part of the row's
// schema at all.
type Record map[string]any

// Clone returns a shallow copy of the record. Cell values are immutable
// scalars in this pipeline, so a shallow copy is sufficient for the
// copy-on-transform discipline the stages follow.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the cell value for key rendered as a string, with ok=false
// when the key is absent or the value is nil. Non-string scalars are
// formatted with fmt.Sprint so coerced ints render the way the CSV writer
// will emit them.
func (r Record) String(key string) (string, bool) {
	v, exists := r[key]
	if !exists || v == nil {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Int returns the cell value for key as an int. String cells are parsed;
// ok=false when the key is absent, nil, or unparseable.
func (r Record) Int(key string) (int, bool) {
	v, exists := r[key]
	if !exists || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Empty reports whether the cell for key is absent, nil, or an empty string.
func (r Record) Empty(key string) bool {
	v, exists := r[key]
	if !exists || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr {
		return s == ""
	}
	return false
}
