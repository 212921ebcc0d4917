package table

import (
	"fmt"
	"strings"
)

// MissingColumnError reports a column a stage needs but the schema lacks.
// It is always raised before any row is processed.
type MissingColumnError struct {
	Column string
	Have   []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q (have: %s)", e.Column, strings.Join(e.Have, ", "))
}

// SchemaMismatchError reports that an input file's column set differs from
// the first file in a multi-file load.
type SchemaMismatchError struct {
	File string
	Want []string
	Got  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: want columns [%s], got [%s]",
		e.File, strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}

// RowParseError describes a single unusable row. Loaders treat it as
// soft-fail: the row is skipped, counted, and the run continues.
type RowParseError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *RowParseError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s:%d: column %q: %v", e.File, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }
