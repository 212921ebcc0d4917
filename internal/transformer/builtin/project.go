package builtin

import (
	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// Project restricts a table to exactly Columns, in that order. Every
// requested column is validated against the input schema up front, so a
// projection never fails mid-stream.
type Project struct {
	Columns []string

	// Rename optionally maps source column names to output names, applied
	// after selection. Used to canonicalize e.g. OP_UNIQUE_CARRIER to
	// UNIQUE_CARRIER in the minimal projection.
	Rename map[string]string
}

func (p Project) Apply(in *table.Table) (*table.Table, error) {
	if err := in.RequireColumns(p.Columns...); err != nil {
		return nil, err
	}

	outCols := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		if n, ok := p.Rename[c]; ok && n != "" {
			outCols[i] = n
		} else {
			outCols[i] = c
		}
	}

	out := table.New(outCols)
	out.Rows = make([]records.Record, 0, len(in.Rows))
	for _, r := range in.Rows {
		row := make(records.Record, len(p.Columns))
		for i, src := range p.Columns {
			row[outCols[i]] = r[src]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
