// Package transformer defines the stage contract for table-to-table
// transformations and a Chain that runs stages in order. Each stage produces
// a new Table; inputs are never mutated, so a failed chain leaves every
// intermediate result intact for diagnostics.
package transformer

import "flightetl/internal/table"

// Transformer turns one table into another. Validation errors (missing
// columns, ambiguous reference data) surface here before any row work.
type Transformer interface {
	Apply(*table.Table) (*table.Table, error)
}

// Chain is an ordered list of transformers applied left to right. The first
// error aborts the chain.
type Chain []Transformer

func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for _, t := range c {
		var err error
		out, err = t.Apply(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
