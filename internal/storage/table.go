package storage

import (
	"context"

	"flightetl/internal/table"
)

// writeBatchSize is the row count per bulk insert when landing a table.
const writeBatchSize = 5000

// WriteTable lands an in-memory table in the repository: the destination
// table is created when absent, then rows stream through the batched
// loader in the table's declared column order. Cells are stringified so
// the all-TEXT schema from EnsureTable always accepts them; nil stays nil.
func WriteTable(ctx context.Context, repo Repository, tableName string, t *table.Table) (int64, error) {
	if err := EnsureTable(ctx, repo, tableName, t.Columns); err != nil {
		return 0, err
	}

	in := make(chan []any, writeBatchSize)
	go func() {
		defer close(in)
		for _, r := range t.Rows {
			row := make([]any, len(t.Columns))
			for i, c := range t.Columns {
				if s, ok := r.String(c); ok {
					row[i] = s
				}
			}
			select {
			case in <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	return LoadBatches(ctx, t.Columns, in, writeBatchSize, repo.CopyFrom)
}
