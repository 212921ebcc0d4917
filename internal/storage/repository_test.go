package storage

import (
	"context"
	"strings"
	"sync"
	"testing"

	"flightetl/internal/table"
	"flightetl/pkg/records"
)

// fakeRepo records every statement and batch it receives.
type fakeRepo struct {
	mu      sync.Mutex
	execs   []string
	batches [][][]any
	columns []string
}

func (f *fakeRepo) CopyFrom(_ context.Context, columns []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.columns = columns
	cp := make([][]any, len(rows))
	copy(cp, rows)
	f.batches = append(f.batches, cp)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Close() {}

func TestNew_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "oracle", Table: "x"})
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("expected unknown-kind error, got %v", err)
	}
}

func TestEnsureTable_DDL(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	if err := EnsureTable(context.Background(), repo, "public.flights", []string{"ORIGIN", "DEST"}); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if len(repo.execs) != 1 {
		t.Fatalf("expected one DDL statement, got %v", repo.execs)
	}
	ddl := repo.execs[0]
	want := `CREATE TABLE IF NOT EXISTS "public"."flights" ("ORIGIN" TEXT, "DEST" TEXT)`
	if ddl != want {
		t.Fatalf("ddl = %q, want %q", ddl, want)
	}
}

func TestEnsureTable_NoColumns(t *testing.T) {
	t.Parallel()

	if err := EnsureTable(context.Background(), &fakeRepo{}, "t", nil); err == nil {
		t.Fatalf("expected error for empty column list")
	}
}

func TestLoadBatches_BatchBoundaries(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 5)
	for i := 0; i < 5; i++ {
		in <- []any{i}
	}
	close(in)

	var sizes []int
	n, err := LoadBatches(context.Background(), []string{"n"}, in, 2,
		func(_ context.Context, _ []string, rows [][]any) (int64, error) {
			sizes = append(sizes, len(rows))
			return int64(len(rows)), nil
		})
	if err != nil {
		t.Fatalf("LoadBatches: %v", err)
	}
	if n != 5 {
		t.Fatalf("total = %d, want 5", n)
	}
	// 2 + 2 + final flush of 1.
	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Fatalf("batch sizes = %v", sizes)
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	tbl := table.New([]string{"ORIGIN", "DEST", "SEATS"})
	tbl.Append(records.Record{"ORIGIN": "JFK", "DEST": "LAX", "SEATS": 180})
	tbl.Append(records.Record{"ORIGIN": "DFW", "DEST": "ORD", "SEATS": nil})

	repo := &fakeRepo{}
	n, err := WriteTable(context.Background(), repo, "flights", tbl)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}
	if len(repo.execs) != 1 || !strings.HasPrefix(repo.execs[0], "CREATE TABLE IF NOT EXISTS") {
		t.Fatalf("expected table creation, got %v", repo.execs)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 2 {
		t.Fatalf("batches = %v", repo.batches)
	}

	first := repo.batches[0][0]
	if first[0] != "JFK" || first[2] != "180" {
		t.Fatalf("row 0 = %v", first)
	}
	// nil cells stay nil, not "".
	if repo.batches[0][1][2] != nil {
		t.Fatalf("nil cell not preserved: %v", repo.batches[0][1])
	}
}
