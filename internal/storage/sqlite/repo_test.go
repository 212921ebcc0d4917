package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "flights.db")
	repo, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn, Table: "flights"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)
	return repo, dsn
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{Table: "t"}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestCopyFrom_RoundTrip(t *testing.T) {
	t.Parallel()

	repo, dsn := openRepo(t)
	ctx := context.Background()

	if err := repo.Exec(ctx, `CREATE TABLE flights ("ORIGIN" TEXT, "DEST" TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	n, err := repo.CopyFrom(ctx, []string{"ORIGIN", "DEST"}, [][]any{
		{"JFK", "LAX"},
		{"DFW", nil},
	})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM flights`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	var dest sql.NullString
	if err := db.QueryRow(`SELECT "DEST" FROM flights WHERE "ORIGIN" = 'DFW'`).Scan(&dest); err != nil {
		t.Fatal(err)
	}
	if dest.Valid {
		t.Fatalf("expected NULL dest, got %q", dest.String)
	}
}

func TestCopyFrom_RowLengthMismatch(t *testing.T) {
	t.Parallel()

	repo, _ := openRepo(t)
	ctx := context.Background()
	if err := repo.Exec(ctx, `CREATE TABLE flights ("ORIGIN" TEXT, "DEST" TEXT)`); err != nil {
		t.Fatal(err)
	}

	_, err := repo.CopyFrom(ctx, []string{"ORIGIN", "DEST"}, [][]any{{"JFK"}})
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestCopyFrom_EmptyRows(t *testing.T) {
	t.Parallel()

	repo, _ := openRepo(t)
	n, err := repo.CopyFrom(context.Background(), []string{"a"}, nil)
	if err != nil || n != 0 {
		t.Fatalf("CopyFrom(nil) = (%d, %v)", n, err)
	}
}
