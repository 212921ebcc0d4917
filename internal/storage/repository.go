// Package storage contains the storage-agnostic contracts used to land
// pipeline output in a database instead of (or alongside) a CSV file.
// Concrete backends register themselves by kind; callers open repositories
// through the factory and stay backend-agnostic.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string

	// Table is the destination table name, optionally schema-qualified.
	Table string
}

// Repository is the write surface a pipeline needs from a database.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to columns into the configured
	// table, returning the number of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs an arbitrary statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection resources.
	Close()
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under the given kind. Backends call
// this from init; importing storage/all pulls in every built-in backend.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("storage: duplicate registration for kind %q", kind))
	}
	factories[kind] = f
}

// New opens a Repository for cfg.Kind. Unknown kinds list the registered
// alternatives in the error.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)",
			cfg.Kind, strings.Join(Kinds(), ", "))
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("storage: table must not be empty")
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EnsureTable creates the destination table when absent. Every column is
// TEXT: the pipelines treat cells as opaque strings and typing belongs to
// downstream consumers.
func EnsureTable(ctx context.Context, repo Repository, tableName string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("storage: EnsureTable: no columns")
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteFQN(tableName), strings.Join(defs, ", "))
	if err := repo.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("storage: ensure table %s: %w", tableName, err)
	}
	return nil
}

// quoteIdent double-quotes an identifier; valid for both SQLite and
// Postgres.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name like "public.flights".
func quoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
