// Registration of the SQLite backend with the storage factory. Callers
// never import this package directly; storage/all pulls it in for the
// init side effect.
package sqlite

import (
	"context"

	"flightetl/internal/storage"
)

// wrappedRepo adapts *Repository to storage.Repository, turning the
// cleanup function from NewRepository into a Close method.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := NewRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
