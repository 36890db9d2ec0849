package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"
)

/*
BaseVersionedRepo holds the DB connection, a SELECT‑by‑ID statement,
and a scanner for a single entity type T.  It gives you:

  - GetByID(ctx, id string) (T, error)
  - UpdateWithRetry(ctx, id, mutate, updateIfVersion)

hydrate, when set, loads child rows after the scan (lease tenants).
*/
type BaseVersionedRepo[T EntityWithVersion] struct {
	db         DB
	selectByID string
	scan       func(row pgx.Row) (T, error)
	hydrate    func(ctx context.Context, db DB, entity T) error
}

// NewBaseRepo is called by concrete repositories.
func NewBaseRepo[T EntityWithVersion](
	db DB,
	selectByID string,
	scan func(pgx.Row) (T, error),
	hydrate func(context.Context, DB, T) error,
) *BaseVersionedRepo[T] {
	return &BaseVersionedRepo[T]{db: db, selectByID: selectByID, scan: scan, hydrate: hydrate}
}

// -------------------------- public helpers --------------------------

// GetByID returns pgx.ErrNoRows when nothing matches.
func (b *BaseVersionedRepo[T]) GetByID(ctx context.Context, id string) (T, error) {
	entity, err := b.scan(b.db.QueryRow(ctx, b.selectByID, id))
	if err != nil {
		var zero T
		return zero, err
	}
	if b.hydrate != nil {
		if err := b.hydrate(ctx, b.db, entity); err != nil {
			var zero T
			return zero, err
		}
	}
	return entity, nil
}

// UpdateWithRetry wires the generic optimistic‑locking loop.
func (b *BaseVersionedRepo[T]) UpdateWithRetry(
	ctx context.Context,
	id string,
	mutate func(T) error,
	updateIfVersion UpdateIfVersionFunc[T],
) error {
	return WithRetry(
		ctx,
		defaultMaxRetries,
		id,
		b.GetByID,
		updateIfVersion,
		mutate,
	)
}
