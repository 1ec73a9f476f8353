package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fooddelivery/internal/ports"
)

type txKey struct{}

// UnitOfWork runs functions inside a pgx transaction, carrying the tx in the
// context so repositories can pick it up.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork constructs a UnitOfWork over the pool.
func NewUnitOfWork(pool *pgxpool.Pool) ports.UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// WithinTx begins a transaction, calls fn with the tx bound to the context,
// and commits or rolls back depending on fn's result.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// MustTxFromContext extracts the transaction placed by WithinTx.
func MustTxFromContext(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, errors.New("postgres: no transaction in context")
	}
	return tx, nil
}
