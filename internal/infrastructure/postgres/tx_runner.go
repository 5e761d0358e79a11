package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/biztracker/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// maxTxAttempts intentos ante deadlock o fallo de serialización.
const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run ejecuta fn con repositorios atados a una transacción READ COMMITTED.
// Compras y ventas concurrentes bloquean los mismos ítems (FOR UPDATE); si PostgreSQL
// aborta la transacción por deadlock (40P01) o serialización (40001) se repite fn completa.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transacción abortada tras %d intentos: %w", maxTxAttempts, err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos ports.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40P01" || pgErr.Code == "40001"
}

// NewRepositories agrupa los repositorios sobre q (pool o tx).
func NewRepositories(q Querier) ports.Repositories {
	return ports.Repositories{
		Items:         NewItemRepository(q),
		Purchases:     NewPurchaseRepository(q),
		Sales:         NewSaleRepository(q),
		Assets:        NewAssetRepository(q),
		Relationships: NewRelationshipRepository(q),
	}
}
