package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturino/ledger-api/internal/application/commission"
	"github.com/facturino/ledger-api/internal/application/inventory"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

// Ensure the runners satisfy the application ports.
var _ commission.TxRunner = (*CommissionTxRunner)(nil)
var _ inventory.TxRunner = (*StockTxRunner)(nil)

// CommissionTxRunner runs commission callbacks inside a PostgreSQL
// transaction, so the direct and upline rows land or roll back together.
type CommissionTxRunner struct {
	pool *pgxpool.Pool
}

// NewCommissionTxRunner builds the runner with the pool.
func NewCommissionTxRunner(pool *pgxpool.Pool) *CommissionTxRunner {
	return &CommissionTxRunner{pool: pool}
}

// Run begins a transaction, executes fn with an event repository bound to
// the tx, and commits or rolls back.
func (r *CommissionTxRunner) Run(ctx context.Context, fn func(events repository.AffiliateEventRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewAffiliateEventRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// StockTxRunner runs stock ledger callbacks inside a PostgreSQL transaction.
// The FOR UPDATE lock taken by LatestForUpdate inside the callback holds
// until commit, serializing writers per (item, warehouse).
type StockTxRunner struct {
	pool *pgxpool.Pool
}

// NewStockTxRunner builds the runner with the pool.
func NewStockTxRunner(pool *pgxpool.Pool) *StockTxRunner {
	return &StockTxRunner{pool: pool}
}

// Run begins a transaction, executes fn with a movement repository bound to
// the tx, and commits or rolls back.
func (r *StockTxRunner) Run(ctx context.Context, fn func(movements repository.StockMovementRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
