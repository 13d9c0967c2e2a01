package inventory

import (
	"context"

	"github.com/facturino/ledger-api/internal/domain/repository"
)

// TxRunner executes a function inside a DB transaction, passing a movement
// repository bound to that tx. The row lock taken by LatestForUpdate inside
// the callback serializes writers per (item, warehouse) until commit, so the
// balance fold never reads a stale predecessor.
type TxRunner interface {
	Run(ctx context.Context, fn func(movements repository.StockMovementRepository) error) error
}
