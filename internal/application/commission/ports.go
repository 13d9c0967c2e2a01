package commission

import (
	"context"

	"github.com/facturino/ledger-api/internal/domain/repository"
)

// TxRunner executes a function inside a DB transaction, passing an event
// repository bound to that tx. Guarantees the direct and upline inserts are
// atomic: a crash or a raced duplicate aborts both.
type TxRunner interface {
	Run(ctx context.Context, fn func(events repository.AffiliateEventRepository) error) error
}
