package repository

import (
	"time"

	"github.com/facturino/ledger-api/internal/domain/entity"
)

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	WarehouseID string // empty = all warehouses
	From        *time.Time
	To          *time.Time
	Limit       int // 0 = repository default
}

// StockMovementRepository defines the persistence port for the append-only
// stock ledger. Used inside transactions to guarantee consistency.
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// Latest returns the most recent movement for (company, warehouse, item),
	// nil when the ledger is empty.
	Latest(companyID, warehouseID, itemID string) (*entity.StockMovement, error)
	// LatestForUpdate is Latest with a row lock (SELECT FOR UPDATE), so
	// concurrent writers against the same (item, warehouse) serialize on the
	// latest balance row.
	LatestForUpdate(companyID, warehouseID, itemID string) (*entity.StockMovement, error)
	// LatestPerWarehouse returns the latest movement of the item in each
	// warehouse that has any, for summing stock across warehouses.
	LatestPerWarehouse(companyID, itemID string) ([]*entity.StockMovement, error)
	// FindBySource returns the movement linked to an originating line
	// (e.g. source_type=invoice_item, source_id=<line id>), nil when none.
	FindBySource(companyID, sourceType, sourceID string) (*entity.StockMovement, error)
	History(companyID, itemID string, f MovementFilter) ([]*entity.StockMovement, error)
	// ListAllOrdered streams the full ledger of a company in posting order,
	// for replay verification.
	ListAllOrdered(companyID string) ([]*entity.StockMovement, error)
}
