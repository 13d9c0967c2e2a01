package repository

import "github.com/facturino/ledger-api/internal/domain/entity"

// WarehouseRepository defines the persistence port for warehouses (DIP).
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
	ListByCompany(companyID string) ([]*entity.Warehouse, error)
	// GetOrCreateDefault returns the company's default warehouse, creating
	// it when the company has none yet.
	GetOrCreateDefault(companyID string) (*entity.Warehouse, error)
}
