package repository

import "github.com/facturino/ledger-api/internal/domain/entity"

// ItemRepository defines the persistence port for catalogue items (DIP).
type ItemRepository interface {
	GetByID(id string) (*entity.Item, error)
	GetByCompanyAndSKU(companyID, sku string) (*entity.Item, error)
	// ListTracked returns the company's inventory-tracked items.
	ListTracked(companyID string) ([]*entity.Item, error)
}
