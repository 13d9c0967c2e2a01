package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a product or service line in a company's catalogue.
// TrackQuantity selects inventory items (stock ledger, WAC costing) versus
// untracked service items (revenue only, no COGS).
type Item struct {
	ID              string
	CompanyID       string
	SKU             string // unique per company
	Name            string
	Description     string
	Price           decimal.Decimal  // sale price
	TaxRate         decimal.Decimal  // MK VAT: 0, 0.05, 0.10, 0.18
	TrackQuantity   bool
	MinimumQuantity *decimal.Decimal // low-stock threshold, nil = no alert
	UnitMeasure     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
