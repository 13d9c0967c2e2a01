package entity

import "time"

// Warehouse represents a stock location of a company.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
