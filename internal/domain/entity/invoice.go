package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceDraft  = "draft"
	InvoiceSent   = "sent"
	InvoicePaid   = "paid"
	InvoiceVoided = "voided"
)

// Invoice represents an invoice header. Creation and lifecycle belong to the
// billing surface; the profit engine only reads them.
type Invoice struct {
	ID         string
	CompanyID  string
	CustomerID string
	Number     string
	Date       time.Time
	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceItem represents one line of an invoice. ItemID is nil for free-text
// lines; WarehouseID is nil when the company's default warehouse applies.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	CompanyID   string
	ItemID      *string
	WarehouseID *string
	Name        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal // net line total, the revenue figure for profit
}
