package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source types for stock movements (value object conceptual).
const (
	SourceInitial     = "initial"      // opening balance
	SourceBillItem    = "bill_item"    // purchase line
	SourceInvoiceItem = "invoice_item" // sale line
	SourceAdjustment  = "adjustment"   // manual correction or reversal
	SourceTransferOut = "transfer_out" // warehouse transfer, origin side
	SourceTransferIn  = "transfer_in"  // warehouse transfer, destination side
)

// StockMovement is one row of the append-only stock ledger per
// (company, warehouse, item). Quantity and TotalCost are signed: positive for
// IN, negative for OUT. BalanceQuantity/BalanceValue snapshot the balance
// *after* this movement; the WAC is BalanceValue/BalanceQuantity and is never
// stored separately. Rows are never updated or deleted; corrections are
// posted as new movements.
type StockMovement struct {
	ID              string
	CompanyID       string
	WarehouseID     string
	ItemID          string
	SourceType      string  // see Source* constants
	SourceID        *string // originating bill/invoice line, nil for manual
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal // cost basis per unit; for OUT rows the WAC frozen at posting time
	TotalCost       decimal.Decimal
	MovementDate    time.Time
	Note            string
	BalanceQuantity decimal.Decimal
	BalanceValue    decimal.Decimal
	CreatedAt       time.Time
	CreatedBy       string // UserID, empty for system postings
}

// IsIn reports whether the movement increases stock.
func (m *StockMovement) IsIn() bool {
	return m.Quantity.GreaterThan(decimal.Zero)
}
