package repository

import "github.com/facturino/ledger-api/internal/domain/entity"

// InvoiceRepository defines the read port for invoices. The profit engine
// only reads; invoice lifecycle belongs to the billing surface.
type InvoiceRepository interface {
	GetByID(id string) (*entity.Invoice, error)
	ItemsByInvoice(invoiceID string) ([]*entity.InvoiceItem, error)
}
