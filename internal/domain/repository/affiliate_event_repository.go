package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/domain/entity"
)

// AffiliateEventRepository defines the persistence port for the commission
// ledger. Create must surface domain.ErrDuplicate on a unique-key violation
// so a raced double recording aborts the surrounding transaction.
type AffiliateEventRepository interface {
	Create(ev *entity.AffiliateEvent) error
	// FindByCompanyMonth returns the event for (company, monthRef, eventType)
	// belonging to any partner, nil when none exists.
	FindByCompanyMonth(companyID, monthRef, eventType string) (*entity.AffiliateEvent, error)
	// FindByCompanyType returns the first event of a type for a company
	// regardless of month (bounty dedup), nil when none.
	FindByCompanyType(companyID, eventType string) (*entity.AffiliateEvent, error)
	// FindByPartnerType returns the first event of a type for a partner
	// (partner bounty dedup), nil when none.
	FindByPartnerType(partnerID, eventType string) (*entity.AffiliateEvent, error)
	// ListRecurringForClawback returns the not-yet-clawed recurring events
	// for (company, monthRef).
	ListRecurringForClawback(companyID, monthRef string) ([]*entity.AffiliateEvent, error)
	MarkClawedBack(id string, reason *string, at time.Time) error

	// Partner reporting aggregates; clawed-back events are excluded.
	MonthlyTotal(partnerID, monthRef string) (decimal.Decimal, error)
	PendingPayout(partnerID string) (decimal.Decimal, error)
	TotalEarned(partnerID string) (decimal.Decimal, error)
}
