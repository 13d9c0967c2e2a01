package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliate event types.
const (
	EventRecurringCommission = "recurring_commission"
	EventCompanyBounty       = "company_bounty"
	EventPartnerBounty       = "partner_bounty"
)

// AffiliateEvent is an immutable row in the commission ledger. Created once
// per (company, month, event type, partner); only the payout subsystem and
// clawback touch it afterwards, nothing is ever deleted.
type AffiliateEvent struct {
	ID                 string
	AffiliatePartnerID string
	UplinePartnerID    *string // set on the direct event when an upline split applied
	CompanyID          string
	EventType          string // see Event* constants
	Amount             decimal.Decimal
	UplineAmount       *decimal.Decimal // upline share recorded on the direct event, nil otherwise
	MonthRef           string           // YYYY-MM, dedup key with company and event type
	ExternalRef        *string          // payment processor reference, logged only
	PaidAt             *time.Time
	PayoutID           *string
	IsClawedBack       bool
	ClawbackReason     *string
	ClawedBackAt       *time.Time
	CreatedAt          time.Time
}
