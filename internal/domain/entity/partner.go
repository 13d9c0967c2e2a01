package entity

import "time"

// KYC states for a partner.
const (
	KycPending  = "pending"
	KycVerified = "verified"
	KycRejected = "rejected"
)

// Partner represents an affiliate partner (accountant or reseller) in the
// affiliate program. The partner's tier is derived from the owning user's
// subscription, never stored here.
type Partner struct {
	ID        string
	UserID    string
	Name      string
	IsActive  bool
	KycStatus string // pending, verified, rejected
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartnerCompanyLink links a partner to a client company. A company has at
// most one active link; commissions resolve through it.
type PartnerCompanyLink struct {
	ID        string
	PartnerID string
	CompanyID string
	IsPrimary bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
