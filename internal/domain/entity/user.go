package entity

import "time"

// Valid roles for User.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleSales      = "sales"
)

// Subscription tiers. The tier lives on the user owning the subscription and
// drives the partner's solo commission rate.
const (
	TierFree = "free"
	TierPlus = "plus"
)

// User represents a system user (belongs to a Company).
type User struct {
	ID               string
	CompanyID        string
	Email            string
	PasswordHash     string // bcrypt hash, never plaintext past persistence
	Name             string
	Role             string // admin, accountant, sales
	Status           string // active, inactive, suspended
	SubscriptionTier string // free, plus
	ReferrerUserID   *string // the user who referred this one, nil if organic
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
