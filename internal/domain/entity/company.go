package entity

import "time"

// Company represents an organization/tenant of the system (multi-tenant, North Macedonia focus).
type Company struct {
	ID        string
	Name      string
	TaxNumber string // Macedonian EDB (tax number), 13 digits
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaaS modules that can be toggled per company (must match the CHECK on company_modules).
const (
	ModuleStock     = "stock"
	ModuleBilling   = "billing"
	ModuleAffiliate = "affiliate"
	ModuleReports   = "reports"
)

// CompanyModule represents the activation of a SaaS module for a company.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string // see Module* constants
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = no expiry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
