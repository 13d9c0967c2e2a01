package repository

import "github.com/facturino/ledger-api/internal/domain/entity"

// PartnerRepository defines the persistence port for affiliate partners and
// their company links (DIP).
type PartnerRepository interface {
	GetByID(id string) (*entity.Partner, error)
	// GetActiveByUserID resolves the active partner owned by a user,
	// nil when the user has none. Used for upline resolution.
	GetActiveByUserID(userID string) (*entity.Partner, error)
	// GetActiveLinkByCompany returns the company's active partner link,
	// nil when the company has no linked partner.
	GetActiveLinkByCompany(companyID string) (*entity.PartnerCompanyLink, error)
	CountActiveCompanies(partnerID string) (int, error)
}
