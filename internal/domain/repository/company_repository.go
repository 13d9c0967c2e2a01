package repository

import "github.com/facturino/ledger-api/internal/domain/entity"

// CompanyRepository defines the persistence port for companies (DIP).
type CompanyRepository interface {
	GetByID(id string) (*entity.Company, error)
	// ModuleEnabled reports whether a SaaS module is active (and unexpired)
	// for the company.
	ModuleEnabled(companyID, moduleName string) (bool, error)
}
