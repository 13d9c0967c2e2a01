package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implements the CompanyRepository port over PostgreSQL.
type CompanyRepo struct {
	db Querier
}

// NewCompanyRepository builds the persistence adapter for companies.
func NewCompanyRepository(db Querier) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// GetByID fetches a company by ID.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	query := `
		SELECT id, name, tax_number, address, phone, email, status, created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.db.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.Name, &c.TaxNumber, &c.Address, &c.Phone, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// ModuleEnabled reports whether a SaaS module is active and unexpired for the company.
func (r *CompanyRepo) ModuleEnabled(companyID, moduleName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			WHERE company_id = $1 AND module_name = $2 AND is_active = TRUE
			  AND (expires_at IS NULL OR expires_at > NOW())
		)`
	var enabled bool
	if err := r.db.QueryRow(context.Background(), query, companyID, moduleName).Scan(&enabled); err != nil {
		return false, fmt.Errorf("check company module: %w", err)
	}
	return enabled, nil
}
