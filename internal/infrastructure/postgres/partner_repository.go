package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

var _ repository.PartnerRepository = (*PartnerRepo)(nil)

// PartnerRepo implements the PartnerRepository port over PostgreSQL.
type PartnerRepo struct {
	db Querier
}

// NewPartnerRepository builds the persistence adapter for affiliate partners.
func NewPartnerRepository(db Querier) *PartnerRepo {
	return &PartnerRepo{db: db}
}

// GetByID fetches a partner by ID.
func (r *PartnerRepo) GetByID(id string) (*entity.Partner, error) {
	query := `
		SELECT id, user_id, name, is_active, kyc_status, notes, created_at, updated_at
		FROM affiliate_partners WHERE id = $1`
	return r.scanPartner(r.db.QueryRow(context.Background(), query, id))
}

// GetActiveByUserID resolves the active partner owned by a user.
func (r *PartnerRepo) GetActiveByUserID(userID string) (*entity.Partner, error) {
	query := `
		SELECT id, user_id, name, is_active, kyc_status, notes, created_at, updated_at
		FROM affiliate_partners WHERE user_id = $1 AND is_active = TRUE
		LIMIT 1`
	return r.scanPartner(r.db.QueryRow(context.Background(), query, userID))
}

// GetActiveLinkByCompany returns the company's active partner link, nil when
// the company has no linked partner.
func (r *PartnerRepo) GetActiveLinkByCompany(companyID string) (*entity.PartnerCompanyLink, error) {
	query := `
		SELECT id, partner_id, company_id, is_primary, is_active, created_at, updated_at
		FROM partner_company_links
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY is_primary DESC, created_at
		LIMIT 1`
	var l entity.PartnerCompanyLink
	err := r.db.QueryRow(context.Background(), query, companyID).Scan(
		&l.ID, &l.PartnerID, &l.CompanyID, &l.IsPrimary, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner link: %w", err)
	}
	return &l, nil
}

// CountActiveCompanies counts the partner's active client companies.
func (r *PartnerRepo) CountActiveCompanies(partnerID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM partner_company_links
		WHERE partner_id = $1 AND is_active = TRUE`
	var n int
	if err := r.db.QueryRow(context.Background(), query, partnerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count partner companies: %w", err)
	}
	return n, nil
}

func (r *PartnerRepo) scanPartner(row pgx.Row) (*entity.Partner, error) {
	var p entity.Partner
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.IsActive, &p.KycStatus, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return &p, nil
}
