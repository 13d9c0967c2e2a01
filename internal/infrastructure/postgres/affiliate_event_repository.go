package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

var _ repository.AffiliateEventRepository = (*AffiliateEventRepo)(nil)

// AffiliateEventRepo implements the AffiliateEventRepository port over PostgreSQL.
type AffiliateEventRepo struct {
	db Querier
}

// NewAffiliateEventRepository builds the persistence adapter for the commission ledger.
func NewAffiliateEventRepository(db Querier) *AffiliateEventRepo {
	return &AffiliateEventRepo{db: db}
}

const affiliateEventColumns = `
	id, affiliate_partner_id, upline_partner_id, company_id, event_type,
	amount, upline_amount, month_ref, external_ref, paid_at, payout_id,
	is_clawed_back, clawback_reason, clawed_back_at, created_at`

// Create inserts an event row. A unique violation on
// (company_id, month_ref, event_type, affiliate_partner_id) surfaces as
// domain.ErrDuplicate so the caller can abort the transaction.
func (r *AffiliateEventRepo) Create(ev *entity.AffiliateEvent) error {
	query := `
		INSERT INTO affiliate_events (
			id, affiliate_partner_id, upline_partner_id, company_id, event_type,
			amount, upline_amount, month_ref, external_ref,
			is_clawed_back, created_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(context.Background(), query,
		ev.ID, ev.AffiliatePartnerID, ev.UplinePartnerID, ev.CompanyID, ev.EventType,
		ev.Amount, ev.UplineAmount, ev.MonthRef, ev.ExternalRef,
		ev.IsClawedBack, ev.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert affiliate event: %w", err)
	}
	return nil
}

// FindByCompanyMonth looks up the event for (company, monthRef, eventType).
func (r *AffiliateEventRepo) FindByCompanyMonth(companyID, monthRef, eventType string) (*entity.AffiliateEvent, error) {
	query := `
		SELECT ` + affiliateEventColumns + `
		FROM affiliate_events
		WHERE company_id = $1 AND month_ref = $2 AND event_type = $3
		ORDER BY created_at
		LIMIT 1`
	return r.queryOne(query, companyID, monthRef, eventType)
}

// FindByCompanyType looks up the first event of a type for a company.
func (r *AffiliateEventRepo) FindByCompanyType(companyID, eventType string) (*entity.AffiliateEvent, error) {
	query := `
		SELECT ` + affiliateEventColumns + `
		FROM affiliate_events
		WHERE company_id = $1 AND event_type = $2
		ORDER BY created_at
		LIMIT 1`
	return r.queryOne(query, companyID, eventType)
}

// FindByPartnerType looks up the first event of a type earned by a partner.
func (r *AffiliateEventRepo) FindByPartnerType(partnerID, eventType string) (*entity.AffiliateEvent, error) {
	query := `
		SELECT ` + affiliateEventColumns + `
		FROM affiliate_events
		WHERE affiliate_partner_id = $1 AND event_type = $2
		ORDER BY created_at
		LIMIT 1`
	return r.queryOne(query, partnerID, eventType)
}

// ListRecurringForClawback returns the recurring events of (company, monthRef)
// not yet clawed back, direct and upline rows alike.
func (r *AffiliateEventRepo) ListRecurringForClawback(companyID, monthRef string) ([]*entity.AffiliateEvent, error) {
	query := `
		SELECT ` + affiliateEventColumns + `
		FROM affiliate_events
		WHERE company_id = $1 AND month_ref = $2
		  AND event_type = $3 AND is_clawed_back = FALSE
		ORDER BY created_at`
	rows, err := r.db.Query(context.Background(), query, companyID, monthRef, entity.EventRecurringCommission)
	if err != nil {
		return nil, fmt.Errorf("list recurring events: %w", err)
	}
	defer rows.Close()
	return scanAffiliateEvents(rows)
}

// MarkClawedBack flags an event as clawed back. The row itself stays.
func (r *AffiliateEventRepo) MarkClawedBack(id string, reason *string, at time.Time) error {
	query := `
		UPDATE affiliate_events
		SET is_clawed_back = TRUE, clawback_reason = $2, clawed_back_at = $3
		WHERE id = $1 AND is_clawed_back = FALSE`
	tag, err := r.db.Exec(context.Background(), query, id, reason, at)
	if err != nil {
		return fmt.Errorf("mark clawed back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MonthlyTotal sums the partner's earnings for one month, clawbacks excluded.
func (r *AffiliateEventRepo) MonthlyTotal(partnerID, monthRef string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM affiliate_events
		WHERE affiliate_partner_id = $1 AND month_ref = $2 AND is_clawed_back = FALSE`
	return r.sum(query, partnerID, monthRef)
}

// PendingPayout sums the partner's unpaid earnings, clawbacks excluded.
func (r *AffiliateEventRepo) PendingPayout(partnerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM affiliate_events
		WHERE affiliate_partner_id = $1 AND paid_at IS NULL AND is_clawed_back = FALSE`
	return r.sum(query, partnerID)
}

// TotalEarned sums everything the partner has ever earned, clawbacks excluded.
func (r *AffiliateEventRepo) TotalEarned(partnerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM affiliate_events
		WHERE affiliate_partner_id = $1 AND is_clawed_back = FALSE`
	return r.sum(query, partnerID)
}

func (r *AffiliateEventRepo) queryOne(query string, args ...any) (*entity.AffiliateEvent, error) {
	ev, err := scanAffiliateEvent(r.db.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get affiliate event: %w", err)
	}
	return ev, nil
}

func (r *AffiliateEventRepo) sum(query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(context.Background(), query, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum affiliate events: %w", err)
	}
	return total, nil
}

func scanAffiliateEvent(row pgx.Row) (*entity.AffiliateEvent, error) {
	var ev entity.AffiliateEvent
	var companyID *string
	err := row.Scan(
		&ev.ID, &ev.AffiliatePartnerID, &ev.UplinePartnerID, &companyID, &ev.EventType,
		&ev.Amount, &ev.UplineAmount, &ev.MonthRef, &ev.ExternalRef, &ev.PaidAt, &ev.PayoutID,
		&ev.IsClawedBack, &ev.ClawbackReason, &ev.ClawedBackAt, &ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if companyID != nil {
		ev.CompanyID = *companyID
	}
	return &ev, nil
}

func scanAffiliateEvents(rows pgx.Rows) ([]*entity.AffiliateEvent, error) {
	var events []*entity.AffiliateEvent
	for rows.Next() {
		ev, err := scanAffiliateEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan affiliate event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate affiliate events: %w", err)
	}
	return events, nil
}
