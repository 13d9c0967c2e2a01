package partner

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/repository"
	"github.com/facturino/ledger-api/pkg/logger"
)

// Stats is the real-time dashboard figures for one partner. Clawed-back
// events are excluded from every amount.
type Stats struct {
	ActiveClients      int
	MonthlyCommissions decimal.Decimal
	PendingPayout      decimal.Decimal
	TotalEarned        decimal.Decimal
}

// StatsUseCase computes partner portal statistics from the commission ledger.
type StatsUseCase struct {
	partnerRepo repository.PartnerRepository
	eventRepo   repository.AffiliateEventRepository
	log         *logger.Logger
}

// NewStatsUseCase builds the stats use case.
func NewStatsUseCase(partnerRepo repository.PartnerRepository, eventRepo repository.AffiliateEventRepository, log *logger.Logger) *StatsUseCase {
	return &StatsUseCase{partnerRepo: partnerRepo, eventRepo: eventRepo, log: log}
}

// GetStats returns the partner's current figures. monthRef selects the month
// for the monthly total (YYYY-MM).
func (uc *StatsUseCase) GetStats(ctx context.Context, partnerID, monthRef string) (*Stats, error) {
	p, err := uc.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	active, err := uc.partnerRepo.CountActiveCompanies(partnerID)
	if err != nil {
		return nil, err
	}
	monthly, err := uc.eventRepo.MonthlyTotal(partnerID, monthRef)
	if err != nil {
		return nil, err
	}
	pending, err := uc.eventRepo.PendingPayout(partnerID)
	if err != nil {
		return nil, err
	}
	earned, err := uc.eventRepo.TotalEarned(partnerID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ActiveClients:      active,
		MonthlyCommissions: monthly,
		PendingPayout:      pending,
		TotalEarned:        earned,
	}
	uc.log.Debug().
		Str("partner_id", partnerID).
		Str("month_ref", monthRef).
		Msg("partner stats calculated")
	return stats, nil
}
