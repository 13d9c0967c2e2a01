package commission

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/domain"
	domaincommission "github.com/facturino/ledger-api/internal/domain/commission"
	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
	"github.com/facturino/ledger-api/pkg/logger"
)

// Failure messages returned as results (expected, caller-recoverable).
const (
	msgNoPartnerLinked  = "No partner linked to company"
	msgPartnerNotActive = "Partner not active"
	msgAlreadyRecorded  = "Commission already recorded"
	msgBountyRecorded   = "Bounty already recorded"
	msgNotEligible      = "Partner not eligible for bounty"
	msgNoEventsToClaw   = "No events found to claw back"
)

var monthRefPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Config is the program policy handed to the engine at construction.
type Config struct {
	Rates              domaincommission.Rates
	CompanyBounty      decimal.Decimal
	PartnerBounty      decimal.Decimal
	BountyMinCompanies int
	BountyMinDays      int
}

// Result is the outcome of a commission recording call. Validation failures
// come back as Success=false with a message, never as an error.
type Result struct {
	Success          bool
	Message          string
	EventID          string
	DirectCommission decimal.Decimal
	UplineCommission *decimal.Decimal
}

// PartnerSnapshot freezes the rate-relevant state of the direct partner at
// call time, so the recorded event is always reconstructible from immutable
// inputs instead of a possibly-since-changed live attribute.
type PartnerSnapshot struct {
	PartnerID       string
	Tier            string
	UplinePartnerID *string
}

// UseCase records affiliate commission events: recurring monthly commissions
// with optional upline split, signup/activation bounties, and clawbacks.
type UseCase struct {
	txRunner    TxRunner
	partnerRepo repository.PartnerRepository
	userRepo    repository.UserRepository
	eventRepo   repository.AffiliateEventRepository
	cfg         Config
	log         *logger.Logger
}

// NewUseCase builds the commission engine.
func NewUseCase(
	txRunner TxRunner,
	partnerRepo repository.PartnerRepository,
	userRepo repository.UserRepository,
	eventRepo repository.AffiliateEventRepository,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		partnerRepo: partnerRepo,
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		cfg:         cfg,
		log:         log,
	}
}

// RecordRecurring computes and durably records the commission for one
// subscription payment, exactly once per (company, month). The direct and
// upline events are inserted in one transaction; a raced duplicate hits the
// unique index and comes back as the already-recorded result with zero rows
// written.
func (uc *UseCase) RecordRecurring(ctx context.Context, companyID string, amount decimal.Decimal, monthRef string, externalRef *string) (*Result, error) {
	if companyID == "" || !monthRefPattern.MatchString(monthRef) || amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	link, err := uc.partnerRepo.GetActiveLinkByCompany(companyID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		uc.log.Warn().Str("company_id", companyID).Msg("no active partner link found for company")
		return &Result{Success: false, Message: msgNoPartnerLinked}, nil
	}

	partner, err := uc.partnerRepo.GetByID(link.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil || !partner.IsActive {
		uc.log.Warn().Str("partner_id", link.PartnerID).Msg("partner not active")
		return &Result{Success: false, Message: msgPartnerNotActive}, nil
	}

	existing, err := uc.eventRepo.FindByCompanyMonth(companyID, monthRef, entity.EventRecurringCommission)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		uc.log.Info().
			Str("company_id", companyID).
			Str("month_ref", monthRef).
			Str("event_id", existing.ID).
			Msg("commission already recorded for this month")
		return &Result{Success: false, Message: msgAlreadyRecorded}, nil
	}

	snap, err := uc.snapshotPartner(partner)
	if err != nil {
		return nil, err
	}
	split := uc.cfg.Rates.SplitFor(amount, snap.Tier, snap.UplinePartnerID != nil)

	now := time.Now()
	directEvent := &entity.AffiliateEvent{
		ID:                 uuid.New().String(),
		AffiliatePartnerID: snap.PartnerID,
		UplinePartnerID:    snap.UplinePartnerID,
		CompanyID:          companyID,
		EventType:          entity.EventRecurringCommission,
		Amount:             split.Direct,
		UplineAmount:       split.Upline,
		MonthRef:           monthRef,
		ExternalRef:        externalRef,
		CreatedAt:          now,
	}

	err = uc.txRunner.Run(ctx, func(events repository.AffiliateEventRepository) error {
		if snap.UplinePartnerID != nil {
			// The upline's own receipt: amount is the upline share, no
			// further split on this row.
			uplineEvent := &entity.AffiliateEvent{
				ID:                 uuid.New().String(),
				AffiliatePartnerID: *snap.UplinePartnerID,
				CompanyID:          companyID,
				EventType:          entity.EventRecurringCommission,
				Amount:             *split.Upline,
				MonthRef:           monthRef,
				ExternalRef:        externalRef,
				CreatedAt:          now,
			}
			if err := events.Create(uplineEvent); err != nil {
				return err
			}
		}
		return events.Create(directEvent)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Lost the race against a concurrent delivery; the transaction
			// rolled back, so neither row of this call persisted.
			return &Result{Success: false, Message: msgAlreadyRecorded}, nil
		}
		return nil, err
	}

	uc.log.Info().
		Str("event_id", directEvent.ID).
		Str("partner_id", snap.PartnerID).
		Str("company_id", companyID).
		Str("month_ref", monthRef).
		Str("amount", split.Direct.StringFixed(2)).
		Msg("recurring commission recorded")

	return &Result{
		Success:          true,
		EventID:          directEvent.ID,
		DirectCommission: split.Direct,
		UplineCommission: split.Upline,
	}, nil
}

// snapshotPartner resolves tier and upline once, into immutable inputs for
// the rate calculation. Missing owning user defaults to the free tier.
func (uc *UseCase) snapshotPartner(partner *entity.Partner) (*PartnerSnapshot, error) {
	snap := &PartnerSnapshot{PartnerID: partner.ID, Tier: entity.TierFree}
	if partner.UserID == "" {
		return snap, nil
	}
	user, err := uc.userRepo.GetByID(partner.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return snap, nil
	}
	if user.SubscriptionTier != "" {
		snap.Tier = user.SubscriptionTier
	}
	if user.ReferrerUserID == nil {
		return snap, nil
	}
	uplinePartner, err := uc.partnerRepo.GetActiveByUserID(*user.ReferrerUserID)
	if err != nil {
		return nil, err
	}
	if uplinePartner != nil {
		snap.UplinePartnerID = &uplinePartner.ID
	}
	return snap, nil
}

// RecordCompanyBounty records the one-off signup bounty for a company,
// credited to its linked partner. One event per company, ever.
func (uc *UseCase) RecordCompanyBounty(ctx context.Context, companyID string) (*Result, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	link, err := uc.partnerRepo.GetActiveLinkByCompany(companyID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return &Result{Success: false, Message: msgNoPartnerLinked}, nil
	}
	partner, err := uc.partnerRepo.GetByID(link.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil || !partner.IsActive {
		return &Result{Success: false, Message: msgPartnerNotActive}, nil
	}
	existing, err := uc.eventRepo.FindByCompanyType(companyID, entity.EventCompanyBounty)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Result{Success: false, Message: msgBountyRecorded}, nil
	}

	event := &entity.AffiliateEvent{
		ID:                 uuid.New().String(),
		AffiliatePartnerID: partner.ID,
		CompanyID:          companyID,
		EventType:          entity.EventCompanyBounty,
		Amount:             uc.cfg.CompanyBounty,
		MonthRef:           time.Now().Format("2006-01"),
		CreatedAt:          time.Now(),
	}
	err = uc.txRunner.Run(ctx, func(events repository.AffiliateEventRepository) error {
		return events.Create(event)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return &Result{Success: false, Message: msgBountyRecorded}, nil
		}
		return nil, err
	}

	uc.log.Info().
		Str("event_id", event.ID).
		Str("partner_id", partner.ID).
		Str("company_id", companyID).
		Msg("company bounty recorded")
	return &Result{Success: true, EventID: event.ID, DirectCommission: event.Amount}, nil
}

// RecordPartnerBounty records the one-off activation bounty for a partner.
// Eligibility: enough active client companies, or long enough since signup.
func (uc *UseCase) RecordPartnerBounty(ctx context.Context, partnerID string) (*Result, error) {
	partner, err := uc.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil || !partner.IsActive {
		return &Result{Success: false, Message: msgPartnerNotActive}, nil
	}

	eligible, err := uc.partnerEligibleForBounty(partner)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return &Result{Success: false, Message: msgNotEligible}, nil
	}

	existing, err := uc.eventRepo.FindByPartnerType(partnerID, entity.EventPartnerBounty)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Result{Success: false, Message: msgBountyRecorded}, nil
	}

	event := &entity.AffiliateEvent{
		ID:                 uuid.New().String(),
		AffiliatePartnerID: partner.ID,
		EventType:          entity.EventPartnerBounty,
		Amount:             uc.cfg.PartnerBounty,
		MonthRef:           time.Now().Format("2006-01"),
		CreatedAt:          time.Now(),
	}
	err = uc.txRunner.Run(ctx, func(events repository.AffiliateEventRepository) error {
		return events.Create(event)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return &Result{Success: false, Message: msgBountyRecorded}, nil
		}
		return nil, err
	}

	uc.log.Info().
		Str("event_id", event.ID).
		Str("partner_id", partner.ID).
		Msg("partner bounty recorded")
	return &Result{Success: true, EventID: event.ID, DirectCommission: event.Amount}, nil
}

func (uc *UseCase) partnerEligibleForBounty(partner *entity.Partner) (bool, error) {
	active, err := uc.partnerRepo.CountActiveCompanies(partner.ID)
	if err != nil {
		return false, err
	}
	if active >= uc.cfg.BountyMinCompanies {
		return true, nil
	}
	return time.Since(partner.CreatedAt) >= time.Duration(uc.cfg.BountyMinDays)*24*time.Hour, nil
}

// ClawbackResult reports how many events a refund clawed back.
type ClawbackResult struct {
	Success       bool
	Message       string
	ClawedBackCnt int
}

// HandleRefund claws back all not-yet-clawed recurring commission events for
// (company, month) after a subscription refund. Events stay in the ledger,
// flagged, never deleted.
func (uc *UseCase) HandleRefund(ctx context.Context, companyID, monthRef string, reason *string) (*ClawbackResult, error) {
	if companyID == "" || !monthRefPattern.MatchString(monthRef) {
		return nil, domain.ErrInvalidInput
	}
	events, err := uc.eventRepo.ListRecurringForClawback(companyID, monthRef)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return &ClawbackResult{Success: false, Message: msgNoEventsToClaw}, nil
	}

	now := time.Now()
	err = uc.txRunner.Run(ctx, func(repo repository.AffiliateEventRepository) error {
		for _, ev := range events {
			if err := repo.MarkClawedBack(ev.ID, reason, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", companyID).
		Str("month_ref", monthRef).
		Int("events_count", len(events)).
		Msg("commissions clawed back")
	return &ClawbackResult{Success: true, ClawedBackCnt: len(events)}, nil
}
