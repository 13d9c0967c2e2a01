package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/application/commission"
	"github.com/facturino/ledger-api/internal/application/dto"
	"github.com/facturino/ledger-api/internal/application/partner"
	"github.com/facturino/ledger-api/internal/domain"
)

// AffiliateHandler handles the commission webhooks, bounties and partner stats.
type AffiliateHandler struct {
	commissionUC *commission.UseCase
	statsUC      *partner.StatsUseCase
}

// NewAffiliateHandler builds the handler.
func NewAffiliateHandler(commissionUC *commission.UseCase, statsUC *partner.StatsUseCase) *AffiliateHandler {
	return &AffiliateHandler{commissionUC: commissionUC, statsUC: statsUC}
}

// SubscriptionPayment records the monthly commission for a subscription
// payment. POST /api/affiliate/webhooks/subscription-payment
func (h *AffiliateHandler) SubscriptionPayment(c *fiber.Ctx) error {
	var in dto.RecordRecurringRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "amount must be a decimal string"})
	}

	res, err := h.commissionUC.RecordRecurring(c.Context(), in.CompanyID, amount, in.MonthRef, in.ExternalRef)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid company, amount or month_ref"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toCommissionResponse(res))
}

// SubscriptionRefund claws back the month's commissions after a refund.
// POST /api/affiliate/webhooks/subscription-refund
func (h *AffiliateHandler) SubscriptionRefund(c *fiber.Ctx) error {
	var in dto.RefundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	res, err := h.commissionUC.HandleRefund(c.Context(), in.CompanyID, in.MonthRef, in.Reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid company or month_ref"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ClawbackResponse{
		Success:       res.Success,
		Message:       res.Message,
		ClawedBackCnt: res.ClawedBackCnt,
	})
}

// CompanyBounty records the one-off signup bounty for a company.
// POST /api/affiliate/companies/:id/bounty
func (h *AffiliateHandler) CompanyBounty(c *fiber.Ctx) error {
	companyID := c.Params("id")
	res, err := h.commissionUC.RecordCompanyBounty(c.Context(), companyID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid company id"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toCommissionResponse(res))
}

// PartnerBounty records the one-off activation bounty for a partner.
// POST /api/affiliate/partners/:id/bounty
func (h *AffiliateHandler) PartnerBounty(c *fiber.Ctx) error {
	partnerID := c.Params("id")
	res, err := h.commissionUC.RecordPartnerBounty(c.Context(), partnerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toCommissionResponse(res))
}

// PartnerStats returns the partner dashboard figures.
// GET /api/affiliate/partners/:id/stats?month=YYYY-MM
func (h *AffiliateHandler) PartnerStats(c *fiber.Ctx) error {
	partnerID := c.Params("id")
	monthRef := c.Query("month")
	if monthRef == "" {
		monthRef = time.Now().Format("2006-01")
	}
	stats, err := h.statsUC.GetStats(c.Context(), partnerID, monthRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "partner not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.PartnerStatsResponse{
		ActiveClients:      stats.ActiveClients,
		MonthlyCommissions: stats.MonthlyCommissions.StringFixed(2),
		PendingPayout:      stats.PendingPayout.StringFixed(2),
		TotalEarned:        stats.TotalEarned.StringFixed(2),
	})
}

func toCommissionResponse(res *commission.Result) dto.CommissionResponse {
	out := dto.CommissionResponse{
		Success: res.Success,
		Message: res.Message,
		EventID: res.EventID,
	}
	if res.Success {
		out.DirectCommission = res.DirectCommission.StringFixed(2)
		if res.UplineCommission != nil {
			s := res.UplineCommission.StringFixed(2)
			out.UplineCommission = &s
		}
	}
	return out
}
