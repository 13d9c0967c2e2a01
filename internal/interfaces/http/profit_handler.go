package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/facturino/ledger-api/internal/application/dto"
	"github.com/facturino/ledger-api/internal/application/profit"
	"github.com/facturino/ledger-api/internal/domain"
)

// ProfitHandler handles invoice profitability queries (protected).
type ProfitHandler struct {
	uc *profit.UseCase
}

// NewProfitHandler builds the handler.
func NewProfitHandler(uc *profit.UseCase) *ProfitHandler {
	return &ProfitHandler{uc: uc}
}

// InvoiceProfit returns revenue, COGS, gross profit and margin for one
// invoice. GET /api/invoices/:id/profit?strict=&include_lines=
func (h *ProfitHandler) InvoiceProfit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	opts := profit.Options{
		Strict:       c.QueryBool("strict"),
		IncludeLines: c.QueryBool("include_lines"),
	}
	res, err := h.uc.GetInvoiceProfit(c.Context(), companyID, c.Params("id"), opts)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toProfitResponse(res))
}

// ProfitSummary aggregates profit across invoices.
// POST /api/invoices/profit-summary
func (h *ProfitHandler) ProfitSummary(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.ProfitSummaryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	s, err := h.uc.GetInvoicesProfitSummary(c.Context(), companyID, in.InvoiceIDs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ProfitSummaryResponse{
		Available:        s.Available,
		TotalRevenue:     s.TotalRevenue.StringFixed(2),
		TotalCOGS:        s.TotalCOGS.StringFixed(2),
		TotalProfit:      s.TotalProfit.StringFixed(2),
		AvgMargin:        s.AvgMargin.StringFixed(2),
		InvoicesAnalyzed: s.InvoicesAnalyzed,
	})
}

func toProfitResponse(res *profit.ProfitResult) dto.ProfitResponse {
	out := dto.ProfitResponse{
		Available:   res.Available,
		Reason:      res.Reason,
		Revenue:     res.Revenue.StringFixed(2),
		COGS:        res.COGS.StringFixed(2),
		GrossProfit: res.GrossProfit.StringFixed(2),
		Margin:      res.Margin.StringFixed(2),
	}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, dto.LineProfitResponse{
			InvoiceItemID: l.InvoiceItemID,
			ItemID:        l.ItemID,
			Name:          l.Name,
			Quantity:      l.Quantity.String(),
			Revenue:       l.Revenue.StringFixed(2),
			UnitCost:      l.UnitCost.StringFixed(2),
			COGS:          l.COGS.StringFixed(2),
			GrossProfit:   l.GrossProfit.StringFixed(2),
			Margin:        l.Margin.StringFixed(2),
			HasCost:       l.HasCost,
			CostSource:    string(l.CostSource),
		})
	}
	return out
}
