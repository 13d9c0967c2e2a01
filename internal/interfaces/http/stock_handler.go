package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/application/dto"
	"github.com/facturino/ledger-api/internal/application/inventory"
	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
)

// StockHandler handles the stock ledger endpoints (protected).
type StockHandler struct {
	uc *inventory.UseCase
}

// NewStockHandler builds the handler.
func NewStockHandler(uc *inventory.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// RecordMovement posts one stock movement. POST /api/stock/movements
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	quantity, err := decimal.NewFromString(in.Quantity)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity must be a decimal string"})
	}
	var unitCost *decimal.Decimal
	if in.UnitCost != nil {
		uc, err := decimal.NewFromString(*in.UnitCost)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "unit_cost must be a decimal string"})
		}
		unitCost = &uc
	}
	date := time.Now()
	if in.Date != "" {
		d, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date must be YYYY-MM-DD"})
		}
		date = d
	}

	mov, err := h.dispatchMovement(c, companyID, userID, in, quantity, unitCost, date)
	if err != nil {
		return h.mapMovementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

func (h *StockHandler) dispatchMovement(c *fiber.Ctx, companyID, userID string, in dto.RecordMovementRequest, quantity decimal.Decimal, unitCost *decimal.Decimal, date time.Time) (*entity.StockMovement, error) {
	switch in.Direction {
	case "in":
		if unitCost == nil {
			return nil, domain.ErrInvalidInput
		}
		sourceType := in.SourceType
		if sourceType == "" {
			sourceType = entity.SourceBillItem
		}
		return h.uc.RecordIn(c.Context(), inventory.MovementInput{
			CompanyID:   companyID,
			WarehouseID: in.WarehouseID,
			ItemID:      in.ItemID,
			Quantity:    quantity,
			UnitCost:    *unitCost,
			SourceType:  sourceType,
			SourceID:    in.SourceID,
			Date:        date,
			Note:        in.Note,
			CreatedBy:   userID,
		})
	case "out":
		sourceType := in.SourceType
		if sourceType == "" {
			sourceType = entity.SourceInvoiceItem
		}
		return h.uc.RecordOut(c.Context(), inventory.OutInput{
			CompanyID:   companyID,
			WarehouseID: in.WarehouseID,
			ItemID:      in.ItemID,
			Quantity:    quantity,
			SourceType:  sourceType,
			SourceID:    in.SourceID,
			Date:        date,
			Note:        in.Note,
			CreatedBy:   userID,
		})
	case "adjust":
		return h.uc.RecordAdjustment(c.Context(), companyID, in.WarehouseID, in.ItemID, quantity, unitCost, in.Note, userID)
	case "initial":
		if unitCost == nil {
			return nil, domain.ErrInvalidInput
		}
		return h.uc.RecordInitialStock(c.Context(), companyID, in.WarehouseID, in.ItemID, quantity, *unitCost, in.Note, userID)
	default:
		return nil, domain.ErrInvalidInput
	}
}

// Transfer moves stock between warehouses. POST /api/stock/transfers
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := validateStruct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	quantity, err := decimal.NewFromString(in.Quantity)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity must be a decimal string"})
	}

	res, err := h.uc.Transfer(c.Context(), companyID, in.FromWarehouseID, in.ToWarehouseID, in.ItemID, quantity, in.Note, userID)
	if err != nil {
		return h.mapMovementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"out": toMovementResponse(res.Out),
		"in":  toMovementResponse(res.In),
	})
}

// ReverseMovement posts the opposite adjustment for a movement.
// POST /api/stock/movements/:id/reverse
func (h *StockHandler) ReverseMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&in)

	mov, err := h.uc.ReverseMovement(c.Context(), companyID, c.Params("id"), in.Reason, userID)
	if err != nil {
		return h.mapMovementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ItemStock returns the current balance of an item.
// GET /api/stock/items/:id/stock?warehouse_id=
func (h *StockHandler) ItemStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	stock, err := h.uc.ItemStock(c.Context(), companyID, c.Params("id"), c.Query("warehouse_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.StockResponse{
		Quantity: stock.Quantity.String(),
		Value:    stock.Value.StringFixed(2),
		WAC:      stock.WAC.StringFixed(2),
	})
}

// MovementHistory lists an item's movements, newest first.
// GET /api/stock/items/:id/movements?warehouse_id=&from=&to=&limit=
func (h *StockHandler) MovementHistory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	f := repository.MovementFilter{
		WarehouseID: c.Query("warehouse_id"),
		Limit:       c.QueryInt("limit"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from must be YYYY-MM-DD"})
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to must be YYYY-MM-DD"})
		}
		f.To = &t
	}

	movements, err := h.uc.MovementHistory(c.Context(), companyID, c.Params("id"), f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Valuation returns the stock valuation report at WAC.
// GET /api/stock/reports/valuation?warehouse_id=
func (h *StockHandler) Valuation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	lines, total, err := h.uc.ValuationReport(c.Context(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]fiber.Map, 0, len(lines))
	for _, l := range lines {
		items = append(items, fiber.Map{
			"item_id":  l.ItemID,
			"sku":      l.SKU,
			"name":     l.Name,
			"quantity": l.Quantity.String(),
			"wac":      l.WAC.StringFixed(2),
			"value":    l.Value.StringFixed(2),
		})
	}
	return c.JSON(fiber.Map{"items": items, "total_value": total.StringFixed(2)})
}

// LowStock lists the items at or below their minimum quantity.
// GET /api/stock/reports/low-stock
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	lines, err := h.uc.LowStockItems(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]fiber.Map, 0, len(lines))
	for _, l := range lines {
		items = append(items, fiber.Map{
			"item_id":  l.ItemID,
			"sku":      l.SKU,
			"name":     l.Name,
			"quantity": l.Quantity.String(),
			"minimum":  l.Minimum.String(),
		})
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

func (h *StockHandler) mapMovementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid movement data"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item or warehouse not found"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "access denied"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "insufficient stock"})
	case errors.Is(err, domain.ErrLedgerCorrupt):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LEDGER_CORRUPT", Message: "stock ledger integrity fault, posting refused"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		WarehouseID:     m.WarehouseID,
		ItemID:          m.ItemID,
		SourceType:      m.SourceType,
		SourceID:        m.SourceID,
		Quantity:        m.Quantity.String(),
		UnitCost:        m.UnitCost.StringFixed(2),
		TotalCost:       m.TotalCost.StringFixed(2),
		MovementDate:    m.MovementDate.Format("2006-01-02"),
		Note:            m.Note,
		BalanceQuantity: m.BalanceQuantity.String(),
		BalanceValue:    m.BalanceValue.StringFixed(2),
	}
}
