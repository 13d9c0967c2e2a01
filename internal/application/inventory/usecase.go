package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/entity"
	domaininventory "github.com/facturino/ledger-api/internal/domain/inventory"
	"github.com/facturino/ledger-api/internal/domain/repository"
	"github.com/facturino/ledger-api/pkg/logger"
)

// Policy is the ledger policy handed to the engine at construction.
type Policy struct {
	// AllowNegative permits OUT movements past the on-hand balance. Beyond
	// zero the WAC is zero, so oversold units carry no cost basis.
	AllowNegative bool
}

// UseCase maintains the append-only stock ledger with continuous weighted
// average costing per (item, warehouse). Each posting runs in a transaction
// that locks the latest balance row before folding the new movement on top.
type UseCase struct {
	txRunner      TxRunner
	movementRepo  repository.StockMovementRepository
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	policy        Policy
	log           *logger.Logger
}

// NewUseCase builds the inventory cost engine.
func NewUseCase(
	txRunner TxRunner,
	movementRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	policy Policy,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		movementRepo:  movementRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		policy:        policy,
		log:           log,
	}
}

// MovementInput is the input for RecordIn/RecordOut. UnitCost is required
// for IN and ignored for OUT (the OUT cost is the frozen WAC).
type MovementInput struct {
	CompanyID   string
	WarehouseID string
	ItemID      string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	SourceType  string
	SourceID    *string
	Date        time.Time
	Note        string
	CreatedBy   string
}

// RecordIn appends an incoming movement (purchase, initial stock, positive
// adjustment). New balance: prior quantity + qty, prior value + qty*unitCost.
func (uc *UseCase) RecordIn(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch in.SourceType {
	case entity.SourceInitial, entity.SourceBillItem, entity.SourceAdjustment, entity.SourceTransferIn:
	default:
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkItemAndWarehouse(in.CompanyID, in.ItemID, in.WarehouseID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(movements repository.StockMovementRepository) error {
		prev, err := uc.lockedBalance(movements, in.CompanyID, in.WarehouseID, in.ItemID)
		if err != nil {
			return err
		}
		next, totalCost := domaininventory.ApplyIn(prev, in.Quantity, in.UnitCost)
		mov = uc.buildMovement(in, in.Quantity, in.UnitCost, totalCost, next)
		return movements.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	uc.logMovement(mov)
	return mov, nil
}

// OutInput is the input for RecordOut. No unit cost: the cost basis is the
// current WAC at posting time, frozen into the row.
type OutInput struct {
	CompanyID   string
	WarehouseID string
	ItemID      string
	Quantity    decimal.Decimal
	SourceType  string
	SourceID    *string
	Date        time.Time
	Note        string
	CreatedBy   string
}

// RecordOut appends an outgoing movement (sale, negative adjustment). Under
// the default policy a quantity beyond the on-hand balance fails with
// ErrInsufficientStock before any row is written.
func (uc *UseCase) RecordOut(ctx context.Context, in OutInput) (*entity.StockMovement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch in.SourceType {
	case entity.SourceInvoiceItem, entity.SourceAdjustment, entity.SourceTransferOut:
	default:
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkItemAndWarehouse(in.CompanyID, in.ItemID, in.WarehouseID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(movements repository.StockMovementRepository) error {
		prev, err := uc.lockedBalance(movements, in.CompanyID, in.WarehouseID, in.ItemID)
		if err != nil {
			return err
		}
		if !uc.policy.AllowNegative && prev.Quantity.LessThan(in.Quantity) {
			return domain.ErrInsufficientStock
		}
		next, unitCost, totalCost := domaininventory.ApplyOut(prev, in.Quantity)
		mi := MovementInput{
			CompanyID:   in.CompanyID,
			WarehouseID: in.WarehouseID,
			ItemID:      in.ItemID,
			SourceType:  in.SourceType,
			SourceID:    in.SourceID,
			Date:        in.Date,
			Note:        in.Note,
			CreatedBy:   in.CreatedBy,
		}
		mov = uc.buildMovement(mi, in.Quantity.Neg(), unitCost, totalCost.Neg(), next)
		return movements.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	uc.logMovement(mov)
	return mov, nil
}

// RecordInitialStock posts the opening balance for an item in a warehouse.
func (uc *UseCase) RecordInitialStock(ctx context.Context, companyID, warehouseID, itemID string, quantity, unitCost decimal.Decimal, note, createdBy string) (*entity.StockMovement, error) {
	if note == "" {
		note = "Initial stock entry"
	}
	return uc.RecordIn(ctx, MovementInput{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		ItemID:      itemID,
		Quantity:    quantity,
		UnitCost:    unitCost,
		SourceType:  entity.SourceInitial,
		Date:        time.Now(),
		Note:        note,
		CreatedBy:   createdBy,
	})
}

// RecordAdjustment posts a manual correction. Positive quantities need a
// unit cost and go in at that cost; negative quantities go out at WAC.
func (uc *UseCase) RecordAdjustment(ctx context.Context, companyID, warehouseID, itemID string, quantity decimal.Decimal, unitCost *decimal.Decimal, note, createdBy string) (*entity.StockMovement, error) {
	if quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if note == "" {
		note = "Manual stock adjustment"
	}
	if quantity.GreaterThan(decimal.Zero) {
		if unitCost == nil {
			return nil, domain.ErrInvalidInput
		}
		return uc.RecordIn(ctx, MovementInput{
			CompanyID:   companyID,
			WarehouseID: warehouseID,
			ItemID:      itemID,
			Quantity:    quantity,
			UnitCost:    *unitCost,
			SourceType:  entity.SourceAdjustment,
			Date:        time.Now(),
			Note:        note,
			CreatedBy:   createdBy,
		})
	}
	return uc.RecordOut(ctx, OutInput{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		ItemID:      itemID,
		Quantity:    quantity.Neg(),
		SourceType:  entity.SourceAdjustment,
		Date:        time.Now(),
		Note:        note,
		CreatedBy:   createdBy,
	})
}

// TransferResult holds both sides of a warehouse transfer.
type TransferResult struct {
	Out *entity.StockMovement
	In  *entity.StockMovement
}

// Transfer moves stock between warehouses in one transaction: OUT from the
// origin at its WAC, IN to the destination at that same frozen cost, so the
// company-wide value is preserved.
func (uc *UseCase) Transfer(ctx context.Context, companyID, fromWarehouseID, toWarehouseID, itemID string, quantity decimal.Decimal, note, createdBy string) (*TransferResult, error) {
	if fromWarehouseID == toWarehouseID || !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkItemAndWarehouse(companyID, itemID, fromWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.checkItemAndWarehouse(companyID, itemID, toWarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	res := &TransferResult{}
	err := uc.txRunner.Run(ctx, func(movements repository.StockMovementRepository) error {
		origin, err := uc.lockedBalance(movements, companyID, fromWarehouseID, itemID)
		if err != nil {
			return err
		}
		if !uc.policy.AllowNegative && origin.Quantity.LessThan(quantity) {
			return domain.ErrInsufficientStock
		}
		nextOrigin, unitCost, totalCost := domaininventory.ApplyOut(origin, quantity)

		outNote := note
		if outNote == "" {
			outNote = fmt.Sprintf("Transfer to warehouse %s", toWarehouseID)
		}
		res.Out = uc.buildMovement(MovementInput{
			CompanyID:   companyID,
			WarehouseID: fromWarehouseID,
			ItemID:      itemID,
			SourceType:  entity.SourceTransferOut,
			Date:        now,
			Note:        outNote,
			CreatedBy:   createdBy,
		}, quantity.Neg(), unitCost, totalCost.Neg(), nextOrigin)
		if err := movements.Create(res.Out); err != nil {
			return err
		}

		dest, err := uc.lockedBalance(movements, companyID, toWarehouseID, itemID)
		if err != nil {
			return err
		}
		nextDest, inTotal := domaininventory.ApplyIn(dest, quantity, unitCost)

		inNote := note
		if inNote == "" {
			inNote = fmt.Sprintf("Transfer from warehouse %s", fromWarehouseID)
		}
		res.In = uc.buildMovement(MovementInput{
			CompanyID:   companyID,
			WarehouseID: toWarehouseID,
			ItemID:      itemID,
			SourceType:  entity.SourceTransferIn,
			Date:        now,
			Note:        inNote,
			CreatedBy:   createdBy,
		}, quantity, unitCost, inTotal, nextDest)
		return movements.Create(res.In)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", companyID).
		Str("item_id", itemID).
		Str("from_warehouse", fromWarehouseID).
		Str("to_warehouse", toWarehouseID).
		Str("quantity", quantity.String()).
		Msg("stock transfer completed")
	return res, nil
}

// ReverseMovement posts the opposite adjustment for an existing movement
// (e.g. when the originating bill or invoice is voided). The original row is
// untouched.
func (uc *UseCase) ReverseMovement(ctx context.Context, companyID, movementID, reason, createdBy string) (*entity.StockMovement, error) {
	orig, err := uc.movementRepo.GetByID(movementID)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, domain.ErrNotFound
	}
	if orig.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if reason == "" {
		reason = fmt.Sprintf("Reversal of movement %s (%s)", orig.ID, orig.SourceType)
	}
	if orig.IsIn() {
		// Original was IN; the reversal goes out at the current WAC.
		return uc.RecordOut(ctx, OutInput{
			CompanyID:   orig.CompanyID,
			WarehouseID: orig.WarehouseID,
			ItemID:      orig.ItemID,
			Quantity:    orig.Quantity,
			SourceType:  entity.SourceAdjustment,
			Date:        time.Now(),
			Note:        reason,
			CreatedBy:   createdBy,
		})
	}
	// Original was OUT; bring the units back at the cost they left with.
	return uc.RecordIn(ctx, MovementInput{
		CompanyID:   orig.CompanyID,
		WarehouseID: orig.WarehouseID,
		ItemID:      orig.ItemID,
		Quantity:    orig.Quantity.Neg(),
		UnitCost:    orig.UnitCost,
		SourceType:  entity.SourceAdjustment,
		Date:        time.Now(),
		Note:        reason,
		CreatedBy:   createdBy,
	})
}

// Stock is the current state of an item's ledger.
type Stock struct {
	Quantity decimal.Decimal
	Value    decimal.Decimal
	WAC      decimal.Decimal
}

// ItemStock returns the current balance for an item, in one warehouse or
// summed across all of them (warehouseID empty). Reads run outside the write
// lock; a slightly stale WAC is acceptable here.
func (uc *UseCase) ItemStock(ctx context.Context, companyID, itemID, warehouseID string) (*Stock, error) {
	if warehouseID != "" {
		latest, err := uc.movementRepo.Latest(companyID, warehouseID, itemID)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return &Stock{Quantity: decimal.Zero, Value: decimal.Zero, WAC: decimal.Zero}, nil
		}
		b := domaininventory.Balance{Quantity: latest.BalanceQuantity, Value: latest.BalanceValue}
		return &Stock{Quantity: b.Quantity, Value: b.Value, WAC: b.WAC()}, nil
	}

	latests, err := uc.movementRepo.LatestPerWarehouse(companyID, itemID)
	if err != nil {
		return nil, err
	}
	total := domaininventory.Balance{Quantity: decimal.Zero, Value: decimal.Zero}
	for _, m := range latests {
		total.Quantity = total.Quantity.Add(m.BalanceQuantity)
		total.Value = total.Value.Add(m.BalanceValue)
	}
	return &Stock{Quantity: total.Quantity, Value: total.Value, WAC: total.WAC()}, nil
}

// MovementHistory lists an item's movements, newest first.
func (uc *UseCase) MovementHistory(ctx context.Context, companyID, itemID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	return uc.movementRepo.History(companyID, itemID, f)
}

// ValuationLine is one item of the stock valuation report.
type ValuationLine struct {
	ItemID   string
	SKU      string
	Name     string
	Quantity decimal.Decimal
	WAC      decimal.Decimal
	Value    decimal.Decimal
}

// ValuationReport values all tracked items of a company at WAC, in one
// warehouse or across all.
func (uc *UseCase) ValuationReport(ctx context.Context, companyID, warehouseID string) ([]ValuationLine, decimal.Decimal, error) {
	items, err := uc.itemRepo.ListTracked(companyID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	var lines []ValuationLine
	totalValue := decimal.Zero
	for _, item := range items {
		stock, err := uc.ItemStock(ctx, companyID, item.ID, warehouseID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if stock.Quantity.IsZero() {
			continue
		}
		lines = append(lines, ValuationLine{
			ItemID:   item.ID,
			SKU:      item.SKU,
			Name:     item.Name,
			Quantity: stock.Quantity,
			WAC:      stock.WAC,
			Value:    stock.Value,
		})
		totalValue = totalValue.Add(stock.Value)
	}
	return lines, totalValue, nil
}

// LowStockLine is one item below its minimum quantity.
type LowStockLine struct {
	ItemID   string
	SKU      string
	Name     string
	Quantity decimal.Decimal
	Minimum  decimal.Decimal
}

// LowStockItems lists tracked items whose on-hand quantity is at or below
// their minimum threshold.
func (uc *UseCase) LowStockItems(ctx context.Context, companyID string) ([]LowStockLine, error) {
	items, err := uc.itemRepo.ListTracked(companyID)
	if err != nil {
		return nil, err
	}
	var lines []LowStockLine
	for _, item := range items {
		if item.MinimumQuantity == nil {
			continue
		}
		stock, err := uc.ItemStock(ctx, companyID, item.ID, "")
		if err != nil {
			return nil, err
		}
		if stock.Quantity.LessThanOrEqual(*item.MinimumQuantity) {
			lines = append(lines, LowStockLine{
				ItemID:   item.ID,
				SKU:      item.SKU,
				Name:     item.Name,
				Quantity: stock.Quantity,
				Minimum:  *item.MinimumQuantity,
			})
		}
	}
	return lines, nil
}

// lockedBalance locks the latest balance row and returns its balance, the
// zero balance for a fresh ledger. A snapshot that could not have come from
// the fold aborts the posting: financial correctness beats availability.
func (uc *UseCase) lockedBalance(movements repository.StockMovementRepository, companyID, warehouseID, itemID string) (domaininventory.Balance, error) {
	latest, err := movements.LatestForUpdate(companyID, warehouseID, itemID)
	if err != nil {
		return domaininventory.Balance{}, err
	}
	if latest == nil {
		return domaininventory.Balance{Quantity: decimal.Zero, Value: decimal.Zero}, nil
	}
	b := domaininventory.Balance{Quantity: latest.BalanceQuantity, Value: latest.BalanceValue}
	if !uc.policy.AllowNegative && !domaininventory.Consistent(b) {
		return domaininventory.Balance{}, fmt.Errorf("movement %s: balance %s/%s: %w",
			latest.ID, b.Quantity.String(), b.Value.String(), domain.ErrLedgerCorrupt)
	}
	return b, nil
}

func (uc *UseCase) checkItemAndWarehouse(companyID, itemID, warehouseID string) error {
	if companyID == "" || itemID == "" || warehouseID == "" {
		return domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if item.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if !item.TrackQuantity {
		return domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *UseCase) buildMovement(in MovementInput, quantity, unitCost, totalCost decimal.Decimal, next domaininventory.Balance) *entity.StockMovement {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	now := time.Now()
	return &entity.StockMovement{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		WarehouseID:     in.WarehouseID,
		ItemID:          in.ItemID,
		SourceType:      in.SourceType,
		SourceID:        in.SourceID,
		Quantity:        quantity,
		UnitCost:        unitCost,
		TotalCost:       totalCost,
		MovementDate:    date,
		Note:            in.Note,
		BalanceQuantity: next.Quantity,
		BalanceValue:    next.Value,
		CreatedAt:       now,
		CreatedBy:       in.CreatedBy,
	}
}

func (uc *UseCase) logMovement(m *entity.StockMovement) {
	uc.log.Info().
		Str("movement_id", m.ID).
		Str("company_id", m.CompanyID).
		Str("warehouse_id", m.WarehouseID).
		Str("item_id", m.ItemID).
		Str("source_type", m.SourceType).
		Str("quantity", m.Quantity.String()).
		Str("balance_quantity", m.BalanceQuantity.String()).
		Str("balance_value", m.BalanceValue.String()).
		Msg("stock movement recorded")
}
