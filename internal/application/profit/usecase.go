// Package profit derives invoice-level gross profit and COGS from the stock
// ledger: exact costs from the movement linked to each sale line, falling
// back to the item's current WAC when no link exists.
package profit

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/entity"
	domaininventory "github.com/facturino/ledger-api/internal/domain/inventory"
	"github.com/facturino/ledger-api/internal/domain/repository"
	"github.com/facturino/ledger-api/pkg/logger"
)

// CostSource tags where a line's unit cost came from. Closed set: every call
// site must handle each case.
type CostSource string

const (
	// CostSourceMovement: exact historical cost from the stock movement
	// linked to the sale line. Immutable once written.
	CostSourceMovement CostSource = "movement"
	// CostSourceCurrentWAC: approximation from the item's WAC at query
	// time. May drift from the cost at sale time.
	CostSourceCurrentWAC CostSource = "current_wac"
	// CostSourceNotTracked: service/untracked item, revenue only.
	CostSourceNotTracked CostSource = "not_tracked"
	// CostSourceNone: tracked item with no ledger data at all.
	CostSourceNone CostSource = "none"
)

// Unavailability reasons.
const (
	ReasonStockDisabled    = "stock_disabled"
	ReasonNoStockData      = "no_stock_data"
	ReasonPartialStockData = "partial_stock_data" // strict mode only
)

// Options controls a profit query.
type Options struct {
	// Strict forces the whole invoice unavailable when any tracked line
	// lacks cost data. Default aggregates whatever is available.
	Strict bool
	// IncludeLines adds the per-line breakdown to the result.
	IncludeLines bool
}

// LineProfit is the per-line breakdown.
type LineProfit struct {
	InvoiceItemID string
	ItemID        *string
	Name          string
	Quantity      decimal.Decimal
	Revenue       decimal.Decimal
	UnitCost      decimal.Decimal
	COGS          decimal.Decimal
	GrossProfit   decimal.Decimal
	Margin        decimal.Decimal
	HasCost       bool
	CostSource    CostSource
}

// ProfitResult is the invoice-level outcome. When Available is false, Reason
// explains why and the monetary fields carry only what could be computed
// (revenue is always summed).
type ProfitResult struct {
	Available   bool
	Reason      string
	Revenue     decimal.Decimal
	COGS        decimal.Decimal
	GrossProfit decimal.Decimal
	Margin      decimal.Decimal
	Lines       []LineProfit
}

// Summary aggregates profit across invoices. Unavailable invoices are
// excluded from the aggregates but never fail the summary.
type Summary struct {
	Available        bool
	TotalRevenue     decimal.Decimal
	TotalCOGS        decimal.Decimal
	TotalProfit      decimal.Decimal
	AvgMargin        decimal.Decimal
	InvoicesAnalyzed int
}

// UseCase answers gross-profit queries against invoices and the stock ledger.
type UseCase struct {
	invoiceRepo  repository.InvoiceRepository
	itemRepo     repository.ItemRepository
	movementRepo repository.StockMovementRepository
	companyRepo  repository.CompanyRepository
	log          *logger.Logger
}

// NewUseCase builds the profit engine.
func NewUseCase(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.ItemRepository,
	movementRepo repository.StockMovementRepository,
	companyRepo repository.CompanyRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		companyRepo:  companyRepo,
		log:          log,
	}
}

// GetInvoiceProfit computes revenue, COGS, gross profit and margin for one
// invoice. Cost source priority per line: linked stock movement, then
// current WAC, then none.
func (uc *UseCase) GetInvoiceProfit(ctx context.Context, companyID, invoiceID string, opts Options) (*ProfitResult, error) {
	invoice, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if invoice.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	enabled, err := uc.companyRepo.ModuleEnabled(invoice.CompanyID, entity.ModuleStock)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &ProfitResult{Available: false, Reason: ReasonStockDisabled}, nil
	}

	lines, err := uc.invoiceRepo.ItemsByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	cogs := decimal.Zero
	hasStockData := false
	missingCost := false
	var breakdown []LineProfit

	for _, line := range lines {
		lp, err := uc.lineCost(invoice.CompanyID, line)
		if err != nil {
			return nil, err
		}
		revenue = revenue.Add(lp.Revenue)
		if lp.HasCost {
			hasStockData = true
			cogs = cogs.Add(lp.COGS)
		} else if lp.CostSource == CostSourceNone {
			// Tracked item with an empty ledger.
			missingCost = true
		}
		if opts.IncludeLines {
			breakdown = append(breakdown, *lp)
		}
	}

	if len(lines) > 0 && !hasStockData {
		return &ProfitResult{
			Available: false,
			Reason:    ReasonNoStockData,
			Revenue:   revenue,
			Lines:     breakdown,
		}, nil
	}
	if opts.Strict && missingCost {
		return &ProfitResult{
			Available: false,
			Reason:    ReasonPartialStockData,
			Revenue:   revenue,
			Lines:     breakdown,
		}, nil
	}

	grossProfit := revenue.Sub(cogs)
	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = grossProfit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &ProfitResult{
		Available:   true,
		Revenue:     revenue,
		COGS:        cogs,
		GrossProfit: grossProfit,
		Margin:      margin,
		Lines:       breakdown,
	}, nil
}

// lineCost resolves the cost basis for one invoice line.
func (uc *UseCase) lineCost(companyID string, line *entity.InvoiceItem) (*LineProfit, error) {
	lp := &LineProfit{
		InvoiceItemID: line.ID,
		ItemID:        line.ItemID,
		Name:          line.Name,
		Quantity:      line.Quantity.Abs(),
		Revenue:       line.Total,
		CostSource:    CostSourceNotTracked,
	}

	if line.ItemID == nil {
		return lp, nil
	}
	item, err := uc.itemRepo.GetByID(*line.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.TrackQuantity {
		return lp, nil
	}

	// Priority 1: the movement written when this sale line shipped.
	mov, err := uc.movementRepo.FindBySource(companyID, entity.SourceInvoiceItem, line.ID)
	if err != nil {
		return nil, err
	}
	if mov != nil {
		lp.fill(mov.UnitCost, CostSourceMovement)
		return lp, nil
	}

	// Priority 2: current WAC, an approximation flagged as such.
	wac, found, err := uc.currentWAC(companyID, item.ID, line.WarehouseID)
	if err != nil {
		return nil, err
	}
	if found {
		lp.fill(wac, CostSourceCurrentWAC)
		return lp, nil
	}

	// Priority 3: tracked but never moved.
	lp.CostSource = CostSourceNone
	return lp, nil
}

func (lp *LineProfit) fill(unitCost decimal.Decimal, source CostSource) {
	lp.UnitCost = unitCost
	lp.COGS = lp.Quantity.Mul(unitCost)
	lp.GrossProfit = lp.Revenue.Sub(lp.COGS)
	if !lp.Revenue.IsZero() {
		lp.Margin = lp.GrossProfit.Div(lp.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	lp.HasCost = true
	lp.CostSource = source
}

// currentWAC reads the item's WAC from the latest balance snapshot, in the
// line's warehouse or across all warehouses. found is false when the item
// has no ledger entry anywhere.
func (uc *UseCase) currentWAC(companyID, itemID string, warehouseID *string) (decimal.Decimal, bool, error) {
	if warehouseID != nil {
		latest, err := uc.movementRepo.Latest(companyID, *warehouseID, itemID)
		if err != nil {
			return decimal.Zero, false, err
		}
		if latest != nil {
			b := domaininventory.Balance{Quantity: latest.BalanceQuantity, Value: latest.BalanceValue}
			if b.WAC().GreaterThan(decimal.Zero) {
				return b.WAC().Round(2), true, nil
			}
		}
	}

	latests, err := uc.movementRepo.LatestPerWarehouse(companyID, itemID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(latests) == 0 {
		return decimal.Zero, false, nil
	}
	total := domaininventory.Balance{Quantity: decimal.Zero, Value: decimal.Zero}
	for _, m := range latests {
		total.Quantity = total.Quantity.Add(m.BalanceQuantity)
		total.Value = total.Value.Add(m.BalanceValue)
	}
	wac := total.WAC()
	if wac.GreaterThan(decimal.Zero) {
		return wac.Round(2), true, nil
	}
	// Ledger exists but is empty-valued; still counts as data.
	return decimal.Zero, true, nil
}

// GetInvoicesProfitSummary aggregates profit across invoices. AvgMargin is
// the mean of the per-invoice margins of the analyzed invoices.
func (uc *UseCase) GetInvoicesProfitSummary(ctx context.Context, companyID string, invoiceIDs []string) (*Summary, error) {
	s := &Summary{
		TotalRevenue: decimal.Zero,
		TotalCOGS:    decimal.Zero,
		TotalProfit:  decimal.Zero,
		AvgMargin:    decimal.Zero,
	}
	marginSum := decimal.Zero
	for _, id := range invoiceIDs {
		res, err := uc.GetInvoiceProfit(ctx, companyID, id, Options{})
		if err != nil {
			return nil, err
		}
		if !res.Available {
			continue
		}
		s.TotalRevenue = s.TotalRevenue.Add(res.Revenue)
		s.TotalCOGS = s.TotalCOGS.Add(res.COGS)
		s.TotalProfit = s.TotalProfit.Add(res.GrossProfit)
		marginSum = marginSum.Add(res.Margin)
		s.InvoicesAnalyzed++
	}
	if s.InvoicesAnalyzed == 0 {
		return s, nil
	}
	s.Available = true
	s.AvgMargin = marginSum.Div(decimal.NewFromInt(int64(s.InvoicesAnalyzed))).Round(2)
	return s, nil
}
