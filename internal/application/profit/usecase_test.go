package profit_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturino/ledger-api/internal/application/profit"
	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
	"github.com/facturino/ledger-api/pkg/logger"
)

// ---- in-memory fakes ----

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	lines    map[string][]*entity.InvoiceItem
}

func (f *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return f.invoices[id], nil
}
func (f *fakeInvoiceRepo) ItemsByInvoice(invoiceID string) ([]*entity.InvoiceItem, error) {
	return f.lines[invoiceID], nil
}

type fakeItemRepo struct {
	items map[string]*entity.Item
}

func (f *fakeItemRepo) GetByID(id string) (*entity.Item, error) { return f.items[id], nil }
func (f *fakeItemRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Item, error) {
	return nil, nil
}
func (f *fakeItemRepo) ListTracked(companyID string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range f.items {
		if it.CompanyID == companyID && it.TrackQuantity {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	bySource map[string]*entity.StockMovement // invoice line ID -> movement
	latest   map[string]*entity.StockMovement // itemID -> latest snapshot
}

func (f *fakeMovementRepo) Create(*entity.StockMovement) error { return nil }
func (f *fakeMovementRepo) GetByID(string) (*entity.StockMovement, error) {
	return nil, nil
}
func (f *fakeMovementRepo) Latest(companyID, warehouseID, itemID string) (*entity.StockMovement, error) {
	return f.latest[itemID], nil
}
func (f *fakeMovementRepo) LatestForUpdate(companyID, warehouseID, itemID string) (*entity.StockMovement, error) {
	return f.latest[itemID], nil
}
func (f *fakeMovementRepo) LatestPerWarehouse(companyID, itemID string) ([]*entity.StockMovement, error) {
	if m, ok := f.latest[itemID]; ok {
		return []*entity.StockMovement{m}, nil
	}
	return nil, nil
}
func (f *fakeMovementRepo) FindBySource(companyID, sourceType, sourceID string) (*entity.StockMovement, error) {
	return f.bySource[sourceID], nil
}
func (f *fakeMovementRepo) History(string, string, repository.MovementFilter) ([]*entity.StockMovement, error) {
	return nil, nil
}
func (f *fakeMovementRepo) ListAllOrdered(string) ([]*entity.StockMovement, error) {
	return nil, nil
}

type fakeCompanyRepo struct {
	stockEnabled map[string]bool
}

func (f *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return &entity.Company{ID: id}, nil
}
func (f *fakeCompanyRepo) ModuleEnabled(companyID, moduleName string) (bool, error) {
	if moduleName == entity.ModuleStock {
		return f.stockEnabled[companyID], nil
	}
	return true, nil
}

// ---- fixture ----

const (
	companyA    = "company-a"
	invoice1    = "inv-1"
	trackedItem = "item-tracked"
	serviceItem = "item-service"
)

type fixture struct {
	uc        *profit.UseCase
	invoices  *fakeInvoiceRepo
	movements *fakeMovementRepo
	companies *fakeCompanyRepo
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	invoices := &fakeInvoiceRepo{
		invoices: map[string]*entity.Invoice{
			invoice1: {ID: invoice1, CompanyID: companyA, Status: entity.InvoicePaid},
		},
		lines: map[string][]*entity.InvoiceItem{},
	}
	items := &fakeItemRepo{items: map[string]*entity.Item{
		trackedItem: {ID: trackedItem, CompanyID: companyA, SKU: "SKU-1", Name: "Widget", TrackQuantity: true},
		serviceItem: {ID: serviceItem, CompanyID: companyA, SKU: "SKU-2", Name: "Consulting", TrackQuantity: false},
	}}
	movements := &fakeMovementRepo{
		bySource: map[string]*entity.StockMovement{},
		latest:   map[string]*entity.StockMovement{},
	}
	companies := &fakeCompanyRepo{stockEnabled: map[string]bool{companyA: true}}

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := profit.NewUseCase(invoices, items, movements, companies, log)
	return &fixture{uc: uc, invoices: invoices, movements: movements, companies: companies}
}

func trackedLine(id string, qty, total string) *entity.InvoiceItem {
	itemID := trackedItem
	return &entity.InvoiceItem{
		ID: id, InvoiceID: invoice1, CompanyID: companyA, ItemID: &itemID,
		Name: "Widget", Quantity: dec(qty), Total: dec(total),
	}
}

func linkedMovement(lineID string, unitCost string) *entity.StockMovement {
	src := lineID
	return &entity.StockMovement{
		ID: "mov-" + lineID, CompanyID: companyA, ItemID: trackedItem,
		SourceType: entity.SourceInvoiceItem, SourceID: &src, UnitCost: dec(unitCost),
	}
}

// ---- tests ----

func TestGetInvoiceProfit_MovementCost(t *testing.T) {
	fx := newFixture(t)
	// 2 units sold for 150 total, shipped at a frozen cost of 50/unit.
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{trackedLine("line-1", "2", "150")}
	fx.movements.bySource["line-1"] = linkedMovement("line-1", "50")

	res, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{IncludeLines: true})
	require.NoError(t, err)
	require.True(t, res.Available)

	assert.Equal(t, "150.00", res.Revenue.StringFixed(2))
	assert.Equal(t, "100.00", res.COGS.StringFixed(2))
	assert.Equal(t, "50.00", res.GrossProfit.StringFixed(2))
	assert.Equal(t, "33.33", res.Margin.StringFixed(2))

	require.Len(t, res.Lines, 1)
	assert.Equal(t, profit.CostSourceMovement, res.Lines[0].CostSource)
	assert.True(t, res.Lines[0].HasCost)
}

func TestGetInvoiceProfit_CurrentWACFallback(t *testing.T) {
	fx := newFixture(t)
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{trackedLine("line-1", "2", "150")}
	// No linked movement, but the item has a ledger: 10 on hand worth 400.
	fx.movements.latest[trackedItem] = &entity.StockMovement{
		ID: "mov-x", CompanyID: companyA, ItemID: trackedItem,
		BalanceQuantity: dec("10"), BalanceValue: dec("400"),
	}

	res, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{IncludeLines: true})
	require.NoError(t, err)
	require.True(t, res.Available)

	assert.Equal(t, "80.00", res.COGS.StringFixed(2), "2 units at the 40.00 current WAC")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, profit.CostSourceCurrentWAC, res.Lines[0].CostSource)
}

func TestGetInvoiceProfit_UntrackedOnlyIsUnavailable(t *testing.T) {
	fx := newFixture(t)
	itemID := serviceItem
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{{
		ID: "line-1", InvoiceID: invoice1, CompanyID: companyA, ItemID: &itemID,
		Name: "Consulting", Quantity: dec("1"), Total: dec("500"),
	}}

	res, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, "no_stock_data", res.Reason)
	assert.Equal(t, "500.00", res.Revenue.StringFixed(2), "revenue is still summed")
}

func TestGetInvoiceProfit_StockModuleDisabled(t *testing.T) {
	fx := newFixture(t)
	fx.companies.stockEnabled[companyA] = false
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{trackedLine("line-1", "1", "100")}

	res, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, "stock_disabled", res.Reason)
}

func TestGetInvoiceProfit_StrictFailsOnPartialData(t *testing.T) {
	fx := newFixture(t)
	// line-1 has a cost; line-2 is tracked with an empty ledger.
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{
		trackedLine("line-1", "2", "150"),
		trackedLine("line-2", "1", "80"),
	}
	fx.movements.bySource["line-1"] = linkedMovement("line-1", "50")

	relaxed, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{})
	require.NoError(t, err)
	require.True(t, relaxed.Available, "default mode aggregates what is available")
	assert.Equal(t, "230.00", relaxed.Revenue.StringFixed(2))
	assert.Equal(t, "100.00", relaxed.COGS.StringFixed(2), "the costless line contributes revenue only")

	strict, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{Strict: true})
	require.NoError(t, err)
	assert.False(t, strict.Available)
	assert.Equal(t, "partial_stock_data", strict.Reason)
}

func TestGetInvoiceProfit_NegativeMargin(t *testing.T) {
	fx := newFixture(t)
	// Sold below cost: revenue 80, cost 100.
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{trackedLine("line-1", "2", "80")}
	fx.movements.bySource["line-1"] = linkedMovement("line-1", "50")

	res, err := fx.uc.GetInvoiceProfit(context.Background(), companyA, invoice1, profit.Options{})
	require.NoError(t, err)
	require.True(t, res.Available)
	assert.Equal(t, "-20.00", res.GrossProfit.StringFixed(2))
	assert.Equal(t, "-25.00", res.Margin.StringFixed(2))
}

func TestGetInvoiceProfit_TenantScoped(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.uc.GetInvoiceProfit(context.Background(), "company-b", invoice1, profit.Options{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = fx.uc.GetInvoiceProfit(context.Background(), companyA, "missing", profit.Options{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetInvoicesProfitSummary_MeanOfMargins(t *testing.T) {
	fx := newFixture(t)
	itemID := trackedItem

	// inv-1: margin 33.33. inv-2: margin 50.00. inv-3: unavailable.
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{trackedLine("line-1", "2", "150")}
	fx.movements.bySource["line-1"] = linkedMovement("line-1", "50")

	fx.invoices.invoices["inv-2"] = &entity.Invoice{ID: "inv-2", CompanyID: companyA}
	src := "line-2"
	fx.invoices.lines["inv-2"] = []*entity.InvoiceItem{{
		ID: src, InvoiceID: "inv-2", CompanyID: companyA, ItemID: &itemID,
		Name: "Widget", Quantity: dec("1"), Total: dec("100"),
	}}
	fx.movements.bySource[src] = linkedMovement(src, "50")

	fx.invoices.invoices["inv-3"] = &entity.Invoice{ID: "inv-3", CompanyID: companyA}
	svcID := serviceItem
	fx.invoices.lines["inv-3"] = []*entity.InvoiceItem{{
		ID: "line-3", InvoiceID: "inv-3", CompanyID: companyA, ItemID: &svcID,
		Name: "Consulting", Quantity: dec("1"), Total: dec("999"),
	}}

	s, err := fx.uc.GetInvoicesProfitSummary(context.Background(), companyA, []string{invoice1, "inv-2", "inv-3"})
	require.NoError(t, err)
	require.True(t, s.Available)

	assert.Equal(t, 2, s.InvoicesAnalyzed, "the unavailable invoice is excluded, not fatal")
	assert.Equal(t, "250.00", s.TotalRevenue.StringFixed(2))
	assert.Equal(t, "150.00", s.TotalCOGS.StringFixed(2))
	assert.Equal(t, "100.00", s.TotalProfit.StringFixed(2))
	// (33.33 + 50.00) / 2
	assert.Equal(t, "41.67", s.AvgMargin.StringFixed(2))
}

func TestGetInvoicesProfitSummary_NoneAnalyzed(t *testing.T) {
	fx := newFixture(t)
	svcID := serviceItem
	fx.invoices.lines[invoice1] = []*entity.InvoiceItem{{
		ID: "line-1", InvoiceID: invoice1, CompanyID: companyA, ItemID: &svcID,
		Name: "Consulting", Quantity: dec("1"), Total: dec("100"),
	}}

	s, err := fx.uc.GetInvoicesProfitSummary(context.Background(), companyA, []string{invoice1})
	require.NoError(t, err)
	assert.False(t, s.Available)
	assert.Equal(t, 0, s.InvoicesAnalyzed)
}
