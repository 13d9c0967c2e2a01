package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/facturino/ledger-api/internal/application/inventory"
	"github.com/facturino/ledger-api/internal/domain"
	"github.com/facturino/ledger-api/internal/domain/entity"
	"github.com/facturino/ledger-api/internal/domain/repository"
	"github.com/facturino/ledger-api/pkg/logger"
)

// ---- in-memory fakes ----

type fakeMovementRepo struct {
	movements []*entity.StockMovement
}

func (f *fakeMovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	f.movements = append(f.movements, &cp)
	return nil
}

func (f *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range f.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMovementRepo) Latest(companyID, warehouseID, itemID string) (*entity.StockMovement, error) {
	for i := len(f.movements) - 1; i >= 0; i-- {
		m := f.movements[i]
		if m.CompanyID == companyID && m.WarehouseID == warehouseID && m.ItemID == itemID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMovementRepo) LatestForUpdate(companyID, warehouseID, itemID string) (*entity.StockMovement, error) {
	return f.Latest(companyID, warehouseID, itemID)
}

func (f *fakeMovementRepo) LatestPerWarehouse(companyID, itemID string) ([]*entity.StockMovement, error) {
	seen := map[string]bool{}
	var out []*entity.StockMovement
	for i := len(f.movements) - 1; i >= 0; i-- {
		m := f.movements[i]
		if m.CompanyID == companyID && m.ItemID == itemID && !seen[m.WarehouseID] {
			seen[m.WarehouseID] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) FindBySource(companyID, sourceType, sourceID string) (*entity.StockMovement, error) {
	for _, m := range f.movements {
		if m.CompanyID == companyID && m.SourceType == sourceType &&
			m.SourceID != nil && *m.SourceID == sourceID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMovementRepo) History(companyID, itemID string, _ repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(f.movements) - 1; i >= 0; i-- {
		m := f.movements[i]
		if m.CompanyID == companyID && m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) ListAllOrdered(companyID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range f.movements {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeStockTxRunner struct {
	repo *fakeMovementRepo
}

func (f *fakeStockTxRunner) Run(ctx context.Context, fn func(movements repository.StockMovementRepository) error) error {
	snapshot := make([]*entity.StockMovement, len(f.repo.movements))
	copy(snapshot, f.repo.movements)
	if err := fn(f.repo); err != nil {
		f.repo.movements = snapshot
		return err
	}
	return nil
}

type fakeItemRepo struct {
	items map[string]*entity.Item
}

func (f *fakeItemRepo) GetByID(id string) (*entity.Item, error) { return f.items[id], nil }
func (f *fakeItemRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Item, error) {
	for _, it := range f.items {
		if it.CompanyID == companyID && it.SKU == sku {
			return it, nil
		}
	}
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

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
}

func (f *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return f.warehouses[id], nil
}
func (f *fakeWarehouseRepo) ListByCompany(companyID string) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range f.warehouses {
		if w.CompanyID == companyID {
			out = append(out, w)
		}
	}
	return out, nil
}
func (f *fakeWarehouseRepo) GetOrCreateDefault(companyID string) (*entity.Warehouse, error) {
	for _, w := range f.warehouses {
		if w.CompanyID == companyID && w.IsDefault {
			return w, nil
		}
	}
	return nil, nil
}

// ---- fixture ----

const (
	companyA    = "company-a"
	warehouse1  = "wh-1"
	warehouse2  = "wh-2"
	trackedItem = "item-tracked"
	serviceItem = "item-service"
)

type fixture struct {
	uc        *appinventory.UseCase
	movements *fakeMovementRepo
	items     *fakeItemRepo
}

func newFixture(t *testing.T, policy appinventory.Policy) *fixture {
	t.Helper()

	minQty := decimal.NewFromInt(5)
	items := &fakeItemRepo{items: map[string]*entity.Item{
		trackedItem: {
			ID: trackedItem, CompanyID: companyA, SKU: "SKU-1", Name: "Widget",
			TrackQuantity: true, MinimumQuantity: &minQty,
		},
		serviceItem: {
			ID: serviceItem, CompanyID: companyA, SKU: "SKU-2", Name: "Consulting",
			TrackQuantity: false,
		},
		"item-other-company": {
			ID: "item-other-company", CompanyID: "company-b", SKU: "SKU-9", Name: "Foreign",
			TrackQuantity: true,
		},
	}}
	warehouses := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		warehouse1: {ID: warehouse1, CompanyID: companyA, Name: "Main", IsDefault: true},
		warehouse2: {ID: warehouse2, CompanyID: companyA, Name: "Annex"},
	}}
	movements := &fakeMovementRepo{}

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := appinventory.NewUseCase(&fakeStockTxRunner{repo: movements}, movements, items, warehouses, policy, log)
	return &fixture{uc: uc, movements: movements, items: items}
}

func recordIn(t *testing.T, fx *fixture, qty, cost string) *entity.StockMovement {
	t.Helper()
	mov, err := fx.uc.RecordIn(context.Background(), appinventory.MovementInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec(qty),
		UnitCost:    dec(cost),
		SourceType:  entity.SourceBillItem,
	})
	require.NoError(t, err)
	return mov
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ---- tests ----

func TestRecordOut_CostAtRoundedWAC(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")
	recordIn(t, fx, "5", "120")

	mov, err := fx.uc.RecordOut(context.Background(), appinventory.OutInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("3"),
		SourceType:  entity.SourceInvoiceItem,
	})
	require.NoError(t, err)

	assert.Equal(t, "-3", mov.Quantity.String())
	assert.Equal(t, "106.67", mov.UnitCost.StringFixed(2))
	assert.Equal(t, "-320.01", mov.TotalCost.StringFixed(2))
	assert.Equal(t, "12", mov.BalanceQuantity.String())
	assert.Equal(t, "1279.99", mov.BalanceValue.StringFixed(2))
}

func TestRecordOut_InsufficientStockUnderDefaultPolicy(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "2", "10")

	_, err := fx.uc.RecordOut(context.Background(), appinventory.OutInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("3"),
		SourceType:  entity.SourceInvoiceItem,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, fx.movements.movements, 1, "the failed posting must not append a row")
}

func TestRecordOut_NegativeAllowedByPolicy(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{AllowNegative: true})
	recordIn(t, fx, "2", "10")

	mov, err := fx.uc.RecordOut(context.Background(), appinventory.OutInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("5"),
		SourceType:  entity.SourceInvoiceItem,
	})
	require.NoError(t, err)
	assert.Equal(t, "-3", mov.BalanceQuantity.String())
	assert.False(t, mov.BalanceValue.IsNegative())
}

func TestRecordIn_ValidatesItemAndWarehouse(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	ctx := context.Background()
	in := appinventory.MovementInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		Quantity:    dec("1"),
		UnitCost:    dec("1"),
		SourceType:  entity.SourceBillItem,
	}

	in.ItemID = "missing"
	_, err := fx.uc.RecordIn(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in.ItemID = "item-other-company"
	_, err = fx.uc.RecordIn(ctx, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	in.ItemID = serviceItem
	_, err = fx.uc.RecordIn(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.ItemID = trackedItem
	in.Quantity = dec("-1")
	_, err = fx.uc.RecordIn(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordIn_RefusesCorruptLedger(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "1", "10")
	// Hand-corrupt the latest snapshot: negative value cannot result from
	// any fold.
	fx.movements.movements[0].BalanceValue = dec("-50")

	_, err := fx.uc.RecordIn(context.Background(), appinventory.MovementInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("1"),
		UnitCost:    dec("10"),
		SourceType:  entity.SourceBillItem,
	})
	assert.ErrorIs(t, err, domain.ErrLedgerCorrupt)
}

func TestRecordAdjustment_SignSelectsDirection(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")
	ctx := context.Background()

	cost := dec("90")
	up, err := fx.uc.RecordAdjustment(ctx, companyA, warehouse1, trackedItem, dec("2"), &cost, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAdjustment, up.SourceType)
	assert.Equal(t, "12", up.BalanceQuantity.String())

	down, err := fx.uc.RecordAdjustment(ctx, companyA, warehouse1, trackedItem, dec("-4"), nil, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "8", down.BalanceQuantity.String())

	// Positive adjustment without a cost basis is rejected.
	_, err = fx.uc.RecordAdjustment(ctx, companyA, warehouse1, trackedItem, dec("1"), nil, "", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = fx.uc.RecordAdjustment(ctx, companyA, warehouse1, trackedItem, decimal.Zero, &cost, "", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_PreservesCompanyWideValue(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")
	recordIn(t, fx, "5", "120")

	res, err := fx.uc.Transfer(context.Background(), companyA, warehouse1, warehouse2, trackedItem, dec("6"), "", "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.SourceTransferOut, res.Out.SourceType)
	assert.Equal(t, entity.SourceTransferIn, res.In.SourceType)
	// Both sides carry the origin's frozen WAC.
	assert.Equal(t, "106.67", res.Out.UnitCost.StringFixed(2))
	assert.Equal(t, "106.67", res.In.UnitCost.StringFixed(2))

	stock, err := fx.uc.ItemStock(context.Background(), companyA, trackedItem, "")
	require.NoError(t, err)
	assert.Equal(t, "15", stock.Quantity.String())
	assert.Equal(t, "1600.00", stock.Value.StringFixed(2))
}

func TestTransfer_Validation(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "2", "10")
	ctx := context.Background()

	_, err := fx.uc.Transfer(ctx, companyA, warehouse1, warehouse1, trackedItem, dec("1"), "", "u")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = fx.uc.Transfer(ctx, companyA, warehouse1, warehouse2, trackedItem, dec("5"), "", "u")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, fx.movements.movements, 1, "a failed transfer must not post either side")
}

func TestReverseMovement_OutComesBackAtFrozenCost(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")
	out, err := fx.uc.RecordOut(context.Background(), appinventory.OutInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("4"),
		SourceType:  entity.SourceInvoiceItem,
	})
	require.NoError(t, err)

	rev, err := fx.uc.ReverseMovement(context.Background(), companyA, out.ID, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAdjustment, rev.SourceType)
	assert.Equal(t, "4", rev.Quantity.String())
	assert.True(t, out.UnitCost.Equal(rev.UnitCost), "reversal restores the cost the units left with")
	assert.Equal(t, "10", rev.BalanceQuantity.String())
	assert.Equal(t, "1000.00", rev.BalanceValue.StringFixed(2))
}

func TestReverseMovement_InGoesOutAtCurrentWAC(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	in := recordIn(t, fx, "10", "100")

	rev, err := fx.uc.ReverseMovement(context.Background(), companyA, in.ID, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "-10", rev.Quantity.String())
	assert.True(t, rev.BalanceQuantity.IsZero())
}

func TestReverseMovement_TenantScoped(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	in := recordIn(t, fx, "10", "100")

	_, err := fx.uc.ReverseMovement(context.Background(), "company-b", in.ID, "", "user-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = fx.uc.ReverseMovement(context.Background(), companyA, "missing", "", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStock_SumsAcrossWarehouses(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")
	_, err := fx.uc.RecordIn(context.Background(), appinventory.MovementInput{
		CompanyID:   companyA,
		WarehouseID: warehouse2,
		ItemID:      trackedItem,
		Quantity:    dec("5"),
		UnitCost:    dec("120"),
		SourceType:  entity.SourceBillItem,
	})
	require.NoError(t, err)

	single, err := fx.uc.ItemStock(context.Background(), companyA, trackedItem, warehouse1)
	require.NoError(t, err)
	assert.Equal(t, "10", single.Quantity.String())
	assert.Equal(t, "100.00", single.WAC.StringFixed(2))

	all, err := fx.uc.ItemStock(context.Background(), companyA, trackedItem, "")
	require.NoError(t, err)
	assert.Equal(t, "15", all.Quantity.String())
	assert.Equal(t, "1600.00", all.Value.StringFixed(2))

	empty, err := fx.uc.ItemStock(context.Background(), companyA, serviceItem, warehouse1)
	require.NoError(t, err)
	assert.True(t, empty.Quantity.IsZero())
	assert.True(t, empty.WAC.IsZero())
}

func TestValuationReport(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")

	lines, total, err := fx.uc.ValuationReport(context.Background(), companyA, "")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, trackedItem, lines[0].ItemID)
	assert.Equal(t, "1000.00", lines[0].Value.StringFixed(2))
	assert.Equal(t, "1000.00", total.StringFixed(2))
}

func TestLowStockItems(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")

	lines, err := fx.uc.LowStockItems(context.Background(), companyA)
	require.NoError(t, err)
	assert.Empty(t, lines, "10 on hand is above the minimum of 5")

	_, err = fx.uc.RecordOut(context.Background(), appinventory.OutInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("7"),
		SourceType:  entity.SourceInvoiceItem,
	})
	require.NoError(t, err)

	lines, err = fx.uc.LowStockItems(context.Background(), companyA)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, trackedItem, lines[0].ItemID)
	assert.Equal(t, "3", lines[0].Quantity.String())
}

func TestLedgerReplay_SnapshotsMatchFold(t *testing.T) {
	fx := newFixture(t, appinventory.Policy{})
	recordIn(t, fx, "10", "100")
	recordIn(t, fx, "5", "120")
	_, err := fx.uc.RecordOut(context.Background(), appinventory.OutInput{
		CompanyID:   companyA,
		WarehouseID: warehouse1,
		ItemID:      trackedItem,
		Quantity:    dec("3"),
		SourceType:  entity.SourceInvoiceItem,
	})
	require.NoError(t, err)

	all, err := fx.movements.ListAllOrdered(companyA)
	require.NoError(t, err)

	qty, value := decimal.Zero, decimal.Zero
	for _, m := range all {
		qty = qty.Add(m.Quantity)
		value = value.Add(m.TotalCost)
		assert.True(t, qty.Equal(m.BalanceQuantity), "movement %s quantity", m.ID)
		assert.True(t, value.Equal(m.BalanceValue), "movement %s value", m.ID)
	}
}
