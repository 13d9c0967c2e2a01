package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/facturino/ledger-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func zero() inventory.Balance {
	return inventory.Balance{Quantity: decimal.Zero, Value: decimal.Zero}
}

func TestApplyIn_AccumulatesQuantityAndValue(t *testing.T) {
	b, total := inventory.ApplyIn(zero(), dec("10"), dec("100"))

	assert.True(t, dec("10").Equal(b.Quantity))
	assert.True(t, dec("1000").Equal(b.Value))
	assert.True(t, dec("1000").Equal(total))

	b, total = inventory.ApplyIn(b, dec("5"), dec("120"))
	assert.True(t, dec("15").Equal(b.Quantity))
	assert.True(t, dec("1600").Equal(b.Value))
	assert.True(t, dec("600").Equal(total))
}

func TestApplyOut_FreezesRoundedWACBeforeMultiplying(t *testing.T) {
	// IN 10 @ 100, IN 5 @ 120 -> WAC 1600/15 = 106.666... rounds to 106.67.
	b, _ := inventory.ApplyIn(zero(), dec("10"), dec("100"))
	b, _ = inventory.ApplyIn(b, dec("5"), dec("120"))

	next, unitCost, totalCost := inventory.ApplyOut(b, dec("3"))

	assert.Equal(t, "106.67", unitCost.StringFixed(2))
	assert.Equal(t, "320.01", totalCost.StringFixed(2))
	assert.True(t, dec("12").Equal(next.Quantity))
	assert.Equal(t, "1279.99", next.Value.StringFixed(2))
}

func TestApplyOut_FullStockOutFloorsValueAtZero(t *testing.T) {
	// 3 @ 1.00 then 3 @ 0.99: WAC 0.995 rounds up to 1.00, so draining all
	// six units removes 6.00 from a 5.97 value. The floor keeps it at zero.
	b, _ := inventory.ApplyIn(zero(), dec("3"), dec("1.00"))
	b, _ = inventory.ApplyIn(b, dec("3"), dec("0.99"))

	next, unitCost, _ := inventory.ApplyOut(b, dec("6"))

	assert.Equal(t, "1.00", unitCost.StringFixed(2))
	assert.True(t, next.Quantity.IsZero())
	assert.True(t, next.Value.IsZero())
}

func TestWAC_ZeroWhenNoStock(t *testing.T) {
	assert.True(t, zero().WAC().IsZero())

	negative := inventory.Balance{Quantity: dec("-2"), Value: decimal.Zero}
	assert.True(t, negative.WAC().IsZero())
}

func TestApplyOut_BeyondZeroCarriesNoCost(t *testing.T) {
	// Oversell from an empty ledger: WAC is zero, so the movement carries
	// zero cost and the value stays at zero.
	next, unitCost, totalCost := inventory.ApplyOut(zero(), dec("4"))

	assert.True(t, dec("-4").Equal(next.Quantity))
	assert.True(t, next.Value.IsZero())
	assert.True(t, unitCost.IsZero())
	assert.True(t, totalCost.IsZero())
}

func TestConsistent(t *testing.T) {
	assert.True(t, inventory.Consistent(zero()))
	assert.True(t, inventory.Consistent(inventory.Balance{Quantity: dec("5"), Value: dec("50")}))
	// A cent of rounding residue on an empty ledger is tolerated.
	assert.True(t, inventory.Consistent(inventory.Balance{Quantity: decimal.Zero, Value: dec("0.01")}))

	assert.False(t, inventory.Consistent(inventory.Balance{Quantity: dec("5"), Value: dec("-1")}))
	assert.False(t, inventory.Consistent(inventory.Balance{Quantity: decimal.Zero, Value: dec("7")}))
}
