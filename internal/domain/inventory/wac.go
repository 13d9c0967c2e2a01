// Package inventory holds the pure weighted-average-cost ledger fold (domain
// service). The ledger is a fold: each balance is derived only from the
// previous balance and the movement being applied, no hidden state.
package inventory

import "github.com/shopspring/decimal"

// Balance is the running (quantity, value) state of one (item, warehouse)
// ledger after a movement.
type Balance struct {
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// WAC returns the weighted average cost of the balance, zero when no stock is
// on hand.
func (b Balance) WAC() decimal.Decimal {
	if b.Quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return b.Value.Div(b.Quantity)
}

// ApplyIn folds an incoming movement into the balance. Returns the new
// balance and the movement's total cost (quantity x unitCost).
func ApplyIn(prev Balance, quantity, unitCost decimal.Decimal) (Balance, decimal.Decimal) {
	totalCost := quantity.Mul(unitCost)
	return Balance{
		Quantity: prev.Quantity.Add(quantity),
		Value:    prev.Value.Add(totalCost),
	}, totalCost
}

// ApplyOut folds an outgoing movement into the balance. The unit cost is the
// current WAC rounded half-up to the currency's 2 minor digits *before*
// multiplying, so the frozen per-unit figure and the value delta agree.
// Returns the new balance, the unit cost frozen into the movement, and the
// total cost removed. The value is floored at zero so rounding residue on a
// full stock-out cannot leave a phantom negative value.
func ApplyOut(prev Balance, quantity decimal.Decimal) (Balance, decimal.Decimal, decimal.Decimal) {
	unitCost := prev.WAC().Round(2)
	totalCost := quantity.Mul(unitCost)
	value := prev.Value.Sub(totalCost)
	if value.LessThan(decimal.Zero) {
		value = decimal.Zero
	}
	return Balance{
		Quantity: prev.Quantity.Sub(quantity),
		Value:    value,
	}, unitCost, totalCost
}

// Consistent reports whether a stored post-movement snapshot could have been
// produced by folding some movement into the predecessor: value must be
// non-negative and zero quantity must imply zero value (up to a cent of
// rounding residue). Used to detect ledger corruption before posting on top.
func Consistent(b Balance) bool {
	if b.Value.LessThan(decimal.Zero) {
		return false
	}
	if b.Quantity.IsZero() && b.Value.GreaterThan(decimal.NewFromFloat(0.01)) {
		return false
	}
	return true
}
