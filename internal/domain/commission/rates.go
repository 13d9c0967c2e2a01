// Package commission holds the pure commission split calculation (domain
// service). Rates are applied at full precision; only the final amounts are
// rounded, half-up to 2 decimals.
package commission

import "github.com/shopspring/decimal"

// Rates is the tier rate table for recurring commissions. When the direct
// partner has an active upline, DirectWithUpline and Upline apply regardless
// of tier; otherwise the solo tier rate applies alone.
type Rates struct {
	DirectFree       decimal.Decimal // solo rate, free tier
	DirectPlus       decimal.Decimal // solo rate, plus tier
	DirectWithUpline decimal.Decimal // direct share under an upline split
	Upline           decimal.Decimal // upline share under an upline split
}

// DefaultRates returns the program's policy rates:
// free 20%, plus 22%, split 15% + 5%.
func DefaultRates() Rates {
	return Rates{
		DirectFree:       decimal.NewFromFloat(0.20),
		DirectPlus:       decimal.NewFromFloat(0.22),
		DirectWithUpline: decimal.NewFromFloat(0.15),
		Upline:           decimal.NewFromFloat(0.05),
	}
}

// Split is the computed commission amounts for one subscription payment.
// Upline is nil when the partner has no active upline.
type Split struct {
	Direct decimal.Decimal
	Upline *decimal.Decimal
}

// SplitFor computes the commission split for a payment amount given the
// partner's tier snapshot and whether an active upline exists. Unknown tiers
// fall back to the free rate. Each amount is rounded independently.
func (r Rates) SplitFor(amount decimal.Decimal, tier string, hasUpline bool) Split {
	if hasUpline {
		upline := amount.Mul(r.Upline).Round(2)
		return Split{
			Direct: amount.Mul(r.DirectWithUpline).Round(2),
			Upline: &upline,
		}
	}
	rate := r.DirectFree
	if tier == "plus" {
		rate = r.DirectPlus
	}
	return Split{Direct: amount.Mul(rate).Round(2)}
}
