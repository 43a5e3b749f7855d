// Package allocation distributes a monetary total across integer quantities
// so that the rounded shares always sum back to the exact total.
package allocation

import "github.com/shopspring/decimal"

// Shares splits total proportionally over quantities. Every share except the
// last is rounded to two decimals; the last share absorbs the remainder
// (floored at zero) so the shares sum to total exactly.
//
// A nil total means no monetary tracking was requested and yields all-nil
// shares.
func Shares(total *decimal.Decimal, quantities []int, totalQuantity int) []*decimal.Decimal {
	shares := make([]*decimal.Decimal, len(quantities))
	if total == nil || len(quantities) == 0 {
		return shares
	}

	totalQty := decimal.NewFromInt(int64(totalQuantity))
	allocated := decimal.Zero

	for i, qty := range quantities {
		if i == len(quantities)-1 {
			rest := total.Sub(allocated)
			if rest.IsNegative() {
				rest = decimal.Zero
			}

			shares[i] = &rest

			break
		}

		share := total.Mul(decimal.NewFromInt(int64(qty))).Div(totalQty).Round(2)
		shares[i] = &share
		allocated = allocated.Add(share)
	}

	return shares
}
