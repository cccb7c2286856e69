package planner

import "github.com/shopspring/decimal"

// AdjustedAvailable nets both reservation sources out of raw stock:
// stock - pendingDemand - earlierLinesDemand. Every call site goes through
// this helper so the same policy applies everywhere. The result is clamped
// at zero: once reservations exceed stock the material is simply gone, and
// a negative availability figure carries no extra information for the form.
func AdjustedAvailable(stock, pending, earlier decimal.Decimal) decimal.Decimal {
	adjusted := stock.Sub(pending).Sub(earlier)
	if adjusted.IsNegative() {
		return decimal.Zero
	}
	return adjusted
}

// Round2 rounds a quantity or cost to 2 decimal places for display.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
