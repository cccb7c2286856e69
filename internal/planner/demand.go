package planner

import "github.com/shopspring/decimal"

// RequiredQuantity returns the amount of an ingredient a line consumes:
// quantityPerBatch * lineQuantity / batchSize. The result is unrounded;
// rounding happens only at display boundaries so accumulated demand does not
// compound rounding error across lines.
func RequiredQuantity(perBatch, lineQuantity, batchSize decimal.Decimal) decimal.Decimal {
	return perBatch.Mul(lineQuantity).Div(batchSize)
}

// EarlierDemand sums, per material, the demand of lines strictly before pos.
// Later lines and the line at pos itself never contribute: within a draft,
// earlier rows are treated as having already claimed stock (first come,
// first served).
func EarlierDemand(lines []DraftLine, pos int, catalog Catalog) Demand {
	if pos > len(lines) {
		pos = len(lines)
	}
	demand := Demand{}
	for i := 0; i < pos; i++ {
		accumulateLine(demand, lines[i], catalog)
	}
	return demand
}

// accumulateLine adds one line's material demand into demand. Lines with no
// selected product, a non-positive quantity, an unresolved recipe, or a
// non-positive batch size contribute nothing and are skipped silently.
func accumulateLine(demand Demand, line DraftLine, catalog Catalog) {
	if line.ProductID == 0 || !line.Quantity.IsPositive() {
		return
	}
	recipe, ok := catalog[line.ProductID]
	if !ok || recipe == nil || !recipe.BatchSize.IsPositive() {
		return
	}
	for _, ing := range recipe.Ingredients {
		demand[ing.ID] = demand[ing.ID].Add(RequiredQuantity(ing.QuantityPerBatch, line.Quantity, recipe.BatchSize))
	}
}
