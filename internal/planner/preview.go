package planner

import "github.com/shopspring/decimal"

// DefaultMissingLimit is how many missing materials a summary lists before
// collapsing the rest into a count.
const DefaultMissingLimit = 5

// ComputeLinePreview evaluates the draft line at pos against raw stock, the
// pending-demand snapshot, and the demand of lines strictly before pos. It
// is a pure function of its inputs and is called on every form-state change.
func ComputeLinePreview(pos int, lines []DraftLine, catalog Catalog, pending PendingDemand) LinePreview {
	if pos < 0 || pos >= len(lines) {
		return LinePreview{}
	}
	line := lines[pos]
	if line.ProductID == 0 || !line.Quantity.IsPositive() {
		return LinePreview{}
	}
	recipe, ok := catalog[line.ProductID]
	if !ok || recipe == nil || !recipe.BatchSize.IsPositive() {
		return LinePreview{}
	}
	return evalLine(line, recipe, EarlierDemand(lines, pos, catalog), pending)
}

func evalLine(line DraftLine, recipe *Recipe, earlier Demand, pending PendingDemand) LinePreview {
	preview := LinePreview{Resolved: true}
	cost := decimal.Zero
	for _, ing := range recipe.Ingredients {
		required := RequiredQuantity(ing.QuantityPerBatch, line.Quantity, recipe.BatchSize)
		adjusted := AdjustedAvailable(ing.AvailableStock, pending[ing.ID], earlier[ing.ID])
		preview.Requirements = append(preview.Requirements, LineRequirement{
			Ingredient:        ing,
			Required:          required,
			AdjustedAvailable: adjusted,
			Short:             required.GreaterThan(adjusted),
		})
		cost = cost.Add(required.Mul(ing.UnitCost))
	}
	preview.EstimatedCost = cost
	return preview
}

// Summarize rolls up every line of the draft: total estimated material cost
// and a deduplicated list of materials whose required quantity exceeds
// adjusted availability. Lines are walked in position order carrying the
// running earlier-lines demand, so shortages are judged on the same netted
// basis as the per-line preview. Duplicate materials keep the values of
// their first occurrence; the list is truncated to limit entries with the
// remainder counted in MissingOmitted.
func Summarize(lines []DraftLine, catalog Catalog, pending PendingDemand, limit int) OrderSummary {
	if limit <= 0 {
		limit = DefaultMissingLimit
	}
	total := decimal.Zero
	running := Demand{}
	seen := map[string]bool{}
	var missing []MissingMaterial
	omitted := 0

	for _, line := range lines {
		if line.ProductID == 0 || !line.Quantity.IsPositive() {
			continue
		}
		recipe, ok := catalog[line.ProductID]
		if !ok || recipe == nil || !recipe.BatchSize.IsPositive() {
			continue
		}
		for _, ing := range recipe.Ingredients {
			required := RequiredQuantity(ing.QuantityPerBatch, line.Quantity, recipe.BatchSize)
			adjusted := AdjustedAvailable(ing.AvailableStock, pending[ing.ID], running[ing.ID])
			total = total.Add(required.Mul(ing.UnitCost))
			if !required.GreaterThan(adjusted) || seen[ing.Name] {
				continue
			}
			seen[ing.Name] = true
			if len(missing) < limit {
				missing = append(missing, MissingMaterial{
					Name:      ing.Name,
					Needed:    Round2(required),
					Available: Round2(adjusted),
					Unit:      ing.Unit,
				})
			} else {
				omitted++
			}
		}
		accumulateLine(running, line, catalog)
	}

	return OrderSummary{
		TotalEstimatedCost: Round2(total),
		MissingMaterials:   missing,
		MissingOmitted:     omitted,
	}
}
