package planner

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ingredient is one line of a resolved recipe: a raw material together with
// the quantity consumed per batch of the parent product and a stock snapshot
// taken at fetch time.
type Ingredient struct {
	ID               uint
	Name             string
	Unit             string
	QuantityPerBatch decimal.Decimal
	AvailableStock   decimal.Decimal
	UnitCost         decimal.Decimal
}

// Recipe is the resolved ingredient list of a semi-finished product plus its
// batch size.
type Recipe struct {
	ProductID   uint
	BatchSize   decimal.Decimal
	Ingredients []Ingredient
}

// Validate checks the invariants enforced at the fetch boundary: a positive
// batch size and no negative per-batch quantities.
func (r *Recipe) Validate() error {
	if !r.BatchSize.IsPositive() {
		return fmt.Errorf("product %d: batch size must be positive, got %s", r.ProductID, r.BatchSize)
	}
	for _, ing := range r.Ingredients {
		if ing.QuantityPerBatch.IsNegative() {
			return fmt.Errorf("product %d: ingredient %q has negative quantity per batch", r.ProductID, ing.Name)
		}
	}
	return nil
}

// DraftLine is one (product, quantity) row of the in-progress order form.
// A zero ProductID means no product has been selected yet.
type DraftLine struct {
	ProductID uint
	Quantity  decimal.Decimal
}

// Catalog maps product IDs to resolved recipes. It is the immutable view a
// preview computation works from; absent entries mean the recipe has not
// been resolved (yet, or at all).
type Catalog map[uint]*Recipe

// PendingDemand maps material IDs to the quantity already claimed by other,
// already-submitted pending orders. Snapshot taken once per form session.
type PendingDemand map[uint]decimal.Decimal

// Demand accumulates per-material quantities claimed by draft lines.
type Demand map[uint]decimal.Decimal

// LineRequirement is the per-ingredient outcome for one draft line.
type LineRequirement struct {
	Ingredient
	Required          decimal.Decimal
	AdjustedAvailable decimal.Decimal
	Short             bool
}

// LinePreview is the material preview for a single draft line. Resolved is
// false when the line has no product, a non-positive quantity, or a recipe
// that never made it into the catalog; the form shows nothing for such lines.
type LinePreview struct {
	Resolved      bool
	Requirements  []LineRequirement
	EstimatedCost decimal.Decimal
}

// MissingMaterial is a summary entry for a material whose required quantity
// exceeds what is available. Values are rounded for display.
type MissingMaterial struct {
	Name      string
	Needed    decimal.Decimal
	Available decimal.Decimal
	Unit      string
}

// OrderSummary rolls up all draft lines: total estimated material cost and
// the first few materials that fall short, with a count of the rest.
type OrderSummary struct {
	TotalEstimatedCost decimal.Decimal
	MissingMaterials   []MissingMaterial
	MissingOmitted     int
}
