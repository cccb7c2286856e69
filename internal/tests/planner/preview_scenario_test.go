package planner

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabrica/internal/planner"
)

// catalogFetcher serves recipes from a fixed catalog, the way a form
// session's resolver sees the store.
type catalogFetcher struct {
	catalog planner.Catalog
}

func (f *catalogFetcher) FetchRecipe(ctx context.Context, productID uint) (*planner.Recipe, error) {
	recipe, ok := f.catalog[productID]
	if !ok {
		return nil, context.Canceled
	}
	return recipe, nil
}

// TestDraftSessionReservation walks a whole form session: resolve recipes
// through the resolver, preview each line, then summarize. Product 10 makes
// batches of 5 and each batch takes 10 of material X; X has 100 in stock
// with 20 already claimed by pending orders.
func TestDraftSessionReservation(t *testing.T) {
	catalog := planner.Catalog{
		10: {
			ProductID: 10,
			BatchSize: decimal.NewFromInt(5),
			Ingredients: []planner.Ingredient{{
				ID:               1,
				Name:             "X",
				Unit:             "kg",
				QuantityPerBatch: decimal.NewFromInt(10),
				AvailableStock:   decimal.NewFromInt(100),
				UnitCost:         decimal.NewFromInt(2),
			}},
		},
	}
	pending := planner.PendingDemand{1: decimal.NewFromInt(20)}

	resolver := planner.NewResolver(&catalogFetcher{catalog: catalog})
	lines := []planner.DraftLine{
		{ProductID: 10, Quantity: decimal.NewFromInt(5)},
		{ProductID: 10, Quantity: decimal.NewFromInt(10)},
	}
	for _, line := range lines {
		resolver.Ensure(context.Background(), line.ProductID)
	}
	resolved := resolver.Snapshot()

	first := planner.ComputeLinePreview(0, lines, resolved, pending)
	require.True(t, first.Resolved)
	require.Len(t, first.Requirements, 1)
	assert.True(t, first.Requirements[0].Required.Equal(decimal.NewFromInt(10)))
	assert.True(t, first.Requirements[0].AdjustedAvailable.Equal(decimal.NewFromInt(80)),
		"100 stock - 20 pending, nothing reserved before line 0")
	assert.False(t, first.Requirements[0].Short)

	second := planner.ComputeLinePreview(1, lines, resolved, pending)
	require.True(t, second.Resolved)
	assert.True(t, second.Requirements[0].Required.Equal(decimal.NewFromInt(20)))
	assert.True(t, second.Requirements[0].AdjustedAvailable.Equal(decimal.NewFromInt(70)),
		"line 0 reserved 10 of X before line 1")

	summary := planner.Summarize(lines, resolved, pending, planner.DefaultMissingLimit)
	assert.True(t, summary.TotalEstimatedCost.Equal(decimal.NewFromInt(60)))
	assert.Empty(t, summary.MissingMaterials)
	assert.Zero(t, summary.MissingOmitted)
}

// TestDraftSessionShortage grows the second line until the session runs out
// of material and checks the summary calls it out once.
func TestDraftSessionShortage(t *testing.T) {
	catalog := planner.Catalog{
		10: {
			ProductID: 10,
			BatchSize: decimal.NewFromInt(5),
			Ingredients: []planner.Ingredient{{
				ID:               1,
				Name:             "X",
				Unit:             "kg",
				QuantityPerBatch: decimal.NewFromInt(10),
				AvailableStock:   decimal.NewFromInt(100),
				UnitCost:         decimal.NewFromInt(2),
			}},
		},
	}
	pending := planner.PendingDemand{1: decimal.NewFromInt(20)}

	lines := []planner.DraftLine{
		{ProductID: 10, Quantity: decimal.NewFromInt(30)}, // takes 60 of X
		{ProductID: 10, Quantity: decimal.NewFromInt(30)}, // needs 60, only 20 left
	}

	second := planner.ComputeLinePreview(1, lines, catalog, pending)
	require.True(t, second.Resolved)
	assert.True(t, second.Requirements[0].Short)
	assert.True(t, second.Requirements[0].AdjustedAvailable.Equal(decimal.NewFromInt(20)))

	summary := planner.Summarize(lines, catalog, pending, planner.DefaultMissingLimit)
	require.Len(t, summary.MissingMaterials, 1, "X is short on one line but listed once")
	missing := summary.MissingMaterials[0]
	assert.Equal(t, "X", missing.Name)
	assert.True(t, missing.Needed.Equal(decimal.NewFromInt(60)))
	assert.True(t, missing.Available.Equal(decimal.NewFromInt(20)))
}
