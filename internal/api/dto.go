package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fabrica/internal/models"
	"fabrica/internal/planner"
)

// Wire types for the order form. Quantities and costs cross the wire as
// plain numbers, rounded to 2 decimals for display; the planner keeps its
// unrounded decimals internal.

type previewRequest struct {
	Lines []draftLineDTO `json:"lines"`
}

type draftLineDTO struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

func (r previewRequest) toLines() []planner.DraftLine {
	lines := make([]planner.DraftLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = planner.DraftLine{
			ProductID: l.ProductID,
			Quantity:  decimal.NewFromFloat(l.Quantity),
		}
	}
	return lines
}

type previewResponse struct {
	Lines   []linePreviewDTO `json:"lines"`
	Summary orderSummaryDTO  `json:"summary"`
}

type linePreviewDTO struct {
	Resolved      bool                 `json:"resolved"`
	Requirements  []lineRequirementDTO `json:"requirements,omitempty"`
	EstimatedCost float64              `json:"estimated_cost"`
}

type lineRequirementDTO struct {
	MaterialID        uint    `json:"material_id"`
	Name              string  `json:"name"`
	Unit              string  `json:"unit"`
	Required          float64 `json:"required"`
	AdjustedAvailable float64 `json:"adjusted_available"`
	Short             bool    `json:"short"`
}

type orderSummaryDTO struct {
	TotalEstimatedCost float64              `json:"total_estimated_cost"`
	MissingMaterials   []missingMaterialDTO `json:"missing_materials"`
	MissingOmitted     int                  `json:"missing_omitted"`
}

type missingMaterialDTO struct {
	Name      string  `json:"name"`
	Needed    float64 `json:"needed"`
	Available float64 `json:"available"`
	Unit      string  `json:"unit"`
}

type recipeResponse struct {
	ProductID   uint            `json:"product_id"`
	BatchSize   float64         `json:"batch_size"`
	Ingredients []ingredientDTO `json:"ingredients"`
}

type ingredientDTO struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	QuantityPerBatch float64 `json:"quantity_per_batch"`
	AvailableStock   float64 `json:"available_stock"`
	UnitCost         float64 `json:"unit_cost"`
}

type createOrderRequest struct {
	Code  string                   `json:"code"`
	Notes string                   `json:"notes"`
	Items []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Notes     string  `json:"notes"`
}

// validate rejects malformed order requests before they reach the store, so
// client mistakes surface as 400 rather than a store failure.
func (r createOrderRequest) validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("order must have at least one item")
	}
	for i, item := range r.Items {
		if item.ProductID == 0 {
			return fmt.Errorf("item %d has no product", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d has a non-positive quantity", i)
		}
	}
	return nil
}

func (r createOrderRequest) toModel() *models.ProductionOrder {
	order := &models.ProductionOrder{
		Code:  r.Code,
		Notes: r.Notes,
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, models.ProductionOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}
	return order
}

func display(d decimal.Decimal) float64 {
	return planner.Round2(d).InexactFloat64()
}

func toLinePreviewDTO(p planner.LinePreview) linePreviewDTO {
	dto := linePreviewDTO{
		Resolved:      p.Resolved,
		EstimatedCost: display(p.EstimatedCost),
	}
	for _, req := range p.Requirements {
		dto.Requirements = append(dto.Requirements, lineRequirementDTO{
			MaterialID:        req.ID,
			Name:              req.Name,
			Unit:              req.Unit,
			Required:          display(req.Required),
			AdjustedAvailable: display(req.AdjustedAvailable),
			Short:             req.Short,
		})
	}
	return dto
}

func toSummaryDTO(s planner.OrderSummary) orderSummaryDTO {
	dto := orderSummaryDTO{
		TotalEstimatedCost: display(s.TotalEstimatedCost),
		MissingMaterials:   []missingMaterialDTO{},
		MissingOmitted:     s.MissingOmitted,
	}
	for _, m := range s.MissingMaterials {
		dto.MissingMaterials = append(dto.MissingMaterials, missingMaterialDTO{
			Name:      m.Name,
			Needed:    m.Needed.InexactFloat64(),
			Available: m.Available.InexactFloat64(),
			Unit:      m.Unit,
		})
	}
	return dto
}

func toRecipeDTO(r *planner.Recipe) recipeResponse {
	dto := recipeResponse{
		ProductID:   r.ProductID,
		BatchSize:   r.BatchSize.InexactFloat64(),
		Ingredients: []ingredientDTO{},
	}
	for _, ing := range r.Ingredients {
		dto.Ingredients = append(dto.Ingredients, ingredientDTO{
			ID:               ing.ID,
			Name:             ing.Name,
			Unit:             ing.Unit,
			QuantityPerBatch: ing.QuantityPerBatch.InexactFloat64(),
			AvailableStock:   ing.AvailableStock.InexactFloat64(),
			UnitCost:         ing.UnitCost.InexactFloat64(),
		})
	}
	return dto
}
