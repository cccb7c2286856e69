package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"fabrica/internal/models"
	"fabrica/internal/planner"
)

// Store bundles the queries the order form's backend operations need.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open database connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListProducts returns semi-finished products, optionally filtered by a
// name substring, for the form's searchable product list.
func (s *Store) ListProducts(q string) ([]models.SemiFinishedProduct, error) {
	var products []models.SemiFinishedProduct
	query := s.db.Order("name")
	if q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// RecipeWithStock resolves a product's recipe together with a stock and cost
// snapshot per ingredient. Parsed and validated here, at the fetch boundary,
// so the planner only ever sees well-formed recipes.
func (s *Store) RecipeWithStock(productID uint) (*planner.Recipe, error) {
	var product models.SemiFinishedProduct
	if err := s.db.First(&product, productID).Error; err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	rows, err := s.db.Table("recipe_ingredients").
		Select("materials.id, materials.name, materials.unit, recipe_ingredients.quantity_per_batch, materials.available_stock, materials.unit_cost").
		Joins("JOIN materials ON materials.id = recipe_ingredients.material_id").
		Where("recipe_ingredients.product_id = ? AND recipe_ingredients.deleted_at IS NULL AND materials.deleted_at IS NULL", productID).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe for product %d: %w", productID, err)
	}
	defer rows.Close()

	recipe := &planner.Recipe{
		ProductID: productID,
		BatchSize: decimal.NewFromFloat(product.BatchSize),
	}
	for rows.Next() {
		var (
			id                    uint
			name, unit            string
			perBatch, stock, cost float64
		)
		if err := rows.Scan(&id, &name, &unit, &perBatch, &stock, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, planner.Ingredient{
			ID:               id,
			Name:             name,
			Unit:             unit,
			QuantityPerBatch: decimal.NewFromFloat(perBatch),
			AvailableStock:   decimal.NewFromFloat(stock),
			UnitCost:         decimal.NewFromFloat(cost),
		})
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return recipe, nil
}

// FetchRecipe adapts the store to the planner's Fetcher interface.
func (s *Store) FetchRecipe(ctx context.Context, productID uint) (*planner.Recipe, error) {
	return s.RecipeWithStock(productID)
}

// PendingDemand aggregates, per material, the quantity claimed by all
// pending production orders. Fetched once per form session; it is a
// snapshot, not a live figure.
func (s *Store) PendingDemand() (planner.PendingDemand, error) {
	rows, err := s.db.Table("production_order_items").
		Select("recipe_ingredients.material_id, SUM(recipe_ingredients.quantity_per_batch * production_order_items.quantity / semi_finished_products.batch_size)").
		Joins("JOIN production_orders ON production_orders.id = production_order_items.order_id").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.product_id = production_order_items.product_id").
		Joins("JOIN semi_finished_products ON semi_finished_products.id = production_order_items.product_id").
		Where("production_orders.status = ?", string(models.OrderStatusPending)).
		Where("semi_finished_products.batch_size > 0").
		Where("production_order_items.deleted_at IS NULL AND production_orders.deleted_at IS NULL AND recipe_ingredients.deleted_at IS NULL").
		Group("recipe_ingredients.material_id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate pending demand: %w", err)
	}
	defer rows.Close()

	demand := planner.PendingDemand{}
	for rows.Next() {
		var (
			materialID uint
			quantity   float64
		)
		if err := rows.Scan(&materialID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan pending demand row: %w", err)
		}
		demand[materialID] = decimal.NewFromFloat(quantity)
	}
	return demand, nil
}

// NextCode hands out the next code from a named sequence.
func (s *Store) NextCode(name, prefix string) (string, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return "", tx.Error
	}
	code, err := NextSequenceInTx(tx, name, prefix, 0)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	return code, tx.Commit().Error
}

// CreateOrder persists a production order with its items in one transaction,
// generating the order code when the caller did not supply one. This is the
// only operation that persists anything the preview touches; the preview
// itself stays advisory.
func (s *Store) CreateOrder(order *models.ProductionOrder) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("order must have at least one item")
	}
	for i := range order.Items {
		if order.Items[i].ProductID == 0 {
			return fmt.Errorf("item %d has no product", i)
		}
		if order.Items[i].Quantity <= 0 {
			return fmt.Errorf("item %d has a non-positive quantity", i)
		}
		order.Items[i].Position = i
	}

	order.Status = string(models.OrderStatusPending)
	order.TimeSubmitted = time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if order.Code == "" {
		code, err := NextSequenceInTx(tx, OrderSequence, "", 0)
		if err != nil {
			tx.Rollback()
			return err
		}
		order.Code = code
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create order: %w", err)
	}
	return tx.Commit().Error
}

// GetOrder loads an order with its items in position order.
func (s *Store) GetOrder(id uint) (*models.ProductionOrder, error) {
	return getOrder(s.db, id)
}

func getOrder(db *gorm.DB, id uint) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&order, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}

// UpdateOrderStatus moves a pending order to completed or cancelled.
// The transition claims the row inside the transaction (UPDATE ... WHERE
// status = 'pending'); at most one concurrent caller sees the claim succeed,
// so completion's stock movement runs at most once. Completion is the point
// where stock actually changes hands: consumed materials are deducted and
// the produced quantity credited, all inside the same transaction.
func (s *Store) UpdateOrderStatus(id uint, to models.OrderStatus) (*models.ProductionOrder, error) {
	if !models.ValidTransition(models.OrderStatusPending, to) {
		return nil, fmt.Errorf("cannot move an order to %s", to)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	now := time.Now()
	claim := tx.Model(&models.ProductionOrder{}).
		Where("id = ? AND status = ?", id, string(models.OrderStatusPending)).
		Updates(map[string]interface{}{"status": string(to), "time_closed": &now})
	if claim.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update order %d: %w", id, claim.Error)
	}
	if claim.RowsAffected == 0 {
		tx.Rollback()
		order, err := s.GetOrder(id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s cannot move from %s to %s", order.Code, order.Status, to)
	}

	if to == models.OrderStatusCompleted {
		order, err := getOrder(tx, id)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := applyCompletion(tx, order); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.GetOrder(id)
}

// applyCompletion deducts the materials each item consumed and credits the
// produced semi-finished stock.
func applyCompletion(tx *gorm.DB, order *models.ProductionOrder) error {
	for _, item := range order.Items {
		var product models.SemiFinishedProduct
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			return fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
		}
		if product.BatchSize <= 0 {
			continue
		}
		var ingredients []models.RecipeIngredient
		if err := tx.Where("product_id = ?", item.ProductID).Find(&ingredients).Error; err != nil {
			return fmt.Errorf("failed to load recipe for product %d: %w", item.ProductID, err)
		}
		for _, ing := range ingredients {
			consumed, _ := decimal.NewFromFloat(ing.QuantityPerBatch).
				Mul(decimal.NewFromFloat(item.Quantity)).
				Div(decimal.NewFromFloat(product.BatchSize)).
				Float64()
			err := tx.Model(&models.Material{}).Where("id = ?", ing.MaterialID).
				Update("available_stock", gorm.Expr("available_stock - ?", consumed)).Error
			if err != nil {
				return fmt.Errorf("failed to deduct material %d: %w", ing.MaterialID, err)
			}
		}
		err := tx.Model(&models.SemiFinishedProduct{}).Where("id = ?", item.ProductID).
			Update("available_stock", gorm.Expr("available_stock + ?", item.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to credit product %d: %w", item.ProductID, err)
		}
	}
	return nil
}
