package models

import (
	"github.com/jinzhu/gorm"
)

// SemiFinishedProduct represents an intermediate product manufactured in-house.
// BatchSize is the quantity produced by one standard production run; recipe
// ingredient quantities are expressed per batch and scaled from there.
type SemiFinishedProduct struct {
	gorm.Model
	Name           string `gorm:"unique_index"`
	Unit           string
	BatchSize      float64
	AvailableStock float64
	Notes          string
	Ingredients    []RecipeIngredient `gorm:"foreignkey:ProductID"`
}

// TableName sets the table name for SemiFinishedProduct
func (SemiFinishedProduct) TableName() string {
	return "semi_finished_products"
}

// RecipeIngredient is one line of a product's recipe: the quantity of a raw
// material consumed to produce one batch of the parent product.
// Invariant: QuantityPerBatch >= 0.
type RecipeIngredient struct {
	gorm.Model
	ProductID        uint `gorm:"index"`
	MaterialID       uint `gorm:"index"`
	QuantityPerBatch float64
	Notes            string
}

// TableName sets the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
