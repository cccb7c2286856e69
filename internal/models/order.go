package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// ProductionOrder represents a submitted production order
type ProductionOrder struct {
	gorm.Model
	Code          string `gorm:"unique_index"`
	Status        string
	Notes         string
	Items         []ProductionOrderItem `gorm:"foreignkey:OrderID"`
	TimeSubmitted time.Time
	TimeClosed    *time.Time
}

// TableName sets the table name for ProductionOrder
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// ProductionOrderItem represents one line of a production order. Position
// preserves the order the lines were entered in, which is significant for
// material reservation: earlier lines claim stock before later ones.
type ProductionOrderItem struct {
	gorm.Model
	OrderID   uint `gorm:"index"`
	ProductID uint `gorm:"index"`
	Quantity  float64
	Position  int
	Notes     string
}

// TableName sets the table name for ProductionOrderItem
func (ProductionOrderItem) TableName() string {
	return "production_order_items"
}

// OrderStatus represents the possible states of a production order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidTransition reports whether an order may move between two statuses.
// Pending orders can complete or cancel; closed orders stay closed.
func ValidTransition(from, to OrderStatus) bool {
	if from != OrderStatusPending {
		return false
	}
	return to == OrderStatusCompleted || to == OrderStatusCancelled
}
