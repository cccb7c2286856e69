package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Material represents a raw material kept in the warehouse
type Material struct {
	gorm.Model
	Name           string `gorm:"unique_index"`
	Unit           string
	AvailableStock float64
	UnitCost       float64
	Location       string
	Status         string
	MinLevel       float64
	ReorderAt      float64
	LastReceived   *time.Time
	Notes          string
}

// TableName sets the table name for Material
func (Material) TableName() string {
	return "materials"
}

// MaterialStatus represents the status of a raw material
type MaterialStatus string

const (
	// Material statuses
	MaterialInStock     MaterialStatus = "in_stock"
	MaterialLow         MaterialStatus = "low"
	MaterialOutOfStock  MaterialStatus = "out_of_stock"
	MaterialOnOrder     MaterialStatus = "on_order"
	MaterialQuarantined MaterialStatus = "quarantined"
)

// MaterialUnit represents the unit of measurement for a material
type MaterialUnit string

const (
	// Weight units
	UnitGram     MaterialUnit = "g"
	UnitKilogram MaterialUnit = "kg"
	UnitTonne    MaterialUnit = "t"

	// Volume units
	UnitMilliliter MaterialUnit = "ml"
	UnitLiter      MaterialUnit = "l"

	// Count units
	UnitPiece MaterialUnit = "pc"
	UnitBox   MaterialUnit = "box"
	UnitRoll  MaterialUnit = "roll"
	UnitMeter MaterialUnit = "m"
)

// MaterialLocation represents the storage location of a material
type MaterialLocation string

const (
	// Storage locations
	LocationRawStore   MaterialLocation = "raw_store"
	LocationShopFloor  MaterialLocation = "shop_floor"
	LocationColdRoom   MaterialLocation = "cold_room"
	LocationOutsideLot MaterialLocation = "outside_lot"
)
