package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL dialect
	_ "github.com/jinzhu/gorm/dialects/sqlite"   // SQLite dialect

	"fabrica/internal/models"
)

var DB *gorm.DB

// InitDB opens the database connection and prepares the schema
func InitDB(driver, dsn string) error {
	var err error
	DB, err = gorm.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := Migrate(DB); err != nil {
		return err
	}
	return SeedSequences(DB)
}

// Migrate creates and updates all required tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Material{},
		&models.SemiFinishedProduct{},
		&models.RecipeIngredient{},
		&models.ProductionOrder{},
		&models.ProductionOrderItem{},
		&models.CodeSequence{},
	).Error
}

// SeedSequences makes sure the order-code sequence exists
func SeedSequences(db *gorm.DB) error {
	seq := models.CodeSequence{Name: OrderSequence, Prefix: "OP", Padding: 6}
	return db.Where(models.CodeSequence{Name: seq.Name}).FirstOrCreate(&seq).Error
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
