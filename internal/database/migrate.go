package database

import (
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
)

// Migrate runs schema migrations for all application models.
func Migrate(db *gorm.DB) error {
	// pgvector must be available before the recipes table migrates.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return err
		}
	}

	return db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Recipe{},
		&model.FoodSupply{},
		&model.ConsumptionRecord{},
		&model.Vehicle{},
		&model.VehicleRental{},
		&model.Vendor{},
		&model.StaffActivity{},
	)
}
