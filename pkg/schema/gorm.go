package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate. Referenced
// tables come before the tables that reference them.
func AllModels() []interface{} {
	return []interface{}{
		&BirdTaxon{},
		&RegionalBird{},
		&Observation{},
		&ObservationBird{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
