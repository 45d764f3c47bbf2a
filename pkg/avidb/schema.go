package avidb

import (
	"context"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate to handle both initial schema creation and
// migrations. Schema management is idempotent - safe to run multiple
// times. Config is provided during construction via NewManager.
type SchemaManager interface {
	// Create creates the initial database schema using GORM AutoMigrate.
	// Also applies the natural-key and lookup indexes GORM tags cannot
	// express. If tables already exist, behavior depends on user
	// confirmation via DropAllTables.
	Create(ctx context.Context) error

	// Migrate updates the database schema to the latest version using
	// GORM AutoMigrate, then reapplies the raw SQL indexes.
	Migrate(ctx context.Context) error
}
