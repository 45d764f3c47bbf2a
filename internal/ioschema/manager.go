// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"

	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manager implements the avidb.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	cfg      *config.Config
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(
	cfg *config.Config,
	op db.Operator,
) avidb.SchemaManager {
	return &manager{cfg: cfg, operator: op}
}

// Create creates the initial database schema using
// GORM AutoMigrate. Also applies collation settings for
// correct scientific name sorting and the indexes that
// GORM tags cannot express.
func (m *manager) Create(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	db := stdlib.OpenDBFromPool(pool)

	// Connect with GORM
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	// Run GORM AutoMigrate to create schema
	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	// Set collation for name columns
	// (critical for correct sorting)
	if err := m.setCollation(ctx); err != nil {
		return err
	}

	// Indexes that GORM tags cannot express
	if err := m.applyIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate. Index statements use IF NOT EXISTS,
// so older databases pick up missing indexes on migration.
func (m *manager) Migrate(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	db := stdlib.OpenDBFromPool(pool)

	// Connect with GORM
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	// Run GORM AutoMigrate
	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(err)
	}

	if err := m.applyIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// setCollation sets "C" collation on scientific name columns.
// This is critical for correct sorting and comparison of
// scientific names.
func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{"bird_taxa", "name", 255},
		{"bird_taxa", "scientific_name", 255},
		{"regional_birds", "scientific_name", 255},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, col := range columns {
		q := formatCollationSQL(qStr, col.table,
			col.column, col.varchar)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}

// applyIndexes creates the natural-key arbiter and the
// partial indexes used by enrichment coverage queries.
// Requires PostgreSQL 15+ for NULLS NOT DISTINCT.
func (m *manager) applyIndexes(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	for _, idx := range indexDDL() {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			return IndexError(idx.name, err)
		}
	}

	return nil
}
