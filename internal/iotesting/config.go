// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"strings"
	"testing"

	"github.com/aviatlas/avidb/internal/iofs"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/spf13/viper"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "avidb_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It starts from the built-in defaults, applies AVIDB_DATABASE_*
// environment variables, and overrides the database name to
// TestDatabaseName for safety.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()

	v := viper.New()
	v.SetEnvPrefix("AVIDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	v.AutomaticEnv()

	var envCfg config.Config
	if err := v.Unmarshal(&envCfg); err == nil {
		cfg.Update(envCfg.ToOptions())
	}

	// Always use test database for safety
	cfg.Database.Database = TestDatabaseName

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
// This is useful when you only need database config without the full Config struct.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}

// TempHome creates a home directory layout (.config/avidb, .cache/avidb,
// log dir) for a test and returns its path. The directory is cleaned up
// when the test finishes.
//
// Tests that exercise code taking a homeDir argument should use this
// instead of the real home, so they never touch production config files.
func TempHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	if err := iofs.EnsureDirs(home); err != nil {
		t.Fatalf("Failed to prepare temp home: %v", err)
	}
	return home
}

// WriteSourcesYAML writes a sources.yaml file into the config directory
// of the given home. Must be called with a home prepared by TempHome.
//
// Usage:
//
//	home := iotesting.TempHome(t)
//	iotesting.WriteSourcesYAML(t, home, `
//	taxonomy:
//	  - file: /path/to/testdata/taxonomy.csv
//	    version: "2024"
//	`)
func WriteSourcesYAML(t *testing.T, home, content string) {
	t.Helper()

	sourcesPath := config.SourcesFilePath(home)
	if err := os.WriteFile(sourcesPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp sources.yaml: %v", err)
	}
}
