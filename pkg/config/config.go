// Package config provides configuration management for avidb.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Enrich: batch_size, request_delay_ms
//   - Sync: region, api_key
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Convert.CSVPath, Version, DryRun, ReportDir (per-command)
//   - Enrich.MaxBatches, StartFresh, DryRun, ReportDir (per-command)
//   - Sync.FromDate, Days, SeedOnly (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use AVIDB_ prefix with underscores for nesting:
//
//	AVIDB_DATABASE_HOST=localhost
//	AVIDB_DATABASE_PORT=5432
//	AVIDB_SYNC_API_KEY=xxxxxxxx
//	AVIDB_LOG_LEVEL=info
//
// The eBird token is also read from EBIRD_API_KEY when the avidb-specific
// variable is not set, so existing .env files keep working.
package config

import (
	"runtime"
)

// Config represents the complete avidb configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Convert contains settings specific to the convert command.
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert"`

	// Enrich contains settings specific to the enrich command.
	Enrich EnrichConfig `mapstructure:"enrich" yaml:"enrich"`

	// Sync contains settings specific to the sync command.
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for independent
	// read-only queries (the status command). Conversion, enrichment and
	// sync runs are sequential and ignore it.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of rows written per batch during
	// conversion and sync. A failed row never aborts its batch, so the
	// batch size bounds request size, not failure blast radius.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ConvertConfig contains settings specific to the convert command.
type ConvertConfig struct {
	// CSVPath points at a local eBird taxonomy CSV export. When empty,
	// the convert command resolves the file through sources.yaml.
	CSVPath string `mapstructure:"csv_path" yaml:"csv_path"`

	// Version selects a taxonomy release from sources.yaml (for example
	// "v2024"). Ignored when CSVPath is set.
	Version string `mapstructure:"version" yaml:"version"`

	// Categories lists the eBird CATEGORY values converted into species
	// nodes. Rows with other categories are counted as skipped.
	Categories []string `mapstructure:"categories" yaml:"categories"`

	// DryRun builds the tree and renders the report without touching
	// the database.
	DryRun bool

	// ReportDir, when set, receives a timestamped copy of the run summary.
	ReportDir string
}

// EnrichConfig contains settings specific to the enrich command.
type EnrichConfig struct {
	// BatchSize is the number of nodes processed between checkpoint
	// saves of the progress cursor.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// RequestDelayMs is the minimum delay between Wikipedia requests in
	// milliseconds. It is a blocking inter-request wait, not a backoff.
	RequestDelayMs int `mapstructure:"request_delay_ms" yaml:"request_delay_ms"`

	// MaxBatches limits how many batches a single run processes.
	// Zero means no limit.
	MaxBatches int

	// StartFresh discards the saved progress cursor and starts from
	// offset zero.
	StartFresh bool

	// DryRun performs lookups but writes neither the database nor the
	// progress cursor.
	DryRun bool

	// ReportDir, when set, receives a timestamped copy of the run summary.
	ReportDir string
}

// SyncConfig contains settings specific to the sync command.
type SyncConfig struct {
	// Region is the eBird region code whose observations are pulled
	// (for example "SG").
	Region string `mapstructure:"region" yaml:"region"`

	// APIKey is the eBird API token sent as X-eBirdApiToken.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// FromDate overrides the saved date cursor. Format: YYYY-MM-DD.
	FromDate string

	// Days limits how many days a single run ingests. Zero means
	// catch up to yesterday.
	Days int

	// SeedOnly refreshes the regional species checklist and exits
	// without pulling observations.
	SeedOnly bool
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "aviatlas",
			SSLMode:   "disable",
			BatchSize: 100,
		},
		Convert: ConvertConfig{
			Categories: []string{"species"},
		},
		Enrich: EnrichConfig{
			BatchSize:      100,
			RequestDelayMs: 500,
		},
		Sync: SyncConfig{
			Region: "SG",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
