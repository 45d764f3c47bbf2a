package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows written per batch during
// conversion and sync.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptConvertCSVPath sets the local eBird taxonomy CSV path.
// Runtime-only field - not in ToOptions().
func OptConvertCSVPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("CSV Path", s) {
			c.Convert.CSVPath = s
		}
	}
}

// OptConvertVersion selects a taxonomy release from sources.yaml.
// Runtime-only field - not in ToOptions().
func OptConvertVersion(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Taxonomy Version", s) {
			c.Convert.Version = s
		}
	}
}

// OptConvertCategories sets the eBird CATEGORY values converted into
// species nodes. Empty slice keeps the default.
func OptConvertCategories(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Convert.Categories = ss
		}
	}
}

// OptConvertDryRun makes convert build the tree and report without
// writing to the database.
// Runtime-only field - not in ToOptions().
func OptConvertDryRun(b bool) Option {
	return func(c *Config) {
		c.Convert.DryRun = b
	}
}

// OptConvertReportDir sets the directory for the timestamped run summary.
// Runtime-only field - not in ToOptions().
func OptConvertReportDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Report Directory", s) {
			c.Convert.ReportDir = s
		}
	}
}

// OptEnrichBatchSize sets the number of nodes between checkpoint saves.
func OptEnrichBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Enrich Batch Size", i) {
			c.Enrich.BatchSize = i
		}
	}
}

// OptEnrichRequestDelayMs sets the minimum delay between Wikipedia
// requests in milliseconds.
func OptEnrichRequestDelayMs(i int) Option {
	return func(c *Config) {
		if isValidInt("Request Delay", i) {
			c.Enrich.RequestDelayMs = i
		}
	}
}

// OptEnrichMaxBatches limits the number of batches in one run.
// Runtime-only field - not in ToOptions().
func OptEnrichMaxBatches(i int) Option {
	return func(c *Config) {
		if i > 0 {
			c.Enrich.MaxBatches = i
		}
	}
}

// OptEnrichStartFresh discards the saved progress cursor.
// Runtime-only field - not in ToOptions().
func OptEnrichStartFresh(b bool) Option {
	return func(c *Config) {
		c.Enrich.StartFresh = b
	}
}

// OptEnrichDryRun performs lookups without writing the database or the
// progress cursor.
// Runtime-only field - not in ToOptions().
func OptEnrichDryRun(b bool) Option {
	return func(c *Config) {
		c.Enrich.DryRun = b
	}
}

// OptEnrichReportDir sets the directory for the timestamped run summary.
// Runtime-only field - not in ToOptions().
func OptEnrichReportDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Report Directory", s) {
			c.Enrich.ReportDir = s
		}
	}
}

// OptSyncRegion sets the eBird region code for observation pulls.
func OptSyncRegion(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	return func(c *Config) {
		if isValidString("Sync Region", s) {
			c.Sync.Region = s
		}
	}
}

// OptSyncAPIKey sets the eBird API token.
func OptSyncAPIKey(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("eBird API Key", s) {
			c.Sync.APIKey = s
		}
	}
}

// OptSyncFromDate overrides the saved date cursor. Format: YYYY-MM-DD.
// Runtime-only field - not in ToOptions().
func OptSyncFromDate(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Sync From Date", s) {
			c.Sync.FromDate = s
		}
	}
}

// OptSyncDays limits how many days a single sync run ingests.
// Runtime-only field - not in ToOptions().
func OptSyncDays(i int) Option {
	return func(c *Config) {
		if isValidInt("Sync Days", i) {
			c.Sync.Days = i
		}
	}
}

// OptSyncSeedOnly refreshes the regional checklist without pulling
// observations.
// Runtime-only field - not in ToOptions().
func OptSyncSeedOnly(b bool) Option {
	return func(c *Config) {
		c.Sync.SeedOnly = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for independent
// read-only queries. Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
