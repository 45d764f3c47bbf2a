/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aviatlas/avidb/internal/iofs"
	"github.com/aviatlas/avidb/internal/iologger"
	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
)

var (
	cfgFile string
	homeDir string
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands attached.
// Extracted as a function so tests get independent instances.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s",
			avidb.Version, avidb.Build),
		Use:   "avidb",
		Short: "avidb manages the AviAtlas bird database lifecycle",
		Long: `avidb builds and maintains the PostgreSQL database behind AviAtlas,
from the eBird taxonomy tree through Wikipedia metadata to daily
observation pulls.

The lifecycle phases are:
  - create:  create the database schema
  - migrate: apply schema migrations
  - convert: import an eBird taxonomy CSV release into the tree
  - enrich:  attach Wikipedia summaries and images to species and genera
  - sync:    pull daily eBird observations for the configured region
  - verify:  run integrity checks over the stored tree
  - status:  show metadata coverage and saved progress

Configuration lives in ~/.config/avidb/config.yaml and is generated on
the first run. Every persistent setting can be overridden through
AVIDB_* environment variables (database.host becomes
AVIDB_DATABASE_HOST); the eBird token is also read from EBIRD_API_KEY.`,
		PersistentPreRunE: bootstrap,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "avidb version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/avidb/config.yaml)")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for avidb")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getConvertCmd(),
		getEnrichCmd(),
		getSyncCmd(),
		getVerifyCmd(),
		getStatusCmd(),
	)

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error

	// A .env file in the working directory supplies credentials during
	// development. Real environment variables win over the file.
	_ = godotenv.Load()

	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Auto-generate the default config only when no explicit file is
	// requested with --config
	if cfgFile == "" {
		if err = iofs.EnsureConfigFile(homeDir); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	if err = iofs.EnsureSourcesFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", configPath(homeDir))

	return nil
}

// configPath resolves the config file in effect, an explicit --config
// wins over the default location.
func configPath(home string) string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigFilePath(home)
}

// reconfigureLogging reinitializes the logger with the loaded
// configuration, appending to the file the early bootstrap created.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

// Execute runs the root command. It is called by main.main() and
// exits non-zero when any command fails.
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := configPath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are
	// allowed. These match the fields included in config.ToOptions() -
	// i.e., persistent configuration that can be stored in config.yaml.
	v.SetEnvPrefix("AVIDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.database", "DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "DATABASE_BATCH_SIZE")

	// Enrich configuration
	v.BindEnv("enrich.batch_size", "ENRICH_BATCH_SIZE")
	v.BindEnv("enrich.request_delay_ms", "ENRICH_REQUEST_DELAY_MS")

	// Sync configuration. The eBird token has the unprefixed
	// EBIRD_API_KEY as a fallback, so existing .env files keep working.
	v.BindEnv("sync.region", "SYNC_REGION")
	v.BindEnv("sync.api_key", "SYNC_API_KEY", "EBIRD_API_KEY")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}
