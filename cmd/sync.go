/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"

	"github.com/aviatlas/avidb/internal/iodb"
	"github.com/aviatlas/avidb/internal/ioebird"
	"github.com/aviatlas/avidb/internal/iosources"
	"github.com/aviatlas/avidb/internal/iosync"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/errcode"
)

// getSyncCmd returns the sync command.
func getSyncCmd() *cobra.Command {
	var (
		region   string
		fromDate string
		days     int
		seedOnly bool
	)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull daily eBird observations for a region",
		Long: `Pull eBird observations into the database, one calendar day at a time.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Refreshes the regional species checklist from eBird
  3. Walks days from the saved date cursor up to yesterday
  4. Stores observation events and their species links
  5. Advances the cursor after each fully stored day

The eBird API token comes from sync.api_key in config.yaml, the
AVIDB_SYNC_API_KEY environment variable, or EBIRD_API_KEY. Request
one at https://ebird.org/api/keygen.

An aborted run is safe: the next run resumes from the last fully
stored day, and re-synced days update events instead of duplicating
them.

Examples:
  # Catch up from the cursor to yesterday
  avidb sync

  # Pull a different region
  avidb sync --region MY

  # Re-ingest two weeks starting at a date
  avidb sync --from 2024-11-01 --days 14

  # Refresh the regional checklist and exit
  avidb sync --seed-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSync(cmd, region, fromDate, days, seedOnly)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	syncCmd.Flags().StringVar(
		&region, "region", "",
		"eBird region code (default from config)",
	)
	syncCmd.Flags().StringVar(
		&fromDate, "from", "",
		"override the date cursor, format YYYY-MM-DD",
	)
	syncCmd.Flags().IntVar(
		&days, "days", 0,
		"limit the run to this many days (0 = catch up to yesterday)",
	)
	syncCmd.Flags().BoolVar(
		&seedOnly, "seed-only", false,
		"refresh the regional checklist and exit",
	)

	return syncCmd
}

func runSync(
	cmd *cobra.Command,
	region string,
	fromDate string,
	days int,
	seedOnly bool,
) error {
	ctx := context.Background()

	// Build options from explicitly set flags
	var syncOpts []config.Option

	if cmd.Flags().Changed("region") {
		syncOpts = append(syncOpts, config.OptSyncRegion(region))
	}

	if cmd.Flags().Changed("from") {
		syncOpts = append(syncOpts, config.OptSyncFromDate(fromDate))
	}

	if cmd.Flags().Changed("days") {
		syncOpts = append(syncOpts, config.OptSyncDays(days))
	}

	if cmd.Flags().Changed("seed-only") {
		syncOpts = append(syncOpts, config.OptSyncSeedOnly(seedOnly))
	}

	if len(syncOpts) > 0 {
		cfg.Update(syncOpts)
	}

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}

	if !hasTables {
		return &gn.Error{
			Code: errcode.DBEmptyDatabaseError,
			Msg: `<err>Database appears to be empty.</err>
   Run <em>'avidb create'</em> and <em>'avidb convert'</em> first,
   sync resolves species against the taxonomy.`,
			Err: errors.New("cannot sync into an empty database"),
		}
	}

	sy := iosync.NewSyncer(cfg, op, ioebird.New(cfg), iosources.New(cfg))

	gn.Info("Starting observation sync for <em>%s</em>...",
		cfg.Sync.Region)
	rep, err := sy.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Print(rep.Render())

	return nil
}
