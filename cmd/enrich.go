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
	"github.com/aviatlas/avidb/internal/ioenrich"
	"github.com/aviatlas/avidb/internal/ioprogress"
	"github.com/aviatlas/avidb/internal/iowiki"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/errcode"
)

// getEnrichCmd returns the enrich command.
func getEnrichCmd() *cobra.Command {
	var (
		batchSize  int
		maxBatches int
		delayMs    int
		startFresh bool
		dryRun     bool
		reportDir  string
	)

	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Attach Wikipedia metadata to species and genera",
		Long: `Walk species and genus taxa and fill in missing Wikipedia metadata.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Loads the saved progress cursor (if any)
  3. Lists species and genus taxa in stable order
  4. Looks up a summary and an image for rows without metadata
  5. Saves the cursor after every completed batch

An interrupted run resumes at the last completed batch. Taxa that
already carry metadata are skipped, so re-running enrich only fills
gaps and retries earlier failures.

Examples:
  # Enrich everything that misses metadata
  avidb enrich

  # Limit a run to 10 batches of 50
  avidb enrich --batch-size 50 --max-batches 10

  # Discard saved progress and start over
  avidb enrich --start-fresh

  # Look up without writing
  avidb enrich --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runEnrich(
				cmd, batchSize, maxBatches, delayMs,
				startFresh, dryRun, reportDir,
			)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	enrichCmd.Flags().IntVarP(
		&batchSize, "batch-size", "b", 0,
		"taxa per checkpoint batch (default from config)",
	)
	enrichCmd.Flags().IntVarP(
		&maxBatches, "max-batches", "m", 0,
		"stop after this many batches (0 = no limit)",
	)
	enrichCmd.Flags().IntVar(
		&delayMs, "delay", 0,
		"milliseconds between Wikipedia requests (default from config)",
	)
	enrichCmd.Flags().BoolVar(
		&startFresh, "start-fresh", false,
		"discard the saved progress cursor",
	)
	enrichCmd.Flags().BoolVar(
		&dryRun, "dry-run", false,
		"look up metadata without writing",
	)
	enrichCmd.Flags().StringVar(
		&reportDir, "report-dir", "",
		"write a timestamped run summary to this directory",
	)

	return enrichCmd
}

func runEnrich(
	cmd *cobra.Command,
	batchSize int,
	maxBatches int,
	delayMs int,
	startFresh bool,
	dryRun bool,
	reportDir string,
) error {
	ctx := context.Background()

	// Build options from explicitly set flags
	var enrichOpts []config.Option

	if cmd.Flags().Changed("batch-size") {
		enrichOpts = append(
			enrichOpts,
			config.OptEnrichBatchSize(batchSize),
		)
	}

	if cmd.Flags().Changed("max-batches") {
		enrichOpts = append(
			enrichOpts,
			config.OptEnrichMaxBatches(maxBatches),
		)
	}

	if cmd.Flags().Changed("delay") {
		enrichOpts = append(
			enrichOpts,
			config.OptEnrichRequestDelayMs(delayMs),
		)
	}

	if cmd.Flags().Changed("start-fresh") {
		enrichOpts = append(
			enrichOpts,
			config.OptEnrichStartFresh(startFresh),
		)
	}

	if cmd.Flags().Changed("dry-run") {
		enrichOpts = append(
			enrichOpts,
			config.OptEnrichDryRun(dryRun),
		)
	}

	if cmd.Flags().Changed("report-dir") {
		enrichOpts = append(
			enrichOpts,
			config.OptEnrichReportDir(reportDir),
		)
	}

	if len(enrichOpts) > 0 {
		cfg.Update(enrichOpts)
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
   Run <em>'avidb create'</em> and <em>'avidb convert'</em> first.`,
			Err: errors.New("cannot enrich an empty database"),
		}
	}

	lookup, err := iowiki.New(cfg)
	if err != nil {
		return err
	}
	defer lookup.Close()

	enr := ioenrich.NewEnricher(cfg, op, lookup, ioprogress.New(cfg))

	gn.Info("Starting Wikipedia enrichment...")
	rep, err := enr.Enrich(ctx)
	if err != nil {
		return err
	}

	fmt.Print(rep.Render())

	gn.Info(`Next steps:
  - Re-run '<em>avidb enrich</em>' until coverage is complete
  - Run '<em>avidb status</em>' to see coverage numbers
`)

	return nil
}
