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
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"

	"github.com/aviatlas/avidb/internal/ioconvert"
	"github.com/aviatlas/avidb/internal/iodb"
	"github.com/aviatlas/avidb/internal/iosources"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/errcode"
)

// getConvertCmd returns the convert command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getConvertCmd() *cobra.Command {
	var (
		csvPath   string
		version   string
		batchSize int
		dryRun    bool
		reportDir string
	)

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an eBird taxonomy release into bird taxa",
		Long: `Import an eBird taxonomy CSV release into the bird_taxa tree.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Resolves the CSV through sources.yaml (or uses --csv directly)
  3. Streams the rows, keeping species with a parseable scientific name
  4. Builds the class > order > family > genus > species tree in memory
  5. Imports the tree level by level with idempotent upserts

Conversion is idempotent: re-running it against the same release
creates no new rows, so it is safe after fixing sources.yaml or after
an interrupted run.

Taxonomy releases are configured in: ~/.config/avidb/sources.yaml

Examples:
  # Import the default release from sources.yaml
  avidb convert

  # Import a specific release
  avidb convert --version 2024

  # Import a local file directly
  avidb convert --csv ~/data/eBird_taxonomy_v2024.csv

  # Show what would be created without writing
  avidb convert --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runConvert(
				cmd, csvPath, version,
				batchSize, dryRun, reportDir,
			)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	convertCmd.Flags().StringVarP(
		&csvPath, "csv", "c", "",
		"local taxonomy CSV file (bypasses sources.yaml)",
	)
	convertCmd.Flags().StringVarP(
		&version, "version", "r", "",
		"taxonomy release version from sources.yaml",
	)
	convertCmd.Flags().IntVarP(
		&batchSize, "batch-size", "b", 0,
		"rows per write batch (default from config)",
	)
	convertCmd.Flags().BoolVar(
		&dryRun, "dry-run", false,
		"build the tree and report without writing",
	)
	convertCmd.Flags().StringVar(
		&reportDir, "report-dir", "",
		"write a timestamped run summary to this directory",
	)

	return convertCmd
}

// validateConvertFlags rejects flag combinations that name two
// different inputs for the same run.
func validateConvertFlags(hasCSV, hasVersion bool) error {
	if hasCSV && hasVersion {
		return fmt.Errorf(
			"cannot combine --csv with --version: " +
				"--csv already names one exact file")
	}
	return nil
}

func runConvert(
	cmd *cobra.Command,
	csvPath string,
	version string,
	batchSize int,
	dryRun bool,
	reportDir string,
) error {
	ctx := context.Background()

	err := validateConvertFlags(
		cmd.Flags().Changed("csv"),
		cmd.Flags().Changed("version"),
	)
	if err != nil {
		gn.Warn(`<warn>Cannot combine --csv with --version</warn>
   <warn>--csv already names one exact file</warn>`)
		slog.Error("invalid flag combination", "error", err)
		return err
	}

	// Build options from explicitly set flags
	var convertOpts []config.Option

	if cmd.Flags().Changed("csv") {
		convertOpts = append(
			convertOpts,
			config.OptConvertCSVPath(csvPath),
		)
	}

	if cmd.Flags().Changed("version") {
		convertOpts = append(
			convertOpts,
			config.OptConvertVersion(version),
		)
	}

	if cmd.Flags().Changed("batch-size") {
		convertOpts = append(
			convertOpts,
			config.OptDatabaseBatchSize(batchSize),
		)
	}

	if cmd.Flags().Changed("dry-run") {
		convertOpts = append(
			convertOpts,
			config.OptConvertDryRun(dryRun),
		)
	}

	if cmd.Flags().Changed("report-dir") {
		convertOpts = append(
			convertOpts,
			config.OptConvertReportDir(reportDir),
		)
	}

	// Apply convert-specific options to config
	if len(convertOpts) > 0 {
		cfg.Update(convertOpts)
	}

	// A dry run never opens a database connection: the tree is built
	// in memory and the import phase is skipped.
	op := iodb.NewPgxOperator()
	if !cfg.Convert.DryRun {
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
   Run <em>'avidb create'</em> first to initialize the schema.`,
				Err: errors.New("cannot convert into an empty database"),
			}
		}
	}

	conv := ioconvert.NewConverter(cfg, op, iosources.New(cfg))

	gn.Info("Starting taxonomy conversion...")
	rep, err := conv.Convert(ctx)
	if err != nil {
		return err
	}

	fmt.Print(rep.Render())

	gn.Info(`Next steps:
  - Run '<em>avidb enrich</em>' to attach Wikipedia metadata
  - Run '<em>avidb verify</em>' to check the stored tree
`)

	return nil
}
