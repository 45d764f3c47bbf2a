/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"

	"github.com/aviatlas/avidb/internal/iodb"
	"github.com/aviatlas/avidb/internal/ioenrich"
	"github.com/aviatlas/avidb/internal/ioprogress"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/progress"
	"github.com/aviatlas/avidb/pkg/taxonomy"
)

// getStatusCmd returns the status command.
func getStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show metadata coverage and saved progress",
		Long: `Show how much of the taxonomy carries Wikipedia metadata, together
with the saved enrichment cursor and the observation sync cursor.

All queries are read-only; the independent counts run concurrently.

Examples:
  avidb status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runStatus(cmd, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return statusCmd
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	cov, err := ioenrich.Stats(ctx, op)
	if err != nil {
		return err
	}

	st, err := ioprogress.New(cfg).Load(ctx)
	if err != nil {
		slog.Warn("Cannot read the enrichment progress file",
			"error", err)
	}

	fmt.Print(renderStatus(cov, st, lastSyncedDate(cfg.HomeDir)))

	return nil
}

// renderStatus lays out coverage numbers and the two saved cursors.
// A nil state means no enrichment run is in progress.
func renderStatus(
	cov *ioenrich.Coverage,
	st *progress.State,
	syncDate string,
) string {
	var b strings.Builder

	b.WriteString("\nTAXONOMY\n")
	for _, rank := range taxonomy.Ranks() {
		fmt.Fprintf(&b, "  %-10s %s\n",
			rank, comma(cov.RankCounts[rank]))
	}

	b.WriteString("\nWIKIPEDIA COVERAGE (species and genus)\n")
	fmt.Fprintf(&b, "  targets:       %s\n", comma(cov.Targets))
	fmt.Fprintf(&b, "  with page URL: %s\n", comma(cov.WithWikiURL))
	fmt.Fprintf(&b, "  with image:    %s\n", comma(cov.WithImageURL))
	fmt.Fprintf(&b, "  with both:     %s\n", comma(cov.WithBoth))
	fmt.Fprintf(&b, "  with neither:  %s\n", comma(cov.WithNeither))

	b.WriteString("\nENRICHMENT CURSOR\n")
	if st == nil {
		b.WriteString(
			"  no saved cursor, the next run starts from the top\n")
	} else {
		fmt.Fprintf(&b, "  offset:            %s of %s\n",
			comma(st.Offset), comma(cov.Targets))
		fmt.Fprintf(&b, "  batches completed: %s\n",
			comma(st.BatchesCompleted))
		fmt.Fprintf(&b, "  last saved:        %s\n",
			st.LastSavedAt.Format(time.RFC3339))
	}

	b.WriteString("\nSYNC CURSOR\n")
	if syncDate == "" {
		b.WriteString(
			"  no saved cursor, the next run starts at the default date\n")
	} else {
		fmt.Fprintf(&b, "  last synced date:  %s\n", syncDate)
	}

	return b.String()
}

// lastSyncedDate reads the sync date cursor, empty when none exists.
func lastSyncedDate(homeDir string) string {
	data, err := os.ReadFile(config.SyncCursorPath(homeDir))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}
