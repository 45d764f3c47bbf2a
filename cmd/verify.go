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
	"github.com/aviatlas/avidb/internal/ioverify"
	"github.com/aviatlas/avidb/pkg/errcode"
)

// getVerifyCmd returns the verify command.
func getVerifyCmd() *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the integrity of the stored taxonomy",
		Long: `Run read-only integrity checks over the bird_taxa tree.

Checks:
  - exactly one class row at the root
  - every other row points at an existing parent
  - every parent is exactly one rank above its child
  - no eBird code appears on more than one row

The command prints per-rank counts and the result of each check, and
exits non-zero when any check fails. The database is never modified,
so verify is safe to run at any time.

Examples:
  avidb verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runVerify(cmd, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	return verifyCmd
}

func runVerify(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

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
   Run <em>'avidb create'</em> first to initialize the schema.`,
			Err: errors.New("cannot verify an empty database"),
		}
	}

	ver := ioverify.NewVerifier(cfg, op)

	rep, err := ver.Verify(ctx)
	if err != nil {
		return err
	}

	fmt.Print(rep.Render())

	// A failed check is a report for the verifier but an error for the
	// command: the exit code is what CI pipelines consume.
	var failed int
	for _, c := range rep.Checks {
		if !c.Passed {
			failed++
		}
	}
	if failed > 0 {
		return ioverify.FailedError(failed)
	}

	return nil
}
