package ioenrich

import (
	"fmt"

	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for when enrichment is attempted
// without database connection.
func NotConnectedError() error {
	msg := "Enrichment attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TargetsError creates an error for a failed listing of enrichment
// candidates.
func TargetsError(err error) error {
	msg := `Cannot list species and genus taxa

<em>Possible causes:</em>
  - Database connection lost
  - Taxonomy tables missing

<em>How to fix:</em>
  1. Check the database is reachable
  2. Run <em>avidb convert</em> to build the taxonomy`

	return &gn.Error{
		Code: errcode.EnrichTargetsError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to list enrichment targets: %w", err),
	}
}

// UpdateError creates an error for a failed metadata write.
func UpdateError(id string, err error) error {
	msg := "Cannot store metadata for taxon <em>%s</em>"
	vars := []any{id}

	return &gn.Error{
		Code: errcode.EnrichUpdateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to update taxon %s: %w", id, err),
	}
}

// ProgressError creates an error for a progress cursor operation that
// failed. Cursor failures abort the run.
func ProgressError(operation string, err error) error {
	msg := `Progress cursor operation failed: <em>%s</em>

<em>Possible causes:</em>
  - Cache directory is not writable
  - Disk full

<em>How to fix:</em>
  1. Check permissions on <em>~/.cache/avidb</em>
  2. Re-run with <em>--start-fresh</em> if the file is damaged`

	vars := []any{operation}

	return &gn.Error{
		Code: errcode.EnrichProgressError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("progress %s failed: %w", operation, err),
	}
}

// StatsError creates an error for failed coverage queries.
func StatsError(err error) error {
	msg := "Cannot read enrichment coverage"

	return &gn.Error{
		Code: errcode.EnrichTargetsError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to read coverage: %w", err),
	}
}

// CancelledError creates an error for when an enrichment run is
// cancelled.
func CancelledError(err error) error {
	msg := "Enrichment was cancelled"

	return &gn.Error{
		Code: errcode.UnknownError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("enrichment cancelled: %w", err),
	}
}
