package iosync

import (
	"fmt"

	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/gnames/gn"
)

// APIKeyError creates an error for a sync attempted without an eBird
// API token.
func APIKeyError() error {
	msg := `eBird API key is not set

<em>Possible causes:</em>
  - EBIRD_API_KEY is not exported
  - sync.api_key is empty in config.yaml

<em>How to fix:</em>
  1. Request a key at <em>https://ebird.org/api/keygen</em>
  2. Export it as <em>EBIRD_API_KEY</em> or set <em>sync.api_key</em>`

	return &gn.Error{
		Code: errcode.SyncAPIKeyError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("ebird api key is not set"),
	}
}

// RequestError creates an error for a failed eBird API request.
func RequestError(what string, err error) error {
	msg := `Cannot fetch <em>%s</em> from the eBird API

<em>Possible causes:</em>
  - Network is down or eBird is unreachable
  - API key was revoked or is rate limited

<em>How to fix:</em>
  1. Check connectivity and the API key
  2. Re-run <em>avidb sync</em>, it resumes from the cursor`

	vars := []any{what}

	return &gn.Error{
		Code: errcode.SyncRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("ebird request for %s failed: %w", what, err),
	}
}

// CursorError creates an error for a date cursor operation that
// failed. Cursor failures abort the run.
func CursorError(operation string, err error) error {
	msg := `Date cursor operation failed: <em>%s</em>

<em>Possible causes:</em>
  - Cache directory is not writable
  - Cursor file is damaged

<em>How to fix:</em>
  1. Check <em>~/.cache/avidb/last_successful_date.txt</em>
  2. Re-run with <em>--from</em> to set the start day by hand`

	vars := []any{operation}

	return &gn.Error{
		Code: errcode.SyncCursorError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to %s: %w", operation, err),
	}
}

// StageError creates an error for a failed database operation during
// the sync.
func StageError(operation string, err error) error {
	msg := `Sync storage operation failed: <em>%s</em>

<em>Possible causes:</em>
  - Database connection lost
  - Schema out of date

<em>How to fix:</em>
  1. Check the database is reachable
  2. Run <em>avidb migrate</em> to update the schema
  3. Re-run <em>avidb sync</em>, it resumes from the cursor`

	vars := []any{operation}

	return &gn.Error{
		Code: errcode.SyncStageError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to %s: %w", operation, err),
	}
}

// NotConnectedError creates an error for when a sync is attempted
// without database connection.
func NotConnectedError() error {
	msg := "Sync attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// CancelledError creates an error for when a sync run is cancelled.
func CancelledError(err error) error {
	msg := "Sync was cancelled"

	return &gn.Error{
		Code: errcode.UnknownError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("sync cancelled: %w", err),
	}
}
