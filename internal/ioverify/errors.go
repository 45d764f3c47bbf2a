package ioverify

import (
	"fmt"

	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError creates an error for when verification is
// attempted without database connection.
func NotConnectedError() error {
	msg := "Verification attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// QueryError creates an error for an integrity check query that
// failed to run.
func QueryError(check string, err error) error {
	msg := `Integrity check query failed: <em>%s</em>

<em>Possible causes:</em>
  - Database connection lost
  - Taxonomy tables missing

<em>How to fix:</em>
  1. Check the database is reachable
  2. Run <em>avidb create</em> and <em>avidb convert</em> first`

	vars := []any{check}

	return &gn.Error{
		Code: errcode.VerifyQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("integrity check %q failed: %w", check, err),
	}
}

// FailedError creates the error the verify command exits with when
// integrity checks fail.
func FailedError(failed int) error {
	msg := `<em>%d</em> integrity checks failed

<em>Possible causes:</em>
  - An interrupted conversion left a partial tree
  - Rows were modified outside avidb

<em>How to fix:</em>
  1. Re-run <em>avidb convert</em>, its writes are idempotent
  2. Re-run <em>avidb verify</em>`

	vars := []any{failed}

	return &gn.Error{
		Code: errcode.VerifyFailedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%d integrity checks failed", failed),
	}
}
