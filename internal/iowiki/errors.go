package iowiki

import (
	"fmt"

	"github.com/gnames/gn"

	"github.com/aviatlas/avidb/pkg/errcode"
)

// CacheError creates an error for lookup cache failures.
func CacheError(operation string, err error) error {
	msg := `Wiki cache operation failed: <em>%s</em>`
	vars := []any{operation}

	return &gn.Error{
		Code: errcode.EnrichCacheError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("wiki cache operation failed: %w", err),
	}
}
