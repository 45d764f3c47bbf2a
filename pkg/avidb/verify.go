package avidb

import (
	"context"

	"github.com/aviatlas/avidb/pkg/report"
)

// Verifier defines the interface for taxonomy integrity checks.
// Config is provided during construction via New.
type Verifier interface {
	// Verify runs read-only integrity checks against the stored tree:
	// a single class root, orphan detection, parent rank distance, and
	// duplicate eBird codes. Failing checks are reported, not returned
	// as errors.
	Verify(ctx context.Context) (*report.Verification, error)
}
