package avidb

import (
	"context"

	"github.com/aviatlas/avidb/pkg/report"
)

// Converter defines the interface for converting an eBird taxonomy CSV
// release into the bird_taxa tree. Config is provided during
// construction via New.
type Converter interface {
	// Convert streams the taxonomy CSV, classifies rows, builds the
	// five-level tree in memory, and upserts it level by level.
	// Conversion is idempotent: a second run against the same CSV
	// creates no new rows. The returned report is rendered by the
	// caller.
	Convert(ctx context.Context) (*report.Conversion, error)
}
