package avidb

import (
	"context"

	"github.com/aviatlas/avidb/pkg/report"
)

// Syncer defines the interface for pulling eBird observations into the
// database. Config is provided during construction via New.
type Syncer interface {
	// Sync seeds the regional species checklist, then walks days from
	// the date cursor to the last full calendar day, fetching historic
	// observations for each day and storing them with their species
	// links. The cursor advances only after a day is fully stored.
	Sync(ctx context.Context) (*report.Sync, error)
}
