package avidb

import (
	"context"

	"github.com/aviatlas/avidb/pkg/report"
)

// Enricher defines the interface for the resumable Wikipedia metadata
// walker. Config is provided during construction via New.
type Enricher interface {
	// Enrich walks species and genus rows in stable order, looks up
	// Wikipedia summaries for rows without metadata, and persists a
	// progress cursor after every batch so an interrupted run resumes
	// where it stopped.
	Enrich(ctx context.Context) (*report.Enrichment, error)
}
