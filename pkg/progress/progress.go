// Package progress defines the durable batch-job state of the
// enrichment walker and the port used to persist it across runs. The
// walker only sees the Store interface, so tests drive it with an
// in-memory stub and production uses the JSON file implementation in
// internal/ioprogress.
package progress

import (
	"context"
	"time"
)

// State is the resumable cursor of an enrichment job. Offset is the
// index of the first node of the next batch within the stable target
// listing; everything below it was fully processed by an earlier
// batch. Counters accumulate across resumed runs until the state is
// cleared.
type State struct {
	Offset           int       `json:"last_offset"`
	BatchSize        int       `json:"batch_size"`
	StartedAt        time.Time `json:"started_at"`
	LastSavedAt      time.Time `json:"last_updated"`
	TotalProcessed   int       `json:"total_processed"`
	TotalUpdated     int       `json:"total_updated"`
	TotalErrors      int       `json:"total_errors"`
	BatchesCompleted int       `json:"batches_completed"`
}

// NewState creates the state of a fresh run starting at offset zero.
func NewState(batchSize int) *State {
	return &State{
		BatchSize: batchSize,
		StartedAt: time.Now(),
	}
}

// AdvanceBatch moves the cursor past one fully processed batch and
// folds the batch outcome into the counters. It is called exactly once
// per batch, regardless of individual node outcomes.
func (s *State) AdvanceBatch(processed, updated, errors int) {
	s.Offset += processed
	s.TotalProcessed += processed
	s.TotalUpdated += updated
	s.TotalErrors += errors
	s.BatchesCompleted++
	s.LastSavedAt = time.Now()
}

// Store persists the State between runs.
type Store interface {
	// Load returns the saved state, or nil when none exists. An
	// unreadable or invalid state returns an error; callers fall back
	// to offset zero with an explicit warning, never silently.
	Load(ctx context.Context) (*State, error)

	// Save durably writes the state. Called at every batch boundary.
	Save(ctx context.Context, st *State) error

	// Clear removes the saved state. Used by start-fresh and after a
	// run that walked its listing to the end.
	Clear(ctx context.Context) error
}
