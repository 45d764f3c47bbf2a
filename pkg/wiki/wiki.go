// Package wiki defines the encyclopedia lookup port of the enrichment
// walker. The walker only sees the Lookup interface, so tests drive it
// with an in-memory stub and production uses the Wikipedia client in
// internal/iowiki.
package wiki

import (
	"context"
	"errors"
)

// ErrNotFound reports that no usable page exists for a title. It
// covers missing pages and disambiguation pages alike; the walker
// counts it separately from lookup failures and neither is cached, so
// a later run retries.
var ErrNotFound = errors.New("wiki: page not found")

// Summary is the slice of a Wikipedia page the taxonomy stores:
// the canonical page URL and a representative image.
type Summary struct {
	Title    string
	PageURL  string
	ImageURL string
}

// Lookup resolves a page title to its summary.
type Lookup interface {
	// Summary fetches the page summary for title. A missing or
	// ambiguous page returns ErrNotFound; other errors are transient
	// lookup failures.
	Summary(ctx context.Context, title string) (*Summary, error)
}
