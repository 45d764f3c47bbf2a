// Package ioverify implements the read-only integrity checks behind
// the verify command: the stored tree is counted and inspected, never
// modified.
package ioverify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"

	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/taxonomy"
)

// integrityStore is the slice of the database the checks read.
type integrityStore interface {
	// RankCounts returns the number of rows per rank.
	RankCounts(ctx context.Context) (map[taxonomy.Rank]int, error)

	// RootCount returns the number of class rows.
	RootCount(ctx context.Context) (int, error)

	// StrayCount returns the number of non-class rows whose parent is
	// NULL or missing.
	StrayCount(ctx context.Context) (int, error)

	// RankSkewCount returns the number of rows whose parent sits at
	// the wrong rank.
	RankSkewCount(ctx context.Context) (int, error)

	// DuplicateCodeCount returns the number of eBird codes appearing
	// on more than one row.
	DuplicateCodeCount(ctx context.Context) (int, error)
}

type verifier struct {
	cfg   *config.Config
	store integrityStore
}

// NewVerifier creates a Verifier with the given configuration and
// database operator.
func NewVerifier(cfg *config.Config, operator db.Operator) avidb.Verifier {
	return &verifier{
		cfg:   cfg,
		store: &pgChecks{operator: operator},
	}
}

// Verify counts the stored tree and runs the integrity checks. A
// failing check is reported, not returned as an error; callers decide
// what a failed report means for their exit code.
func (v *verifier) Verify(ctx context.Context) (*report.Verification, error) {
	start := time.Now()
	rep := &report.Verification{StartedAt: start}

	gn.Info("(1/2) Counting taxa by rank")
	counts, err := v.store.RankCounts(ctx)
	if err != nil {
		return nil, err
	}
	rep.Counts = counts

	var total int
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		slog.Warn("The taxonomy is empty, run convert first")
	}

	gn.Info("(2/2) Running integrity checks")
	checks := []struct {
		name  string
		count func(context.Context) (int, error)
		pass  func(n int) bool
		fail  string
	}{
		{"single class root", v.store.RootCount,
			func(n int) bool { return n == 1 },
			"expected one class row, found %s"},
		{"no orphaned nodes", v.store.StrayCount,
			func(n int) bool { return n == 0 },
			"%s nodes reference a missing or NULL parent"},
		{"parent rank one level above", v.store.RankSkewCount,
			func(n int) bool { return n == 0 },
			"%s nodes are linked to the wrong parent rank"},
		{"no duplicate eBird codes", v.store.DuplicateCodeCount,
			func(n int) bool { return n == 0 },
			"%s codes appear on more than one row"},
	}

	for _, c := range checks {
		n, err := c.count(ctx)
		if err != nil {
			return nil, err
		}
		check := report.Check{Name: c.name, Passed: c.pass(n)}
		if !check.Passed {
			check.Detail = fmt.Sprintf(c.fail, humanize.Comma(int64(n)))
			slog.Warn("Integrity check failed",
				"check", c.name, "count", n)
		}
		rep.Checks = append(rep.Checks, check)
	}

	rep.FinishedAt = time.Now()
	if rep.Passed() {
		gn.Info("All integrity checks passed\nElapsed time: <em>%s</em>",
			gnfmt.TimeString(time.Since(start).Seconds()))
	}
	return rep, nil
}
