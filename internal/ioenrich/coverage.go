package ioenrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/taxonomy"
)

// Coverage summarizes how much of the taxonomy carries Wikipedia
// metadata. The status command renders it next to the saved cursor.
type Coverage struct {
	// RankCounts holds the number of stored rows per rank.
	RankCounts map[taxonomy.Rank]int

	// Targets is the number of species and genus rows, the listing
	// the walker iterates.
	Targets int

	WithWikiURL  int
	WithImageURL int
	WithBoth     int
	WithNeither  int
}

const rankCountsQry = `
SELECT rank, count(*)
  FROM bird_taxa
  GROUP BY rank`

const coverageQry = `
SELECT count(*),
  count(*) FILTER (WHERE wikipedia_url IS NOT NULL),
  count(*) FILTER (WHERE image_url IS NOT NULL),
  count(*) FILTER (
    WHERE wikipedia_url IS NOT NULL AND image_url IS NOT NULL),
  count(*) FILTER (
    WHERE wikipedia_url IS NULL AND image_url IS NULL)
  FROM bird_taxa
  WHERE rank IN ('species', 'genus')`

// Stats collects the coverage counts. The two aggregate queries are
// independent reads and run concurrently.
func Stats(
	ctx context.Context,
	operator db.Operator,
) (*Coverage, error) {
	pool := operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	cov := &Coverage{RankCounts: make(map[taxonomy.Rank]int)}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := pool.Query(ctx, rankCountsQry)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rank string
			var count int
			err = rows.Scan(&rank, &count)
			if err != nil {
				return err
			}
			cov.RankCounts[taxonomy.Rank(rank)] = count
		}
		return rows.Err()
	})

	g.Go(func() error {
		row := pool.QueryRow(ctx, coverageQry)
		return row.Scan(&cov.Targets, &cov.WithWikiURL,
			&cov.WithImageURL, &cov.WithBoth, &cov.WithNeither)
	})

	if err := g.Wait(); err != nil {
		return nil, StatsError(err)
	}
	return cov, nil
}
