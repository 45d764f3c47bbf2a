package ioverify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/taxonomy"
)

const rankCountsQry = `SELECT rank, count(*) FROM bird_taxa GROUP BY rank`

const rootCountQry = `SELECT count(*) FROM bird_taxa WHERE rank = 'class'`

// strayCountQry finds non-class rows without a resolvable parent,
// whether parent_id is NULL or points at a deleted row.
const strayCountQry = `
SELECT count(*)
FROM bird_taxa t
LEFT JOIN bird_taxa p ON t.parent_id = p.id
WHERE t.rank != 'class' AND p.id IS NULL`

const duplicateCodeQry = `
SELECT count(*) FROM (
	SELECT ebird_code
	FROM bird_taxa
	WHERE ebird_code IS NOT NULL
	GROUP BY ebird_code
	HAVING count(*) > 1
) AS dup`

// buildRankSkewQry renders the wrong-parent-rank check from the rank
// ladder, so the check cannot drift from the tree definition. A class
// row with any parent counts as skewed.
func buildRankSkewQry() string {
	var cases []string
	for _, rank := range taxonomy.Ranks() {
		parent, ok := rank.Parent()
		if !ok {
			continue
		}
		cases = append(cases,
			fmt.Sprintf("WHEN '%s' THEN '%s'", rank, parent))
	}

	return fmt.Sprintf(`
SELECT count(*)
FROM bird_taxa t
JOIN bird_taxa p ON t.parent_id = p.id
WHERE t.rank = 'class'
   OR p.rank IS DISTINCT FROM CASE t.rank %s END`,
		strings.Join(cases, " "))
}

// pgChecks implements integrityStore on the PostgreSQL pool.
type pgChecks struct {
	operator db.Operator
}

func (c *pgChecks) RankCounts(
	ctx context.Context,
) (map[taxonomy.Rank]int, error) {
	if c.operator.Pool() == nil {
		return nil, NotConnectedError()
	}

	rows, err := c.operator.Pool().Query(ctx, rankCountsQry)
	if err != nil {
		return nil, QueryError("rank counts", err)
	}
	defer rows.Close()

	res := make(map[taxonomy.Rank]int)
	for rows.Next() {
		var rank string
		var n int
		if err := rows.Scan(&rank, &n); err != nil {
			return nil, QueryError("rank counts", err)
		}
		res[taxonomy.Rank(rank)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError("rank counts", err)
	}
	return res, nil
}

func (c *pgChecks) RootCount(ctx context.Context) (int, error) {
	return c.countQuery(ctx, "single class root", rootCountQry)
}

func (c *pgChecks) StrayCount(ctx context.Context) (int, error) {
	return c.countQuery(ctx, "no orphaned nodes", strayCountQry)
}

func (c *pgChecks) RankSkewCount(ctx context.Context) (int, error) {
	return c.countQuery(
		ctx, "parent rank one level above", buildRankSkewQry())
}

func (c *pgChecks) DuplicateCodeCount(ctx context.Context) (int, error) {
	return c.countQuery(ctx, "no duplicate eBird codes", duplicateCodeQry)
}

func (c *pgChecks) countQuery(
	ctx context.Context,
	check, qry string,
) (int, error) {
	if c.operator.Pool() == nil {
		return 0, NotConnectedError()
	}

	var n int
	err := c.operator.Pool().QueryRow(ctx, qry).Scan(&n)
	if err != nil {
		return 0, QueryError(check, err)
	}
	return n, nil
}
