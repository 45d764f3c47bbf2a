package ioconvert

import (
	"context"
	"fmt"
	"strings"

	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/taxonomy"
	"github.com/cheggaaa/pb/v3"
)

// taxonCols is the column list every taxon upsert writes. Ranks
// above species leave ebird_code and species_group NULL.
const taxonCols = `(id, name, rank, parent_id, scientific_name, ` +
	`common_name, ebird_code, order_name, family_name, ` +
	`species_group, created_at, updated_at)`

// returningClause reports the surviving row for each VALUES row.
// xmax = 0 distinguishes a fresh insert from a conflict update;
// the key columns are coalesced to '' so one scan shape serves
// every rank.
const returningClause = `RETURNING COALESCE(ebird_code, ''), ` +
	`COALESCE(parent_id::text, ''), name, id, (xmax = 0)`

const paramsPerRow = 10

// conflictClause selects the upsert arbiter: the eBird code for
// species, the natural key for ranks above.
func conflictClause(rank taxonomy.Rank) string {
	if rank == taxonomy.RankSpecies {
		return "(ebird_code)"
	}
	return "(rank, parent_id, name)"
}

// buildUpsertSQL renders the atomic insert-if-absent statement
// for a batch of rows. A conflicting row is touched
// (updated_at = now()) so RETURNING always reports it.
func buildUpsertSQL(rank taxonomy.Rank, rows int) string {
	values := make([]string, rows)
	for i := range rows {
		base := i * paramsPerRow
		values[i] = fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, now(), now())",
			base+1, base+2, base+3, base+4, base+5,
			base+6, base+7, base+8, base+9, base+10,
		)
	}

	return fmt.Sprintf(
		"INSERT INTO bird_taxa %s VALUES %s\n"+
			"ON CONFLICT %s DO UPDATE SET updated_at = now()\n%s",
		taxonCols,
		strings.Join(values, ", "),
		conflictClause(rank),
		returningClause,
	)
}

// nullable converts the builder's empty strings to NULLs at the
// store boundary.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// taxonArgs lays out one node's parameters in taxonCols order.
// parentID carries the database id of the parent (nil for the
// class root), not the builder id.
func taxonArgs(node *taxonomy.Node, parentID any) []any {
	return []any{
		node.ID,
		node.Name,
		string(node.Rank),
		parentID,
		nullable(node.ScientificName),
		nullable(node.CommonName),
		nullable(node.EbirdCode),
		nullable(node.OrderName),
		nullable(node.FamilyName),
		nullable(node.SpeciesGroup),
	}
}

// batchKey is the value RETURNING echoes back for a row, used to
// match results to their nodes without relying on row order.
func batchKey(rank taxonomy.Rank, node *taxonomy.Node, parentID any) string {
	if rank == taxonomy.RankSpecies {
		return node.EbirdCode
	}
	parent, _ := parentID.(string)
	return parent + "|" + node.Name
}

// resolveParent maps the builder's parent id to the database id
// of the imported parent row. ok is false when the parent failed
// to import, which orphans the node.
func resolveParent(
	node *taxonomy.Node,
	idMap map[string]string,
) (any, bool) {
	if node.ParentID == "" {
		return nil, true
	}
	id, ok := idMap[node.ParentID]
	if !ok {
		return nil, false
	}
	return id, true
}

// importTree writes the tree level by level so every parent row
// exists before its children reference it. idMap carries the
// database id of every imported node; children resolve their
// parent_id through it, which also covers pre-existing rows that
// keep a foreign id.
func (c *converter) importTree(
	ctx context.Context,
	builder *taxonomy.Builder,
	rep *report.Conversion,
) error {
	if c.operator.Pool() == nil {
		return NotConnectedError()
	}

	idMap := make(map[string]string, builder.Total())

	bar := pb.Full.Start(builder.Total())
	bar.Set("prefix", "Importing taxa: ")
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	for _, rank := range taxonomy.Ranks() {
		nodes := builder.Nodes(rank)
		if len(nodes) == 0 {
			continue
		}
		err := c.upsertLevel(ctx, rank, nodes, idMap, rep, bar)
		if err != nil {
			return err
		}
	}

	return nil
}

// upsertLevel imports one rank in batches. A failing batch is
// retried row by row so a single bad row costs itself, not its
// batch; a batch whose every row fails aborts the run.
func (c *converter) upsertLevel(
	ctx context.Context,
	rank taxonomy.Rank,
	nodes []*taxonomy.Node,
	idMap map[string]string,
	rep *report.Conversion,
	bar *pb.ProgressBar,
) error {
	batchSize := c.cfg.Database.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for start := 0; start < len(nodes); start += batchSize {
		select {
		case <-ctx.Done():
			return CancelledError(ctx.Err())
		default:
		}

		end := min(start+batchSize, len(nodes))

		// Nodes whose parent never imported cannot be written
		pending := make([]*taxonomy.Node, 0, end-start)
		parents := make([]any, 0, end-start)
		for _, node := range nodes[start:end] {
			parentArg, ok := resolveParent(node, idMap)
			if !ok {
				rep.Failed++
				rep.Errors = append(rep.Errors, report.RowError{
					Reason: fmt.Sprintf(
						"%s %q: parent was not imported",
						rank, node.Name),
				})
				continue
			}
			pending = append(pending, node)
			parents = append(parents, parentArg)
		}

		if len(pending) > 0 {
			err := c.upsertBatch(ctx, rank, pending, parents, idMap, rep)
			if err != nil {
				failed := 0
				for i, node := range pending {
					rowErr := c.upsertRow(
						ctx, rank, node, parents[i], idMap, rep)
					if rowErr != nil {
						failed++
						rep.Failed++
						rep.Errors = append(rep.Errors, report.RowError{
							Reason: fmt.Sprintf("%s %q: %v",
								rank, node.Name, rowErr),
						})
					}
				}
				if failed == len(pending) {
					return UpsertError(string(rank), err)
				}
			}
		}

		bar.Add(end - start)
	}

	return nil
}

// upsertBatch writes one multi-row statement and distributes the
// surviving ids back to the nodes.
func (c *converter) upsertBatch(
	ctx context.Context,
	rank taxonomy.Rank,
	nodes []*taxonomy.Node,
	parents []any,
	idMap map[string]string,
	rep *report.Conversion,
) error {
	args := make([]any, 0, len(nodes)*paramsPerRow)
	byKey := make(map[string]*taxonomy.Node, len(nodes))
	for i, node := range nodes {
		args = append(args, taxonArgs(node, parents[i])...)
		byKey[batchKey(rank, node, parents[i])] = node
	}

	rows, err := c.operator.Pool().Query(
		ctx, buildUpsertSQL(rank, len(nodes)), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var code, parent, name, id string
		var inserted bool
		if err := rows.Scan(
			&code, &parent, &name, &id, &inserted); err != nil {
			return err
		}

		key := code
		if rank != taxonomy.RankSpecies {
			key = parent + "|" + name
		}
		node, ok := byKey[key]
		if !ok {
			continue
		}

		idMap[node.ID] = id
		if inserted {
			rep.Created[rank]++
		} else {
			rep.Existing[rank]++
		}
	}

	return rows.Err()
}

// upsertRow is the single-row fallback used to isolate failures
// inside a broken batch.
func (c *converter) upsertRow(
	ctx context.Context,
	rank taxonomy.Rank,
	node *taxonomy.Node,
	parentID any,
	idMap map[string]string,
	rep *report.Conversion,
) error {
	rows, err := c.operator.Pool().Query(
		ctx, buildUpsertSQL(rank, 1), taxonArgs(node, parentID)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var code, parent, name, id string
		var inserted bool
		if err := rows.Scan(
			&code, &parent, &name, &id, &inserted); err != nil {
			return err
		}

		idMap[node.ID] = id
		if inserted {
			rep.Created[rank]++
		} else {
			rep.Existing[rank]++
		}
	}

	return rows.Err()
}
