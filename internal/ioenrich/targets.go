package ioenrich

import (
	"context"

	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/wiki"
)

// target is one node of the enrichment listing with just enough state
// to decide whether it needs a lookup.
type target struct {
	ID             string
	Rank           string
	ScientificName string
	CommonName     string
	HasWikiURL     bool
	HasImageURL    bool
}

// enriched reports whether the node already carries both URLs.
func (t target) enriched() bool {
	return t.HasWikiURL && t.HasImageURL
}

// label returns the name used for this node in logs.
func (t target) label() string {
	if t.ScientificName != "" {
		return t.ScientificName
	}
	if t.CommonName != "" {
		return t.CommonName
	}
	return t.ID
}

// targetLister loads the full enrichment listing. The order has to be
// stable across runs so a saved offset keeps meaning the same node.
type targetLister interface {
	List(ctx context.Context) ([]target, error)
}

// metadataWriter persists one looked-up summary.
type metadataWriter interface {
	Update(ctx context.Context, id string, sum *wiki.Summary) error
}

// pgTargets reads the listing from bird_taxa.
type pgTargets struct {
	operator db.Operator
}

const listTargetsQry = `
SELECT id, rank,
  COALESCE(scientific_name, ''),
  COALESCE(common_name, ''),
  wikipedia_url IS NOT NULL,
  image_url IS NOT NULL
  FROM bird_taxa
  WHERE rank IN ('species', 'genus')
  ORDER BY id`

func (p *pgTargets) List(ctx context.Context) ([]target, error) {
	pool := p.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	rows, err := pool.Query(ctx, listTargetsQry)
	if err != nil {
		return nil, TargetsError(err)
	}
	defer rows.Close()

	var res []target
	for rows.Next() {
		var t target
		err = rows.Scan(&t.ID, &t.Rank, &t.ScientificName,
			&t.CommonName, &t.HasWikiURL, &t.HasImageURL)
		if err != nil {
			return nil, TargetsError(err)
		}
		res = append(res, t)
	}
	if err = rows.Err(); err != nil {
		return nil, TargetsError(err)
	}
	return res, nil
}

// pgUpdater writes metadata with a set-if-null update, so a node
// reprocessed after an interrupted batch never overwrites values an
// earlier pass stored.
type pgUpdater struct {
	operator db.Operator
}

const updateMetadataQry = `
UPDATE bird_taxa
  SET wikipedia_url = COALESCE(wikipedia_url, $2),
    image_url = COALESCE(image_url, $3),
    updated_at = now()
  WHERE id = $1`

func (p *pgUpdater) Update(
	ctx context.Context,
	id string,
	sum *wiki.Summary,
) error {
	pool := p.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	_, err := pool.Exec(ctx, updateMetadataQry,
		id, nullable(sum.PageURL), nullable(sum.ImageURL))
	if err != nil {
		return UpdateError(id, err)
	}
	return nil
}

// nullable maps empty strings to NULL, so a summary without an image
// leaves image_url unset for a later retry.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
