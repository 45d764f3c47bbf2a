package iosync

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aviatlas/avidb/pkg/db"
)

// regionalEntry is one checklist row resolved from the taxonomy.
type regionalEntry struct {
	SpeciesCode    string
	CommonName     string
	ScientificName string
}

// link ties one species to one stored observation event.
type link struct {
	ObservationID string
	SpeciesCode   string

	// HowMany is the reported count, zero for presence-only records.
	HowMany int
}

// obsStore is the slice of the database the sync uses.
type obsStore interface {
	// KnownSpecies returns every code on the regional checklist.
	KnownSpecies(ctx context.Context) (map[string]bool, error)

	// ResolveSpecies looks the codes up in the taxonomy. Codes with
	// no species row are absent from the result.
	ResolveSpecies(
		ctx context.Context, codes []string,
	) (map[string]regionalEntry, error)

	// AddRegionalBirds extends the checklist, skipping codes already
	// on it, and returns the number of rows it created.
	AddRegionalBirds(
		ctx context.Context, entries []regionalEntry,
	) (int, error)

	// UpsertObservation stores one event and returns the surviving
	// row's id. created is false when the natural key already existed.
	UpsertObservation(
		ctx context.Context, ev *event,
	) (id string, created bool, err error)

	// StageLinks bulk-loads species links through the staging table
	// and returns the number of links the merge created.
	StageLinks(ctx context.Context, links []link) (int64, error)
}

const knownSpeciesQry = `SELECT species_code FROM regional_birds`

const resolveSpeciesQry = `
SELECT ebird_code, name, COALESCE(scientific_name, '')
FROM bird_taxa
WHERE rank = 'species' AND ebird_code = ANY($1)`

const checklistParamsPerRow = 3

// buildChecklistSQL renders the insert-if-absent statement for a
// batch of checklist rows.
func buildChecklistSQL(rows int) string {
	values := make([]string, rows)
	for i := range rows {
		base := i * checklistParamsPerRow
		values[i] = fmt.Sprintf("($%d, $%d, $%d, now(), now())",
			base+1, base+2, base+3)
	}

	return fmt.Sprintf(
		"INSERT INTO regional_birds "+
			"(species_code, common_name, scientific_name, "+
			"created_at, updated_at)\nVALUES %s\n"+
			"ON CONFLICT (species_code) DO NOTHING",
		strings.Join(values, ", "),
	)
}

// upsertObservationQry stores one event. A conflicting row refreshes
// its eBird review flags so re-synced days pick up later validation,
// and RETURNING always reports the surviving row.
const upsertObservationQry = `
INSERT INTO observations
  (id, obs_date, lat, lng, location_id, location_name, obs_valid,
   obs_reviewed, user_display_name, subnational1_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
ON CONFLICT (obs_date, lat, lng) DO UPDATE
  SET obs_valid = EXCLUDED.obs_valid, obs_reviewed = EXCLUDED.obs_reviewed
RETURNING id, (xmax = 0)`

const createLinksStagingQry = `
CREATE UNLOGGED TABLE IF NOT EXISTS temp_observation_birds (
	observation_id UUID NOT NULL,
	species_code VARCHAR(50) NOT NULL,
	how_many INTEGER,
	PRIMARY KEY (observation_id, species_code)
)`

const mergeLinksQry = `
INSERT INTO observation_birds
  (observation_id, species_code, how_many, created_at)
SELECT observation_id, species_code, how_many, now()
FROM temp_observation_birds
ON CONFLICT (observation_id, species_code) DO NOTHING`

// pgStore implements obsStore on the PostgreSQL pool.
type pgStore struct {
	operator  db.Operator
	batchSize int
}

func (s *pgStore) KnownSpecies(
	ctx context.Context,
) (map[string]bool, error) {
	if s.operator.Pool() == nil {
		return nil, NotConnectedError()
	}

	rows, err := s.operator.Pool().Query(ctx, knownSpeciesQry)
	if err != nil {
		return nil, StageError("read the regional checklist", err)
	}
	defer rows.Close()

	res := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, StageError("read the regional checklist", err)
		}
		res[code] = true
	}
	if err := rows.Err(); err != nil {
		return nil, StageError("read the regional checklist", err)
	}
	return res, nil
}

func (s *pgStore) ResolveSpecies(
	ctx context.Context,
	codes []string,
) (map[string]regionalEntry, error) {
	if s.operator.Pool() == nil {
		return nil, NotConnectedError()
	}

	rows, err := s.operator.Pool().Query(ctx, resolveSpeciesQry, codes)
	if err != nil {
		return nil, StageError("resolve species codes", err)
	}
	defer rows.Close()

	res := make(map[string]regionalEntry, len(codes))
	for rows.Next() {
		var e regionalEntry
		err = rows.Scan(&e.SpeciesCode, &e.CommonName, &e.ScientificName)
		if err != nil {
			return nil, StageError("resolve species codes", err)
		}
		res[e.SpeciesCode] = e
	}
	if err := rows.Err(); err != nil {
		return nil, StageError("resolve species codes", err)
	}
	return res, nil
}

func (s *pgStore) AddRegionalBirds(
	ctx context.Context,
	entries []regionalEntry,
) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if s.operator.Pool() == nil {
		return 0, NotConnectedError()
	}

	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var created int
	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))
		chunk := entries[start:end]

		args := make([]any, 0, len(chunk)*checklistParamsPerRow)
		for _, e := range chunk {
			args = append(args, e.SpeciesCode, e.CommonName, e.ScientificName)
		}

		tag, err := s.operator.Pool().Exec(
			ctx, buildChecklistSQL(len(chunk)), args...)
		if err != nil {
			return created, StageError("extend the regional checklist", err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func (s *pgStore) UpsertObservation(
	ctx context.Context,
	ev *event,
) (string, bool, error) {
	if s.operator.Pool() == nil {
		return "", false, NotConnectedError()
	}

	var id string
	var created bool
	err := s.operator.Pool().QueryRow(ctx, upsertObservationQry,
		ev.ID, ev.Date, ev.Lat, ev.Lng,
		nullable(ev.LocationID), nullable(ev.LocationName),
		ev.ObsValid, ev.ObsReviewed,
		nullable(ev.UserDisplayName), nullable(ev.Subnational1Name),
	).Scan(&id, &created)
	if err != nil {
		return "", false, StageError("store an observation event", err)
	}
	return id, created, nil
}

func (s *pgStore) StageLinks(
	ctx context.Context,
	links []link,
) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	if s.operator.Pool() == nil {
		return 0, NotConnectedError()
	}
	pool := s.operator.Pool()

	_, err := pool.Exec(ctx, createLinksStagingQry)
	if err != nil {
		return 0, StageError("create the staging table", err)
	}
	_, err = pool.Exec(ctx, "TRUNCATE TABLE temp_observation_birds")
	if err != nil {
		return 0, StageError("truncate the staging table", err)
	}

	src := pgx.CopyFromSlice(len(links), func(i int) ([]any, error) {
		l := links[i]
		var howMany any
		if l.HowMany > 0 {
			howMany = int32(l.HowMany)
		}
		return []any{l.ObservationID, l.SpeciesCode, howMany}, nil
	})
	_, err = pool.CopyFrom(ctx,
		pgx.Identifier{"temp_observation_birds"},
		[]string{"observation_id", "species_code", "how_many"},
		src,
	)
	if err != nil {
		return 0, StageError("copy links into staging", err)
	}

	tag, err := pool.Exec(ctx, mergeLinksQry)
	if err != nil {
		return 0, StageError("merge links from staging", err)
	}
	return tag.RowsAffected(), nil
}

// nullable converts empty strings to NULLs at the store boundary.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
