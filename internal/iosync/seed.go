package iosync

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"

	"github.com/aviatlas/avidb/internal/ioebird"
	"github.com/aviatlas/avidb/pkg/report"
)

// seedChecklist refreshes the regional checklist from the eBird
// species list endpoint, resolving codes not yet on it through the
// taxonomy.
func (s *syncer) seedChecklist(
	ctx context.Context,
	rep *report.Sync,
) error {
	region := s.cfg.Sync.Region

	codes, err := s.api.SpeciesList(ctx, region)
	if err != nil {
		return RequestError("the species list for "+region, err)
	}

	known, err := s.store.KnownSpecies(ctx)
	if err != nil {
		return err
	}
	s.known = known

	var missing []string
	for _, code := range codes {
		if !s.known[code] {
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		created, err := s.addSpecies(ctx, missing, rep)
		if err != nil {
			return err
		}
		if created > 0 {
			slog.Info("Extended the regional checklist",
				"region", region, "added", created)
		}
	}

	rep.RegionalSpecies = len(s.known)
	gn.Message("<em>%s species on the %s checklist</em>",
		humanize.Comma(int64(len(s.known))), region)
	return nil
}

// resolveNewSpecies extends the checklist with observed codes it has
// not seen yet: a rarity or an escapee the species list endpoint does
// not carry.
func (s *syncer) resolveNewSpecies(
	ctx context.Context,
	rows []ioebird.Observation,
	rep *report.Sync,
) error {
	var fresh []string
	seen := make(map[string]bool)
	for _, row := range rows {
		code := row.SpeciesCode
		if code == "" || s.known[code] || s.unknown[code] || seen[code] {
			continue
		}
		seen[code] = true
		fresh = append(fresh, code)
	}
	if len(fresh) == 0 {
		return nil
	}
	slices.Sort(fresh)

	created, err := s.addSpecies(ctx, fresh, rep)
	if err != nil {
		return err
	}
	if created > 0 {
		slog.Info("Adding observed species to the regional checklist",
			"added", created)
	}
	return nil
}

// addSpecies resolves codes through the taxonomy and appends the
// resolvable ones to the checklist. An unresolvable code is warned
// about once per run, then silently skipped.
func (s *syncer) addSpecies(
	ctx context.Context,
	codes []string,
	rep *report.Sync,
) (int, error) {
	entries, err := s.store.ResolveSpecies(ctx, codes)
	if err != nil {
		return 0, err
	}

	toAdd := make([]regionalEntry, 0, len(entries))
	for _, code := range codes {
		entry, ok := entries[code]
		if !ok {
			if !s.unknown[code] {
				s.unknown[code] = true
				rep.Unresolved++
				slog.Warn("Species code is not in the taxonomy, skipping",
					"speciesCode", code)
			}
			continue
		}
		toAdd = append(toAdd, entry)
		s.known[code] = true
	}
	rep.RegionalSpecies = len(s.known)

	return s.store.AddRegionalBirds(ctx, toAdd)
}
