package iosync

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/aviatlas/avidb/internal/ioebird"
)

// event is one observation event: every record sharing a calendar
// day and coordinates collapses into it, with the species seen there
// attached as links.
type event struct {
	ID   string
	Date time.Time
	Lat  float64
	Lng  float64

	LocationID       string
	LocationName     string
	ObsValid         bool
	ObsReviewed      bool
	UserDisplayName  string
	Subnational1Name string

	// birds maps species codes to reported counts, zero when the
	// checklist gave no number.
	birds map[string]int
}

// eventKey is the natural key of an event. Lat and lng are compared
// as reported, not rounded.
type eventKey struct {
	date string
	lat  float64
	lng  float64
}

// groupEvents collapses a day's records into events. Records without
// a resolvable species code, without coordinates or with an
// unreadable date are dropped. The first record of an event supplies
// its location fields.
func groupEvents(
	rows []ioebird.Observation,
	known map[string]bool,
) []*event {
	byKey := make(map[eventKey]*event)

	for _, row := range rows {
		if row.SpeciesCode == "" || !known[row.SpeciesCode] {
			continue
		}
		if row.Lat == 0 && row.Lng == 0 {
			continue
		}
		day, err := parseObsDate(row.ObsDt)
		if err != nil {
			slog.Debug("Skipping a record with an unreadable date",
				"obsDt", row.ObsDt, "speciesCode", row.SpeciesCode)
			continue
		}

		key := eventKey{
			date: day.Format(dateLayout),
			lat:  row.Lat,
			lng:  row.Lng,
		}
		ev, ok := byKey[key]
		if !ok {
			ev = &event{
				ID:               uuid.NewString(),
				Date:             day,
				Lat:              row.Lat,
				Lng:              row.Lng,
				LocationID:       row.LocID,
				LocationName:     row.LocName,
				ObsValid:         row.ObsValid,
				ObsReviewed:      row.ObsReviewed,
				UserDisplayName:  row.UserDisplayName,
				Subnational1Name: row.Subnational1Name,
				birds:            make(map[string]int),
			}
			byKey[key] = ev
		}
		ev.birds[row.SpeciesCode] = row.HowMany
	}

	res := slices.Collect(maps.Values(byKey))
	slices.SortFunc(res, func(a, b *event) int {
		if a.Lat != b.Lat {
			if a.Lat < b.Lat {
				return -1
			}
			return 1
		}
		if a.Lng != b.Lng {
			if a.Lng < b.Lng {
				return -1
			}
			return 1
		}
		return a.Date.Compare(b.Date)
	})
	return res
}

// parseObsDate reads the eBird obsDt field, which carries a time of
// day on most records and a bare date on some, and truncates it to
// the calendar day.
func parseObsDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", dateLayout} {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse observation date %q", s)
}

// buildLinks flattens the species of stored events into link rows.
// Species are emitted in code order so staging writes are
// deterministic.
func buildLinks(events []*event) []link {
	var res []link
	for _, ev := range events {
		for _, code := range slices.Sorted(maps.Keys(ev.birds)) {
			res = append(res, link{
				ObservationID: ev.ID,
				SpeciesCode:   code,
				HowMany:       ev.birds[code],
			})
		}
	}
	return res
}
