// Package iosync implements the eBird observation sync. This is an
// impure I/O package that refreshes the regional species checklist,
// then walks calendar days from the saved date cursor, storing each
// day's observations and species links before the cursor advances.
package iosync

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"

	"github.com/aviatlas/avidb/internal/ioebird"
	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/sources"
)

// dateLayout is the format of the cursor file, date flags and report
// dates.
const dateLayout = "2006-01-02"

// dayDelay is the pause between daily API requests.
const dayDelay = 500 * time.Millisecond

// defaultStart is the first day of the backfill when no cursor
// exists.
var defaultStart = time.Date(2010, 1, 9, 0, 0, 0, 0, time.UTC)

// ebirdAPI is the slice of the eBird client the sync uses.
type ebirdAPI interface {
	SpeciesList(ctx context.Context, region string) ([]string, error)
	HistoricObservations(
		ctx context.Context, region string, day time.Time,
	) ([]ioebird.Observation, error)
}

type syncer struct {
	cfg     *config.Config
	sources sources.Sources
	api     ebirdAPI
	store   obsStore
	cursor  dateCursor

	// known holds checklist codes, unknown the codes the taxonomy
	// cannot resolve. Both reset per run.
	known   map[string]bool
	unknown map[string]bool

	now   func() time.Time
	delay time.Duration
}

// NewSyncer creates a Syncer with the given configuration, database
// operator, eBird client and sources reader.
func NewSyncer(
	cfg *config.Config,
	operator db.Operator,
	api *ioebird.Client,
	src sources.Sources,
) avidb.Syncer {
	return &syncer{
		cfg:     cfg,
		sources: src,
		api:     api,
		store: &pgStore{
			operator:  operator,
			batchSize: cfg.Database.BatchSize,
		},
		cursor: &fileCursor{
			path: config.SyncCursorPath(cfg.HomeDir),
		},
		now:   time.Now,
		delay: dayDelay,
	}
}

// Sync refreshes the regional checklist, then ingests observations
// day by day up to yesterday. The cursor advances only after a day is
// fully stored, so an aborted run resumes from the last good day.
func (s *syncer) Sync(ctx context.Context) (*report.Sync, error) {
	start := time.Now()

	if s.cfg.Sync.APIKey == "" {
		return nil, APIKeyError()
	}
	region := s.cfg.Sync.Region

	rep := &report.Sync{
		StartedAt: start,
		Region:    region,
		SeedOnly:  s.cfg.Sync.SeedOnly,
	}
	s.unknown = make(map[string]bool)
	s.checkRegion(region)

	gn.Info("(1/3) Refreshing the regional checklist for <em>%s</em>",
		region)
	err := s.seedChecklist(ctx, rep)
	if err != nil {
		return nil, err
	}

	if s.cfg.Sync.SeedOnly {
		rep.FinishedAt = time.Now()
		gn.Info("Seed complete\nElapsed time: <em>%s</em>",
			gnfmt.TimeString(time.Since(start).Seconds()))
		return rep, nil
	}

	gn.Info("(2/3) Resolving the date window")
	from, to, err := s.dateWindow(ctx, rep)
	if err != nil {
		return nil, err
	}
	rep.FromDate = from.Format(dateLayout)
	rep.ToDate = to.Format(dateLayout)

	if from.After(to) {
		slog.Info("Already caught up, nothing to sync",
			"cursor", rep.CursorDate)
		rep.FinishedAt = time.Now()
		return rep, nil
	}
	days := int(to.Sub(from).Hours()/24) + 1
	gn.Message("<em>Syncing %s days, %s .. %s</em>",
		humanize.Comma(int64(days)), rep.FromDate, rep.ToDate)

	gn.Info("(3/3) Pulling daily observations")
	err = s.walkDays(ctx, from, to, rep)
	if err != nil {
		return nil, err
	}

	gn.Message("<em>Stored %s observation events, %s species links</em>",
		humanize.Comma(int64(rep.EventsCreated+rep.EventsExisting)),
		humanize.Comma(int64(rep.LinksCreated)),
	)

	rep.FinishedAt = time.Now()
	gn.Info("Sync complete\nElapsed time: <em>%s</em>",
		gnfmt.TimeString(time.Since(start).Seconds()))

	return rep, nil
}

// checkRegion warns when the configured region is not in the
// sources.yaml region list. The registry documents regions, it does
// not gate them.
func (s *syncer) checkRegion(region string) {
	if s.sources == nil {
		return
	}
	src, err := s.sources.Load()
	if err != nil || len(src.Regions) == 0 {
		return
	}
	for _, r := range src.Regions {
		if r.Code == region {
			return
		}
	}
	slog.Warn("Region is not listed in sources.yaml", "region", region)
}

// dateWindow resolves the day range this run ingests: the --from
// override or the day after the cursor, up to yesterday, optionally
// capped by --days.
func (s *syncer) dateWindow(
	ctx context.Context,
	rep *report.Sync,
) (time.Time, time.Time, error) {
	var from time.Time

	if override := s.cfg.Sync.FromDate; override != "" {
		day, err := time.Parse(dateLayout, override)
		if err != nil {
			return time.Time{}, time.Time{},
				CursorError("parse the --from date", err)
		}
		from = day
	} else {
		day, found, err := s.cursor.Load(ctx)
		if err != nil {
			return time.Time{}, time.Time{},
				CursorError("read the cursor file", err)
		}
		if found {
			rep.CursorDate = day.Format(dateLayout)
			from = day.AddDate(0, 0, 1)
		} else {
			from = defaultStart
		}
	}

	to := yesterday(s.now())
	if days := s.cfg.Sync.Days; days > 0 {
		if capped := from.AddDate(0, 0, days-1); capped.Before(to) {
			to = capped
		}
	}
	return from, to, nil
}

// yesterday returns the last full calendar day. Today's checklists
// are still coming in, so the sync never ingests a partial day.
func yesterday(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// walkDays ingests one day at a time, saving the cursor after each
// fully stored day.
func (s *syncer) walkDays(
	ctx context.Context,
	from, to time.Time,
	rep *report.Sync,
) error {
	total := int(to.Sub(from).Hours()/24) + 1
	bar := pb.Full.Start(total)
	bar.Set("prefix", "Syncing days: ")
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return CancelledError(ctx.Err())
		default:
		}

		err := s.syncDay(ctx, day, rep)
		if err != nil {
			return err
		}
		rep.DaysProcessed++

		err = s.cursor.Save(ctx, day)
		if err != nil {
			return CursorError("save the cursor file", err)
		}
		rep.CursorDate = day.Format(dateLayout)

		bar.Increment()
		s.wait(ctx)
	}
	return nil
}

// syncDay ingests one calendar day: fetch, resolve new species,
// collapse records into events, store events, then stage their
// species links.
func (s *syncer) syncDay(
	ctx context.Context,
	day time.Time,
	rep *report.Sync,
) error {
	rows, err := s.api.HistoricObservations(ctx, s.cfg.Sync.Region, day)
	if err != nil {
		return RequestError(
			"observations for "+day.Format(dateLayout), err)
	}
	if len(rows) == 0 {
		rep.DaysEmpty++
		return nil
	}
	rep.Observations += len(rows)

	err = s.resolveNewSpecies(ctx, rows, rep)
	if err != nil {
		return err
	}

	events := groupEvents(rows, s.known)
	for _, ev := range events {
		id, created, err := s.store.UpsertObservation(ctx, ev)
		if err != nil {
			return err
		}
		ev.ID = id
		if created {
			rep.EventsCreated++
		} else {
			rep.EventsExisting++
		}
	}

	links := buildLinks(events)
	n, err := s.store.StageLinks(ctx, links)
	if err != nil {
		return err
	}
	rep.LinksCreated += int(n)

	return nil
}

// wait blocks between daily requests. The pause is a fixed courtesy
// delay for the eBird API, not an error backoff.
func (s *syncer) wait(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.delay):
	}
}
