// Package ioenrich implements the resumable Wikipedia enrichment
// walker. This is an impure I/O package that iterates species and
// genus rows in a stable order, looks up article metadata for rows
// that miss it, and checkpoints a progress cursor after every batch.
package ioenrich

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"

	"github.com/aviatlas/avidb/internal/iofs"
	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/progress"
	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/wiki"
)

// outcome is the terminal state of one processed node.
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeUpdated
	outcomeNotFound
	outcomeErrored
)

type enricher struct {
	cfg    *config.Config
	lookup wiki.Lookup
	store  progress.Store

	targets targetLister
	updater metadataWriter

	delay time.Duration
}

// NewEnricher creates an Enricher with the given configuration,
// database operator, Wikipedia lookup and progress store.
func NewEnricher(
	cfg *config.Config,
	operator db.Operator,
	lookup wiki.Lookup,
	store progress.Store,
) avidb.Enricher {
	return &enricher{
		cfg:     cfg,
		lookup:  lookup,
		store:   store,
		targets: &pgTargets{operator: operator},
		updater: &pgUpdater{operator: operator},
		delay: time.Duration(cfg.Enrich.RequestDelayMs) *
			time.Millisecond,
	}
}

// Enrich walks the species and genus listing from the saved cursor,
// enriching nodes that miss metadata. The cursor moves only at batch
// boundaries, so an interrupted run resumes at the last completed
// batch. With --dry-run lookups still happen but neither the database
// nor the cursor is written.
func (e *enricher) Enrich(
	ctx context.Context,
) (*report.Enrichment, error) {
	start := time.Now()

	rep := &report.Enrichment{
		StartedAt: start,
		DryRun:    e.cfg.Enrich.DryRun,
	}

	gn.Info("(1/3) Loading enrichment progress")
	st, err := e.resumeState(ctx)
	if err != nil {
		return nil, err
	}

	gn.Info("(2/3) Listing species and genus taxa")
	targets, err := e.targets.List(ctx)
	if err != nil {
		return nil, err
	}
	rep.TotalTargets = len(targets)

	if len(targets) == 0 {
		slog.Warn("No enrichment targets found, run convert first")
		rep.Finished = true
		rep.FinishedAt = time.Now()
		return rep, nil
	}

	if st.Offset > 0 && st.Offset >= len(targets) {
		slog.Warn("Saved cursor lies past the end of the listing, starting over",
			"offset", st.Offset, "targets", len(targets))
		st = progress.NewState(st.BatchSize)
	}
	gn.Message("<em>%s targets, cursor at %s</em>",
		humanize.Comma(int64(len(targets))),
		humanize.Comma(int64(st.Offset)),
	)

	if e.cfg.Enrich.DryRun {
		gn.Info("(3/3) Enriching taxa, dry run, nothing will be written")
	} else {
		gn.Info("(3/3) Enriching taxa from Wikipedia")
	}
	err = e.walk(ctx, st, targets, rep)
	if err != nil {
		return nil, err
	}

	if rep.Finished && !e.cfg.Enrich.DryRun {
		err = e.store.Clear(ctx)
		if err != nil {
			return nil, ProgressError("clear", err)
		}
	}

	gn.Message("<em>Updated %s taxa, %s not on Wikipedia, %s skipped</em>",
		humanize.Comma(int64(rep.Updated)),
		humanize.Comma(int64(rep.NotFound)),
		humanize.Comma(int64(rep.Skipped)),
	)

	rep.FinishedAt = time.Now()

	if dir := e.cfg.Enrich.ReportDir; dir != "" {
		reportPath, err := iofs.WriteReport(dir, "enrichment", rep.Render())
		if err != nil {
			slog.Warn("Cannot write enrichment report", "error", err)
		} else {
			slog.Info("Enrichment report written", "path", reportPath)
		}
	}

	duration := time.Since(start)
	gn.Info("Enrichment complete\nElapsed time: <em>%s</em>",
		gnfmt.TimeString(duration.Seconds()))

	return rep, nil
}

// resumeState returns the cursor this run starts from. StartFresh and
// an unreadable progress file both mean offset zero, but only the
// second gets a warning.
func (e *enricher) resumeState(
	ctx context.Context,
) (*progress.State, error) {
	size := e.batchSize()

	if e.cfg.Enrich.StartFresh {
		if !e.cfg.Enrich.DryRun {
			err := e.store.Clear(ctx)
			if err != nil {
				return nil, ProgressError("clear", err)
			}
		}
		return progress.NewState(size), nil
	}

	st, err := e.store.Load(ctx)
	if err != nil {
		slog.Warn("Cannot read saved progress, starting from the beginning",
			"error", err)
		return progress.NewState(size), nil
	}
	if st == nil {
		return progress.NewState(size), nil
	}

	st.BatchSize = size
	slog.Info("Resuming enrichment",
		"offset", st.Offset, "batches", st.BatchesCompleted)
	return st, nil
}

func (e *enricher) batchSize() int {
	if size := e.cfg.Enrich.BatchSize; size > 0 {
		return size
	}
	return 100
}

// walk advances the cursor batch by batch until the listing ends or
// the batch limit for this run is reached. Every completed batch is
// checkpointed before the next one starts.
func (e *enricher) walk(
	ctx context.Context,
	st *progress.State,
	targets []target,
	rep *report.Enrichment,
) error {
	bar := pb.Full.Start(len(targets))
	bar.Set("prefix", "Enriching taxa: ")
	bar.Set(pb.CleanOnFinish, true)
	bar.SetCurrent(int64(st.Offset))
	defer bar.Finish()

	for st.Offset < len(targets) {
		if limit := e.cfg.Enrich.MaxBatches; limit > 0 &&
			rep.Batches >= limit {
			slog.Info("Reached the batch limit for this run",
				"batches", rep.Batches)
			break
		}

		end := min(st.Offset+st.BatchSize, len(targets))
		updated, errored, err := e.enrichBatch(
			ctx, targets[st.Offset:end], rep, bar,
		)
		if err != nil {
			return err
		}

		st.AdvanceBatch(end-st.Offset, updated, errored)
		rep.Batches++

		if !e.cfg.Enrich.DryRun {
			err = e.store.Save(ctx, st)
			if err != nil {
				return ProgressError("save", err)
			}
		}
	}

	rep.FinalOffset = st.Offset
	rep.Finished = st.Offset >= len(targets)
	return nil
}

// enrichBatch processes one slice of the listing. Node failures are
// counted and the batch continues; only cancellation aborts it.
func (e *enricher) enrichBatch(
	ctx context.Context,
	batch []target,
	rep *report.Enrichment,
	bar *pb.ProgressBar,
) (int, int, error) {
	var updated, errored int
	for _, t := range batch {
		select {
		case <-ctx.Done():
			return 0, 0, CancelledError(ctx.Err())
		default:
		}

		switch e.processNode(ctx, t) {
		case outcomeUpdated:
			updated++
			rep.Updated++
		case outcomeSkipped:
			rep.Skipped++
		case outcomeNotFound:
			rep.NotFound++
		case outcomeErrored:
			errored++
			rep.Errors++
		}
		rep.Processed++
		bar.Increment()
	}
	return updated, errored, nil
}

// processNode runs one target through lookup and write-back. Nodes
// that already carry both URLs are skipped without an API call.
// NotFound and Errored leave the row untouched so a later run
// retries it.
func (e *enricher) processNode(ctx context.Context, t target) outcome {
	if t.enriched() {
		return outcomeSkipped
	}

	sum, err := e.lookupNode(ctx, t)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			return outcomeNotFound
		}
		slog.Warn("Wikipedia lookup failed",
			"name", t.label(), "error", err)
		return outcomeErrored
	}

	if e.cfg.Enrich.DryRun {
		return outcomeUpdated
	}

	err = e.updater.Update(ctx, t.ID, sum)
	if err != nil {
		slog.Warn("Cannot store metadata",
			"name", t.label(), "error", err)
		return outcomeErrored
	}
	return outcomeUpdated
}

// lookupNode tries the node's names in priority order. A missing
// article falls through to the next name; a transport failure stops
// the chain so a flaky network is not mistaken for a missing article.
func (e *enricher) lookupNode(
	ctx context.Context,
	t target,
) (*wiki.Summary, error) {
	for _, name := range candidateNames(t) {
		sum, err := e.lookup.Summary(ctx, name)
		e.wait(ctx)
		if err == nil {
			return sum, nil
		}
		if !errors.Is(err, wiki.ErrNotFound) {
			return nil, err
		}
	}
	return nil, wiki.ErrNotFound
}

// wait blocks for the inter-request delay. The delay is a fixed
// courtesy pause for the Wikipedia API, not an error backoff.
func (e *enricher) wait(ctx context.Context) {
	if e.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.delay):
	}
}

// candidateNames returns the Wikipedia titles worth trying for a
// node, scientific name first. Genus rows carry no common name, so
// for them the list has a single entry.
func candidateNames(t target) []string {
	names := make([]string, 0, 2)
	if t.ScientificName != "" {
		names = append(names, t.ScientificName)
	}
	if t.CommonName != "" && t.CommonName != t.ScientificName {
		names = append(names, t.CommonName)
	}
	return names
}
