// Package ioconvert implements the taxonomy conversion pipeline.
// This is an impure I/O package that turns an eBird taxonomy CSV
// release into the bird_taxa tree.
package ioconvert

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"

	"github.com/aviatlas/avidb/internal/iofs"
	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/db"
	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/sources"
	"github.com/aviatlas/avidb/pkg/taxonomy"
)

type converter struct {
	cfg      *config.Config
	operator db.Operator
	sources  sources.Sources
}

// NewConverter creates a Converter with the given configuration,
// database operator and sources reader.
func NewConverter(
	cfg *config.Config,
	operator db.Operator,
	src sources.Sources,
) avidb.Converter {
	return &converter{
		cfg:      cfg,
		operator: operator,
		sources:  src,
	}
}

// Convert runs the conversion pipeline: resolve the CSV release,
// stream it into the in-memory tree, then upsert the tree level
// by level. With --dry-run the import phase is skipped and the
// report shows the creations a real run would make.
func (c *converter) Convert(
	ctx context.Context,
) (*report.Conversion, error) {
	start := time.Now()

	rep := &report.Conversion{
		StartedAt: start,
		DryRun:    c.cfg.Convert.DryRun,
		Created:   make(map[taxonomy.Rank]int),
		Existing:  make(map[taxonomy.Rank]int),
	}

	gn.Info("(1/3) Resolving taxonomy file")
	path, warnings, err := c.resolveCSV(ctx)
	if err != nil {
		return nil, err
	}
	rep.CSVPath = path
	rep.Warnings = append(rep.Warnings, warnings...)

	gn.Info("(2/3) Reading taxonomy CSV <em>%s</em>", filepath.Base(path))
	builder, err := c.readRows(ctx, path, rep)
	if err != nil {
		return nil, err
	}
	if rep.Processed == 0 {
		return nil, EmptyTreeError(path)
	}
	gn.Message("<em>Built %s taxa from %s rows</em>",
		humanize.Comma(int64(builder.Total())),
		humanize.Comma(int64(rep.TotalRows)),
	)

	if c.cfg.Convert.DryRun {
		gn.Info("(3/3) Dry run, skipping database import")
		for _, rank := range taxonomy.Ranks() {
			rep.Created[rank] = len(builder.Nodes(rank))
		}
		rep.Warnings = append(rep.Warnings,
			"dry run: node counts show planned creations, nothing was written")
	} else {
		gn.Info("(3/3) Importing bird taxa")
		err = c.importTree(ctx, builder, rep)
		if err != nil {
			return nil, err
		}

		var created int
		for _, n := range rep.Created {
			created += n
		}
		gn.Message("<em>Imported %s taxa, %s new</em>",
			humanize.Comma(int64(builder.Total()-rep.Failed)),
			humanize.Comma(int64(created)),
		)
	}

	rep.FinishedAt = time.Now()

	if dir := c.cfg.Convert.ReportDir; dir != "" {
		reportPath, err := iofs.WriteReport(dir, "conversion", rep.Render())
		if err != nil {
			slog.Warn("Cannot write conversion report", "error", err)
		} else {
			slog.Info("Conversion report written", "path", reportPath)
		}
	}

	duration := time.Since(start)
	gn.Info("Conversion complete\nElapsed time: <em>%s</em>",
		gnfmt.TimeString(duration.Seconds()))

	return rep, nil
}
