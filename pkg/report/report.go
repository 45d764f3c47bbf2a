// Package report renders the plain-text run summaries avidb prints at
// the end of conversion, enrichment and verification runs. Rendering is
// pure; writing the optional timestamped report file is the caller's
// job (internal/iofs.WriteReport).
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"

	"github.com/aviatlas/avidb/pkg/taxonomy"
)

const (
	bannerWidth      = 60
	maxErrorsShown   = 10
	maxWarningsShown = 5
)

// RowError ties a failure to its 1-based CSV line.
type RowError struct {
	Row    int
	Reason string
}

// Conversion aggregates one conversion run.
type Conversion struct {
	CSVPath    string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	TotalRows int
	Processed int
	Skipped   int

	Created  map[taxonomy.Rank]int
	Existing map[taxonomy.Rank]int
	Failed   int

	Errors   []RowError
	Warnings []string
}

// Render returns the fixed-header plain-text summary of the run.
func (c *Conversion) Render() string {
	var b strings.Builder

	title := "EBIRD TAXONOMY CONVERSION SUMMARY"
	if c.DryRun {
		title += " (DRY RUN)"
	}
	banner(&b, title)

	fmt.Fprintf(&b, "Source:     %s\n", c.CSVPath)
	fmt.Fprintf(&b, "Started:    %s\n", c.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Elapsed:    %s\n", elapsed(c.StartedAt, c.FinishedAt))

	section(&b, "PROCESSING STATISTICS")
	fmt.Fprintf(&b, "Rows seen:        %s\n", comma(c.TotalRows))
	fmt.Fprintf(&b, "Rows converted:   %s\n", comma(c.Processed))
	fmt.Fprintf(&b, "Rows skipped:     %s\n", comma(c.Skipped))
	fmt.Fprintf(&b, "Row errors:       %s\n", comma(len(c.Errors)))

	section(&b, "NODE BREAKDOWN")
	for _, rank := range taxonomy.Ranks() {
		created := c.Created[rank]
		existing := c.Existing[rank]
		fmt.Fprintf(&b, "%-10s created %s", rank, comma(created))
		if existing > 0 {
			fmt.Fprintf(&b, ", existing %s", comma(existing))
		}
		b.WriteString("\n")
	}
	if c.Failed > 0 {
		fmt.Fprintf(&b, "write failures: %s\n", comma(c.Failed))
	}

	renderErrors(&b, c.Errors)
	renderWarnings(&b, c.Warnings)

	b.WriteString(strings.Repeat("=", bannerWidth) + "\n")
	return b.String()
}

// Enrichment aggregates one enrichment run.
type Enrichment struct {
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	TotalTargets int
	FinalOffset  int
	Processed    int
	Updated      int
	Skipped      int
	NotFound     int
	Errors       int
	Batches      int
	Finished     bool
}

// Render returns the fixed-header plain-text summary of the run.
func (e *Enrichment) Render() string {
	var b strings.Builder

	title := "WIKIPEDIA ENRICHMENT SUMMARY"
	if e.DryRun {
		title += " (DRY RUN)"
	}
	banner(&b, title)

	fmt.Fprintf(&b, "Started:    %s\n", e.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Elapsed:    %s\n", elapsed(e.StartedAt, e.FinishedAt))

	section(&b, "PROCESSING STATISTICS")
	fmt.Fprintf(&b, "Target nodes:     %s\n", comma(e.TotalTargets))
	fmt.Fprintf(&b, "Processed:        %s\n", comma(e.Processed))
	fmt.Fprintf(&b, "Updated:          %s\n", comma(e.Updated))
	fmt.Fprintf(&b, "Already enriched: %s\n", comma(e.Skipped))
	fmt.Fprintf(&b, "Not found:        %s\n", comma(e.NotFound))
	fmt.Fprintf(&b, "Errors:           %s\n", comma(e.Errors))
	fmt.Fprintf(&b, "Batches:          %s\n", comma(e.Batches))

	section(&b, "CURSOR")
	fmt.Fprintf(&b, "Final offset:     %s\n", comma(e.FinalOffset))
	if e.Finished {
		b.WriteString("Listing complete: progress cursor cleared\n")
	} else {
		b.WriteString("Listing unfinished: next run resumes at the offset above\n")
	}

	b.WriteString(strings.Repeat("=", bannerWidth) + "\n")
	return b.String()
}

// Sync aggregates the results of an observation sync run.
type Sync struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Region     string
	SeedOnly   bool

	RegionalSpecies int

	FromDate       string
	ToDate         string
	DaysProcessed  int
	DaysEmpty      int
	Observations   int
	EventsCreated  int
	EventsExisting int
	LinksCreated   int
	Unresolved     int
	CursorDate     string
}

// Render returns the fixed-header plain-text summary of the run.
func (s *Sync) Render() string {
	var b strings.Builder

	title := "EBIRD OBSERVATION SYNC SUMMARY"
	if s.SeedOnly {
		title += " (SEED ONLY)"
	}
	banner(&b, title)

	fmt.Fprintf(&b, "Region:     %s\n", s.Region)
	fmt.Fprintf(&b, "Started:    %s\n", s.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Elapsed:    %s\n", elapsed(s.StartedAt, s.FinishedAt))

	section(&b, "REGIONAL CHECKLIST")
	fmt.Fprintf(&b, "Species in region: %s\n", comma(s.RegionalSpecies))

	if !s.SeedOnly {
		section(&b, "OBSERVATIONS")
		fmt.Fprintf(&b, "Date range:        %s .. %s\n", s.FromDate, s.ToDate)
		fmt.Fprintf(&b, "Days processed:    %s\n", comma(s.DaysProcessed))
		fmt.Fprintf(&b, "Days without data: %s\n", comma(s.DaysEmpty))
		fmt.Fprintf(&b, "Records fetched:   %s\n", comma(s.Observations))
		fmt.Fprintf(&b, "Events created:    %s\n", comma(s.EventsCreated))
		fmt.Fprintf(&b, "Events existing:   %s\n", comma(s.EventsExisting))
		fmt.Fprintf(&b, "Species links:     %s\n", comma(s.LinksCreated))
		fmt.Fprintf(&b, "Unresolved codes:  %s\n", comma(s.Unresolved))

		section(&b, "CURSOR")
		fmt.Fprintf(&b, "Last synced date:  %s\n", s.CursorDate)
	}

	b.WriteString(strings.Repeat("=", bannerWidth) + "\n")
	return b.String()
}

// Check is one verification result.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Verification aggregates the integrity checks of a verify run.
type Verification struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     map[taxonomy.Rank]int
	Checks     []Check
}

// Passed reports whether every check succeeded.
func (v *Verification) Passed() bool {
	for _, c := range v.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Render returns the fixed-header plain-text summary of the checks.
func (v *Verification) Render() string {
	var b strings.Builder

	banner(&b, "TAXONOMY INTEGRITY REPORT")
	fmt.Fprintf(&b, "Started:    %s\n", v.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Elapsed:    %s\n", elapsed(v.StartedAt, v.FinishedAt))

	section(&b, "NODE COUNTS")
	for _, rank := range taxonomy.Ranks() {
		fmt.Fprintf(&b, "%-10s %s\n", rank, comma(v.Counts[rank]))
	}

	section(&b, "CHECKS")
	for _, c := range v.Checks {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s", mark, c.Name)
		if c.Detail != "" {
			fmt.Fprintf(&b, ": %s", c.Detail)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("=", bannerWidth) + "\n")
	return b.String()
}

func banner(b *strings.Builder, title string) {
	line := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(b, "%s\n%s\n%s\n", line, title, line)
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", bannerWidth))
}

// renderErrors lists the first errors and truncates the rest while
// keeping the full count visible.
func renderErrors(b *strings.Builder, errs []RowError) {
	if len(errs) == 0 {
		return
	}
	section(b, fmt.Sprintf("ERRORS (%s total)", comma(len(errs))))
	shown := errs
	if len(shown) > maxErrorsShown {
		shown = shown[:maxErrorsShown]
	}
	for _, e := range shown {
		if e.Row > 0 {
			fmt.Fprintf(b, "row %d: %s\n", e.Row, e.Reason)
		} else {
			fmt.Fprintf(b, "%s\n", e.Reason)
		}
	}
	if rest := len(errs) - len(shown); rest > 0 {
		fmt.Fprintf(b, "... and %s more\n", comma(rest))
	}
}

func renderWarnings(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	section(b, fmt.Sprintf("WARNINGS (%s total)", comma(len(warnings))))
	shown := warnings
	if len(shown) > maxWarningsShown {
		shown = shown[:maxWarningsShown]
	}
	for _, w := range shown {
		fmt.Fprintf(b, "%s\n", w)
	}
	if rest := len(warnings) - len(shown); rest > 0 {
		fmt.Fprintf(b, "... and %s more\n", comma(rest))
	}
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func elapsed(start, end time.Time) string {
	if end.Before(start) || end.IsZero() {
		return "0 sec"
	}
	return gnfmt.TimeString(end.Sub(start).Seconds())
}
