package report_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aviatlas/avidb/pkg/report"
	"github.com/aviatlas/avidb/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionRender(t *testing.T) {
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	conv := &report.Conversion{
		CSVPath:    "/data/ebird_taxonomy_v2024.csv",
		StartedAt:  start,
		FinishedAt: start.Add(95 * time.Second),
		TotalRows:  17415,
		Processed:  11145,
		Skipped:    6268,
		Created: map[taxonomy.Rank]int{
			taxonomy.RankClass:   1,
			taxonomy.RankOrder:   41,
			taxonomy.RankFamily:  254,
			taxonomy.RankGenus:   2380,
			taxonomy.RankSpecies: 11145,
		},
		Errors: []report.RowError{
			{Row: 12, Reason: `invalid scientific name "Anser anser (Domestic type)"`},
			{Row: 77, Reason: "missing required column FAMILY"},
		},
		Warnings: []string{"family Corvidae seen under two orders"},
	}

	out := conv.Render()

	assert.Contains(t, out, "EBIRD TAXONOMY CONVERSION SUMMARY")
	assert.Contains(t, out, "/data/ebird_taxonomy_v2024.csv")
	assert.Contains(t, out, "Rows seen:        17,415")
	assert.Contains(t, out, "Rows converted:   11,145")
	assert.Contains(t, out, "species    created 11,145")
	assert.Contains(t, out, "row 12: invalid scientific name")
	assert.Contains(t, out, "WARNINGS (1 total)")
	assert.NotContains(t, out, "DRY RUN")
	assert.NotContains(t, out, "... and")
}

func TestConversionRenderTruncatesErrors(t *testing.T) {
	conv := &report.Conversion{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	for i := range 135 {
		conv.Errors = append(conv.Errors, report.RowError{
			Row:    i + 2,
			Reason: "invalid scientific name",
		})
	}

	out := conv.Render()

	assert.Contains(t, out, "ERRORS (135 total)")
	assert.Contains(t, out, "... and 125 more")
	// Only the first 10 rows are listed.
	assert.Contains(t, out, "row 11:")
	assert.NotContains(t, out, "row 12:")
}

func TestConversionRenderDryRun(t *testing.T) {
	conv := &report.Conversion{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		DryRun:     true,
	}
	assert.Contains(t, conv.Render(), "(DRY RUN)")
}

func TestEnrichmentRender(t *testing.T) {
	start := time.Now().Add(-40 * time.Second)
	enr := &report.Enrichment{
		StartedAt:    start,
		FinishedAt:   time.Now(),
		TotalTargets: 13525,
		FinalOffset:  700,
		Processed:    200,
		Updated:      151,
		Skipped:      30,
		NotFound:     14,
		Errors:       5,
		Batches:      2,
	}

	out := enr.Render()

	assert.Contains(t, out, "WIKIPEDIA ENRICHMENT SUMMARY")
	assert.Contains(t, out, "Target nodes:     13,525")
	assert.Contains(t, out, "Updated:          151")
	assert.Contains(t, out, "Final offset:     700")
	assert.Contains(t, out, "next run resumes at the offset above")

	enr.Finished = true
	assert.Contains(t, enr.Render(), "progress cursor cleared")
}

func TestVerificationRender(t *testing.T) {
	v := &report.Verification{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Counts: map[taxonomy.Rank]int{
			taxonomy.RankClass:   1,
			taxonomy.RankSpecies: 11145,
		},
		Checks: []report.Check{
			{Name: "single class root", Passed: true},
			{Name: "no orphaned nodes", Passed: true},
			{
				Name:   "parent ranks one level above",
				Passed: false,
				Detail: "3 nodes violate the rank ladder",
			},
		},
	}

	out := v.Render()

	require.False(t, v.Passed())
	assert.Contains(t, out, "TAXONOMY INTEGRITY REPORT")
	assert.Contains(t, out, "[PASS] single class root")
	assert.Contains(t, out, "[FAIL] parent ranks one level above: 3 nodes")
	assert.Contains(t, out, "species    11,145")

	for i, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 100, fmt.Sprintf("line %d too wide", i))
	}
}

func TestVerificationPassed(t *testing.T) {
	v := &report.Verification{
		Checks: []report.Check{
			{Name: "a", Passed: true},
			{Name: "b", Passed: true},
		},
	}
	assert.True(t, v.Passed())
}

func TestSyncRender(t *testing.T) {
	s := &report.Sync{
		StartedAt:  time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 7, 1, 6, 12, 0, 0, time.UTC),
		Region:     "SG",

		RegionalSpecies: 437,
		FromDate:        "2025-06-01",
		ToDate:          "2025-06-30",
		DaysProcessed:   30,
		DaysEmpty:       2,
		Observations:    12345,
		EventsCreated:   1100,
		EventsExisting:  150,
		LinksCreated:    11840,
		Unresolved:      12,
		CursorDate:      "2025-06-30",
	}

	out := s.Render()

	assert.Contains(t, out, "EBIRD OBSERVATION SYNC SUMMARY")
	assert.Contains(t, out, "Region:     SG")
	assert.Contains(t, out, "Species in region: 437")
	assert.Contains(t, out, "Date range:        2025-06-01 .. 2025-06-30")
	assert.Contains(t, out, "Records fetched:   12,345")
	assert.Contains(t, out, "Last synced date:  2025-06-30")
}

func TestSyncRenderSeedOnly(t *testing.T) {
	s := &report.Sync{
		StartedAt:       time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC),
		FinishedAt:      time.Date(2025, 7, 1, 6, 1, 0, 0, time.UTC),
		Region:          "SG",
		SeedOnly:        true,
		RegionalSpecies: 437,
	}

	out := s.Render()

	assert.Contains(t, out, "(SEED ONLY)")
	assert.Contains(t, out, "Species in region: 437")

	// Seed-only runs touch no observations, the report skips them.
	assert.NotContains(t, out, "OBSERVATIONS")
	assert.NotContains(t, out, "CURSOR")
}
