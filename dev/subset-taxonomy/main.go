// subset-taxonomy cuts a small fixture out of a full eBird taxonomy CSV.
//
// The subset keeps what converter tests need from a real release:
//   - Whole families: every row of a picked family is kept, so genus
//     grouping sees complete sibling sets
//   - Edge cases: non-species categories (issf, hybrid, slash, spuh)
//     and rows with missing columns stay in the sample
//   - The original header and column order of the source file
//
// Selection is deterministic, re-running the tool on the same release
// produces the same fixture.
//
// Usage:
//
//	go run . <source.csv> <output.csv>
//
// Examples:
//
//	go run . ~/Downloads/eBird_taxonomy_v2024.csv ../../internal/ioconvert/testdata/taxonomy_subset.csv
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/aviatlas/avidb/pkg/ebird"
)

// Configuration constants
const (
	// Target number of species rows in the fixture
	targetSpecies = 300

	// Minimum number of families to sample across
	minFamilies = 12

	// Maximum non-species rows kept per picked family
	maxEdgeRowsPerFamily = 5
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <source.csv> <output.csv>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  source.csv  full eBird taxonomy CSV export\n")
		fmt.Fprintf(os.Stderr, "  output.csv  path for the fixture subset\n")
		os.Exit(1)
	}

	sourcePath := os.Args[1]
	outputPath := os.Args[2]

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("starting taxonomy subset extraction",
		"source", sourcePath,
		"target_species", targetSpecies,
		"output", outputPath,
	)

	if err := createSubset(logger, sourcePath, outputPath); err != nil {
		logger.Error("subset extraction failed", "error", err)
		os.Exit(1)
	}

	logger.Info("subset extraction complete", "output", outputPath)
}

// createSubset reads the full release, picks families and writes the
// fixture rows in their original order.
func createSubset(logger *slog.Logger, sourcePath, outputPath string) error {
	header, records, err := readRelease(sourcePath)
	if err != nil {
		return err
	}
	logger.Info("release loaded", "rows", len(records))

	catPos := columnPos(header, ebird.ColCategory)
	famPos := columnPos(header, ebird.ColFamily)
	sciPos := columnPos(header, ebird.ColSciName)
	if catPos < 0 || famPos < 0 || sciPos < 0 {
		return fmt.Errorf("source header misses %s, %s or %s",
			ebird.ColCategory, ebird.ColFamily, ebird.ColSciName)
	}

	families := pickFamilies(logger, records, catPos, famPos)

	var (
		kept         [][]string
		speciesCount int
		edgeCount    int
		brokenCount  int
		edgePerFam   = make(map[string]int)
	)
	for _, record := range records {
		family := familyOf(record, famPos)
		if !families[family] {
			continue
		}

		category := cell(record, catPos)
		switch {
		case category == ebird.CategorySpecies:
			kept = append(kept, record)
			speciesCount++
			if cell(record, sciPos) == "" {
				brokenCount++
			}
		case edgePerFam[family] < maxEdgeRowsPerFamily:
			// Non-species categories exercise the classifier's skip
			// path; a few per family are enough.
			kept = append(kept, record)
			edgePerFam[family]++
			edgeCount++
		}
	}

	if err := writeRelease(outputPath, header, kept); err != nil {
		return err
	}

	logger.Info("fixture written",
		"families", len(families),
		"species", speciesCount,
		"edge_rows", edgeCount,
		"broken_rows", brokenCount,
		"total_rows", len(kept),
	)
	return nil
}

// pickFamilies chooses which families the fixture covers. The largest
// family and a single-species family are always in, the rest comes
// from an even alphabetical spread until the species target is met.
func pickFamilies(
	logger *slog.Logger,
	records [][]string,
	catPos, famPos int,
) map[string]bool {
	counts := make(map[string]int)
	for _, record := range records {
		if cell(record, catPos) != ebird.CategorySpecies {
			continue
		}
		if family := familyOf(record, famPos); family != "" {
			counts[family]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	picked := make(map[string]bool)

	// Largest family covers deep genus fan-out
	var largest string
	for _, name := range names {
		if largest == "" || counts[name] > counts[largest] {
			largest = name
		}
	}
	if largest != "" {
		picked[largest] = true
	}

	// A single-species family covers the smallest possible subtree
	for _, name := range names {
		if counts[name] == 1 {
			picked[name] = true
			break
		}
	}

	speciesKept := func() int {
		var n int
		for name := range picked {
			n += counts[name]
		}
		return n
	}

	stride := len(names) / minFamilies
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < len(names); i += stride {
		if speciesKept() >= targetSpecies && len(picked) >= minFamilies {
			break
		}
		picked[names[i]] = true
	}

	logger.Info("families picked",
		"available", len(names),
		"picked", len(picked),
		"species_covered", speciesKept(),
	)
	return picked
}

// readRelease loads the whole CSV. Ragged rows are kept as they are,
// broken rows are fixture material too.
func readRelease(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read header: %w", err)
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("cannot read source: %w", err)
		}
		records = append(records, record)
	}
	return header, records, nil
}

// writeRelease stores the fixture with the source's header.
func writeRelease(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("cannot write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// columnPos finds a named column in the header, -1 when absent. The
// first cell of eBird exports often carries a BOM.
func columnPos(header []string, name string) int {
	for i, col := range header {
		col = strings.TrimPrefix(col, "﻿")
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

// cell returns the trimmed lowercase value at pos, "" when the record
// is too short.
func cell(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(record[pos]))
}

// familyOf returns the cleaned family name of a record with the
// original casing kept.
func familyOf(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return ebird.CleanFamily(record[pos])
}
