// compare_releases diffs two eBird taxonomy CSV releases before a
// convert run. It reports species added, removed, renamed or moved
// between families, so a release upgrade can be reviewed before the
// database changes.
//
// Usage:
//
//	go run tools/compare_releases.go --old eBird_taxonomy_v2023.csv --new eBird_taxonomy_v2024.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aviatlas/avidb/pkg/ebird"
)

type DiffResult struct {
	OldSpecies        int
	NewSpecies        int
	Added             []string
	Removed           []string
	Renamed           []string
	FamilyMoves       []string
	CommonNameChanges int
}

type speciesRec struct {
	SciName    string
	CommonName string
	Family     string
	Order      string
}

func main() {
	oldPath := flag.String("old", "", "taxonomy CSV of the current release")
	newPath := flag.String("new", "", "taxonomy CSV of the candidate release")
	sampleSize := flag.Int("sample-size", 20,
		"Number of example rows to list per section")

	flag.Parse()

	if *oldPath == "" || *newPath == "" {
		fmt.Println("Error: --old and --new are required")
		flag.Usage()
		os.Exit(1)
	}

	oldRecs, err := loadSpecies(*oldPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read old release: %v\n", err)
		os.Exit(1)
	}

	newRecs, err := loadSpecies(*newPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read new release: %v\n", err)
		os.Exit(1)
	}

	result := diff(oldRecs, newRecs)

	fmt.Printf("Comparing releases\n")
	fmt.Printf("  old: %s\n", *oldPath)
	fmt.Printf("  new: %s\n", *newPath)
	fmt.Println()

	fmt.Println("1. Species Counts")
	fmt.Println("-----------------")
	fmt.Printf("  %s\n", compareInts(result.OldSpecies, result.NewSpecies))

	fmt.Println("\n2. Added Species")
	fmt.Println("----------------")
	printSection(result.Added, *sampleSize)

	fmt.Println("\n3. Removed Species")
	fmt.Println("------------------")
	printSection(result.Removed, *sampleSize)

	fmt.Println("\n4. Renamed Species")
	fmt.Println("------------------")
	printSection(result.Renamed, *sampleSize)

	fmt.Println("\n5. Family Moves")
	fmt.Println("---------------")
	printSection(result.FamilyMoves, *sampleSize)

	fmt.Println("\n6. Common Name Changes")
	fmt.Println("----------------------")
	fmt.Printf("  %d species carry a new common name\n",
		result.CommonNameChanges)

	fmt.Println("\n7. Summary")
	fmt.Println("----------")
	printSummary(result)
}

// loadSpecies reads one release and keeps its species rows keyed by
// species code. Non-species categories never reach the database, so
// they never enter the diff.
func loadSpecies(path string) (map[string]speciesRec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}

	catPos := columnPos(header, ebird.ColCategory)
	codePos := columnPos(header, ebird.ColSpeciesCode)
	sciPos := columnPos(header, ebird.ColSciName)
	comPos := columnPos(header, ebird.ColCommonName)
	famPos := columnPos(header, ebird.ColFamily)
	ordPos := columnPos(header, ebird.ColOrder)
	if catPos < 0 || codePos < 0 || sciPos < 0 {
		return nil, fmt.Errorf("header misses %s, %s or %s",
			ebird.ColCategory, ebird.ColSpeciesCode, ebird.ColSciName)
	}

	recs := make(map[string]speciesRec)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if !strings.EqualFold(cell(record, catPos), ebird.CategorySpecies) {
			continue
		}
		code := cell(record, codePos)
		if code == "" {
			continue
		}

		recs[code] = speciesRec{
			SciName:    cell(record, sciPos),
			CommonName: cell(record, comPos),
			Family:     ebird.CleanFamily(cell(record, famPos)),
			Order:      cell(record, ordPos),
		}
	}

	return recs, nil
}

// diff compares the species maps of the two releases.
func diff(oldRecs, newRecs map[string]speciesRec) *DiffResult {
	result := &DiffResult{
		OldSpecies: len(oldRecs),
		NewSpecies: len(newRecs),
	}

	for code, nr := range newRecs {
		or, ok := oldRecs[code]
		if !ok {
			result.Added = append(result.Added,
				fmt.Sprintf("%s %s (%s)", code, nr.SciName, nr.CommonName))
			continue
		}
		if or.SciName != nr.SciName {
			result.Renamed = append(result.Renamed,
				fmt.Sprintf("%s %q now %q", code, or.SciName, nr.SciName))
		}
		if or.Family != nr.Family && or.Family != "" && nr.Family != "" {
			result.FamilyMoves = append(result.FamilyMoves,
				fmt.Sprintf("%s %s from %s to %s",
					code, nr.SciName, or.Family, nr.Family))
		}
		if or.CommonName != nr.CommonName {
			result.CommonNameChanges++
		}
	}

	for code, or := range oldRecs {
		if _, ok := newRecs[code]; !ok {
			result.Removed = append(result.Removed,
				fmt.Sprintf("%s %s (%s)", code, or.SciName, or.CommonName))
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Strings(result.Renamed)
	sort.Strings(result.FamilyMoves)

	return result
}

func printSection(lines []string, sampleSize int) {
	if len(lines) == 0 {
		fmt.Println("  ✓ None")
		return
	}

	fmt.Printf("  ✗ %d found\n", len(lines))
	for i, line := range lines {
		if i >= sampleSize {
			fmt.Printf("  ... and %d more\n", len(lines)-sampleSize)
			break
		}
		fmt.Printf("    %s\n", line)
	}
}

func compareInts(a, b int) string {
	if a == b {
		return fmt.Sprintf("✓ %d", a)
	}
	return fmt.Sprintf("✗ old=%d new=%d (diff: %d)", a, b, b-a)
}

func printSummary(result *DiffResult) {
	identical := result.OldSpecies == result.NewSpecies &&
		len(result.Added) == 0 &&
		len(result.Removed) == 0 &&
		len(result.Renamed) == 0 &&
		len(result.FamilyMoves) == 0 &&
		result.CommonNameChanges == 0

	if identical {
		fmt.Println("  ✓ The releases are identical.")
		fmt.Println("  Converting the new release changes nothing.")
		return
	}

	fmt.Println("  ✗ Differences found:")
	if len(result.Added) > 0 {
		fmt.Printf("    - %d species added\n", len(result.Added))
	}
	if len(result.Removed) > 0 {
		fmt.Printf("    - %d species removed, their rows stay after convert\n",
			len(result.Removed))
	}
	if len(result.Renamed) > 0 {
		fmt.Printf("    - %d species renamed, convert updates them in place\n",
			len(result.Renamed))
	}
	if len(result.FamilyMoves) > 0 {
		fmt.Printf("    - %d species moved between families\n",
			len(result.FamilyMoves))
	}
	if result.CommonNameChanges > 0 {
		fmt.Printf("    - %d common names changed\n", result.CommonNameChanges)
	}
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

// cell returns the trimmed value at pos, "" when the record is too
// short.
func cell(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
