// Package ebird models rows of the eBird taxonomy CSV export and
// classifies them for tree building. Classification is a pure function
// of the row: categories outside the configured allow-list are skipped,
// malformed rows are rejected with a reason, valid rows come back with
// the genus and the cleaned family name derived.
package ebird

// Columns of the eBird taxonomy CSV export header.
const (
	ColTaxonOrder   = "TAXON_ORDER"
	ColCategory     = "CATEGORY"
	ColSpeciesCode  = "SPECIES_CODE"
	ColCommonName   = "PRIMARY_COM_NAME"
	ColSciName      = "SCI_NAME"
	ColOrder        = "ORDER"
	ColFamily       = "FAMILY"
	ColSpeciesGroup = "SPECIES_GROUP"
	ColReportAs     = "REPORT_AS"
)

// CategorySpecies is the eBird CATEGORY value of full species rows.
// Other values (issf, hybrid, slash, spuh, domestic, form, intergrade)
// are filtered out by default.
const CategorySpecies = "species"

// Row is one record of the taxonomy CSV with fields as exported by
// eBird. Line is the 1-based position in the file, kept for error
// reporting.
type Row struct {
	Line         int
	TaxonOrder   string
	Category     string
	SpeciesCode  string
	CommonName   string
	SciName      string
	Order        string
	Family       string
	SpeciesGroup string
	ReportAs     string
}

// Classified is a validated species row ready for the tree builder.
// Family carries the cleaned family name ("Anatidae"), FamilyRaw the
// column as exported with its gloss
// ("Anatidae (Ducks, Geese, and Waterfowl)").
type Classified struct {
	SpeciesCode  string
	CommonName   string
	SciName      string
	Genus        string
	Order        string
	Family       string
	FamilyRaw    string
	SpeciesGroup string
}
