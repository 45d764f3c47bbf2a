package ebird

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
)

// Status is the classifier's decision about one row.
type Status int

const (
	// StatusConverted marks a valid species row.
	StatusConverted Status = iota
	// StatusSkipped marks a row filtered out by category. Not an error.
	StatusSkipped
	// StatusRejected marks a malformed row, counted as a row error.
	StatusRejected
)

// Result is the verdict for one row. Classified is set only for
// StatusConverted, Reason only for StatusRejected.
type Result struct {
	Status     Status
	Classified Classified
	Reason     string
}

// binomialRx is the structural "Genus species" gate. It rejects
// parenthetical qualifiers ("Anser anser (Domestic type)"), hybrid
// markers, slashes and single-token placeholders before gnparser ever
// sees the name.
var binomialRx = regexp.MustCompile(
	`^[A-Z][a-z]+(?:-[a-z]+)? [a-z]+(?:-[a-z]+)?$`,
)

// Classifier validates taxonomy rows and derives the fields the tree
// builder needs. It holds a single gnparser instance and is not safe
// for concurrent use; conversion runs are sequential.
type Classifier struct {
	categories map[string]struct{}
	parser     gnparser.GNparser
}

// NewClassifier creates a Classifier that converts rows whose CATEGORY
// is in categories. An empty list defaults to species only.
func NewClassifier(categories []string) *Classifier {
	if len(categories) == 0 {
		categories = []string{CategorySpecies}
	}
	set := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		set[strings.ToLower(strings.TrimSpace(cat))] = struct{}{}
	}

	pCfg := gnparser.NewConfig(gnparser.OptCode(nomcode.Zoological))
	return &Classifier{
		categories: set,
		parser:     gnparser.New(pCfg),
	}
}

// Classify inspects one CSV row and returns its verdict.
func (c *Classifier) Classify(row Row) Result {
	if _, ok := c.categories[strings.ToLower(row.Category)]; !ok {
		return Result{Status: StatusSkipped}
	}

	if reason := missingField(row); reason != "" {
		return Result{Status: StatusRejected, Reason: reason}
	}

	sci := strings.TrimSpace(row.SciName)
	if !binomialRx.MatchString(sci) {
		return Result{
			Status: StatusRejected,
			Reason: fmt.Sprintf("invalid scientific name %q", sci),
		}
	}

	// The structural gate admits only clean binomials; the parse
	// recovers the canonical form and catches surrogate names.
	parsed := c.parser.ParseName(sci)
	if !parsed.Parsed || parsed.Cardinality != 2 || parsed.Surrogate != nil {
		return Result{
			Status: StatusRejected,
			Reason: fmt.Sprintf("unparseable scientific name %q", sci),
		}
	}

	canonical := parsed.Canonical.Simple
	genus := strings.Fields(canonical)[0]

	return Result{
		Status: StatusConverted,
		Classified: Classified{
			SpeciesCode:  strings.TrimSpace(row.SpeciesCode),
			CommonName:   strings.TrimSpace(row.CommonName),
			SciName:      canonical,
			Genus:        genus,
			Order:        strings.TrimSpace(row.Order),
			Family:       CleanFamily(row.Family),
			FamilyRaw:    strings.TrimSpace(row.Family),
			SpeciesGroup: strings.TrimSpace(row.SpeciesGroup),
		},
	}
}

// missingField returns a rejection reason when a required column is
// empty, or "" when the row is complete.
func missingField(row Row) string {
	required := []struct {
		col string
		val string
	}{
		{ColSciName, row.SciName},
		{ColCommonName, row.CommonName},
		{ColSpeciesCode, row.SpeciesCode},
		{ColOrder, row.Order},
		{ColFamily, row.Family},
	}
	for _, f := range required {
		if strings.TrimSpace(f.val) == "" {
			return fmt.Sprintf("missing required column %s", f.col)
		}
	}
	return ""
}

// CleanFamily strips the parenthetical gloss from an eBird family
// column: "Anatidae (Ducks, Geese, and Waterfowl)" becomes "Anatidae".
func CleanFamily(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
