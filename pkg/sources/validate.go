package sources

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// regionCodeRx matches eBird region codes: a country code optionally
// followed by a subnational suffix (US, SG, US-NY, MX-ROO).
var regionCodeRx = regexp.MustCompile(`^[A-Z]{2}(-[A-Z0-9]{1,3})?$`)

// knownCategories lists the eBird taxonomy categories current releases
// use. Unknown values produce warnings, not errors, so a new eBird
// category does not break old configurations.
var knownCategories = []string{
	"species", "issf", "slash", "spuh", "hybrid",
	"intergrade", "domestic", "form",
}

// Validate checks the configuration for errors and applies defaults.
func (c *SourcesConfig) Validate() error {
	if len(c.Taxonomy) == 0 {
		return fmt.Errorf("no taxonomy releases specified in configuration")
	}

	seen := make(map[string]bool)
	defaults := 0
	for i := range c.Taxonomy {
		rel := &c.Taxonomy[i]
		warnings, err := rel.Validate(i + 1)
		if err != nil {
			return fmt.Errorf("taxonomy release %d: %w", i+1, err)
		}
		c.Warnings = append(c.Warnings, warnings...)

		if v := rel.EffectiveVersion(); v != "" {
			if seen[v] {
				return fmt.Errorf(
					"taxonomy release %d: duplicate version '%s'", i+1, v,
				)
			}
			seen[v] = true
		}
		if rel.Default {
			defaults++
		}
	}

	// Several defaults would make release selection ambiguous; keep the
	// first and warn about the rest.
	if defaults > 1 {
		kept := false
		for i := range c.Taxonomy {
			if !c.Taxonomy[i].Default {
				continue
			}
			if !kept {
				kept = true
				continue
			}
			c.Taxonomy[i].Default = false
			c.Warnings = append(c.Warnings, ValidationWarning{
				Version:    c.Taxonomy[i].EffectiveVersion(),
				Field:      "default",
				Message:    "several releases are flagged default; only the first is used",
				Suggestion: "Keep 'default: true' on a single release",
			})
		}
	}

	for i := range c.Regions {
		if err := c.Regions[i].Validate(i + 1); err != nil {
			return fmt.Errorf("region %d: %w", i+1, err)
		}
	}

	return nil
}

// Validate checks a single taxonomy release for data structure validity.
// File system validation (CSV existence) is deferred to runtime (I/O layer).
// Returns a slice of warnings (non-fatal issues) and an error (fatal issues).
func (r *TaxonomyRelease) Validate(index int) ([]ValidationWarning, error) {
	var warnings []ValidationWarning

	if r.File == "" {
		return nil, fmt.Errorf("file is required")
	}

	if r.URL != "" && !IsValidURL(r.URL) {
		warnings = append(warnings, ValidationWarning{
			Version:    r.EffectiveVersion(),
			Field:      "url",
			Message:    fmt.Sprintf("'%s' is not a valid http(s) URL", r.URL),
			Suggestion: "Use the full download page URL or remove the field",
		})
	}

	for _, cat := range r.Categories {
		if !slices.Contains(knownCategories, strings.ToLower(cat)) {
			warnings = append(warnings, ValidationWarning{
				Version: r.EffectiveVersion(),
				Field:   "categories",
				Message: fmt.Sprintf("'%s' is not a known eBird category", cat),
				Suggestion: fmt.Sprintf(
					"Known categories: %s", strings.Join(knownCategories, ", "),
				),
			})
		}
	}

	return warnings, nil
}

// Validate checks a single region entry.
func (rg *Region) Validate(index int) error {
	if rg.Code == "" {
		return fmt.Errorf("code is required")
	}
	if !regionCodeRx.MatchString(strings.ToUpper(rg.Code)) {
		return fmt.Errorf(
			"invalid region code '%s': expected a country code with an optional subnational suffix (SG, US-NY)",
			rg.Code,
		)
	}
	return nil
}
