package sources

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// versionRx matches a version tag in a taxonomy CSV filename.
// Examples:
//   - eBird_taxonomy_v2024.csv   → 2024
//   - ebird-taxonomy-v2023.1.csv → 2023.1
//   - ebird_2022.csv             → 2022
var versionRx = regexp.MustCompile(`(?i)[_-]v?(\d{4}(?:\.\d+)?)\.csv$`)

// ParseVersion extracts the release version from a taxonomy CSV filename.
// Returns an empty string when the filename carries no version tag.
func ParseVersion(path string) string {
	filename := filepath.Base(path)
	if matches := versionRx.FindStringSubmatch(filename); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// EffectiveVersion returns the release's version field, falling back to
// the version encoded in its filename.
func (r *TaxonomyRelease) EffectiveVersion() string {
	if r.Version != "" {
		return r.Version
	}
	return ParseVersion(r.File)
}

// Release selects a taxonomy release by version. An empty version picks
// the default release: the one flagged default, or the only release when
// there is exactly one.
func (c *SourcesConfig) Release(version string) (*TaxonomyRelease, error) {
	if version == "" {
		for i := range c.Taxonomy {
			if c.Taxonomy[i].Default {
				return &c.Taxonomy[i], nil
			}
		}
		if len(c.Taxonomy) == 1 {
			return &c.Taxonomy[0], nil
		}
		return nil, fmt.Errorf(
			"no default taxonomy release: pass --version or flag one release as default",
		)
	}

	for i := range c.Taxonomy {
		if c.Taxonomy[i].EffectiveVersion() == version {
			return &c.Taxonomy[i], nil
		}
	}
	return nil, fmt.Errorf("unknown taxonomy version '%s'", version)
}

// FindRegion looks up a region by its eBird code, case-insensitively.
func (c *SourcesConfig) FindRegion(code string) (*Region, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i := range c.Regions {
		if strings.ToUpper(c.Regions[i].Code) == code {
			return &c.Regions[i], true
		}
	}
	return nil, false
}

// IsValidURL checks if a string is a valid URL.
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
