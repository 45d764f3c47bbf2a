// Package sources provides configuration and validation for avidb data
// sources.
//
// This package defines the schema for sources.yaml, which users provide to
// point avidb at eBird taxonomy CSV releases and at the regions whose
// observations the sync command pulls. It handles source configuration
// validation, release selection, and version extraction from taxonomy CSV
// filenames.
package sources

type Sources interface {
	Load() (*SourcesConfig, error)
}

// SourcesConfig represents the complete sources.yaml configuration file.
type SourcesConfig struct {
	// Taxonomy is the list of eBird taxonomy CSV releases known to avidb.
	Taxonomy []TaxonomyRelease `yaml:"taxonomy"`

	// Regions is the list of eBird regions available to the sync command.
	Regions []Region `yaml:"regions,omitempty"`

	// Warnings holds non-fatal validation warnings (not serialized)
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Version    string // Version of the taxonomy release, or region code
	Field      string // Field name that has the issue
	Message    string // Description of the issue
	Suggestion string // How to fix it
}

// TaxonomyRelease describes one eBird taxonomy CSV release.
//
// The release version comes from two places, in priority order:
//   - the version field here
//   - the filename, pattern {name}_v{version}.csv
type TaxonomyRelease struct {
	// File is the path to the taxonomy CSV on the local filesystem.
	// Examples:
	//   - ~/data/ebird/eBird_taxonomy_v2024.csv
	//   - /srv/taxonomies/ebird-2023.csv
	File string `yaml:"file"`

	// Version labels the release (e.g. "2024"). When empty it is
	// extracted from the filename if possible.
	Version string `yaml:"version,omitempty"`

	// URL is the page the CSV was downloaded from. Informational only.
	URL string `yaml:"url,omitempty"`

	// Default marks the release used when convert runs without
	// --version. At most one release should carry it.
	Default bool `yaml:"default,omitempty"`

	// Categories overrides the converted eBird categories for this
	// release (default: species only).
	Categories []string `yaml:"categories,omitempty"`
}

// Region describes one eBird region available for observation sync.
type Region struct {
	// Code is the eBird region code (country or subnational).
	// Examples: SG, US-NY, MX-ROO
	Code string `yaml:"code"`

	// Name is the human-readable region name.
	Name string `yaml:"name,omitempty"`
}
