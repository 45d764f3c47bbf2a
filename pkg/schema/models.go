// Package schema provides database schema models for avidb.
// Models are migrated with GORM AutoMigrate; indexes that GORM tags
// cannot express (the natural-key arbiter, partial metadata indexes)
// are applied by internal/ioschema after migration.
package schema

import (
	"database/sql"
	"time"
)

// BirdTaxon is one node of the five-level taxonomy tree.
type BirdTaxon struct {
	// ID is a UUID v5 derived from the node's natural key.
	ID string `gorm:"column:id;type:uuid;primaryKey"`

	// Name is the display name: common name at species rank, group
	// name at higher ranks.
	Name string `gorm:"column:name;type:varchar(255);not null;index:idx_bird_taxa_name"`

	// Rank is one of class, order, family, genus, species.
	Rank string `gorm:"column:rank;type:varchar(10);not null;index:idx_bird_taxa_rank;check:chk_bird_taxa_rank,rank IN ('class','order','family','genus','species')"`

	// ParentID references the enclosing rank's node; NULL only for the
	// single class root.
	ParentID sql.NullString `gorm:"column:parent_id;type:uuid;index:idx_bird_taxa_parent_id"`

	// Parent declares the self-reference so AutoMigrate creates the
	// foreign key with cascade deletes.
	Parent *BirdTaxon `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE"`

	// ScientificName is required at species rank, mirrors Name at
	// higher ranks.
	ScientificName sql.NullString `gorm:"column:scientific_name;type:varchar(255);index:idx_bird_taxa_scientific_name"`

	// CommonName is the vernacular name where one exists.
	CommonName sql.NullString `gorm:"column:common_name;type:varchar(255)"`

	// EbirdCode is the eBird species code, unique across species rows.
	EbirdCode sql.NullString `gorm:"column:ebird_code;type:varchar(50);uniqueIndex:idx_bird_taxa_ebird_code"`

	// WikipediaURL is set by the enrichment walker, never by conversion.
	WikipediaURL sql.NullString `gorm:"column:wikipedia_url;type:text"`

	// ImageURL is set by the enrichment walker, never by conversion.
	ImageURL sql.NullString `gorm:"column:image_url;type:text"`

	// OrderName caches the ancestor order name at family, genus and
	// species rows for query convenience.
	OrderName sql.NullString `gorm:"column:order_name;type:varchar(255)"`

	// FamilyName caches the ancestor family name at genus and species
	// rows; species keep the raw eBird column with its gloss.
	FamilyName sql.NullString `gorm:"column:family_name;type:varchar(255)"`

	// SpeciesGroup is the eBird species group label.
	SpeciesGroup sql.NullString `gorm:"column:species_group;type:varchar(255)"`

	// CreatedAt records when the row was first inserted.
	CreatedAt time.Time `gorm:"column:created_at"`

	// UpdatedAt records the last mutation (conversion or enrichment).
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the PostgreSQL table name for this model.
func (BirdTaxon) TableName() string {
	return "bird_taxa"
}

// RegionalBird is one entry of the configured region's species
// checklist, seeded from the eBird species list endpoint.
type RegionalBird struct {
	// SpeciesCode is the eBird species code.
	SpeciesCode string `gorm:"column:species_code;type:varchar(50);primaryKey"`

	// CommonName is the primary common name from the taxonomy.
	CommonName string `gorm:"column:common_name;type:varchar(255);not null"`

	// ScientificName is the binomial from the taxonomy.
	ScientificName string `gorm:"column:scientific_name;type:varchar(255);not null"`

	// CreatedAt records when the code was first seen in the region.
	CreatedAt time.Time `gorm:"column:created_at"`

	// UpdatedAt records the last checklist refresh touching the row.
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the PostgreSQL table name for this model.
func (RegionalBird) TableName() string {
	return "regional_birds"
}

// Observation is one sighting event pulled from the eBird API. The
// natural key is (obs_date, lat, lng): a day's records collapse into
// one event per location and calendar day.
type Observation struct {
	// ID is a client-generated UUID v4.
	ID string `gorm:"column:id;type:uuid;primaryKey"`

	// ObsDate is the calendar day of the checklist. eBird's finer
	// timestamps are truncated before the natural key applies.
	ObsDate time.Time `gorm:"column:obs_date;not null;uniqueIndex:idx_observations_natural_key;index:idx_observations_obs_date"`

	// Lat is the checklist latitude.
	Lat float64 `gorm:"column:lat;type:double precision;not null;uniqueIndex:idx_observations_natural_key"`

	// Lng is the checklist longitude.
	Lng float64 `gorm:"column:lng;type:double precision;not null;uniqueIndex:idx_observations_natural_key"`

	// LocationID is the eBird location identifier.
	LocationID sql.NullString `gorm:"column:location_id;type:varchar(50)"`

	// LocationName is the human-readable location label.
	LocationName sql.NullString `gorm:"column:location_name;type:varchar(255)"`

	// ObsValid is eBird's validity flag for the checklist.
	ObsValid bool `gorm:"column:obs_valid"`

	// ObsReviewed is eBird's review flag for the checklist.
	ObsReviewed bool `gorm:"column:obs_reviewed"`

	// UserDisplayName is the observer's display name.
	UserDisplayName sql.NullString `gorm:"column:user_display_name;type:varchar(255)"`

	// Subnational1Name is the first-level region name.
	Subnational1Name sql.NullString `gorm:"column:subnational1_name;type:varchar(255)"`

	// CreatedAt records when the row was ingested.
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the PostgreSQL table name for this model.
func (Observation) TableName() string {
	return "observations"
}

// ObservationBird links one species to one observation event.
type ObservationBird struct {
	// ObservationID references the sighting event.
	ObservationID string `gorm:"column:observation_id;type:uuid;primaryKey"`

	// Observation declares the reference so AutoMigrate creates the
	// foreign key with cascade deletes.
	Observation *Observation `gorm:"foreignKey:ObservationID;references:ID;constraint:OnDelete:CASCADE"`

	// SpeciesCode is the eBird species code seen during the event.
	SpeciesCode string `gorm:"column:species_code;type:varchar(50);primaryKey;index:idx_observation_birds_species_code"`

	// HowMany is the reported individual count; NULL when eBird
	// reports presence only.
	HowMany sql.NullInt32 `gorm:"column:how_many"`

	// CreatedAt records when the row was ingested.
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the PostgreSQL table name for this model.
func (ObservationBird) TableName() string {
	return "observation_birds"
}
