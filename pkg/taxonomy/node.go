package taxonomy

import (
	"github.com/gnames/gnuuid"
)

// Node is one taxon of the bird tree. Name holds the display name: the
// common name at species rank, the taxonomic group name at higher
// ranks. Fields that the schema stores as nullable columns are empty
// strings here; the store boundary converts them.
type Node struct {
	ID             string
	Rank           Rank
	Name           string
	ParentID       string
	ScientificName string
	CommonName     string
	EbirdCode      string
	OrderName      string
	FamilyName     string
	SpeciesGroup   string
}

// NodeID derives the deterministic identifier of a class, order, family
// or genus node from its natural key (rank, parent, name) via UUID v5.
// The same key always maps to the same id, so repeated conversion runs
// produce identical identifiers.
func NodeID(rank Rank, parentID, name string) string {
	return gnuuid.New(string(rank) + "|" + parentID + "|" + name).String()
}

// SpeciesID derives the deterministic identifier of a species node.
// The natural key of a species is its eBird code alone.
func SpeciesID(ebirdCode string) string {
	return gnuuid.New("species|" + ebirdCode).String()
}
