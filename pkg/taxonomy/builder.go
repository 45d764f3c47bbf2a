// Package taxonomy builds the five-level bird taxonomy tree
// (class → order → family → genus → species) from classified eBird
// rows. The builder is a pure in-memory transform: it performs no
// network or store I/O, and all deduplication state lives inside the
// Builder value, so independent builds share nothing.
package taxonomy

import (
	"fmt"

	"github.com/aviatlas/avidb/pkg/ebird"
)

const (
	// ClassName is the scientific name of the single tree root.
	ClassName = "Aves"
	// ClassCommonName is the display name of the root.
	ClassCommonName = "Birds"
)

// genusKey identifies a genus within its family. Genus names are not
// globally unique across families, so deduplication keys on both.
type genusKey struct {
	familyID string
	name     string
}

// Builder assembles the taxonomy tree from classified rows. Ancestor
// nodes are created lazily on first sight and reused afterwards; the
// per-rank output slices preserve insertion order, so the same rows in
// the same order always produce an isomorphic tree.
type Builder struct {
	root     *Node
	orders   map[string]*Node
	families map[string]*Node
	genera   map[genusKey]*Node
	species  map[string]*Node
	nodes    map[Rank][]*Node
}

// NewBuilder creates a Builder with the single class root already in
// place.
func NewBuilder() *Builder {
	b := &Builder{
		orders:   make(map[string]*Node),
		families: make(map[string]*Node),
		genera:   make(map[genusKey]*Node),
		species:  make(map[string]*Node),
		nodes:    make(map[Rank][]*Node),
	}
	b.root = &Node{
		ID:             NodeID(RankClass, "", ClassName),
		Rank:           RankClass,
		Name:           ClassName,
		ScientificName: ClassName,
		CommonName:     ClassCommonName,
	}
	b.nodes[RankClass] = append(b.nodes[RankClass], b.root)
	return b
}

// Root returns the class root node.
func (b *Builder) Root() *Node {
	return b.root
}

// AddSpecies threads one classified row through the tree. Missing
// order, family and genus ancestors are created and linked on the way;
// the species node is created under its genus. A row whose eBird code
// was already added is rejected, the tree stays unchanged.
func (b *Builder) AddSpecies(row ebird.Classified) (*Node, error) {
	if dup, ok := b.species[row.SpeciesCode]; ok {
		return nil, fmt.Errorf(
			"duplicate eBird code %q (already used by %q)",
			row.SpeciesCode, dup.ScientificName,
		)
	}

	order := b.ensureOrder(row.Order)
	family := b.ensureFamily(row.Family, row.FamilyRaw, order)
	genus := b.ensureGenus(row.Genus, family, row.Order)

	sp := &Node{
		ID:             SpeciesID(row.SpeciesCode),
		Rank:           RankSpecies,
		Name:           row.CommonName,
		ParentID:       genus.ID,
		ScientificName: row.SciName,
		CommonName:     row.CommonName,
		EbirdCode:      row.SpeciesCode,
		OrderName:      row.Order,
		FamilyName:     row.FamilyRaw,
		SpeciesGroup:   row.SpeciesGroup,
	}
	b.species[row.SpeciesCode] = sp
	b.nodes[RankSpecies] = append(b.nodes[RankSpecies], sp)
	return sp, nil
}

// ensureOrder returns the order node with the given name, creating and
// linking it to the root on first sight.
func (b *Builder) ensureOrder(name string) *Node {
	if node, ok := b.orders[name]; ok {
		return node
	}
	node := &Node{
		ID:             NodeID(RankOrder, b.root.ID, name),
		Rank:           RankOrder,
		Name:           name,
		ParentID:       b.root.ID,
		ScientificName: name,
		CommonName:     name,
	}
	b.orders[name] = node
	b.nodes[RankOrder] = append(b.nodes[RankOrder], node)
	return node
}

// ensureFamily returns the family node with the given cleaned name.
// Families are deduplicated by name alone; when eBird data lists the
// same family under two orders, the first-seen order wins and the
// verify command reports the irregularity.
func (b *Builder) ensureFamily(name, raw string, order *Node) *Node {
	if node, ok := b.families[name]; ok {
		return node
	}
	node := &Node{
		ID:             NodeID(RankFamily, order.ID, name),
		Rank:           RankFamily,
		Name:           name,
		ParentID:       order.ID,
		ScientificName: name,
		CommonName:     raw,
		OrderName:      order.Name,
	}
	b.families[name] = node
	b.nodes[RankFamily] = append(b.nodes[RankFamily], node)
	return node
}

// ensureGenus returns the genus node for (family, name). The key
// includes the family so that unrelated genera sharing a name under
// different families never merge.
func (b *Builder) ensureGenus(name string, family *Node, orderName string) *Node {
	key := genusKey{familyID: family.ID, name: name}
	if node, ok := b.genera[key]; ok {
		return node
	}
	node := &Node{
		ID:             NodeID(RankGenus, family.ID, name),
		Rank:           RankGenus,
		Name:           name,
		ParentID:       family.ID,
		ScientificName: name,
		CommonName:     name,
		OrderName:      orderName,
		FamilyName:     family.Name,
	}
	b.genera[key] = node
	b.nodes[RankGenus] = append(b.nodes[RankGenus], node)
	return node
}

// Nodes returns the nodes of one rank in insertion order.
func (b *Builder) Nodes(rank Rank) []*Node {
	return b.nodes[rank]
}

// Counts returns node counts per rank.
func (b *Builder) Counts() map[Rank]int {
	res := make(map[Rank]int, len(rankOrder))
	for _, rank := range rankOrder {
		res[rank] = len(b.nodes[rank])
	}
	return res
}

// Total returns the number of nodes across all ranks.
func (b *Builder) Total() int {
	var res int
	for _, rank := range rankOrder {
		res += len(b.nodes[rank])
	}
	return res
}
