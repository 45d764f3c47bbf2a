package taxonomy_test

import (
	"testing"

	"github.com/aviatlas/avidb/pkg/ebird"
	"github.com/aviatlas/avidb/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classified(code, common, sci, genus, order, family string) ebird.Classified {
	return ebird.Classified{
		SpeciesCode: code,
		CommonName:  common,
		SciName:     sci,
		Genus:       genus,
		Order:       order,
		Family:      ebird.CleanFamily(family),
		FamilyRaw:   family,
	}
}

// ravenRows is the end-to-end fixture: 3 species under 2 genera,
// 1 family, 1 order.
func ravenRows() []ebird.Classified {
	return []ebird.Classified{
		classified("corrav", "Common Raven", "Corvus corax",
			"Corvus", "Passeriformes", "Corvidae (Crows, Jays, and Magpies)"),
		classified("amecro", "American Crow", "Corvus brachyrhynchos",
			"Corvus", "Passeriformes", "Corvidae (Crows, Jays, and Magpies)"),
		classified("blujay", "Blue Jay", "Cyanocitta cristata",
			"Cyanocitta", "Passeriformes", "Corvidae (Crows, Jays, and Magpies)"),
	}
}

func TestBuilderRoot(t *testing.T) {
	b := taxonomy.NewBuilder()

	root := b.Root()
	require.NotNil(t, root)
	assert.Equal(t, taxonomy.RankClass, root.Rank)
	assert.Equal(t, "Aves", root.Name)
	assert.Equal(t, "Birds", root.CommonName)
	assert.Empty(t, root.ParentID)
	assert.Len(t, b.Nodes(taxonomy.RankClass), 1)
}

func TestBuilderEndToEnd(t *testing.T) {
	b := taxonomy.NewBuilder()
	for _, row := range ravenRows() {
		_, err := b.AddSpecies(row)
		require.NoError(t, err)
	}

	counts := b.Counts()
	assert.Equal(t, 1, counts[taxonomy.RankClass])
	assert.Equal(t, 1, counts[taxonomy.RankOrder])
	assert.Equal(t, 1, counts[taxonomy.RankFamily])
	assert.Equal(t, 2, counts[taxonomy.RankGenus])
	assert.Equal(t, 3, counts[taxonomy.RankSpecies])
	assert.Equal(t, 8, b.Total())

	// Every species chains back to the class root.
	byID := make(map[string]*taxonomy.Node)
	for _, rank := range taxonomy.Ranks() {
		for _, node := range b.Nodes(rank) {
			byID[node.ID] = node
		}
	}
	for _, sp := range b.Nodes(taxonomy.RankSpecies) {
		node := sp
		var path []taxonomy.Rank
		for node.ParentID != "" {
			parent, ok := byID[node.ParentID]
			require.True(t, ok, "parent of %s must exist", node.Name)
			path = append(path, parent.Rank)
			node = parent
		}
		assert.Equal(t,
			[]taxonomy.Rank{
				taxonomy.RankGenus,
				taxonomy.RankFamily,
				taxonomy.RankOrder,
				taxonomy.RankClass,
			},
			path, sp.Name)
	}
}

func TestBuilderHierarchyInvariant(t *testing.T) {
	b := taxonomy.NewBuilder()
	for _, row := range ravenRows() {
		_, err := b.AddSpecies(row)
		require.NoError(t, err)
	}

	byID := make(map[string]*taxonomy.Node)
	for _, rank := range taxonomy.Ranks() {
		for _, node := range b.Nodes(rank) {
			byID[node.ID] = node
		}
	}

	for _, rank := range taxonomy.Ranks() {
		for _, node := range b.Nodes(rank) {
			if node.Rank == taxonomy.RankClass {
				assert.Empty(t, node.ParentID)
				continue
			}
			parent := byID[node.ParentID]
			require.NotNil(t, parent, node.Name)
			assert.Equal(t, node.Rank.Depth()-1, parent.Rank.Depth(),
				"parent of %s must be one rank above", node.Name)
		}
	}
}

func TestBuilderDeduplication(t *testing.T) {
	b := taxonomy.NewBuilder()
	rows := ravenRows()
	for _, row := range rows {
		_, err := b.AddSpecies(row)
		require.NoError(t, err)
	}

	t.Run("ancestors are reused", func(t *testing.T) {
		species := b.Nodes(taxonomy.RankSpecies)
		require.Len(t, species, 3)
		// Both Corvus species share one genus node.
		assert.Equal(t, species[0].ParentID, species[1].ParentID)
		// The jay hangs off its own genus.
		assert.NotEqual(t, species[0].ParentID, species[2].ParentID)
	})

	t.Run("duplicate eBird code is rejected", func(t *testing.T) {
		dup := rows[0]
		dup.SciName = "Corvus cryptoleucus"
		_, err := b.AddSpecies(dup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate eBird code")
		assert.Len(t, b.Nodes(taxonomy.RankSpecies), 3)
	})
}

func TestBuilderGenusKeyedByFamily(t *testing.T) {
	b := taxonomy.NewBuilder()

	// The same genus name under two families must not merge.
	_, err := b.AddSpecies(classified("sp1", "Bird One", "Aus primus",
		"Aus", "Passeriformes", "Corvidae"))
	require.NoError(t, err)
	_, err = b.AddSpecies(classified("sp2", "Bird Two", "Aus secundus",
		"Aus", "Passeriformes", "Paridae"))
	require.NoError(t, err)

	genera := b.Nodes(taxonomy.RankGenus)
	require.Len(t, genera, 2)
	assert.Equal(t, genera[0].Name, genera[1].Name)
	assert.NotEqual(t, genera[0].ParentID, genera[1].ParentID)
	assert.NotEqual(t, genera[0].ID, genera[1].ID)
}

func TestBuilderDeterminism(t *testing.T) {
	build := func() *taxonomy.Builder {
		b := taxonomy.NewBuilder()
		for _, row := range ravenRows() {
			_, err := b.AddSpecies(row)
			require.NoError(t, err)
		}
		return b
	}

	b1 := build()
	b2 := build()

	for _, rank := range taxonomy.Ranks() {
		n1 := b1.Nodes(rank)
		n2 := b2.Nodes(rank)
		require.Len(t, n2, len(n1), rank)
		for i := range n1 {
			assert.Equal(t, n1[i].ID, n2[i].ID)
			assert.Equal(t, n1[i].Name, n2[i].Name)
			assert.Equal(t, n1[i].ParentID, n2[i].ParentID)
		}
	}
}

func TestBuilderDenormalizedNames(t *testing.T) {
	b := taxonomy.NewBuilder()
	_, err := b.AddSpecies(ravenRows()[0])
	require.NoError(t, err)

	family := b.Nodes(taxonomy.RankFamily)[0]
	assert.Equal(t, "Corvidae", family.Name)
	assert.Equal(t, "Corvidae (Crows, Jays, and Magpies)", family.CommonName)
	assert.Equal(t, "Passeriformes", family.OrderName)

	genus := b.Nodes(taxonomy.RankGenus)[0]
	assert.Equal(t, "Passeriformes", genus.OrderName)
	assert.Equal(t, "Corvidae", genus.FamilyName)

	sp := b.Nodes(taxonomy.RankSpecies)[0]
	assert.Equal(t, "Passeriformes", sp.OrderName)
	assert.Equal(t, "Corvidae (Crows, Jays, and Magpies)", sp.FamilyName)
}

func TestRanks(t *testing.T) {
	ranks := taxonomy.Ranks()
	require.Len(t, ranks, 5)
	assert.Equal(t, taxonomy.RankClass, ranks[0])
	assert.Equal(t, taxonomy.RankSpecies, ranks[4])

	for i, rank := range ranks {
		assert.Equal(t, i, rank.Depth())
		parent, ok := rank.Parent()
		if i == 0 {
			assert.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, ranks[i-1], parent)
		}
	}

	assert.False(t, taxonomy.Rank("kingdom").IsValid())
	assert.Equal(t, -1, taxonomy.Rank("kingdom").Depth())
}
