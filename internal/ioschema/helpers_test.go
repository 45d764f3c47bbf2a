package ioschema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatCollationSQL_FormatsCorrectly verifies SQL
// formatting.
func TestFormatCollationSQL_FormatsCorrectly(t *testing.T) {
	template := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`
	table := "test_table"
	column := "test_column"

	result := formatCollationSQL(template, table, column, 255)

	expected := `ALTER TABLE test_table ALTER COLUMN ` +
		`test_column TYPE VARCHAR(255) COLLATE "C"`
	assert.Equal(t, expected, result)
}

// TestFormatCollationSQL_DifferentValues verifies
// formatting with different inputs.
func TestFormatCollationSQL_DifferentValues(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		column   string
		varchar  int
		expected string
	}{
		{
			name:    "bird_taxa name",
			table:   "bird_taxa",
			column:  "name",
			varchar: 255,
			expected: `ALTER TABLE bird_taxa ` +
				`ALTER COLUMN name ` +
				`TYPE VARCHAR(255) COLLATE "C"`,
		},
		{
			name:    "regional_birds scientific name",
			table:   "regional_birds",
			column:  "scientific_name",
			varchar: 255,
			expected: `ALTER TABLE regional_birds ` +
				`ALTER COLUMN scientific_name ` +
				`TYPE VARCHAR(255) COLLATE "C"`,
		},
	}

	template := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatCollationSQL(template,
				tt.table, tt.column, tt.varchar)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestIndexDDL_NaturalKey verifies the upsert arbiter index.
func TestIndexDDL_NaturalKey(t *testing.T) {
	indexes := indexDDL()

	var naturalKey *indexDef
	for i := range indexes {
		if indexes[i].name == "idx_bird_taxa_natural_key" {
			naturalKey = &indexes[i]
		}
	}

	assert.NotNil(t, naturalKey,
		"Natural key index must be in the DDL list")
	assert.Contains(t, naturalKey.sql, "UNIQUE")
	assert.Contains(t, naturalKey.sql,
		"(rank, parent_id, name)")
	assert.Contains(t, naturalKey.sql, "NULLS NOT DISTINCT",
		"Root row with NULL parent_id must be conflict-detectable")
}

// TestIndexDDL_Idempotent verifies every statement can be
// re-run on an existing database.
func TestIndexDDL_Idempotent(t *testing.T) {
	for _, idx := range indexDDL() {
		t.Run(idx.name, func(t *testing.T) {
			assert.Contains(t, idx.sql, "IF NOT EXISTS")
			assert.Contains(t, idx.sql, idx.name,
				"Statement should create the index it is named after")
		})
	}
}

// TestIndexDDL_UniqueNames verifies index names don't collide.
func TestIndexDDL_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, idx := range indexDDL() {
		assert.False(t, seen[idx.name],
			"duplicate index name: %s", idx.name)
		seen[idx.name] = true
		assert.True(t,
			strings.HasPrefix(idx.name, "idx_bird_taxa_"))
	}
}
