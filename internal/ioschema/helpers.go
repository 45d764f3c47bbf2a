package ioschema

import "fmt"

// indexDef pairs an index name with its DDL statement.
type indexDef struct {
	name string
	sql  string
}

// indexDDL lists the indexes applied after AutoMigrate.
//
// The natural-key index is the ON CONFLICT arbiter for taxonomy
// upserts. NULLS NOT DISTINCT makes the root row (parent_id IS
// NULL) participate in conflict detection; without it PostgreSQL
// treats every NULL parent_id as unique and re-imports would
// duplicate the root.
func indexDDL() []indexDef {
	return []indexDef{
		{
			name: "idx_bird_taxa_natural_key",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS ` +
				`idx_bird_taxa_natural_key ` +
				`ON bird_taxa (rank, parent_id, name) ` +
				`NULLS NOT DISTINCT`,
		},
		{
			name: "idx_bird_taxa_missing_wikipedia",
			sql: `CREATE INDEX IF NOT EXISTS ` +
				`idx_bird_taxa_missing_wikipedia ` +
				`ON bird_taxa (rank) ` +
				`WHERE wikipedia_url IS NULL`,
		},
		{
			name: "idx_bird_taxa_missing_image",
			sql: `CREATE INDEX IF NOT EXISTS ` +
				`idx_bird_taxa_missing_image ` +
				`ON bird_taxa (rank) ` +
				`WHERE image_url IS NULL`,
		},
	}
}

// formatCollationSQL formats the collation SQL statement.
func formatCollationSQL(
	template string,
	table string,
	column string,
	varchar int,
) string {
	return fmt.Sprintf(template, table, column, varchar)
}
