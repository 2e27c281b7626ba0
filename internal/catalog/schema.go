// Package catalog provides the SQLite-backed table metadata catalog.
package catalog

// Schema contains the SQL schema definitions for the metadata catalog
// (catalog.db). The catalog is the source of truth for table definitions and
// range partitions, and is the component that applies compiled alteration
// requests.

// CreateTablesTableSQL creates the core tables table. The full column schema
// is stored as a snappy-compressed JSON blob; scalar table options live in
// dedicated columns so they can be altered without rewriting the blob.
const CreateTablesTableSQL = `
CREATE TABLE IF NOT EXISTS tables (
    table_id TEXT PRIMARY KEY,
    table_name TEXT NOT NULL UNIQUE,
    owner TEXT,
    comment TEXT,
    replication_factor INTEGER NOT NULL DEFAULT 1,
    disk_size_limit INTEGER,
    row_count_limit INTEGER,
    extra_configs_json TEXT NOT NULL DEFAULT '{}',
    schema_blob BLOB NOT NULL,
    schema_version INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
)`

// CreateRangePartitionsTableSQL creates the range partitions table. The
// bound pair is stored in its encoded row-operations form so a drop request
// can identify a partition by exact bound match.
const CreateRangePartitionsTableSQL = `
CREATE TABLE IF NOT EXISTS range_partitions (
    table_id TEXT NOT NULL,
    bounds_blob BLOB NOT NULL,
    hash_schema_json TEXT,
    dimension_label TEXT,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (table_id, bounds_blob),
    FOREIGN KEY (table_id) REFERENCES tables(table_id)
)`

// CreateTableNameIndexSQL creates an index for table name lookups.
const CreateTableNameIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_tables_name ON tables(table_name)`

// AllSchemaSQL returns all SQL statements needed to initialize the catalog.
func AllSchemaSQL() []string {
	return []string{
		CreateTablesTableSQL,
		CreateRangePartitionsTableSQL,
		CreateTableNameIndexSQL,
	}
}
