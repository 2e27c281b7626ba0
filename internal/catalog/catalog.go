package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/storage"
	"github.com/latticedb/lattice/pkg/types"
)

// TableRecord represents a table in the catalog.
type TableRecord struct {
	TableID           string
	Name              string
	Owner             string
	Comment           string
	ReplicationFactor int32
	DiskSizeLimit     *int64
	RowCountLimit     *int64
	ExtraConfigs      map[string]string
	Schema            *types.Schema
	SchemaVersion     uint32
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RangePartitionRecord represents a range partition in the catalog.
type RangePartitionRecord struct {
	TableID        string
	BoundsBlob     []byte
	HashSchemaJSON string
	DimensionLabel *string
	CreatedAt      time.Time
}

// SQLiteCatalog is the SQLite-backed metadata catalog. It applies compiled
// alteration requests sequentially inside a single transaction.
type SQLiteCatalog struct {
	db     *sql.DB
	dbPath string

	// external, when set, receives a table metadata sidecar after every
	// applied alteration that requests external catalog propagation.
	external       storage.ObjectStore
	externalPrefix string
}

// NewCatalog creates a new SQLite-based catalog.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // Single writer

	c := &SQLiteCatalog{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
	}
	return c, nil
}

// AttachExternalCatalog wires an object store that receives table metadata
// sidecars when an alteration asks for external catalog propagation.
func (c *SQLiteCatalog) AttachExternalCatalog(store storage.ObjectStore, prefix string) {
	c.external = store
	c.externalPrefix = prefix
}

// initSchema creates all required tables and indexes.
func (c *SQLiteCatalog) initSchema() error {
	for _, stmt := range AllSchemaSQL() {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// CreateTable registers a new table with the given schema.
func (c *SQLiteCatalog) CreateTable(ctx context.Context, name string, schema *types.Schema, replicationFactor int32) (*TableRecord, error) {
	if replicationFactor < 1 {
		replicationFactor = 1
	}
	blob, err := encodeSchemaBlob(schema)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tableID := uuid.New().String()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO tables (table_id, table_name, replication_factor, schema_blob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tableID, name, replicationFactor, blob, now.Unix(), now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeTableExists,
				"table %q already exists", name)
		}
		return nil, fmt.Errorf("catalog: failed to insert table: %w", err)
	}

	return c.GetTableByID(ctx, tableID)
}

// GetTable retrieves a table by name.
func (c *SQLiteCatalog) GetTable(ctx context.Context, name string) (*TableRecord, error) {
	return c.getTable(ctx, "table_name", name)
}

// GetTableByID retrieves a table by ID.
func (c *SQLiteCatalog) GetTableByID(ctx context.Context, tableID string) (*TableRecord, error) {
	return c.getTable(ctx, "table_id", tableID)
}

func (c *SQLiteCatalog) getTable(ctx context.Context, keyColumn, key string) (*TableRecord, error) {
	row := c.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT table_id, table_name, COALESCE(owner, ''), COALESCE(comment, ''),
		       replication_factor, disk_size_limit, row_count_limit,
		       extra_configs_json, schema_blob, schema_version, created_at, updated_at
		FROM tables WHERE %s = ?`, keyColumn), key)
	return scanTableRecord(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTableRecord(row rowScanner) (*TableRecord, error) {
	var rec TableRecord
	var extraJSON string
	var blob []byte
	var createdAt, updatedAt int64

	err := row.Scan(&rec.TableID, &rec.Name, &rec.Owner, &rec.Comment,
		&rec.ReplicationFactor, &rec.DiskSizeLimit, &rec.RowCountLimit,
		&extraJSON, &blob, &rec.SchemaVersion, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, lerrors.New(lerrors.ErrCategoryCatalog, lerrors.CodeTableNotFound, "table not found")
		}
		return nil, fmt.Errorf("catalog: failed to scan table: %w", err)
	}

	if err := json.Unmarshal([]byte(extraJSON), &rec.ExtraConfigs); err != nil {
		return nil, fmt.Errorf("catalog: failed to unmarshal extra configs: %w", err)
	}
	schema, err := decodeSchemaBlob(blob)
	if err != nil {
		return nil, err
	}
	rec.Schema = schema
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

// ListRangePartitions returns the table's range partitions ordered by
// creation time.
func (c *SQLiteCatalog) ListRangePartitions(ctx context.Context, tableID string) ([]RangePartitionRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT table_id, bounds_blob, COALESCE(hash_schema_json, ''), dimension_label, created_at
		FROM range_partitions WHERE table_id = ? ORDER BY created_at, bounds_blob`, tableID)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to list partitions: %w", err)
	}
	defer rows.Close()

	var records []RangePartitionRecord
	for rows.Next() {
		var rec RangePartitionRecord
		var createdAt int64
		if err := rows.Scan(&rec.TableID, &rec.BoundsBlob, &rec.HashSchemaJSON, &rec.DimensionLabel, &createdAt); err != nil {
			return nil, fmt.Errorf("catalog: failed to scan partition: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: error iterating partitions: %w", err)
	}
	return records, nil
}

// Close closes the catalog database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// encodeSchemaBlob serializes a schema as snappy-compressed JSON.
func encodeSchemaBlob(schema *types.Schema) ([]byte, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to marshal schema: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// decodeSchemaBlob reverses encodeSchemaBlob.
func decodeSchemaBlob(blob []byte) (*types.Schema, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to decompress schema: %w", err)
	}
	var schema types.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("catalog: failed to unmarshal schema: %w", err)
	}
	return &schema, nil
}

// isUniqueViolation reports whether the error is a SQLite uniqueness error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
