package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
	"github.com/latticedb/lattice/pkg/types"
)

// ApplyAlteration applies a compiled alteration request. Steps are applied
// sequentially in request order inside a single transaction, so a drop of a
// range partition followed by an add of the same bounds behaves as the
// request ordered it. Range bound overlap checking against existing
// partitions is not performed here.
func (c *SQLiteCatalog) ApplyAlteration(ctx context.Context, req *wire.AlterTableRequest) (*wire.AlterTableResponse, error) {
	rec, err := c.resolveTable(ctx, &req.Table)
	if err != nil {
		return nil, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := c.applyScalarOptions(ctx, tx, rec, req); err != nil {
		return nil, err
	}

	schema := rec.Schema
	if req.Schema != nil {
		schema, err = wire.SchemaFromPB(req.Schema)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeDecodingFailed,
				"decoding replacement schema", err)
		}
	}

	for i, step := range req.Steps {
		schema, err = c.applyStep(ctx, tx, rec, schema, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Type, err)
		}
	}

	newVersion := rec.SchemaVersion + 1
	blob, err := encodeSchemaBlob(schema)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE tables SET schema_blob = ?, schema_version = ?, updated_at = ? WHERE table_id = ?`,
		blob, newVersion, time.Now().Unix(), rec.TableID)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to update schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("catalog: failed to commit alteration: %w", err)
	}

	if req.ModifyExternalCatalogs {
		c.propagateExternal(ctx, rec.TableID)
	}

	return &wire.AlterTableResponse{TableID: rec.TableID, SchemaVersion: newVersion}, nil
}

// resolveTable locates the target table, preferring ID over name.
func (c *SQLiteCatalog) resolveTable(ctx context.Context, ident *wire.TableIdentifier) (*TableRecord, error) {
	if ident.TableID != "" {
		return c.GetTableByID(ctx, ident.TableID)
	}
	if ident.TableName != "" {
		return c.GetTable(ctx, ident.TableName)
	}
	return nil, lerrors.New(lerrors.ErrCategoryCatalog, lerrors.CodeTableNotFound,
		"request names no table")
}

// applyScalarOptions applies the request's table-level options.
func (c *SQLiteCatalog) applyScalarOptions(ctx context.Context, tx *sql.Tx, rec *TableRecord, req *wire.AlterTableRequest) error {
	set := func(column string, value interface{}) error {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE tables SET %s = ? WHERE table_id = ?", column), value, rec.TableID)
		if err != nil {
			return fmt.Errorf("catalog: failed to set %s: %w", column, err)
		}
		return nil
	}

	if req.NewTableName != nil {
		if err := set("table_name", *req.NewTableName); err != nil {
			return err
		}
	}
	if req.NewTableOwner != nil {
		if err := set("owner", *req.NewTableOwner); err != nil {
			return err
		}
	}
	if req.NewTableComment != nil {
		if err := set("comment", *req.NewTableComment); err != nil {
			return err
		}
	}
	if req.NewReplicationFactor != nil {
		if err := set("replication_factor", *req.NewReplicationFactor); err != nil {
			return err
		}
	}
	if req.DiskSizeLimit != nil {
		if err := set("disk_size_limit", *req.DiskSizeLimit); err != nil {
			return err
		}
	}
	if req.RowCountLimit != nil {
		if err := set("row_count_limit", *req.RowCountLimit); err != nil {
			return err
		}
	}
	if req.NewExtraConfigs != nil {
		merged := make(map[string]string, len(rec.ExtraConfigs)+len(req.NewExtraConfigs))
		for k, v := range rec.ExtraConfigs {
			merged[k] = v
		}
		for k, v := range req.NewExtraConfigs {
			if v == "" {
				// Empty value resets the key to its default
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("catalog: failed to marshal extra configs: %w", err)
		}
		if err := set("extra_configs_json", string(raw)); err != nil {
			return err
		}
	}
	return nil
}

// applyStep applies a single alteration step, returning the updated schema.
func (c *SQLiteCatalog) applyStep(ctx context.Context, tx *sql.Tx, rec *TableRecord, schema *types.Schema, step *wire.AlterStep) (*types.Schema, error) {
	switch step.Type {
	case wire.StepAddColumn:
		if step.AddColumn == nil {
			return nil, malformedStep(step.Type)
		}
		col, err := wire.ColumnFromPB(&step.AddColumn.Schema)
		if err != nil {
			return nil, err
		}
		if schema.ColumnIndex(col.Name) >= 0 {
			return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeColumnExists,
				"column %q already exists", col.Name)
		}
		schema.Columns = append(schema.Columns, col)
		return schema, nil

	case wire.StepDropColumn:
		if step.DropColumn == nil {
			return nil, malformedStep(step.Type)
		}
		idx := schema.ColumnIndex(step.DropColumn.Name)
		if idx < 0 {
			return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeColumnNotFound,
				"column %q not found", step.DropColumn.Name)
		}
		schema.Columns = append(schema.Columns[:idx], schema.Columns[idx+1:]...)
		return schema, nil

	case wire.StepRenameColumn:
		if step.RenameColumn == nil {
			return nil, malformedStep(step.Type)
		}
		idx := schema.ColumnIndex(step.RenameColumn.OldName)
		if idx < 0 {
			return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeColumnNotFound,
				"column %q not found", step.RenameColumn.OldName)
		}
		if schema.ColumnIndex(step.RenameColumn.NewName) >= 0 {
			return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeColumnExists,
				"column %q already exists", step.RenameColumn.NewName)
		}
		schema.Columns[idx].Name = step.RenameColumn.NewName
		return schema, nil

	case wire.StepAlterColumn:
		if step.AlterColumn == nil {
			return nil, malformedStep(step.Type)
		}
		return applyColumnDelta(schema, &step.AlterColumn.Delta)

	case wire.StepAddRangePartition:
		if step.AddRangePartition == nil {
			return nil, malformedStep(step.Type)
		}
		return schema, c.insertRangePartition(ctx, tx, rec.TableID, schema, step.AddRangePartition)

	case wire.StepDropRangePartition:
		if step.DropRangePartition == nil {
			return nil, malformedStep(step.Type)
		}
		return schema, c.deleteRangePartition(ctx, tx, rec.TableID, step.DropRangePartition)

	default:
		return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeUnknownStep,
			"unknown step type %d", step.Type)
	}
}

// applyColumnDelta applies a generic column delta to the schema.
func applyColumnDelta(schema *types.Schema, delta *wire.ColumnDeltaPB) (*types.Schema, error) {
	idx := schema.ColumnIndex(delta.Name)
	if idx < 0 {
		return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeColumnNotFound,
			"column %q not found", delta.Name)
	}
	col := &schema.Columns[idx]

	if delta.NewName != nil {
		if schema.ColumnIndex(*delta.NewName) >= 0 {
			return nil, lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeColumnExists,
				"column %q already exists", *delta.NewName)
		}
		col.Name = *delta.NewName
	}
	if delta.DefaultValue != nil {
		v, _, err := wire.ConsumeCell(delta.DefaultValue, col.Type)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeDecodingFailed,
				fmt.Sprintf("decoding default for column %q", delta.Name), err)
		}
		col.Default = v
	}
	if delta.RemoveDefault {
		col.Default = nil
	}
	if delta.Encoding != nil {
		col.Encoding = types.EncodingType(*delta.Encoding)
	}
	if delta.Compression != nil {
		col.Compression = types.CompressionType(*delta.Compression)
	}
	if delta.BlockSize != nil {
		col.BlockSize = *delta.BlockSize
	}
	if delta.NewComment != nil {
		col.Comment = *delta.NewComment
	}
	return schema, nil
}

// insertRangePartition records a new range partition after verifying the
// bound pair decodes against the current schema.
func (c *SQLiteCatalog) insertRangePartition(ctx context.Context, tx *sql.Tx, tableID string, schema *types.Schema, add *wire.AddRangePartitionPB) error {
	if _, err := wire.DecodeRowOperations(add.RangeBounds.Rows, schema); err != nil {
		return lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeDecodingFailed,
			"decoding range bounds", err)
	}

	var hashJSON interface{}
	if len(add.CustomHashSchema) > 0 {
		raw, err := json.Marshal(add.CustomHashSchema)
		if err != nil {
			return fmt.Errorf("catalog: failed to marshal hash schema: %w", err)
		}
		hashJSON = string(raw)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO range_partitions (table_id, bounds_blob, hash_schema_json, dimension_label, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		tableID, add.RangeBounds.Rows, hashJSON, add.DimensionLabel, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("catalog: failed to insert range partition: %w", err)
	}
	return nil
}

// deleteRangePartition removes the partition whose stored bound pair matches
// the request's exactly.
func (c *SQLiteCatalog) deleteRangePartition(ctx context.Context, tx *sql.Tx, tableID string, drop *wire.DropRangePartitionPB) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM range_partitions WHERE table_id = ? AND bounds_blob = ?`,
		tableID, drop.RangeBounds.Rows)
	if err != nil {
		return fmt.Errorf("catalog: failed to delete range partition: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: failed to read delete result: %w", err)
	}
	if n == 0 {
		return lerrors.New(lerrors.ErrCategoryCatalog, lerrors.CodePartitionNotFound,
			"no range partition with the given bounds")
	}
	return nil
}

// propagateExternal publishes the table's metadata sidecar to the external
// catalog store. Propagation is best-effort and never fails the alteration
// itself.
func (c *SQLiteCatalog) propagateExternal(ctx context.Context, tableID string) {
	if c.external == nil {
		return
	}
	rec, err := c.GetTableByID(ctx, tableID)
	if err != nil {
		log.Printf("catalog: external propagation: failed to reload table %s: %v", tableID, err)
		return
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Printf("catalog: external propagation: failed to marshal table %s: %v", tableID, err)
		return
	}
	path := fmt.Sprintf("%stables/%s.json", c.externalPrefix, tableID)
	if err := c.external.Put(ctx, path, data); err != nil {
		log.Printf("catalog: external propagation: failed to publish %s: %v", path, err)
	}
}

func malformedStep(t wire.StepType) error {
	return lerrors.Newf(lerrors.ErrCategoryCatalog, lerrors.CodeUnknownStep,
		"step tagged %s carries no matching payload", t)
}
