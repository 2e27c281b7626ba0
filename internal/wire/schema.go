package wire

import (
	"fmt"

	"github.com/latticedb/lattice/pkg/types"
)

// ColumnToPB converts a column definition to its wire form, encoding the
// default value as a cell if one is present.
func ColumnToPB(col types.ColumnDef) (*ColumnPB, error) {
	pb := &ColumnPB{
		Name:        col.Name,
		Type:        int32(col.Type),
		Nullable:    col.Nullable,
		PrimaryKey:  col.PrimaryKey,
		Encoding:    int32(col.Encoding),
		Compression: int32(col.Compression),
		BlockSize:   col.BlockSize,
		Comment:     col.Comment,
	}
	if col.Default != nil {
		cell, err := AppendCell(nil, col.Type, col.Default)
		if err != nil {
			return nil, fmt.Errorf("wire: column %q default: %w", col.Name, err)
		}
		pb.DefaultValue = cell
	}
	return pb, nil
}

// ColumnFromPB converts a wire column back to a column definition.
func ColumnFromPB(pb *ColumnPB) (types.ColumnDef, error) {
	col := types.ColumnDef{
		Name:        pb.Name,
		Type:        types.DataType(pb.Type),
		Nullable:    pb.Nullable,
		PrimaryKey:  pb.PrimaryKey,
		Encoding:    types.EncodingType(pb.Encoding),
		Compression: types.CompressionType(pb.Compression),
		BlockSize:   pb.BlockSize,
		Comment:     pb.Comment,
	}
	if pb.DefaultValue != nil {
		v, _, err := ConsumeCell(pb.DefaultValue, col.Type)
		if err != nil {
			return types.ColumnDef{}, fmt.Errorf("wire: column %q default: %w", pb.Name, err)
		}
		col.Default = v
	}
	return col, nil
}

// SchemaToPB converts a full schema to its wire form.
func SchemaToPB(schema *types.Schema) (*SchemaPB, error) {
	pb := &SchemaPB{Columns: make([]*ColumnPB, 0, len(schema.Columns))}
	for _, col := range schema.Columns {
		cpb, err := ColumnToPB(col)
		if err != nil {
			return nil, err
		}
		pb.Columns = append(pb.Columns, cpb)
	}
	return pb, nil
}

// SchemaFromPB converts a wire schema back to a schema.
func SchemaFromPB(pb *SchemaPB) (*types.Schema, error) {
	schema := &types.Schema{Columns: make([]types.ColumnDef, 0, len(pb.Columns))}
	for _, cpb := range pb.Columns {
		col, err := ColumnFromPB(cpb)
		if err != nil {
			return nil, err
		}
		schema.Columns = append(schema.Columns, col)
	}
	return schema, nil
}
