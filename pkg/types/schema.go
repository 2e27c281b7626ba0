// Package types provides core data types for the Lattice table service.
package types

import (
	"fmt"
	"strings"
)

// DataType identifies a column's value type.
type DataType int32

const (
	TypeBool DataType = iota + 1
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat
	TypeDouble
	TypeString
	TypeBinary
)

// String returns the canonical name of the data type.
func (t DataType) String() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeInt8:
		return "INT8"
	case TypeInt16:
		return "INT16"
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	case TypeBinary:
		return "BINARY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(t))
	}
}

// ParseDataType resolves a canonical type name, case-insensitively.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToUpper(name) {
	case "BOOL":
		return TypeBool, nil
	case "INT8":
		return TypeInt8, nil
	case "INT16":
		return TypeInt16, nil
	case "INT32":
		return TypeInt32, nil
	case "INT64":
		return TypeInt64, nil
	case "FLOAT":
		return TypeFloat, nil
	case "DOUBLE":
		return TypeDouble, nil
	case "STRING":
		return TypeString, nil
	case "BINARY":
		return TypeBinary, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", name)
	}
}

// EncodingType identifies a column's on-disk encoding.
type EncodingType int32

const (
	EncodingAuto EncodingType = iota
	EncodingPlain
	EncodingPrefix
	EncodingRunLength
	EncodingDictionary
	EncodingBitShuffle
)

// ParseEncodingType resolves an encoding name, case-insensitively.
func ParseEncodingType(name string) (EncodingType, error) {
	switch strings.ToUpper(name) {
	case "", "AUTO":
		return EncodingAuto, nil
	case "PLAIN":
		return EncodingPlain, nil
	case "PREFIX":
		return EncodingPrefix, nil
	case "RLE", "RUN_LENGTH":
		return EncodingRunLength, nil
	case "DICTIONARY", "DICT":
		return EncodingDictionary, nil
	case "BIT_SHUFFLE", "BITSHUFFLE":
		return EncodingBitShuffle, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", name)
	}
}

// CompressionType identifies a column's block compression codec.
type CompressionType int32

const (
	CompressionDefault CompressionType = iota
	CompressionNone
	CompressionSnappy
	CompressionLZ4
	CompressionZlib
)

// ParseCompressionType resolves a compression codec name, case-insensitively.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToUpper(name) {
	case "", "DEFAULT":
		return CompressionDefault, nil
	case "NONE":
		return CompressionNone, nil
	case "SNAPPY":
		return CompressionSnappy, nil
	case "LZ4":
		return CompressionLZ4, nil
	case "ZLIB":
		return CompressionZlib, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// ColumnDef defines a single column in a table schema.
type ColumnDef struct {
	// Name is the column name
	Name string `json:"name"`

	// Type is the column value type
	Type DataType `json:"type"`

	// Nullable indicates whether the column can contain NULL values
	Nullable bool `json:"nullable"`

	// PrimaryKey indicates whether this column is part of the primary key
	PrimaryKey bool `json:"primary_key"`

	// Encoding is the column encoding (EncodingAuto leaves the choice to the server)
	Encoding EncodingType `json:"encoding,omitempty"`

	// Compression is the block compression codec
	Compression CompressionType `json:"compression,omitempty"`

	// BlockSize is the desired block size in bytes (0 = server default)
	BlockSize int32 `json:"block_size,omitempty"`

	// Comment is the column comment
	Comment string `json:"comment,omitempty"`

	// Default is the write default value, nil when the column has none
	Default interface{} `json:"default,omitempty"`
}

// Schema defines the structure of a table.
type Schema struct {
	// Columns defines the columns in primary-key-first order
	Columns []ColumnDef `json:"columns"`
}

// NewSchema builds a schema from the given columns.
func NewSchema(columns ...ColumnDef) *Schema {
	return &Schema{Columns: columns}
}

// ColumnIndex returns the index of the named column, or -1 if absent.
func (s *Schema) ColumnIndex(name string) int {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column definition.
func (s *Schema) Column(name string) (*ColumnDef, error) {
	if i := s.ColumnIndex(name); i >= 0 {
		return &s.Columns[i], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// PrimaryKeyColumns returns the indexes of primary key columns in schema order.
func (s *Schema) PrimaryKeyColumns() []int {
	var keys []int
	for i := range s.Columns {
		if s.Columns[i].PrimaryKey {
			keys = append(keys, i)
		}
	}
	return keys
}
