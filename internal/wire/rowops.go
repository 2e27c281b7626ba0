package wire

import (
	"fmt"

	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/pkg/types"
)

// RowOperationType tags one entry in a row-operations buffer. Range bounds
// use four distinct types so the receiver never has to guess inclusivity.
type RowOperationType byte

const (
	OpRangeLowerBound          RowOperationType = 1 // inclusive lower bound
	OpExclusiveRangeLowerBound RowOperationType = 2
	OpRangeUpperBound          RowOperationType = 3 // exclusive upper bound
	OpInclusiveRangeUpperBound RowOperationType = 4
)

// String returns the wire name of the operation type.
func (t RowOperationType) String() string {
	switch t {
	case OpRangeLowerBound:
		return "RANGE_LOWER_BOUND"
	case OpExclusiveRangeLowerBound:
		return "EXCLUSIVE_RANGE_LOWER_BOUND"
	case OpRangeUpperBound:
		return "RANGE_UPPER_BOUND"
	case OpInclusiveRangeUpperBound:
		return "INCLUSIVE_RANGE_UPPER_BOUND"
	default:
		return "UNKNOWN"
	}
}

// RowOperationsEncoder serializes partial rows into the packed
// row-operations format. Each entry is the operation type byte, an isset
// bitmap over the schema's columns, then the set columns' values in schema
// order. Encoding is driven by the operation type alone; the same encoder
// serves both add and drop range-partition paths.
type RowOperationsEncoder struct {
	schema *types.Schema
	buf    []byte
}

// NewRowOperationsEncoder creates an encoder over the given schema.
func NewRowOperationsEncoder(schema *types.Schema) *RowOperationsEncoder {
	return &RowOperationsEncoder{schema: schema}
}

// Add appends one tagged row operation. The row must be defined over the
// encoder's schema; value-level validation already happened when the row was
// populated, so failures here surface the row codec's own errors unchanged.
func (e *RowOperationsEncoder) Add(op RowOperationType, row *types.PartialRow) error {
	if row == nil {
		return lerrors.New(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed, "nil bound row")
	}
	if row.Schema() != e.schema {
		return lerrors.New(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed,
			"bound row schema does not match encoder schema")
	}

	ncols := len(e.schema.Columns)
	e.buf = append(e.buf, byte(op))

	bitmapAt := len(e.buf)
	e.buf = append(e.buf, make([]byte, bitmapLen(ncols))...)

	for i := 0; i < ncols; i++ {
		v, ok := row.Value(i)
		if !ok {
			continue
		}
		e.buf[bitmapAt+i/8] |= 1 << uint(i%8)
		var err error
		e.buf, err = AppendCell(e.buf, e.schema.Columns[i].Type, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the accumulated row-operations buffer.
func (e *RowOperationsEncoder) Bytes() []byte {
	return e.buf
}

// DecodedRowOperation is one entry recovered from a row-operations buffer.
type DecodedRowOperation struct {
	Type RowOperationType
	Row  *types.PartialRow
}

// DecodeRowOperations unpacks every entry of a row-operations buffer against
// the given schema.
func DecodeRowOperations(buf []byte, schema *types.Schema) ([]DecodedRowOperation, error) {
	ncols := len(schema.Columns)
	bl := bitmapLen(ncols)

	var ops []DecodedRowOperation
	for len(buf) > 0 {
		op := RowOperationType(buf[0])
		buf = buf[1:]
		if len(buf) < bl {
			return nil, fmt.Errorf("wire: truncated row operation bitmap")
		}
		bitmap := buf[:bl]
		buf = buf[bl:]

		row := types.NewPartialRow(schema)
		for i := 0; i < ncols; i++ {
			if bitmap[i/8]&(1<<uint(i%8)) == 0 {
				continue
			}
			col := &schema.Columns[i]
			v, n, err := ConsumeCell(buf, col.Type)
			if err != nil {
				return nil, fmt.Errorf("wire: row operation column %q: %w", col.Name, err)
			}
			buf = buf[n:]
			if err := row.Set(col.Name, v); err != nil {
				return nil, err
			}
		}
		ops = append(ops, DecodedRowOperation{Type: op, Row: row})
	}
	return ops, nil
}

func bitmapLen(ncols int) int {
	return (ncols + 7) / 8
}
