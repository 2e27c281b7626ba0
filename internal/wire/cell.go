package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/latticedb/lattice/pkg/types"
)

// AppendCell appends the wire form of a single column value. Fixed-width
// values are little-endian; strings and binary are varint-length-prefixed.
// The value must already match the column type (PartialRow enforces this on
// assignment), so a mismatch here is reported as a type mismatch too.
func AppendCell(buf []byte, t types.DataType, value interface{}) ([]byte, error) {
	switch t {
	case types.TypeBool:
		v, ok := value.(bool)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		if v {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case types.TypeInt8:
		v, ok := value.(int8)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		return append(buf, byte(v)), nil
	case types.TypeInt16:
		v, ok := value.(int16)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		return binary.LittleEndian.AppendUint16(buf, uint16(v)), nil
	case types.TypeInt32:
		v, ok := value.(int32)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		return binary.LittleEndian.AppendUint32(buf, uint32(v)), nil
	case types.TypeInt64:
		v, ok := value.(int64)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		return binary.LittleEndian.AppendUint64(buf, uint64(v)), nil
	case types.TypeFloat:
		v, ok := value.(float32)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v)), nil
	case types.TypeDouble:
		v, ok := value.(float64)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v)), nil
	case types.TypeString:
		v, ok := value.(string)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		buf = protowire.AppendVarint(buf, uint64(len(v)))
		return append(buf, v...), nil
	case types.TypeBinary:
		v, ok := value.([]byte)
		if !ok {
			return nil, cellTypeError(t, value)
		}
		buf = protowire.AppendVarint(buf, uint64(len(v)))
		return append(buf, v...), nil
	default:
		return nil, fmt.Errorf("wire: unhandled data type %s", t)
	}
}

// ConsumeCell decodes a single column value from buf, returning the value
// and the number of bytes consumed.
func ConsumeCell(buf []byte, t types.DataType) (interface{}, int, error) {
	switch t {
	case types.TypeBool:
		if len(buf) < 1 {
			return nil, 0, errCellTruncated(t)
		}
		return buf[0] != 0, 1, nil
	case types.TypeInt8:
		if len(buf) < 1 {
			return nil, 0, errCellTruncated(t)
		}
		return int8(buf[0]), 1, nil
	case types.TypeInt16:
		if len(buf) < 2 {
			return nil, 0, errCellTruncated(t)
		}
		return int16(binary.LittleEndian.Uint16(buf)), 2, nil
	case types.TypeInt32:
		if len(buf) < 4 {
			return nil, 0, errCellTruncated(t)
		}
		return int32(binary.LittleEndian.Uint32(buf)), 4, nil
	case types.TypeInt64:
		if len(buf) < 8 {
			return nil, 0, errCellTruncated(t)
		}
		return int64(binary.LittleEndian.Uint64(buf)), 8, nil
	case types.TypeFloat:
		if len(buf) < 4 {
			return nil, 0, errCellTruncated(t)
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(buf)), 4, nil
	case types.TypeDouble:
		if len(buf) < 8 {
			return nil, 0, errCellTruncated(t)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), 8, nil
	case types.TypeString:
		n, m := protowire.ConsumeVarint(buf)
		if m < 0 || uint64(len(buf)-m) < n {
			return nil, 0, errCellTruncated(t)
		}
		return string(buf[m : m+int(n)]), m + int(n), nil
	case types.TypeBinary:
		n, m := protowire.ConsumeVarint(buf)
		if m < 0 || uint64(len(buf)-m) < n {
			return nil, 0, errCellTruncated(t)
		}
		out := make([]byte, n)
		copy(out, buf[m:m+int(n)])
		return out, m + int(n), nil
	default:
		return nil, 0, fmt.Errorf("wire: unhandled data type %s", t)
	}
}

// CellTypeOf infers the column data type a Go value encodes as. Used when a
// value arrives without an accompanying schema, e.g. column defaults in a
// delta for a column whose definition the client never fetched.
func CellTypeOf(value interface{}) (types.DataType, bool) {
	switch value.(type) {
	case bool:
		return types.TypeBool, true
	case int8:
		return types.TypeInt8, true
	case int16:
		return types.TypeInt16, true
	case int32:
		return types.TypeInt32, true
	case int64:
		return types.TypeInt64, true
	case float32:
		return types.TypeFloat, true
	case float64:
		return types.TypeDouble, true
	case string:
		return types.TypeString, true
	case []byte:
		return types.TypeBinary, true
	default:
		return 0, false
	}
}

func cellTypeError(t types.DataType, value interface{}) error {
	return fmt.Errorf("%w: got %T, want %s", types.ErrTypeMismatch, value, t)
}

func errCellTruncated(t types.DataType) error {
	return fmt.Errorf("wire: truncated %s value", t)
}
