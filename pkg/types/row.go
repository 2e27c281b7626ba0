package types

import "fmt"

// PartialRow is a sparse assignment of column values over a schema.
// Only the columns that have been explicitly set carry a value; all other
// columns are absent, which is distinct from an explicit NULL.
type PartialRow struct {
	schema *Schema
	values map[int]interface{}
}

// NewPartialRow creates an empty partial row over the given schema.
func NewPartialRow(schema *Schema) *PartialRow {
	return &PartialRow{
		schema: schema,
		values: make(map[int]interface{}),
	}
}

// Schema returns the schema the row is defined over.
func (r *PartialRow) Schema() *Schema {
	return r.schema
}

// IsSet reports whether the column at the given index has been assigned.
func (r *PartialRow) IsSet(idx int) bool {
	_, ok := r.values[idx]
	return ok
}

// Value returns the assigned value for the column at the given index.
func (r *PartialRow) Value(idx int) (interface{}, bool) {
	v, ok := r.values[idx]
	return v, ok
}

// Set assigns a value to the named column after checking that the column
// exists and the value's Go type matches the column's data type.
func (r *PartialRow) Set(name string, value interface{}) error {
	idx := r.schema.ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	col := &r.schema.Columns[idx]
	if err := checkValueType(col.Type, value); err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}
	r.values[idx] = value
	return nil
}

// Typed setters mirroring the column data types.

func (r *PartialRow) SetBool(name string, v bool) error      { return r.Set(name, v) }
func (r *PartialRow) SetInt8(name string, v int8) error      { return r.Set(name, v) }
func (r *PartialRow) SetInt16(name string, v int16) error    { return r.Set(name, v) }
func (r *PartialRow) SetInt32(name string, v int32) error    { return r.Set(name, v) }
func (r *PartialRow) SetInt64(name string, v int64) error    { return r.Set(name, v) }
func (r *PartialRow) SetFloat(name string, v float32) error  { return r.Set(name, v) }
func (r *PartialRow) SetDouble(name string, v float64) error { return r.Set(name, v) }
func (r *PartialRow) SetString(name string, v string) error  { return r.Set(name, v) }
func (r *PartialRow) SetBinary(name string, v []byte) error  { return r.Set(name, v) }

// checkValueType verifies that the Go value matches the column data type.
func checkValueType(t DataType, value interface{}) error {
	var ok bool
	switch t {
	case TypeBool:
		_, ok = value.(bool)
	case TypeInt8:
		_, ok = value.(int8)
	case TypeInt16:
		_, ok = value.(int16)
	case TypeInt32:
		_, ok = value.(int32)
	case TypeInt64:
		_, ok = value.(int64)
	case TypeFloat:
		_, ok = value.(float32)
	case TypeDouble:
		_, ok = value.(float64)
	case TypeString:
		_, ok = value.(string)
	case TypeBinary:
		_, ok = value.([]byte)
	}
	if !ok {
		return fmt.Errorf("%w: got %T, want %s", ErrTypeMismatch, value, t)
	}
	return nil
}
