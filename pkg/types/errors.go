package types

import "errors"

// Row-related errors
var (
	// ErrUnknownColumn is returned when a column name does not exist in the schema
	ErrUnknownColumn = errors.New("unknown column")

	// ErrTypeMismatch is returned when a value's type does not match the column type
	ErrTypeMismatch = errors.New("value type mismatch")
)
