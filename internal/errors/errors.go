// Package errors provides structured error types for the Lattice client.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryAlter     ErrorCategory = "ALTER"
	ErrCategoryWire      ErrorCategory = "WIRE"
	ErrCategoryCatalog   ErrorCategory = "CATALOG"
	ErrCategoryTransport ErrorCategory = "TRANSPORT"
	ErrCategoryInternal  ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Alter codes
	CodeNoChangesRequested    = "NO_CHANGES_REQUESTED"
	CodeEmptyAlteration       = "EMPTY_ALTERATION"
	CodeUnsupportedAlteration = "UNSUPPORTED_ALTERATION"
	CodeInvalidOption         = "INVALID_OPTION"

	// Wire codes
	CodeEncodingFailed = "ENCODING_FAILED"
	CodeDecodingFailed = "DECODING_FAILED"

	// Catalog codes
	CodeTableNotFound     = "TABLE_NOT_FOUND"
	CodeColumnNotFound    = "COLUMN_NOT_FOUND"
	CodeColumnExists      = "COLUMN_EXISTS"
	CodePartitionNotFound = "PARTITION_NOT_FOUND"
	CodeTableExists       = "TABLE_EXISTS"
	CodeUnknownStep       = "UNKNOWN_STEP"

	// Transport codes
	CodeSendFailed = "SEND_FAILED"

	// Internal codes
	CodeInconsistency = "INCONSISTENCY"
)

// LatticeError is the structured error type used throughout the client.
type LatticeError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *LatticeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *LatticeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *LatticeError) Is(target error) bool {
	var t *LatticeError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new LatticeError.
func New(category ErrorCategory, code, message string) *LatticeError {
	return &LatticeError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category),
	}
}

// Newf creates a new LatticeError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *LatticeError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new LatticeError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *LatticeError {
	return &LatticeError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category),
	}
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var le *LatticeError
	if errors.As(err, &le) {
		return le.Retryable
	}
	return false
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a LatticeError.
func GetCode(err error) string {
	var le *LatticeError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// isRetryable determines if an error category is retryable. Only transport
// failures are; validation and encoding failures never resolve on retry.
func isRetryable(category ErrorCategory) bool {
	return category == ErrCategoryTransport
}

// Sentinel values for errors.Is matching: a LatticeError matches another
// with the same category and code regardless of message.

func NoChangesRequested() *LatticeError {
	return New(ErrCategoryAlter, CodeNoChangesRequested, "no alter steps provided")
}

func EmptyAlteration(column string) *LatticeError {
	return Newf(ErrCategoryAlter, CodeEmptyAlteration, "no alter operation specified for column %q", column)
}

func UnsupportedAlteration(column string) *LatticeError {
	return Newf(ErrCategoryAlter, CodeUnsupportedAlteration, "unsupported alter operation for column %q", column)
}

func InternalInconsistency(message string) *LatticeError {
	return New(ErrCategoryInternal, CodeInconsistency, message)
}
