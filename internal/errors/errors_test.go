package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestLatticeError_Error(t *testing.T) {
	err := New(ErrCategoryAlter, CodeInvalidOption, "bad option")
	expected := "[ALTER:INVALID_OPTION] bad option"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestLatticeError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryTransport, CodeSendFailed, "alter table RPC", cause)
	expected := "[TRANSPORT:SEND_FAILED] alter table RPC: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestLatticeError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryCatalog, CodeTableNotFound, "loading table", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestLatticeError_Is(t *testing.T) {
	err1 := New(ErrCategoryAlter, CodeEmptyAlteration, "first")
	err2 := New(ErrCategoryAlter, CodeEmptyAlteration, "second")
	err3 := New(ErrCategoryAlter, CodeUnsupportedAlteration, "different code")
	err4 := New(ErrCategoryCatalog, CodeEmptyAlteration, "different category")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
	if errors.Is(err1, err4) {
		t.Error("errors with different categories should not match via Is")
	}
}

func TestLatticeError_IsThroughWrapping(t *testing.T) {
	inner := NoChangesRequested()
	outer := fmt.Errorf("building request: %w", inner)

	if !errors.Is(outer, NoChangesRequested()) {
		t.Error("matching should work through fmt.Errorf wrapping")
	}
	if GetCode(outer) != CodeNoChangesRequested {
		t.Errorf("GetCode through wrapping: got %q", GetCode(outer))
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		code      string
		retryable bool
	}{
		{ErrCategoryTransport, CodeSendFailed, true},
		{ErrCategoryAlter, CodeNoChangesRequested, false},
		{ErrCategoryAlter, CodeUnsupportedAlteration, false},
		{ErrCategoryWire, CodeEncodingFailed, false},
		{ErrCategoryCatalog, CodeTableNotFound, false},
		{ErrCategoryInternal, CodeInconsistency, false},
	}

	for _, tt := range tests {
		err := New(tt.category, tt.code, "test")
		if IsRetryable(err) != tt.retryable {
			t.Errorf("%s:%s retryable=%v, want %v", tt.category, tt.code, IsRetryable(err), tt.retryable)
		}
	}

	if IsRetryable(fmt.Errorf("plain error")) {
		t.Error("non-LatticeError should not be retryable")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryCatalog, CodePartitionNotFound, "no such partition")
	if GetCode(err) != CodePartitionNotFound {
		t.Errorf("got %q, want %q", GetCode(err), CodePartitionNotFound)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-LatticeError should return empty code")
	}
}

func TestConstructors(t *testing.T) {
	if err := NoChangesRequested(); err.Category != ErrCategoryAlter || err.Code != CodeNoChangesRequested {
		t.Error("NoChangesRequested mismatch")
	}
	if err := EmptyAlteration("c1"); err.Code != CodeEmptyAlteration {
		t.Error("EmptyAlteration mismatch")
	}
	if err := UnsupportedAlteration("c1"); err.Code != CodeUnsupportedAlteration {
		t.Error("UnsupportedAlteration mismatch")
	}
	if err := InternalInconsistency("broken"); err.Category != ErrCategoryInternal || err.Code != CodeInconsistency {
		t.Error("InternalInconsistency mismatch")
	}
}
