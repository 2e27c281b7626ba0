package types

import (
	"errors"
	"testing"
)

func rowSchema() *Schema {
	return NewSchema(
		ColumnDef{Name: "id", Type: TypeInt64, PrimaryKey: true},
		ColumnDef{Name: "name", Type: TypeString},
		ColumnDef{Name: "active", Type: TypeBool, Nullable: true},
		ColumnDef{Name: "payload", Type: TypeBinary, Nullable: true},
	)
}

func TestPartialRowSetAndGet(t *testing.T) {
	row := NewPartialRow(rowSchema())

	if err := row.SetInt64("id", 42); err != nil {
		t.Fatalf("SetInt64 failed: %v", err)
	}
	if err := row.SetString("name", "alpha"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	if !row.IsSet(0) || !row.IsSet(1) {
		t.Error("set columns must report IsSet")
	}
	if row.IsSet(2) || row.IsSet(3) {
		t.Error("unset columns must not report IsSet")
	}

	v, ok := row.Value(0)
	if !ok || v.(int64) != 42 {
		t.Errorf("id: got %v/%v", v, ok)
	}
	if _, ok := row.Value(2); ok {
		t.Error("unset column must not return a value")
	}
}

func TestPartialRowUnknownColumn(t *testing.T) {
	row := NewPartialRow(rowSchema())
	err := row.SetInt64("missing", 1)
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestPartialRowTypeMismatch(t *testing.T) {
	row := NewPartialRow(rowSchema())

	if err := row.Set("id", "not an int"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if err := row.SetString("id", "still wrong"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("typed setter must enforce column type, got %v", err)
	}
	// A failed set must leave the column unset.
	if row.IsSet(0) {
		t.Error("failed assignment must not set the column")
	}
}

func TestPartialRowOverwrite(t *testing.T) {
	row := NewPartialRow(rowSchema())
	if err := row.SetInt64("id", 1); err != nil {
		t.Fatalf("SetInt64 failed: %v", err)
	}
	if err := row.SetInt64("id", 2); err != nil {
		t.Fatalf("SetInt64 overwrite failed: %v", err)
	}
	if v, _ := row.Value(0); v.(int64) != 2 {
		t.Errorf("expected overwritten value 2, got %v", v)
	}
}
