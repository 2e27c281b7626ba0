package alter

import (
	"errors"
	"testing"

	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
	"github.com/latticedb/lattice/pkg/types"
)

func TestBuildNoChangesRequested(t *testing.T) {
	_, err := NewTableAlterer("t1").Build()
	if err == nil {
		t.Fatal("expected error for alterer with no changes")
	}
	if lerrors.GetCode(err) != lerrors.CodeNoChangesRequested {
		t.Errorf("expected NO_CHANGES_REQUESTED, got %v", err)
	}
}

func TestBuildRenameTableOnly(t *testing.T) {
	req, err := NewTableAlterer("t1").RenameTo("t2").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.NewTableName == nil || *req.NewTableName != "t2" {
		t.Errorf("expected new table name t2, got %v", req.NewTableName)
	}
	if len(req.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(req.Steps))
	}
}

func TestBuildAddColumn(t *testing.T) {
	req, err := NewTableAlterer("t1").
		AddColumn(types.ColumnDef{Name: "c1", Type: types.TypeInt32, Nullable: true}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if req.Table.TableName != "t1" {
		t.Errorf("expected table name t1, got %q", req.Table.TableName)
	}
	if !req.ModifyExternalCatalogs {
		t.Error("external catalog propagation should default to on")
	}
	if len(req.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(req.Steps))
	}

	step := req.Steps[0]
	if step.Type != wire.StepAddColumn {
		t.Fatalf("expected ADD_COLUMN, got %s", step.Type)
	}
	if step.AddColumn == nil {
		t.Fatal("ADD_COLUMN step missing payload")
	}
	if got := step.AddColumn.Schema; got.Name != "c1" || got.Type != int32(types.TypeInt32) || !got.Nullable {
		t.Errorf("unexpected column payload: %+v", got)
	}
}

func TestRenameColumnUsesLegacyStep(t *testing.T) {
	req, err := NewTableAlterer("t1").RenameColumn("old", "new").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(req.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(req.Steps))
	}

	step := req.Steps[0]
	if step.Type != wire.StepRenameColumn {
		t.Fatalf("rename-only delta must compile to RENAME_COLUMN, got %s", step.Type)
	}
	if step.AlterColumn != nil {
		t.Error("rename-only delta must not populate the generic payload")
	}
	if step.RenameColumn.OldName != "old" || step.RenameColumn.NewName != "new" {
		t.Errorf("unexpected rename payload: %+v", step.RenameColumn)
	}
}

func TestRenameWithOtherChangesStaysGeneric(t *testing.T) {
	newName := "new"
	comment := "renamed and documented"
	req, err := NewTableAlterer("t1").
		AlterColumn("old", ColumnDelta{RenameTo: &newName, Comment: &comment}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	step := req.Steps[0]
	if step.Type != wire.StepAlterColumn {
		t.Fatalf("rename plus comment must compile to ALTER_COLUMN, got %s", step.Type)
	}
	delta := step.AlterColumn.Delta
	if delta.Name != "old" {
		t.Errorf("expected delta name old, got %q", delta.Name)
	}
	if delta.NewName == nil || *delta.NewName != "new" {
		t.Errorf("rename must survive in the generic delta, got %v", delta.NewName)
	}
	if delta.NewComment == nil || *delta.NewComment != comment {
		t.Errorf("comment must survive in the generic delta, got %v", delta.NewComment)
	}
}

func TestAlterColumnEmptyDelta(t *testing.T) {
	_, err := NewTableAlterer("t1").AlterColumn("c1", ColumnDelta{}).Build()
	if lerrors.GetCode(err) != lerrors.CodeEmptyAlteration {
		t.Errorf("expected EMPTY_ALTERATION, got %v", err)
	}
}

func TestAlterColumnUnsupportedFields(t *testing.T) {
	newType := types.TypeInt64
	nullable := true
	pk := true
	rename := "n"

	cases := []struct {
		name  string
		delta ColumnDelta
	}{
		{"type change", ColumnDelta{Type: &newType}},
		{"nullability change", ColumnDelta{Nullable: &nullable}},
		{"primary key change", ColumnDelta{PrimaryKey: &pk}},
		{"type change bundled with rename", ColumnDelta{RenameTo: &rename, Type: &newType}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTableAlterer("t1").AlterColumn("c1", tc.delta).Build()
			if lerrors.GetCode(err) != lerrors.CodeUnsupportedAlteration {
				t.Errorf("expected UNSUPPORTED_ALTERATION, got %v", err)
			}
		})
	}
}

func TestAlterColumnDefaultEncoded(t *testing.T) {
	req, err := NewTableAlterer("t1").
		AlterColumn("c1", ColumnDelta{DefaultValue: int32(42)}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	delta := req.Steps[0].AlterColumn.Delta
	if len(delta.DefaultValue) != 4 {
		t.Fatalf("expected 4-byte INT32 cell, got %d bytes", len(delta.DefaultValue))
	}
	v, _, err := wire.ConsumeCell(delta.DefaultValue, types.TypeInt32)
	if err != nil {
		t.Fatalf("ConsumeCell failed: %v", err)
	}
	if v.(int32) != 42 {
		t.Errorf("expected default 42, got %v", v)
	}
}

func TestStepOrderPreserved(t *testing.T) {
	req, err := NewTableAlterer("t1").
		AddColumn(types.ColumnDef{Name: "a", Type: types.TypeInt32}).
		DropColumn("b").
		RenameColumn("c", "d").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []wire.StepType{wire.StepAddColumn, wire.StepDropColumn, wire.StepRenameColumn}
	if len(req.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(req.Steps))
	}
	for i, w := range want {
		if req.Steps[i].Type != w {
			t.Errorf("step %d: expected %s, got %s", i, w, req.Steps[i].Type)
		}
	}

	// Reversed intent order must yield the reversed wire order.
	req2, err := NewTableAlterer("t1").
		DropColumn("b").
		AddColumn(types.ColumnDef{Name: "a", Type: types.TypeInt32}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req2.Steps[0].Type != wire.StepDropColumn || req2.Steps[1].Type != wire.StepAddColumn {
		t.Errorf("step order not preserved: %s, %s", req2.Steps[0].Type, req2.Steps[1].Type)
	}
}

func TestFirstErrorLatched(t *testing.T) {
	a := NewTableAlterer("t1").
		SetReplicationFactor(0).
		SetDiskSizeLimit(-1).
		AddColumn(types.ColumnDef{Name: "c1", Type: types.TypeInt32})

	if a.Err() == nil {
		t.Fatal("expected latched error")
	}

	_, err := a.Build()
	if lerrors.GetCode(err) != lerrors.CodeInvalidOption {
		t.Fatalf("expected INVALID_OPTION, got %v", err)
	}
	// The first failure wins, not the later disk size one.
	var le *lerrors.LatticeError
	if !errors.As(err, &le) {
		t.Fatalf("expected LatticeError, got %T", err)
	}
	if got := le.Message; got != "replication factor 0 must be positive" {
		t.Errorf("expected the first recorded failure, got %q", got)
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	a := NewTableAlterer("t1").
		RenameTo("t2").
		AlterExtraConfigs(map[string]string{"k": "v"}).
		AddColumn(types.ColumnDef{Name: "c1", Type: types.TypeString})

	req1, err := a.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	req2, err := a.Build()
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	b1, b2 := req1.Marshal(), req2.Marshal()
	if string(b1) != string(b2) {
		t.Error("repeated Build produced different wire bytes")
	}

	// The requests are independent; mutating one leaves the other intact.
	req1.NewExtraConfigs["k"] = "mutated"
	if req2.NewExtraConfigs["k"] != "v" {
		t.Error("requests share extra config storage")
	}
}

func TestExtraConfigsMergeAndReset(t *testing.T) {
	req, err := NewTableAlterer("t1").
		AlterExtraConfigs(map[string]string{"a": "1", "b": "2"}).
		AlterExtraConfigs(map[string]string{"b": "3", "c": ""}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := map[string]string{"a": "1", "b": "3", "c": ""}
	if len(req.NewExtraConfigs) != len(want) {
		t.Fatalf("expected %d configs, got %d", len(want), len(req.NewExtraConfigs))
	}
	for k, v := range want {
		if req.NewExtraConfigs[k] != v {
			t.Errorf("config %q: expected %q, got %q", k, v, req.NewExtraConfigs[k])
		}
	}
}

func TestModifyExternalCatalogsOptOut(t *testing.T) {
	req, err := NewTableAlterer("t1").
		ModifyExternalCatalogs(false).
		RenameTo("t2").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.ModifyExternalCatalogs {
		t.Error("expected external catalog propagation off")
	}
}

func TestByIDTakesPrecedenceInIdentifier(t *testing.T) {
	req, err := NewTableAlterer("t1").ByID("abc-123").RenameTo("t2").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Table.TableID != "abc-123" || req.Table.TableName != "t1" {
		t.Errorf("unexpected identifier: %+v", req.Table)
	}
}

func TestReplaceSchema(t *testing.T) {
	schema := types.NewSchema(
		types.ColumnDef{Name: "id", Type: types.TypeInt64, PrimaryKey: true},
		types.ColumnDef{Name: "val", Type: types.TypeString, Nullable: true},
	)
	req, err := NewTableAlterer("t1").ReplaceSchema(schema).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.Schema == nil || len(req.Schema.Columns) != 2 {
		t.Fatalf("expected 2-column replacement schema, got %+v", req.Schema)
	}
	if req.Schema.Columns[0].Name != "id" || !req.Schema.Columns[0].PrimaryKey {
		t.Errorf("unexpected first column: %+v", req.Schema.Columns[0])
	}
}
