package alter

import (
	"testing"

	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
	"github.com/latticedb/lattice/pkg/types"
)

func rangeSchema() *types.Schema {
	return types.NewSchema(
		types.ColumnDef{Name: "ts", Type: types.TypeInt64, PrimaryKey: true},
		types.ColumnDef{Name: "host", Type: types.TypeString, PrimaryKey: true},
	)
}

func boundPair(t *testing.T, schema *types.Schema, lo, hi int64) (*types.PartialRow, *types.PartialRow) {
	t.Helper()
	lower := types.NewPartialRow(schema)
	upper := types.NewPartialRow(schema)
	if err := lower.SetInt64("ts", lo); err != nil {
		t.Fatalf("set lower: %v", err)
	}
	if err := upper.SetInt64("ts", hi); err != nil {
		t.Fatalf("set upper: %v", err)
	}
	return lower, upper
}

func TestAddRangePartitionBounds(t *testing.T) {
	schema := rangeSchema()
	lower, upper := boundPair(t, schema, 100, 200)

	req, err := NewTableAlterer("t1").
		AddRangePartition(NewRangePartition(lower, upper)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	step := req.Steps[0]
	if step.Type != wire.StepAddRangePartition {
		t.Fatalf("expected ADD_RANGE_PARTITION, got %s", step.Type)
	}

	ops, err := wire.DecodeRowOperations(step.AddRangePartition.RangeBounds.Rows, schema)
	if err != nil {
		t.Fatalf("DecodeRowOperations failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("bound buffer must hold exactly 2 entries, got %d", len(ops))
	}
	if ops[0].Type != wire.OpRangeLowerBound {
		t.Errorf("first entry must be the lower bound, got %s", ops[0].Type)
	}
	if ops[1].Type != wire.OpRangeUpperBound {
		t.Errorf("second entry must be the upper bound, got %s", ops[1].Type)
	}
	if v, _ := ops[0].Row.Value(0); v.(int64) != 100 {
		t.Errorf("lower bound value: expected 100, got %v", v)
	}
	if v, _ := ops[1].Row.Value(0); v.(int64) != 200 {
		t.Errorf("upper bound value: expected 200, got %v", v)
	}
}

func TestExplicitBoundKinds(t *testing.T) {
	schema := rangeSchema()
	lower, upper := boundPair(t, schema, 1, 2)

	req, err := NewTableAlterer("t1").
		AddRangePartition(NewRangePartitionWithBounds(lower, upper, ExclusiveBound, InclusiveBound)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ops, err := wire.DecodeRowOperations(req.Steps[0].AddRangePartition.RangeBounds.Rows, schema)
	if err != nil {
		t.Fatalf("DecodeRowOperations failed: %v", err)
	}
	if ops[0].Type != wire.OpExclusiveRangeLowerBound {
		t.Errorf("expected EXCLUSIVE_RANGE_LOWER_BOUND, got %s", ops[0].Type)
	}
	if ops[1].Type != wire.OpInclusiveRangeUpperBound {
		t.Errorf("expected INCLUSIVE_RANGE_UPPER_BOUND, got %s", ops[1].Type)
	}
}

func TestUnboundedRangePartition(t *testing.T) {
	schema := rangeSchema()
	lower := types.NewPartialRow(schema)
	upper := types.NewPartialRow(schema)

	req, err := NewTableAlterer("t1").
		AddRangePartition(NewRangePartition(lower, upper)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ops, err := wire.DecodeRowOperations(req.Steps[0].AddRangePartition.RangeBounds.Rows, schema)
	if err != nil {
		t.Fatalf("DecodeRowOperations failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 entries even for open bounds, got %d", len(ops))
	}
	if ops[0].Row.IsSet(0) || ops[0].Row.IsSet(1) {
		t.Error("open lower bound must carry no cells")
	}
}

func TestHashDimensionsPreserved(t *testing.T) {
	schema := rangeSchema()
	lower, upper := boundPair(t, schema, 1, 2)

	p := NewRangePartition(lower, upper).
		AddHashDimension([]string{"ts"}, 4, 0).
		AddHashDimension([]string{"host"}, 8, 99).
		SetDimensionLabel("by-day")

	req, err := NewTableAlterer("t1").AddRangePartition(p).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	add := req.Steps[0].AddRangePartition
	if len(add.CustomHashSchema) != 2 {
		t.Fatalf("expected 2 hash dimensions, got %d", len(add.CustomHashSchema))
	}
	d0, d1 := add.CustomHashSchema[0], add.CustomHashSchema[1]
	if d0.Columns[0] != "ts" || d0.NumBuckets != 4 || d0.Seed != 0 {
		t.Errorf("dimension 0 mangled: %+v", d0)
	}
	if d1.Columns[0] != "host" || d1.NumBuckets != 8 || d1.Seed != 99 {
		t.Errorf("dimension 1 mangled: %+v", d1)
	}
	if add.DimensionLabel == nil || *add.DimensionLabel != "by-day" {
		t.Errorf("expected label by-day, got %v", add.DimensionLabel)
	}
}

func TestDropRangePartitionCarriesOnlyBounds(t *testing.T) {
	schema := rangeSchema()
	lower, upper := boundPair(t, schema, 1, 2)

	// Hash schema and label set on a dropped partition are ignored.
	p := NewRangePartition(lower, upper).
		AddHashDimension([]string{"ts"}, 4, 0).
		SetDimensionLabel("stale")

	req, err := NewTableAlterer("t1").DropRangePartition(p).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	step := req.Steps[0]
	if step.Type != wire.StepDropRangePartition {
		t.Fatalf("expected DROP_RANGE_PARTITION, got %s", step.Type)
	}
	if step.AddRangePartition != nil {
		t.Error("drop step must not populate the add payload")
	}
	ops, err := wire.DecodeRowOperations(step.DropRangePartition.RangeBounds.Rows, schema)
	if err != nil {
		t.Fatalf("DecodeRowOperations failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 bound entries, got %d", len(ops))
	}
}

func TestAddAndDropBoundsEncodeIdentically(t *testing.T) {
	schema := rangeSchema()

	mk := func() *RangePartition {
		lower, upper := boundPair(t, schema, 10, 20)
		return NewRangePartition(lower, upper)
	}

	addReq, err := NewTableAlterer("t1").AddRangePartition(mk()).Build()
	if err != nil {
		t.Fatalf("Build add failed: %v", err)
	}
	dropReq, err := NewTableAlterer("t1").DropRangePartition(mk()).Build()
	if err != nil {
		t.Fatalf("Build drop failed: %v", err)
	}

	addBounds := addReq.Steps[0].AddRangePartition.RangeBounds.Rows
	dropBounds := dropReq.Steps[0].DropRangePartition.RangeBounds.Rows
	if string(addBounds) != string(dropBounds) {
		t.Error("identical bound pairs must encode identically for add and drop")
	}
}

func TestMissingBoundRowFailsBuild(t *testing.T) {
	schema := rangeSchema()
	lower := types.NewPartialRow(schema)

	_, err := NewTableAlterer("t1").
		AddRangePartition(NewRangePartition(lower, nil)).
		Build()
	if lerrors.GetCode(err) != lerrors.CodeEncodingFailed {
		t.Errorf("expected ENCODING_FAILED, got %v", err)
	}
}

func TestMismatchedBoundSchemasFailBuild(t *testing.T) {
	lower := types.NewPartialRow(rangeSchema())
	upper := types.NewPartialRow(rangeSchema())

	_, err := NewTableAlterer("t1").
		AddRangePartition(NewRangePartition(lower, upper)).
		Build()
	if lerrors.GetCode(err) != lerrors.CodeEncodingFailed {
		t.Errorf("expected ENCODING_FAILED for differing schema instances, got %v", err)
	}
}

func TestInvalidHashSchemaLatches(t *testing.T) {
	schema := rangeSchema()
	lower, upper := boundPair(t, schema, 1, 2)

	a := NewTableAlterer("t1").
		AddRangePartition(NewRangePartition(lower, upper).AddHashDimension(nil, 4, 0))
	if a.Err() == nil {
		t.Fatal("expected latched error for dimension without columns")
	}

	a = NewTableAlterer("t1").
		AddRangePartition(NewRangePartition(lower, upper).AddHashDimension([]string{"ts"}, 0, 0))
	_, err := a.Build()
	if lerrors.GetCode(err) != lerrors.CodeInvalidOption {
		t.Errorf("expected INVALID_OPTION for zero buckets, got %v", err)
	}
}
