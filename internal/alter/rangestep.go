package alter

import (
	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
)

// encodeRangeBounds serializes the partition's lower then upper bound, in
// that order, into a fresh row-operations buffer. The operation type carries
// the bound kind; whether the bounds define a new partition or identify one
// to drop is decided by the enclosing step, not here.
func encodeRangeBounds(p *RangePartition) (wire.RowOperationsPB, error) {
	if p == nil || p.lower == nil || p.upper == nil {
		return wire.RowOperationsPB{}, lerrors.New(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed,
			"range partition requires both bound rows")
	}
	if p.lower.Schema() != p.upper.Schema() {
		return wire.RowOperationsPB{}, lerrors.New(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed,
			"range partition bound rows use different schemas")
	}

	lowerOp := wire.OpRangeLowerBound
	if p.lowerKind == ExclusiveBound {
		lowerOp = wire.OpExclusiveRangeLowerBound
	}
	upperOp := wire.OpRangeUpperBound
	if p.upperKind == InclusiveBound {
		upperOp = wire.OpInclusiveRangeUpperBound
	}

	enc := wire.NewRowOperationsEncoder(p.lower.Schema())
	if err := enc.Add(lowerOp, p.lower); err != nil {
		return wire.RowOperationsPB{}, err
	}
	if err := enc.Add(upperOp, p.upper); err != nil {
		return wire.RowOperationsPB{}, err
	}
	return wire.RowOperationsPB{Rows: enc.Bytes()}, nil
}

// compileAddRangePartition builds an ADD_RANGE_PARTITION step: encoded bound
// pair, the hash dimensions in caller order, and the optional label.
func compileAddRangePartition(p *RangePartition) (*wire.AlterStep, error) {
	bounds, err := encodeRangeBounds(p)
	if err != nil {
		return nil, err
	}

	add := &wire.AddRangePartitionPB{
		RangeBounds:    bounds,
		DimensionLabel: p.dimensionLabel,
	}
	for _, dim := range p.hashSchema {
		add.CustomHashSchema = append(add.CustomHashSchema, &wire.HashDimensionPB{
			Columns:    append([]string(nil), dim.ColumnNames...),
			NumBuckets: dim.NumBuckets,
			Seed:       dim.Seed,
		})
	}

	return &wire.AlterStep{
		Type:              wire.StepAddRangePartition,
		AddRangePartition: add,
	}, nil
}

// compileDropRangePartition builds a DROP_RANGE_PARTITION step. Hash schema
// and dimension label are add-only concepts and never appear here, whatever
// the caller set on the partition value.
func compileDropRangePartition(p *RangePartition) (*wire.AlterStep, error) {
	bounds, err := encodeRangeBounds(p)
	if err != nil {
		return nil, err
	}
	return &wire.AlterStep{
		Type:               wire.StepDropRangePartition,
		DropRangePartition: &wire.DropRangePartitionPB{RangeBounds: bounds},
	}, nil
}

// validateHashSchema checks the append-time invariants of a custom hash
// schema: every dimension names at least one column and buckets at least one
// bucket. Cross-dimension column disjointness is the caller's precondition
// and is enforced by the service.
func validateHashSchema(dims []HashDimension) error {
	for i, dim := range dims {
		if len(dim.ColumnNames) == 0 {
			return lerrors.Newf(lerrors.ErrCategoryAlter, lerrors.CodeInvalidOption,
				"hash dimension %d names no columns", i)
		}
		if dim.NumBuckets < 1 {
			return lerrors.Newf(lerrors.ErrCategoryAlter, lerrors.CodeInvalidOption,
				"hash dimension %d has %d buckets, need at least 1", i, dim.NumBuckets)
		}
	}
	return nil
}
