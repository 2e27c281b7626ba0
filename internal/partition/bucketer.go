// Package partition computes hash-bucket placement for rows under a custom
// hash schema. Clients use it to locate the partition a key row lands in
// without a round trip to the metadata service.
package partition

import (
	"fmt"

	"github.com/spaolacci/murmur3"

	"github.com/latticedb/lattice/internal/alter"
	"github.com/latticedb/lattice/internal/wire"
	"github.com/latticedb/lattice/pkg/types"
)

// Bucket returns the bucket index a row falls into for one hash dimension.
// Every column the dimension names must be set on the row. The hash input is
// the dimension's column values encoded in dimension order, so placement is
// stable across processes.
func Bucket(dim alter.HashDimension, row *types.PartialRow) (int32, error) {
	if dim.NumBuckets < 1 {
		return 0, fmt.Errorf("partition: dimension has %d buckets, need at least 1", dim.NumBuckets)
	}

	schema := row.Schema()
	var buf []byte
	for _, name := range dim.ColumnNames {
		idx := schema.ColumnIndex(name)
		if idx < 0 {
			return 0, fmt.Errorf("partition: %w: %q", types.ErrUnknownColumn, name)
		}
		v, ok := row.Value(idx)
		if !ok {
			return 0, fmt.Errorf("partition: hash column %q is not set", name)
		}
		var err error
		buf, err = wire.AppendCell(buf, schema.Columns[idx].Type, v)
		if err != nil {
			return 0, err
		}
	}

	h := murmur3.Sum32WithSeed(buf, dim.Seed)
	return int32(h % uint32(dim.NumBuckets)), nil
}

// BucketVector returns the per-dimension bucket indexes for a row under a
// full hash schema, preserving dimension order.
func BucketVector(dims []alter.HashDimension, row *types.PartialRow) ([]int32, error) {
	out := make([]int32, 0, len(dims))
	for _, dim := range dims {
		b, err := Bucket(dim, row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
