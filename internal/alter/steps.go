// Package alter compiles declarative table-alteration intentions into a
// single AlterTableRequest for the Lattice metadata service. The TableAlterer
// accumulates an ordered step list plus table-level options, validates them,
// and emits the request; it never talks to the network itself.
package alter

import (
	"github.com/latticedb/lattice/pkg/types"
)

// BoundKind states whether a range partition bound row is inclusive or
// exclusive.
type BoundKind int

const (
	InclusiveBound BoundKind = iota + 1
	ExclusiveBound
)

// HashDimension is one hash-bucketing rule applied within a range partition:
// an ordered column set, a bucket count, and a seed. Column names must not
// repeat across dimensions of the same partition; the caller is responsible
// for that disjointness.
type HashDimension struct {
	ColumnNames []string
	NumBuckets  int32
	Seed        uint32
}

// RangePartition describes a contiguous key-space slice by a lower and upper
// bound row plus bound inclusivity, optionally with a custom hash schema and
// a dimension label.
type RangePartition struct {
	lower, upper         *types.PartialRow
	lowerKind, upperKind BoundKind
	hashSchema           []HashDimension
	dimensionLabel       *string
}

// NewRangePartition creates a range partition with the conventional bound
// kinds: inclusive lower, exclusive upper.
func NewRangePartition(lower, upper *types.PartialRow) *RangePartition {
	return NewRangePartitionWithBounds(lower, upper, InclusiveBound, ExclusiveBound)
}

// NewRangePartitionWithBounds creates a range partition with explicit bound
// kinds.
func NewRangePartitionWithBounds(lower, upper *types.PartialRow, lowerKind, upperKind BoundKind) *RangePartition {
	return &RangePartition{
		lower:     lower,
		upper:     upper,
		lowerKind: lowerKind,
		upperKind: upperKind,
	}
}

// AddHashDimension appends one hash dimension. Dimension order defines
// precedence on the receiving side and is preserved verbatim.
func (p *RangePartition) AddHashDimension(columnNames []string, numBuckets int32, seed uint32) *RangePartition {
	p.hashSchema = append(p.hashSchema, HashDimension{
		ColumnNames: columnNames,
		NumBuckets:  numBuckets,
		Seed:        seed,
	})
	return p
}

// SetDimensionLabel attaches a dimension label to the partition.
func (p *RangePartition) SetDimensionLabel(label string) *RangePartition {
	p.dimensionLabel = &label
	return p
}

// step is the closed set of alteration intentions. The compiler dispatches
// on the concrete type; RenameColumn has no intent variant because it is
// derived from a rename-only column delta during compilation, never appended
// by the caller.
type step interface {
	isStep()
}

type addColumnStep struct {
	column types.ColumnDef
}

type dropColumnStep struct {
	name string
}

type alterColumnStep struct {
	name  string
	delta ColumnDelta
}

type addRangePartitionStep struct {
	partition *RangePartition
}

type dropRangePartitionStep struct {
	partition *RangePartition
}

func (addColumnStep) isStep()          {}
func (dropColumnStep) isStep()         {}
func (alterColumnStep) isStep()        {}
func (addRangePartitionStep) isStep()  {}
func (dropRangePartitionStep) isStep() {}
