// Package wire implements the protobuf wire contract between the Lattice
// client and the metadata service. Messages are hand-encoded with the
// protowire package; the field numbers below are the service contract and
// must not be renumbered.
package wire

// StepType tags an alteration step variant.
type StepType int32

const (
	StepAddColumn          StepType = 1
	StepDropColumn         StepType = 2
	StepRenameColumn       StepType = 3
	StepAlterColumn        StepType = 4
	StepAddRangePartition  StepType = 5
	StepDropRangePartition StepType = 6
)

// String returns the wire name of the step type.
func (t StepType) String() string {
	switch t {
	case StepAddColumn:
		return "ADD_COLUMN"
	case StepDropColumn:
		return "DROP_COLUMN"
	case StepRenameColumn:
		return "RENAME_COLUMN"
	case StepAlterColumn:
		return "ALTER_COLUMN"
	case StepAddRangePartition:
		return "ADD_RANGE_PARTITION"
	case StepDropRangePartition:
		return "DROP_RANGE_PARTITION"
	default:
		return "UNKNOWN"
	}
}

// TableIdentifier names the table an operation applies to, by ID or by name.
type TableIdentifier struct {
	TableID   string // field 1
	TableName string // field 2
}

// AlterTableRequest is the single request message carrying a complete,
// validated set of table alterations. Optional scalar fields use pointers;
// presence alone signals "apply this change".
type AlterTableRequest struct {
	Table                  TableIdentifier   // field 1
	Steps                  []*AlterStep      // field 2
	NewTableName           *string           // field 3
	ModifyExternalCatalogs bool              // field 4, always emitted
	Schema                 *SchemaPB         // field 5
	NewExtraConfigs        map[string]string // field 6
	NewTableOwner          *string           // field 7
	NewTableComment        *string           // field 8
	NewReplicationFactor   *int32            // field 9
	DiskSizeLimit          *int64            // field 10
	RowCountLimit          *int64            // field 11
}

// AlterStep is one tagged alteration step. Exactly the sub-message matching
// Type is populated.
type AlterStep struct {
	Type               StepType              // field 1
	AddColumn          *AddColumnPB          // field 2
	DropColumn         *DropColumnPB         // field 3
	RenameColumn       *RenameColumnPB       // field 4
	AlterColumn        *AlterColumnPB        // field 5
	AddRangePartition  *AddRangePartitionPB  // field 6
	DropRangePartition *DropRangePartitionPB // field 7
}

// AddColumnPB carries the full definition of the column to add.
type AddColumnPB struct {
	Schema ColumnPB // field 1
}

// DropColumnPB names the column to drop.
type DropColumnPB struct {
	Name string // field 1
}

// RenameColumnPB is the legacy rename step kept for receivers that predate
// the generic column delta.
type RenameColumnPB struct {
	OldName string // field 1
	NewName string // field 2
}

// AlterColumnPB carries a generic column delta.
type AlterColumnPB struct {
	Delta ColumnDeltaPB // field 1
}

// ColumnDeltaPB is the set of requested changes to an existing column.
type ColumnDeltaPB struct {
	Name          string  // field 1
	NewName       *string // field 2
	DefaultValue  []byte  // field 3, encoded cell value
	RemoveDefault bool    // field 4
	Encoding      *int32  // field 5
	Compression   *int32  // field 6
	BlockSize     *int32  // field 7
	NewComment    *string // field 8
}

// AddRangePartitionPB defines a new range partition: its encoded bound pair,
// an optional per-range hash schema, and an optional dimension label.
type AddRangePartitionPB struct {
	RangeBounds      RowOperationsPB    // field 1
	CustomHashSchema []*HashDimensionPB // field 2
	DimensionLabel   *string            // field 3
}

// DropRangePartitionPB identifies an existing range partition by its encoded
// bound pair.
type DropRangePartitionPB struct {
	RangeBounds RowOperationsPB // field 1
}

// HashDimensionPB is one hash-bucketing rule within a range partition.
// Dimension order defines precedence on the receiving side.
type HashDimensionPB struct {
	Columns    []string // field 1
	NumBuckets int32    // field 2
	Seed       uint32   // field 3
}

// RowOperationsPB carries row operations in the packed row-operations format
// produced by RowOperationsEncoder.
type RowOperationsPB struct {
	Rows []byte // field 1
}

// ColumnPB is the wire form of a column definition.
type ColumnPB struct {
	Name         string // field 1
	Type         int32  // field 2
	Nullable     bool   // field 3
	PrimaryKey   bool   // field 4
	Encoding     int32  // field 5
	Compression  int32  // field 6
	BlockSize    int32  // field 7
	Comment      string // field 8
	DefaultValue []byte // field 9, encoded cell value
}

// SchemaPB is the wire form of a full table schema.
type SchemaPB struct {
	Columns []*ColumnPB // field 1
}

// AlterTableResponse is the metadata service's reply.
type AlterTableResponse struct {
	TableID       string // field 1
	SchemaVersion uint32 // field 2
}
