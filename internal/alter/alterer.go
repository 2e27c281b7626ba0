package alter

import (
	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
	"github.com/latticedb/lattice/pkg/types"
)

// TableAlterer accumulates alteration steps and table-level options, then
// compiles them into a single AlterTableRequest. It is not safe for
// concurrent use; one alterer serves one in-flight request.
//
// The first validation failure recorded by any mutating call is latched:
// later calls still append nothing useful and Build returns that first
// error. Build never emits a partial request.
type TableAlterer struct {
	table wire.TableIdentifier

	renameTo          *string
	newOwner          *string
	newComment        *string
	replicationFactor *int32
	extraConfigs      map[string]string
	diskSizeLimit     *int64
	rowCountLimit     *int64
	newSchema         *types.Schema
	externalCatalogs  bool

	steps []step
	err   error
}

// NewTableAlterer creates an alterer for the named table. External catalog
// propagation defaults to on.
func NewTableAlterer(tableName string) *TableAlterer {
	return &TableAlterer{
		table:            wire.TableIdentifier{TableName: tableName},
		externalCatalogs: true,
	}
}

// ByID additionally identifies the table by its ID, which takes precedence
// over the name on the service side.
func (a *TableAlterer) ByID(tableID string) *TableAlterer {
	a.table.TableID = tableID
	return a
}

// RenameTo renames the table.
func (a *TableAlterer) RenameTo(name string) *TableAlterer {
	a.renameTo = &name
	return a
}

// SetOwner changes the table owner.
func (a *TableAlterer) SetOwner(owner string) *TableAlterer {
	a.newOwner = &owner
	return a
}

// SetComment changes the table comment.
func (a *TableAlterer) SetComment(comment string) *TableAlterer {
	a.newComment = &comment
	return a
}

// SetReplicationFactor changes the table's replication factor. The factor
// must be positive.
func (a *TableAlterer) SetReplicationFactor(n int32) *TableAlterer {
	if n < 1 {
		a.latch(lerrors.Newf(lerrors.ErrCategoryAlter, lerrors.CodeInvalidOption,
			"replication factor %d must be positive", n))
		return a
	}
	a.replicationFactor = &n
	return a
}

// AlterExtraConfigs overrides table-level extra configuration. An empty
// string value resets that key to its default.
func (a *TableAlterer) AlterExtraConfigs(configs map[string]string) *TableAlterer {
	if a.extraConfigs == nil {
		a.extraConfigs = make(map[string]string, len(configs))
	}
	for k, v := range configs {
		a.extraConfigs[k] = v
	}
	return a
}

// SetDiskSizeLimit sets the table's disk size limit in bytes. The limit must
// be non-negative.
func (a *TableAlterer) SetDiskSizeLimit(limit int64) *TableAlterer {
	if limit < 0 {
		a.latch(lerrors.Newf(lerrors.ErrCategoryAlter, lerrors.CodeInvalidOption,
			"disk size limit %d must be non-negative", limit))
		return a
	}
	a.diskSizeLimit = &limit
	return a
}

// SetRowCountLimit sets the table's row count limit. The limit must be
// non-negative.
func (a *TableAlterer) SetRowCountLimit(limit int64) *TableAlterer {
	if limit < 0 {
		a.latch(lerrors.Newf(lerrors.ErrCategoryAlter, lerrors.CodeInvalidOption,
			"row count limit %d must be non-negative", limit))
		return a
	}
	a.rowCountLimit = &limit
	return a
}

// ReplaceSchema attaches a full replacement schema. The schema is referenced,
// not copied; the caller must not mutate it until Build has run.
func (a *TableAlterer) ReplaceSchema(schema *types.Schema) *TableAlterer {
	a.newSchema = schema
	return a
}

// ModifyExternalCatalogs controls whether the service propagates the
// alteration to external catalogs.
func (a *TableAlterer) ModifyExternalCatalogs(modify bool) *TableAlterer {
	a.externalCatalogs = modify
	return a
}

// AddColumn appends a step adding a new column.
func (a *TableAlterer) AddColumn(column types.ColumnDef) *TableAlterer {
	a.appendStep(addColumnStep{column: column})
	return a
}

// DropColumn appends a step dropping the named column.
func (a *TableAlterer) DropColumn(name string) *TableAlterer {
	a.appendStep(dropColumnStep{name: name})
	return a
}

// AlterColumn appends a step applying the given delta to the named column.
func (a *TableAlterer) AlterColumn(name string, delta ColumnDelta) *TableAlterer {
	a.appendStep(alterColumnStep{name: name, delta: delta})
	return a
}

// RenameColumn appends a step renaming a column. It is shorthand for an
// AlterColumn whose only change is the rename.
func (a *TableAlterer) RenameColumn(oldName, newName string) *TableAlterer {
	return a.AlterColumn(oldName, ColumnDelta{RenameTo: &newName})
}

// AddRangePartition appends a step adding the given range partition.
func (a *TableAlterer) AddRangePartition(p *RangePartition) *TableAlterer {
	if p != nil {
		if err := validateHashSchema(p.hashSchema); err != nil {
			a.latch(err)
			return a
		}
	}
	a.appendStep(addRangePartitionStep{partition: p})
	return a
}

// DropRangePartition appends a step dropping the range partition identified
// by the given bound pair.
func (a *TableAlterer) DropRangePartition(p *RangePartition) *TableAlterer {
	a.appendStep(dropRangePartitionStep{partition: p})
	return a
}

// Err returns the first validation error recorded so far, if any.
func (a *TableAlterer) Err() error {
	return a.err
}

// Build compiles the accumulated steps and options into a request. It is
// pure: calling it twice yields two independent requests from the same
// accumulated state.
func (a *TableAlterer) Build() (*wire.AlterTableRequest, error) {
	if a.err != nil {
		return nil, a.err
	}

	if a.renameTo == nil &&
		a.newOwner == nil &&
		a.newComment == nil &&
		a.replicationFactor == nil &&
		a.extraConfigs == nil &&
		a.diskSizeLimit == nil &&
		a.rowCountLimit == nil &&
		a.newSchema == nil &&
		len(a.steps) == 0 {
		return nil, lerrors.NoChangesRequested()
	}

	req := &wire.AlterTableRequest{
		Table:                  a.table,
		NewTableName:           a.renameTo,
		NewTableOwner:          a.newOwner,
		NewTableComment:        a.newComment,
		NewReplicationFactor:   a.replicationFactor,
		DiskSizeLimit:          a.diskSizeLimit,
		RowCountLimit:          a.rowCountLimit,
		ModifyExternalCatalogs: a.externalCatalogs,
	}
	if a.extraConfigs != nil {
		req.NewExtraConfigs = make(map[string]string, len(a.extraConfigs))
		for k, v := range a.extraConfigs {
			req.NewExtraConfigs[k] = v
		}
	}
	if a.newSchema != nil {
		pb, err := wire.SchemaToPB(a.newSchema)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed,
				"serializing replacement schema", err)
		}
		req.Schema = pb
	}

	for _, s := range a.steps {
		compiled, err := compileStep(s)
		if err != nil {
			return nil, err
		}
		req.Steps = append(req.Steps, compiled)
	}
	return req, nil
}

// compileStep dispatches one intention to its compiler. The step set is
// closed; reaching the default arm means a new variant was added without a
// compiler, which is a programming error rather than a user mistake.
func compileStep(s step) (*wire.AlterStep, error) {
	switch s := s.(type) {
	case addColumnStep:
		pb, err := wire.ColumnToPB(s.column)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed,
				"serializing column definition", err)
		}
		return &wire.AlterStep{
			Type:      wire.StepAddColumn,
			AddColumn: &wire.AddColumnPB{Schema: *pb},
		}, nil
	case dropColumnStep:
		return &wire.AlterStep{
			Type:       wire.StepDropColumn,
			DropColumn: &wire.DropColumnPB{Name: s.name},
		}, nil
	case alterColumnStep:
		return compileAlterColumn(s.name, s.delta)
	case addRangePartitionStep:
		return compileAddRangePartition(s.partition)
	case dropRangePartitionStep:
		return compileDropRangePartition(s.partition)
	default:
		return nil, lerrors.InternalInconsistency("unknown alteration step variant")
	}
}

// latch records the first validation failure; later failures are dropped.
func (a *TableAlterer) latch(err error) {
	if a.err == nil {
		a.err = err
	}
}

// appendStep appends a step unless an error is already latched.
func (a *TableAlterer) appendStep(s step) {
	if a.err != nil {
		return
	}
	a.steps = append(a.steps, s)
}
