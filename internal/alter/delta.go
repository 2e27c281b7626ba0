package alter

import (
	lerrors "github.com/latticedb/lattice/internal/errors"
	"github.com/latticedb/lattice/internal/wire"
	"github.com/latticedb/lattice/pkg/types"
)

// ColumnDelta is the set of requested modifications to an existing column.
// Optional fields use pointers; presence alone signals "apply this change".
// DefaultValue is non-nil when a new write default is requested, which is
// distinct from RemoveDefault.
type ColumnDelta struct {
	RenameTo      *string
	DefaultValue  interface{}
	RemoveDefault bool
	Encoding      *types.EncodingType
	Compression   *types.CompressionType
	BlockSize     *int32
	Comment       *string

	// Unsupported at this protocol layer; requesting any of them fails the
	// whole alteration.
	Type       *types.DataType
	Nullable   *bool
	PrimaryKey *bool
}

// empty reports whether no supported field is requested.
func (d *ColumnDelta) empty() bool {
	return d.RenameTo == nil &&
		d.DefaultValue == nil &&
		!d.RemoveDefault &&
		d.Encoding == nil &&
		d.Compression == nil &&
		d.BlockSize == nil &&
		d.Comment == nil
}

// renameOnly reports whether the rename target is the sole requested change.
func (d *ColumnDelta) renameOnly() bool {
	return d.RenameTo != nil &&
		d.DefaultValue == nil &&
		!d.RemoveDefault &&
		d.Encoding == nil &&
		d.Compression == nil &&
		d.BlockSize == nil &&
		d.Comment == nil
}

// compileAlterColumn turns a column delta into a wire step. A delta whose
// only change is a rename is substituted with the legacy RENAME_COLUMN step
// so that receivers predating the generic delta keep working; a rename
// bundled with any other change stays in the generic ALTER_COLUMN step. This
// bifurcation is a compatibility contract and must not be collapsed.
func compileAlterColumn(name string, delta ColumnDelta) (*wire.AlterStep, error) {
	if delta.Type != nil || delta.Nullable != nil || delta.PrimaryKey != nil {
		return nil, lerrors.UnsupportedAlteration(name)
	}
	if delta.empty() {
		return nil, lerrors.EmptyAlteration(name)
	}

	if delta.renameOnly() {
		return &wire.AlterStep{
			Type: wire.StepRenameColumn,
			RenameColumn: &wire.RenameColumnPB{
				OldName: name,
				NewName: *delta.RenameTo,
			},
		}, nil
	}

	pb := wire.ColumnDeltaPB{
		Name:          name,
		NewName:       delta.RenameTo,
		RemoveDefault: delta.RemoveDefault,
		BlockSize:     delta.BlockSize,
		NewComment:    delta.Comment,
	}
	if delta.Encoding != nil {
		v := int32(*delta.Encoding)
		pb.Encoding = &v
	}
	if delta.Compression != nil {
		v := int32(*delta.Compression)
		pb.Compression = &v
	}
	if delta.DefaultValue != nil {
		t, ok := wire.CellTypeOf(delta.DefaultValue)
		if !ok {
			return nil, lerrors.Newf(lerrors.ErrCategoryAlter, lerrors.CodeInvalidOption,
				"column %q: unsupported default value type %T", name, delta.DefaultValue)
		}
		cell, err := wire.AppendCell(nil, t, delta.DefaultValue)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCategoryWire, lerrors.CodeEncodingFailed,
				"encoding column default", err)
		}
		pb.DefaultValue = cell
	}

	return &wire.AlterStep{
		Type:        wire.StepAlterColumn,
		AlterColumn: &wire.AlterColumnPB{Delta: pb},
	}, nil
}
