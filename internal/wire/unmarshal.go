package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// UnmarshalAlterTableRequest parses a request from protobuf wire format.
func UnmarshalAlterTableRequest(buf []byte) (*AlterTableRequest, error) {
	req := &AlterTableRequest{}
	err := walkFields(buf, func(num protowire.Number, typ protowire.Type, v uint64, b []byte) error {
		switch num {
		case 1:
			return req.Table.unmarshal(b)
		case 2:
			step, err := unmarshalAlterStep(b)
			if err != nil {
				return err
			}
			req.Steps = append(req.Steps, step)
		case 3:
			req.NewTableName = strptr(string(b))
		case 4:
			req.ModifyExternalCatalogs = v != 0
		case 5:
			schema, err := unmarshalSchemaPB(b)
			if err != nil {
				return err
			}
			req.Schema = schema
		case 6:
			var k, val string
			err := walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, eb []byte) error {
				switch num {
				case 1:
					k = string(eb)
				case 2:
					val = string(eb)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if req.NewExtraConfigs == nil {
				req.NewExtraConfigs = make(map[string]string)
			}
			req.NewExtraConfigs[k] = val
		case 7:
			req.NewTableOwner = strptr(string(b))
		case 8:
			req.NewTableComment = strptr(string(b))
		case 9:
			req.NewReplicationFactor = int32ptr(int32(v))
		case 10:
			req.DiskSizeLimit = int64ptr(int64(v))
		case 11:
			req.RowCountLimit = int64ptr(int64(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// UnmarshalAlterTableResponse parses a response from protobuf wire format.
func UnmarshalAlterTableResponse(buf []byte) (*AlterTableResponse, error) {
	resp := &AlterTableResponse{}
	err := walkFields(buf, func(num protowire.Number, _ protowire.Type, v uint64, b []byte) error {
		switch num {
		case 1:
			resp.TableID = string(b)
		case 2:
			resp.SchemaVersion = uint32(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *TableIdentifier) unmarshal(buf []byte) error {
	return walkFields(buf, func(num protowire.Number, _ protowire.Type, _ uint64, b []byte) error {
		switch num {
		case 1:
			t.TableID = string(b)
		case 2:
			t.TableName = string(b)
		}
		return nil
	})
}

func unmarshalAlterStep(buf []byte) (*AlterStep, error) {
	step := &AlterStep{}
	err := walkFields(buf, func(num protowire.Number, _ protowire.Type, v uint64, b []byte) error {
		switch num {
		case 1:
			step.Type = StepType(v)
		case 2:
			step.AddColumn = &AddColumnPB{}
			return walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, cb []byte) error {
				if num == 1 {
					col, err := unmarshalColumnPB(cb)
					if err != nil {
						return err
					}
					step.AddColumn.Schema = *col
				}
				return nil
			})
		case 3:
			step.DropColumn = &DropColumnPB{}
			return walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, nb []byte) error {
				if num == 1 {
					step.DropColumn.Name = string(nb)
				}
				return nil
			})
		case 4:
			step.RenameColumn = &RenameColumnPB{}
			return walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, nb []byte) error {
				switch num {
				case 1:
					step.RenameColumn.OldName = string(nb)
				case 2:
					step.RenameColumn.NewName = string(nb)
				}
				return nil
			})
		case 5:
			step.AlterColumn = &AlterColumnPB{}
			return walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, db []byte) error {
				if num == 1 {
					return step.AlterColumn.Delta.unmarshal(db)
				}
				return nil
			})
		case 6:
			add := &AddRangePartitionPB{}
			step.AddRangePartition = add
			return walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, pb []byte) error {
				switch num {
				case 1:
					return add.RangeBounds.unmarshal(pb)
				case 2:
					dim, err := unmarshalHashDimension(pb)
					if err != nil {
						return err
					}
					add.CustomHashSchema = append(add.CustomHashSchema, dim)
				case 3:
					add.DimensionLabel = strptr(string(pb))
				}
				return nil
			})
		case 7:
			step.DropRangePartition = &DropRangePartitionPB{}
			return walkFields(b, func(num protowire.Number, _ protowire.Type, _ uint64, pb []byte) error {
				if num == 1 {
					return step.DropRangePartition.RangeBounds.unmarshal(pb)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

func (d *ColumnDeltaPB) unmarshal(buf []byte) error {
	return walkFields(buf, func(num protowire.Number, _ protowire.Type, v uint64, b []byte) error {
		switch num {
		case 1:
			d.Name = string(b)
		case 2:
			d.NewName = strptr(string(b))
		case 3:
			d.DefaultValue = append([]byte(nil), b...)
		case 4:
			d.RemoveDefault = v != 0
		case 5:
			d.Encoding = int32ptr(int32(v))
		case 6:
			d.Compression = int32ptr(int32(v))
		case 7:
			d.BlockSize = int32ptr(int32(v))
		case 8:
			d.NewComment = strptr(string(b))
		}
		return nil
	})
}

func (r *RowOperationsPB) unmarshal(buf []byte) error {
	return walkFields(buf, func(num protowire.Number, _ protowire.Type, _ uint64, b []byte) error {
		if num == 1 {
			r.Rows = append([]byte(nil), b...)
		}
		return nil
	})
}

func unmarshalHashDimension(buf []byte) (*HashDimensionPB, error) {
	dim := &HashDimensionPB{}
	err := walkFields(buf, func(num protowire.Number, _ protowire.Type, v uint64, b []byte) error {
		switch num {
		case 1:
			dim.Columns = append(dim.Columns, string(b))
		case 2:
			dim.NumBuckets = int32(v)
		case 3:
			dim.Seed = uint32(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dim, nil
}

func unmarshalColumnPB(buf []byte) (*ColumnPB, error) {
	col := &ColumnPB{}
	err := walkFields(buf, func(num protowire.Number, _ protowire.Type, v uint64, b []byte) error {
		switch num {
		case 1:
			col.Name = string(b)
		case 2:
			col.Type = int32(v)
		case 3:
			col.Nullable = v != 0
		case 4:
			col.PrimaryKey = v != 0
		case 5:
			col.Encoding = int32(v)
		case 6:
			col.Compression = int32(v)
		case 7:
			col.BlockSize = int32(v)
		case 8:
			col.Comment = string(b)
		case 9:
			col.DefaultValue = append([]byte(nil), b...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

func unmarshalSchemaPB(buf []byte) (*SchemaPB, error) {
	schema := &SchemaPB{}
	err := walkFields(buf, func(num protowire.Number, _ protowire.Type, _ uint64, b []byte) error {
		if num == 1 {
			col, err := unmarshalColumnPB(b)
			if err != nil {
				return err
			}
			schema.Columns = append(schema.Columns, col)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schema, nil
}

// walkFields iterates the top-level fields of a wire-format buffer, invoking
// fn with the varint value for varint fields and the payload for length-
// delimited fields. Unknown fields are skipped, matching protobuf semantics.
func walkFields(buf []byte, fn func(num protowire.Number, typ protowire.Type, v uint64, b []byte) error) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("wire: invalid field tag: %v", protowire.ParseError(n))
		}
		buf = buf[n:]

		var v uint64
		var b []byte
		switch typ {
		case protowire.VarintType:
			var m int
			v, m = protowire.ConsumeVarint(buf)
			if m < 0 {
				return fmt.Errorf("wire: invalid varint field %d", num)
			}
			buf = buf[m:]
		case protowire.BytesType:
			var m int
			b, m = protowire.ConsumeBytes(buf)
			if m < 0 {
				return fmt.Errorf("wire: invalid bytes field %d", num)
			}
			buf = buf[m:]
		case protowire.Fixed32Type:
			fv, m := protowire.ConsumeFixed32(buf)
			if m < 0 {
				return fmt.Errorf("wire: invalid fixed32 field %d", num)
			}
			v = uint64(fv)
			buf = buf[m:]
		case protowire.Fixed64Type:
			var m int
			v, m = protowire.ConsumeFixed64(buf)
			if m < 0 {
				return fmt.Errorf("wire: invalid fixed64 field %d", num)
			}
			buf = buf[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return fmt.Errorf("wire: invalid field %d", num)
			}
			buf = buf[m:]
			continue
		}

		if err := fn(num, typ, v, b); err != nil {
			return err
		}
	}
	return nil
}

func strptr(s string) *string { return &s }
func int32ptr(v int32) *int32 { return &v }
func int64ptr(v int64) *int64 { return &v }
