package wire

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal serializes the request into protobuf wire format. The output is
// deterministic: steps keep insertion order and the extra-config map is
// emitted in sorted key order.
func (r *AlterTableRequest) Marshal() []byte {
	var buf []byte

	buf = appendMessage(buf, 1, r.Table.appendTo(nil))
	for _, s := range r.Steps {
		buf = appendMessage(buf, 2, s.appendTo(nil))
	}
	if r.NewTableName != nil {
		buf = appendString(buf, 3, *r.NewTableName)
	}
	buf = appendBool(buf, 4, r.ModifyExternalCatalogs)
	if r.Schema != nil {
		buf = appendMessage(buf, 5, r.Schema.appendTo(nil))
	}
	if len(r.NewExtraConfigs) > 0 {
		keys := make([]string, 0, len(r.NewExtraConfigs))
		for k := range r.NewExtraConfigs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var entry []byte
			entry = appendString(entry, 1, k)
			entry = appendString(entry, 2, r.NewExtraConfigs[k])
			buf = appendMessage(buf, 6, entry)
		}
	}
	if r.NewTableOwner != nil {
		buf = appendString(buf, 7, *r.NewTableOwner)
	}
	if r.NewTableComment != nil {
		buf = appendString(buf, 8, *r.NewTableComment)
	}
	if r.NewReplicationFactor != nil {
		buf = appendInt32(buf, 9, *r.NewReplicationFactor)
	}
	if r.DiskSizeLimit != nil {
		buf = appendInt64(buf, 10, *r.DiskSizeLimit)
	}
	if r.RowCountLimit != nil {
		buf = appendInt64(buf, 11, *r.RowCountLimit)
	}
	return buf
}

// Marshal serializes the response into protobuf wire format.
func (r *AlterTableResponse) Marshal() []byte {
	var buf []byte
	if r.TableID != "" {
		buf = appendString(buf, 1, r.TableID)
	}
	if r.SchemaVersion != 0 {
		buf = protowire.AppendTag(buf, 2, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(r.SchemaVersion))
	}
	return buf
}

func (t *TableIdentifier) appendTo(buf []byte) []byte {
	if t.TableID != "" {
		buf = appendString(buf, 1, t.TableID)
	}
	if t.TableName != "" {
		buf = appendString(buf, 2, t.TableName)
	}
	return buf
}

func (s *AlterStep) appendTo(buf []byte) []byte {
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(s.Type))

	switch {
	case s.AddColumn != nil:
		buf = appendMessage(buf, 2, appendMessage(nil, 1, s.AddColumn.Schema.appendTo(nil)))
	case s.DropColumn != nil:
		buf = appendMessage(buf, 3, appendString(nil, 1, s.DropColumn.Name))
	case s.RenameColumn != nil:
		var body []byte
		body = appendString(body, 1, s.RenameColumn.OldName)
		body = appendString(body, 2, s.RenameColumn.NewName)
		buf = appendMessage(buf, 4, body)
	case s.AlterColumn != nil:
		buf = appendMessage(buf, 5, appendMessage(nil, 1, s.AlterColumn.Delta.appendTo(nil)))
	case s.AddRangePartition != nil:
		buf = appendMessage(buf, 6, s.AddRangePartition.appendTo(nil))
	case s.DropRangePartition != nil:
		body := appendMessage(nil, 1, appendBytes(nil, 1, s.DropRangePartition.RangeBounds.Rows))
		buf = appendMessage(buf, 7, body)
	}
	return buf
}

func (d *ColumnDeltaPB) appendTo(buf []byte) []byte {
	buf = appendString(buf, 1, d.Name)
	if d.NewName != nil {
		buf = appendString(buf, 2, *d.NewName)
	}
	if d.DefaultValue != nil {
		buf = appendBytes(buf, 3, d.DefaultValue)
	}
	if d.RemoveDefault {
		buf = appendBool(buf, 4, true)
	}
	if d.Encoding != nil {
		buf = appendInt32(buf, 5, *d.Encoding)
	}
	if d.Compression != nil {
		buf = appendInt32(buf, 6, *d.Compression)
	}
	if d.BlockSize != nil {
		buf = appendInt32(buf, 7, *d.BlockSize)
	}
	if d.NewComment != nil {
		buf = appendString(buf, 8, *d.NewComment)
	}
	return buf
}

func (p *AddRangePartitionPB) appendTo(buf []byte) []byte {
	buf = appendMessage(buf, 1, appendBytes(nil, 1, p.RangeBounds.Rows))
	for _, dim := range p.CustomHashSchema {
		var body []byte
		for _, c := range dim.Columns {
			body = appendString(body, 1, c)
		}
		body = appendInt32(body, 2, dim.NumBuckets)
		body = protowire.AppendTag(body, 3, protowire.VarintType)
		body = protowire.AppendVarint(body, uint64(dim.Seed))
		buf = appendMessage(buf, 2, body)
	}
	if p.DimensionLabel != nil {
		buf = appendString(buf, 3, *p.DimensionLabel)
	}
	return buf
}

func (c *ColumnPB) appendTo(buf []byte) []byte {
	buf = appendString(buf, 1, c.Name)
	buf = appendInt32(buf, 2, c.Type)
	if c.Nullable {
		buf = appendBool(buf, 3, true)
	}
	if c.PrimaryKey {
		buf = appendBool(buf, 4, true)
	}
	if c.Encoding != 0 {
		buf = appendInt32(buf, 5, c.Encoding)
	}
	if c.Compression != 0 {
		buf = appendInt32(buf, 6, c.Compression)
	}
	if c.BlockSize != 0 {
		buf = appendInt32(buf, 7, c.BlockSize)
	}
	if c.Comment != "" {
		buf = appendString(buf, 8, c.Comment)
	}
	if c.DefaultValue != nil {
		buf = appendBytes(buf, 9, c.DefaultValue)
	}
	return buf
}

func (s *SchemaPB) appendTo(buf []byte) []byte {
	for _, c := range s.Columns {
		buf = appendMessage(buf, 1, c.appendTo(nil))
	}
	return buf
}

// Low-level field append helpers.

func appendString(buf []byte, num protowire.Number, s string) []byte {
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendString(buf, s)
}

func appendBytes(buf []byte, num protowire.Number, b []byte) []byte {
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	return protowire.AppendBytes(buf, b)
}

func appendMessage(buf []byte, num protowire.Number, body []byte) []byte {
	return appendBytes(buf, num, body)
}

func appendBool(buf []byte, num protowire.Number, v bool) []byte {
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	if v {
		return protowire.AppendVarint(buf, 1)
	}
	return protowire.AppendVarint(buf, 0)
}

func appendInt32(buf []byte, num protowire.Number, v int32) []byte {
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, uint64(uint32(v)))
}

func appendInt64(buf []byte, num protowire.Number, v int64) []byte {
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, uint64(v))
}
