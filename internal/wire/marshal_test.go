package wire

import (
	"bytes"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func sampleRequest() *AlterTableRequest {
	newName := "t2"
	owner := "analytics"
	comment := "widened"
	rf := int32(3)
	disk := int64(1 << 30)
	rows := int64(1_000_000)
	colRename := "renamed"
	blockSize := int32(4096)
	label := "by-day"

	return &AlterTableRequest{
		Table:                  TableIdentifier{TableID: "id-1", TableName: "t1"},
		NewTableName:           &newName,
		NewTableOwner:          &owner,
		NewTableComment:        &comment,
		NewReplicationFactor:   &rf,
		DiskSizeLimit:          &disk,
		RowCountLimit:          &rows,
		ModifyExternalCatalogs: true,
		NewExtraConfigs:        map[string]string{"history_max_age_sec": "3600", "ttl": ""},
		Schema: &SchemaPB{Columns: []*ColumnPB{
			{Name: "id", Type: 5, PrimaryKey: true},
			{Name: "val", Type: 8, Nullable: true, Comment: "payload"},
		}},
		Steps: []*AlterStep{
			{Type: StepAddColumn, AddColumn: &AddColumnPB{
				Schema: ColumnPB{Name: "c1", Type: 4, Nullable: true, Encoding: 2, Compression: 3, BlockSize: 8192, DefaultValue: []byte{42, 0, 0, 0}},
			}},
			{Type: StepDropColumn, DropColumn: &DropColumnPB{Name: "c2"}},
			{Type: StepRenameColumn, RenameColumn: &RenameColumnPB{OldName: "a", NewName: "b"}},
			{Type: StepAlterColumn, AlterColumn: &AlterColumnPB{
				Delta: ColumnDeltaPB{Name: "c3", NewName: &colRename, RemoveDefault: true, BlockSize: &blockSize},
			}},
			{Type: StepAddRangePartition, AddRangePartition: &AddRangePartitionPB{
				RangeBounds: RowOperationsPB{Rows: []byte{1, 0, 3, 0}},
				CustomHashSchema: []*HashDimensionPB{
					{Columns: []string{"id"}, NumBuckets: 4, Seed: 7},
				},
				DimensionLabel: &label,
			}},
			{Type: StepDropRangePartition, DropRangePartition: &DropRangePartitionPB{
				RangeBounds: RowOperationsPB{Rows: []byte{2, 0, 4, 0}},
			}},
		},
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := sampleRequest()
	got, err := UnmarshalAlterTableRequest(req.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalAlterTableRequest failed: %v", err)
	}
	if !reflect.DeepEqual(req, got) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, req)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	req := sampleRequest()
	first := req.Marshal()
	for i := 0; i < 10; i++ {
		if !bytes.Equal(first, req.Marshal()) {
			t.Fatal("Marshal is not deterministic across calls")
		}
	}
}

func TestExternalCatalogsFlagAlwaysOnWire(t *testing.T) {
	req := &AlterTableRequest{
		Table:                  TableIdentifier{TableName: "t1"},
		ModifyExternalCatalogs: false,
	}
	buf := req.Marshal()

	// Field 4 varint tag followed by an explicit zero. The flag is always
	// emitted so the receiver never falls back to a default.
	tag := byte(4<<3 | 0)
	if !bytes.Contains(buf, []byte{tag, 0}) {
		t.Errorf("expected explicit field 4 = false on the wire, got %x", buf)
	}

	got, err := UnmarshalAlterTableRequest(buf)
	if err != nil {
		t.Fatalf("UnmarshalAlterTableRequest failed: %v", err)
	}
	if got.ModifyExternalCatalogs {
		t.Error("expected flag false after round trip")
	}
}

func TestStepOrderSurvivesWire(t *testing.T) {
	req := sampleRequest()
	got, err := UnmarshalAlterTableRequest(req.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalAlterTableRequest failed: %v", err)
	}
	if len(got.Steps) != len(req.Steps) {
		t.Fatalf("expected %d steps, got %d", len(req.Steps), len(got.Steps))
	}
	for i := range req.Steps {
		if got.Steps[i].Type != req.Steps[i].Type {
			t.Errorf("step %d: expected %s, got %s", i, req.Steps[i].Type, got.Steps[i].Type)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := &AlterTableResponse{TableID: "abc", SchemaVersion: 7}
	got, err := UnmarshalAlterTableResponse(resp.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalAlterTableResponse failed: %v", err)
	}
	if !reflect.DeepEqual(resp, got) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, resp)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	req := &AlterTableRequest{Table: TableIdentifier{TableName: "t1"}}
	buf := req.Marshal()

	// Append an unknown varint field and an unknown bytes field.
	buf = protowire.AppendTag(buf, 100, protowire.VarintType)
	buf = protowire.AppendVarint(buf, 1)
	buf = protowire.AppendTag(buf, 101, protowire.BytesType)
	buf = protowire.AppendBytes(buf, []byte{0xde, 0xad})

	got, err := UnmarshalAlterTableRequest(buf)
	if err != nil {
		t.Fatalf("unknown fields must be skipped, got error: %v", err)
	}
	if got.Table.TableName != "t1" {
		t.Errorf("known field lost: %+v", got)
	}
}
