package main

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/latticedb/lattice/internal/alter"
	"github.com/latticedb/lattice/pkg/types"
)

// Plan is the YAML description of one table alteration. Steps apply in file
// order. Scalar options use pointers so absence and the zero value stay
// distinct.
type Plan struct {
	Table   string `yaml:"table"`
	TableID string `yaml:"table_id"`

	RenameTo          *string           `yaml:"rename_to"`
	Owner             *string           `yaml:"owner"`
	Comment           *string           `yaml:"comment"`
	ReplicationFactor *int32            `yaml:"replication_factor"`
	DiskSizeLimit     *int64            `yaml:"disk_size_limit"`
	RowCountLimit     *int64            `yaml:"row_count_limit"`
	ExtraConfigs      map[string]string `yaml:"extra_configs"`

	ModifyExternalCatalogs *bool `yaml:"modify_external_catalogs"`

	// Schema is the table's current column layout. It is required when the
	// plan contains range partition steps, because bound rows are encoded
	// against it client-side.
	Schema []PlanColumn `yaml:"schema"`

	Steps []PlanStep `yaml:"steps"`
}

// PlanColumn is one column in YAML form, with enum fields as names.
type PlanColumn struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Nullable    bool        `yaml:"nullable"`
	PrimaryKey  bool        `yaml:"primary_key"`
	Encoding    string      `yaml:"encoding"`
	Compression string      `yaml:"compression"`
	BlockSize   int32       `yaml:"block_size"`
	Comment     string      `yaml:"comment"`
	Default     interface{} `yaml:"default"`
}

// PlanStep is one alteration step. Exactly one field must be set.
type PlanStep struct {
	AddColumn          *PlanColumn     `yaml:"add_column"`
	DropColumn         *PlanDropColumn `yaml:"drop_column"`
	RenameColumn       *PlanRename     `yaml:"rename_column"`
	AlterColumn        *PlanDelta      `yaml:"alter_column"`
	AddRangePartition  *PlanPartition  `yaml:"add_range_partition"`
	DropRangePartition *PlanPartition  `yaml:"drop_range_partition"`
}

type PlanDropColumn struct {
	Name string `yaml:"name"`
}

type PlanRename struct {
	Name    string `yaml:"name"`
	NewName string `yaml:"new_name"`
}

// PlanDelta mirrors alter.ColumnDelta in YAML form.
type PlanDelta struct {
	Name          string      `yaml:"name"`
	RenameTo      *string     `yaml:"rename_to"`
	Default       interface{} `yaml:"default"`
	RemoveDefault bool        `yaml:"remove_default"`
	Encoding      *string     `yaml:"encoding"`
	Compression   *string     `yaml:"compression"`
	BlockSize     *int32      `yaml:"block_size"`
	Comment       *string     `yaml:"comment"`
}

// PlanPartition describes a range partition by its bound rows. Missing bound
// maps mean unbounded in that direction.
type PlanPartition struct {
	Lower      map[string]interface{} `yaml:"lower"`
	Upper      map[string]interface{} `yaml:"upper"`
	LowerBound string                 `yaml:"lower_bound"`
	UpperBound string                 `yaml:"upper_bound"`
	Hash       []PlanHashDimension    `yaml:"hash"`
	Label      *string                `yaml:"label"`
}

type PlanHashDimension struct {
	Columns []string `yaml:"columns"`
	Buckets int32    `yaml:"buckets"`
	Seed    uint32   `yaml:"seed"`
}

// LoadPlan reads and parses an alteration plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if plan.Table == "" && plan.TableID == "" {
		return nil, fmt.Errorf("plan must name a table or table_id")
	}
	return &plan, nil
}

// Alterer translates the plan into a populated TableAlterer.
func (p *Plan) Alterer() (*alter.TableAlterer, error) {
	a := alter.NewTableAlterer(p.Table)
	if p.TableID != "" {
		a.ByID(p.TableID)
	}
	if p.RenameTo != nil {
		a.RenameTo(*p.RenameTo)
	}
	if p.Owner != nil {
		a.SetOwner(*p.Owner)
	}
	if p.Comment != nil {
		a.SetComment(*p.Comment)
	}
	if p.ReplicationFactor != nil {
		a.SetReplicationFactor(*p.ReplicationFactor)
	}
	if p.DiskSizeLimit != nil {
		a.SetDiskSizeLimit(*p.DiskSizeLimit)
	}
	if p.RowCountLimit != nil {
		a.SetRowCountLimit(*p.RowCountLimit)
	}
	if p.ExtraConfigs != nil {
		a.AlterExtraConfigs(p.ExtraConfigs)
	}
	if p.ModifyExternalCatalogs != nil {
		a.ModifyExternalCatalogs(*p.ModifyExternalCatalogs)
	}

	schema, err := p.schema()
	if err != nil {
		return nil, err
	}

	for i, s := range p.Steps {
		if err := applyStep(a, schema, s); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return a, nil
}

func (p *Plan) schema() (*types.Schema, error) {
	if len(p.Schema) == 0 {
		return nil, nil
	}
	columns := make([]types.ColumnDef, 0, len(p.Schema))
	for _, pc := range p.Schema {
		col, err := pc.column()
		if err != nil {
			return nil, fmt.Errorf("schema column %q: %w", pc.Name, err)
		}
		columns = append(columns, *col)
	}
	return types.NewSchema(columns...), nil
}

func (pc *PlanColumn) column() (*types.ColumnDef, error) {
	dt, err := types.ParseDataType(pc.Type)
	if err != nil {
		return nil, err
	}
	enc, err := types.ParseEncodingType(pc.Encoding)
	if err != nil {
		return nil, err
	}
	comp, err := types.ParseCompressionType(pc.Compression)
	if err != nil {
		return nil, err
	}
	col := &types.ColumnDef{
		Name:        pc.Name,
		Type:        dt,
		Nullable:    pc.Nullable,
		PrimaryKey:  pc.PrimaryKey,
		Encoding:    enc,
		Compression: comp,
		BlockSize:   pc.BlockSize,
		Comment:     pc.Comment,
	}
	if pc.Default != nil {
		v, err := coerceValue(dt, pc.Default)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		col.Default = v
	}
	return col, nil
}

func applyStep(a *alter.TableAlterer, schema *types.Schema, s PlanStep) error {
	switch {
	case s.AddColumn != nil:
		col, err := s.AddColumn.column()
		if err != nil {
			return err
		}
		a.AddColumn(*col)
	case s.DropColumn != nil:
		a.DropColumn(s.DropColumn.Name)
	case s.RenameColumn != nil:
		a.RenameColumn(s.RenameColumn.Name, s.RenameColumn.NewName)
	case s.AlterColumn != nil:
		delta, err := s.AlterColumn.delta(schema)
		if err != nil {
			return err
		}
		a.AlterColumn(s.AlterColumn.Name, *delta)
	case s.AddRangePartition != nil:
		p, err := s.AddRangePartition.partition(schema)
		if err != nil {
			return err
		}
		a.AddRangePartition(p)
	case s.DropRangePartition != nil:
		p, err := s.DropRangePartition.partition(schema)
		if err != nil {
			return err
		}
		a.DropRangePartition(p)
	default:
		return fmt.Errorf("step sets no operation")
	}
	return nil
}

func (pd *PlanDelta) delta(schema *types.Schema) (*alter.ColumnDelta, error) {
	delta := &alter.ColumnDelta{
		RenameTo:      pd.RenameTo,
		RemoveDefault: pd.RemoveDefault,
		BlockSize:     pd.BlockSize,
		Comment:       pd.Comment,
	}
	if pd.Encoding != nil {
		enc, err := types.ParseEncodingType(*pd.Encoding)
		if err != nil {
			return nil, err
		}
		delta.Encoding = &enc
	}
	if pd.Compression != nil {
		comp, err := types.ParseCompressionType(*pd.Compression)
		if err != nil {
			return nil, err
		}
		delta.Compression = &comp
	}
	if pd.Default != nil {
		v := pd.Default
		if schema != nil {
			if col, err := schema.Column(pd.Name); err == nil {
				if v, err = coerceValue(col.Type, pd.Default); err != nil {
					return nil, fmt.Errorf("default: %w", err)
				}
			}
		}
		delta.DefaultValue = v
	}
	return delta, nil
}

func (pp *PlanPartition) partition(schema *types.Schema) (*alter.RangePartition, error) {
	if schema == nil {
		return nil, fmt.Errorf("range partition steps require a schema section in the plan")
	}

	lowerKind, err := parseBoundKind(pp.LowerBound, alter.InclusiveBound)
	if err != nil {
		return nil, err
	}
	upperKind, err := parseBoundKind(pp.UpperBound, alter.ExclusiveBound)
	if err != nil {
		return nil, err
	}

	lower, err := boundRow(schema, pp.Lower)
	if err != nil {
		return nil, fmt.Errorf("lower bound: %w", err)
	}
	upper, err := boundRow(schema, pp.Upper)
	if err != nil {
		return nil, fmt.Errorf("upper bound: %w", err)
	}

	p := alter.NewRangePartitionWithBounds(lower, upper, lowerKind, upperKind)
	for _, h := range pp.Hash {
		p.AddHashDimension(h.Columns, h.Buckets, h.Seed)
	}
	if pp.Label != nil {
		p.SetDimensionLabel(*pp.Label)
	}
	return p, nil
}

// boundRow builds a partial row from the plan's bound map. An empty map means
// the bound is open in that direction.
func boundRow(schema *types.Schema, values map[string]interface{}) (*types.PartialRow, error) {
	row := types.NewPartialRow(schema)
	for name, raw := range values {
		col, err := schema.Column(name)
		if err != nil {
			return nil, err
		}
		v, err := coerceValue(col.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		if err := row.Set(name, v); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func parseBoundKind(name string, fallback alter.BoundKind) (alter.BoundKind, error) {
	switch name {
	case "":
		return fallback, nil
	case "inclusive":
		return alter.InclusiveBound, nil
	case "exclusive":
		return alter.ExclusiveBound, nil
	default:
		return 0, fmt.Errorf("unknown bound kind %q (must be inclusive or exclusive)", name)
	}
}

// coerceValue converts a YAML-decoded value into the Go type the column
// expects. YAML integers arrive as int, floats as float64.
func coerceValue(dt types.DataType, v interface{}) (interface{}, error) {
	switch dt {
	case types.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case types.TypeInt8:
		if n, ok := yamlInt(v); ok && n >= math.MinInt8 && n <= math.MaxInt8 {
			return int8(n), nil
		}
	case types.TypeInt16:
		if n, ok := yamlInt(v); ok && n >= math.MinInt16 && n <= math.MaxInt16 {
			return int16(n), nil
		}
	case types.TypeInt32:
		if n, ok := yamlInt(v); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n), nil
		}
	case types.TypeInt64:
		if n, ok := yamlInt(v); ok {
			return n, nil
		}
	case types.TypeFloat:
		if f, ok := yamlFloat(v); ok {
			return float32(f), nil
		}
	case types.TypeDouble:
		if f, ok := yamlFloat(v); ok {
			return f, nil
		}
	case types.TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case types.TypeBinary:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	}
	return nil, fmt.Errorf("value %v (%T) does not fit %s", v, v, dt)
}

func yamlInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

func yamlFloat(v interface{}) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	}
	return 0, false
}
