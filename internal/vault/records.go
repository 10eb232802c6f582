package vault

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marbeck/campman/internal/generator"
)

const recordNodeType = "record"

// StoredRecord is a finished generation record read back from the vault.
type StoredRecord struct {
	ID     int64
	Name   string
	Kind   string
	Fields []RecordField
}

// RecordField is one field of a stored record, in resolution order.
type RecordField struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// SaveRecord persists a finished record as a node. The node name is the
// record's "name" field when it has one, otherwise the kind plus a timestamp;
// the kind lands in the node meta so records can be filtered by it.
func (v *Vault) SaveRecord(ctx context.Context, kind string, rec *generator.Record) (int64, error) {
	if rec == nil || rec.Len() == 0 {
		return 0, fmt.Errorf("vault: refusing to save an empty record")
	}
	fields := make([]RecordField, 0, rec.Len())
	for _, field := range rec.Fields() {
		values, _ := rec.Values(field)
		fields = append(fields, RecordField{Name: field, Values: values})
	}
	data, err := yaml.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("vault: encode record: %w", err)
	}
	name := kind + " " + time.Now().UTC().Format("2006-01-02 15:04:05")
	if vals, ok := rec.Values("name"); ok && len(vals) > 0 {
		name = vals[0]
	}
	return v.InsertNode(ctx, name, recordNodeType, kind, data)
}

// Records lists stored records, newest last. An empty kind lists every kind.
func (v *Vault) Records(ctx context.Context, kind string) ([]StoredRecord, error) {
	filter := Eq(FieldType, recordNodeType)
	if kind != "" {
		filter = filter.And(Eq(FieldMeta, kind))
	}
	nodes, err := v.Nodes(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]StoredRecord, 0, len(nodes))
	for _, node := range nodes {
		var fields []RecordField
		if err := yaml.Unmarshal(node.Data, &fields); err != nil {
			return nil, fmt.Errorf("vault: decode record %d: %w", node.ID, err)
		}
		out = append(out, StoredRecord{
			ID:     node.ID,
			Name:   node.Name,
			Kind:   node.Meta,
			Fields: fields,
		})
	}
	return out, nil
}
