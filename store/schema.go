// Package store provides the embedded databases imported objects are
// written to: SQLite (one table per schema) and bbolt (one bucket per
// schema, objects encoded as JSON).
package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/tabimport/domain/model"
)

// IDField is the primary key added to every persisted object. Headers
// cannot use it; see model.NewSchemaDescriptor.
const IDField = model.ReservedColumn

// schemaDocument is the persisted form of a schema definition.
type schemaDocument struct {
	Name    string           `json:"name"`
	Columns []columnDocument `json:"columns"`
}

// columnDocument is the persisted form of a column definition.
type columnDocument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// encodeSchema serializes a schema definition.
func encodeSchema(schema *model.SchemaDescriptor) ([]byte, error) {
	doc := schemaDocument{Name: schema.Name()}
	for _, c := range schema.Columns() {
		doc.Columns = append(doc.Columns, columnDocument{Name: c.Name, Type: c.DeclaredType.String()})
	}
	return json.Marshal(doc)
}

// decodeSchema parses a schema definition written by encodeSchema.
func decodeSchema(data []byte) (*model.SchemaDescriptor, error) {
	var doc schemaDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema definition: %w", err)
	}

	names := make([]string, len(doc.Columns))
	types := make([]model.TypeTag, len(doc.Columns))
	for i, c := range doc.Columns {
		names[i] = c.Name
		types[i] = model.ParseTypeTag(c.Type)
	}
	return model.NewSchemaDescriptor(doc.Name, names, types)
}

// quoteIdentifier quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// fieldValue converts a field to the value stored for a column of type tag.
// Booleans become 0/1 and dates RFC3339 text, matching the SQLite column
// affinity of the tag.
func fieldValue(v model.Value, tag model.TypeTag) any {
	switch native := v.Native(tag).(type) {
	case bool:
		if native {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return native.Format(time.RFC3339Nano)
	default:
		return native
	}
}
