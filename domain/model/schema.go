// Package model provides domain model for tabimport
package model

import (
	"fmt"
	"strings"
)

// ColumnSpec is one typed column of a schema.
type ColumnSpec struct {
	Name         string
	DeclaredType TypeTag
}

// SchemaDescriptor is a named, ordered set of typed columns. It is
// immutable once created.
type SchemaDescriptor struct {
	// name is derived from the source file (and sheet).
	name string
	// columns are kept in header order.
	columns []ColumnSpec
	// index maps a lower-cased column name to its position.
	index map[string]int
}

// ReservedColumn is the object id column every store adds to a schema.
const ReservedColumn = "_id"

// NewSchemaDescriptor builds a descriptor from header names and optional
// declared types. types may be shorter than names; missing entries are
// TypeString and extra entries are ignored.
//
// Column names are trimmed. A blank name fails with ErrEmptyColumnName,
// ReservedColumn fails with ErrReservedColumnName and a name repeated
// (ignoring case, as SQLite does) fails with a *DuplicateColumnError.
func NewSchemaDescriptor(name string, names []string, types []TypeTag) (*SchemaDescriptor, error) {
	if err := ValidateSchemaName(name); err != nil {
		return nil, err
	}

	columns := make([]ColumnSpec, len(names))
	index := make(map[string]int, len(names))
	for i, raw := range names {
		col := strings.TrimSpace(raw)
		if col == "" {
			return nil, fmt.Errorf("%w at column %d", ErrEmptyColumnName, i+1)
		}
		if strings.EqualFold(col, ReservedColumn) {
			return nil, fmt.Errorf("%w: %q at column %d", ErrReservedColumnName, col, i+1)
		}
		key := strings.ToLower(col)
		if first, ok := index[key]; ok {
			return nil, &DuplicateColumnError{Column: col, Index: i, FirstIndex: first}
		}
		index[key] = i

		tag := TypeString
		if i < len(types) {
			tag = types[i]
		}
		columns[i] = ColumnSpec{Name: col, DeclaredType: tag}
	}

	return &SchemaDescriptor{name: name, columns: columns, index: index}, nil
}

// Name returns the schema name.
func (s *SchemaDescriptor) Name() string {
	return s.name
}

// Columns returns a copy of the column list in header order.
func (s *SchemaDescriptor) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(s.columns))
	copy(out, s.columns)
	return out
}

// ColumnNames returns the column names in header order.
func (s *SchemaDescriptor) ColumnNames() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Len returns the number of columns.
func (s *SchemaDescriptor) Len() int {
	return len(s.columns)
}

// Column looks up a column by name, ignoring case.
func (s *SchemaDescriptor) Column(name string) (ColumnSpec, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return ColumnSpec{}, false
	}
	return s.columns[i], true
}

// Equal reports whether both descriptors have the same name and columns.
func (s *SchemaDescriptor) Equal(other *SchemaDescriptor) bool {
	if s.name != other.name || len(s.columns) != len(other.columns) {
		return false
	}
	for i, c := range s.columns {
		if c != other.columns[i] {
			return false
		}
	}
	return true
}

// Merge returns a descriptor holding the columns of s followed by the
// columns of other that s does not have. When both declare the same column
// (ignoring case) the name and type from s are kept.
func (s *SchemaDescriptor) Merge(other *SchemaDescriptor) *SchemaDescriptor {
	columns := s.Columns()
	index := make(map[string]int, len(columns)+len(other.columns))
	for k, v := range s.index {
		index[k] = v
	}
	for _, c := range other.columns {
		key := strings.ToLower(c.Name)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(columns)
		columns = append(columns, c)
	}
	return &SchemaDescriptor{name: s.name, columns: columns, index: index}
}

// String renders the descriptor as Name{col:type, ...}.
func (s *SchemaDescriptor) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.Name + ":" + c.DeclaredType.String()
	}
	return s.name + "{" + strings.Join(parts, ", ") + "}"
}
