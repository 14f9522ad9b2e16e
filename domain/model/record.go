// Package model provides domain model for tabimport
package model

// Field is one named value of a candidate record.
type Field struct {
	Name  string
	Value Value
}

// CandidateRecord is a row matched to column names, prior to validation.
// Fields follow the schema's column order.
type CandidateRecord struct {
	fields []Field
}

// NewCandidateRecord zips the schema's columns with row by position.
// Missing trailing cells are null; cells beyond the last column are dropped.
func NewCandidateRecord(schema *SchemaDescriptor, row RawRow) CandidateRecord {
	fields := make([]Field, len(schema.columns))
	for i, c := range schema.columns {
		v := NullValue()
		if i < len(row) {
			v = row[i]
		}
		fields[i] = Field{Name: c.Name, Value: v}
	}
	return CandidateRecord{fields: fields}
}

// Fields returns the record's fields.
func (r CandidateRecord) Fields() []Field {
	return r.fields
}

// Strings returns name=value pairs, for log output.
func (r CandidateRecord) Strings() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name + "=" + f.Value.String()
	}
	return out
}
