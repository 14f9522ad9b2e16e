// Package model provides domain model for tabimport
package model

import "strings"

// TypeTag is the declared type of a column.
type TypeTag int

const (
	// TypeString accepts any value. It is the default when nothing is declared.
	TypeString TypeTag = iota
	// TypeInteger accepts whole numbers
	TypeInteger
	// TypeFloat accepts numbers with a fractional part
	TypeFloat
	// TypeDouble accepts any number
	TypeDouble
	// TypeBoolean accepts boolean values only
	TypeBoolean
	// TypeDate accepts parsed date/time values only
	TypeDate
	// TypeUnknown is an unrecognized declaration. It validates like TypeString.
	TypeUnknown
)

const (
	// sqlTypeText is the SQL TEXT type string
	sqlTypeText = "TEXT"
	// sqlTypeInteger is the SQL INTEGER type string
	sqlTypeInteger = "INTEGER"
	// sqlTypeReal is the SQL REAL type string
	sqlTypeReal = "REAL"
)

// typeTokens maps lower-case declaration tokens to tags.
var typeTokens = map[string]TypeTag{
	"string":    TypeString,
	"str":       TypeString,
	"text":      TypeString,
	"varchar":   TypeString,
	"char":      TypeString,
	"int":       TypeInteger,
	"integer":   TypeInteger,
	"long":      TypeInteger,
	"bigint":    TypeInteger,
	"smallint":  TypeInteger,
	"float":     TypeFloat,
	"double":    TypeDouble,
	"real":      TypeDouble,
	"number":    TypeDouble,
	"numeric":   TypeDouble,
	"decimal":   TypeDouble,
	"bool":      TypeBoolean,
	"boolean":   TypeBoolean,
	"date":      TypeDate,
	"datetime":  TypeDate,
	"timestamp": TypeDate,
	"time":      TypeDate,
}

// ParseTypeTag maps a declaration token to a TypeTag.
// Matching is case-insensitive. An empty token means "not declared" and
// yields TypeString; any other unrecognized token yields TypeUnknown.
func ParseTypeTag(token string) TypeTag {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return TypeString
	}
	if tag, ok := typeTokens[token]; ok {
		return tag
	}
	return TypeUnknown
}

// IsTypeToken reports whether token is a recognized, non-empty declaration.
func IsTypeToken(token string) bool {
	_, ok := typeTokens[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// String returns the canonical token for the tag.
func (t TypeTag) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBoolean:
		return "bool"
	case TypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// SQLType returns the SQLite column type used to store the tag.
func (t TypeTag) SQLType() string {
	switch t {
	case TypeInteger, TypeBoolean:
		return sqlTypeInteger
	case TypeFloat, TypeDouble:
		return sqlTypeReal
	default:
		// dates are stored as ISO8601 TEXT
		return sqlTypeText
	}
}

// checked reports whether values of this tag are type-checked at all.
func (t TypeTag) checked() bool {
	return t != TypeString && t != TypeUnknown
}
