// Package model provides domain model for tabimport
package model

import (
	"fmt"
	"strings"
)

// HeaderMode selects how column names and declared types are read.
type HeaderMode int

const (
	// HeaderAuto picks a mode from the source kind
	HeaderAuto HeaderMode = iota
	// HeaderPlain reads names from the first row; every column is a string
	HeaderPlain
	// HeaderTyped reads names from the first row and type tokens from the second
	HeaderTyped
	// HeaderSpreadsheet reads names from the first non-empty row and treats
	// the second row as type tokens only when it looks like one
	HeaderSpreadsheet
)

// String returns the flag spelling of the mode.
func (m HeaderMode) String() string {
	switch m {
	case HeaderPlain:
		return "plain"
	case HeaderTyped:
		return "typed"
	case HeaderSpreadsheet:
		return "spreadsheet"
	default:
		return "auto"
	}
}

// ParseHeaderMode parses the flag spelling of a mode.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return HeaderAuto, nil
	case "plain":
		return HeaderPlain, nil
	case "typed":
		return HeaderTyped, nil
	case "spreadsheet":
		return HeaderSpreadsheet, nil
	default:
		return HeaderAuto, fmt.Errorf("unknown header mode %q", s)
	}
}

// UnknownTypeToken records a declaration that could not be recognized.
type UnknownTypeToken struct {
	Column string
	Token  string
}

// Header is the result of inspecting a source's first rows.
type Header struct {
	// Names are the column names in source order.
	Names []string
	// Types are the declared types; nil when the source has no type row.
	Types []TypeTag
	// Tokens is the type row as read; nil when the source has no type row.
	Tokens []string
	// Unknown lists unrecognized declarations (typed as TypeUnknown).
	Unknown []UnknownTypeToken
}

// HasTypes reports whether declared types were read.
func (h Header) HasTypes() bool {
	return h.Types != nil
}

// ParseTypeRow maps type tokens to tags for a header of the given names.
// A short row is filled with TypeString; extra tokens are ignored.
func ParseTypeRow(names, tokens []string) ([]TypeTag, []UnknownTypeToken) {
	types := make([]TypeTag, len(names))
	var unknown []UnknownTypeToken
	for i := range names {
		if i >= len(tokens) {
			types[i] = TypeString
			continue
		}
		types[i] = ParseTypeTag(tokens[i])
		if types[i] == TypeUnknown {
			unknown = append(unknown, UnknownTypeToken{
				Column: strings.TrimSpace(names[i]),
				Token:  tokens[i],
			})
		}
	}
	return types, unknown
}

// LooksLikeTypeRow reports whether every non-empty cell of row is a
// recognized type token and at least one cell is non-empty.
func LooksLikeTypeRow(row []string) bool {
	seen := false
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if !IsTypeToken(cell) {
			return false
		}
		seen = true
	}
	return seen
}

// IsBlankRow reports whether every cell of row is empty.
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
