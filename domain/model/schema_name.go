// Package model provides domain model for tabimport
package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// compressionExts are stripped before the format extension.
var compressionExts = []string{".gz", ".bz2", ".xz", ".zst"}

// BaseName returns the file name of path without its compression and
// format extensions: "/data/My_File.csv.gz" -> "My_File".
func BaseName(path string) string {
	fileName := filepath.Base(path)
	lower := strings.ToLower(fileName)
	for _, ext := range compressionExts {
		if strings.HasSuffix(lower, ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// DeriveSchemaName turns a file path and optional sheet label into a
// schema name. Underscores become word breaks, the first letter of every
// word is upper-cased and all whitespace is removed:
//
//	DeriveSchemaName("My_File.csv", "")    // "MyFile"
//	DeriveSchemaName("a_b_c.csv", "")      // "ABC"
//	DeriveSchemaName("sales.xlsx", "q1")   // "SalesQ1"
//
// The result may be empty; check it with ValidateSchemaName.
func DeriveSchemaName(path, sheet string) string {
	base := BaseName(path)
	if base == "" {
		return ""
	}
	if sheet != "" {
		base = base + "_" + sheet
	}
	return normalizeSchemaName(base)
}

// normalizeSchemaName applies the underscore/title-case/strip-space rule.
func normalizeSchemaName(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	var b strings.Builder
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}

// ValidateSchemaName rejects names that cannot identify an object type.
func ValidateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSchemaName)
	}
	for _, r := range name {
		if r == '"' || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidSchemaName, name, r)
		}
	}
	return nil
}
