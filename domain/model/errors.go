// Package model provides domain model for tabimport
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateColumnName is returned when a header contains the same column name twice
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrEmptyColumnName is returned when a header contains a blank column name
	ErrEmptyColumnName = errors.New("empty column name")

	// ErrReservedColumnName is returned when a header uses the column name stores add themselves
	ErrReservedColumnName = errors.New("reserved column name")

	// ErrInvalidSchemaName is returned when a derived schema name cannot be registered
	ErrInvalidSchemaName = errors.New("invalid schema name")

	// ErrRowRejected is returned when a candidate record fails validation
	ErrRowRejected = errors.New("row rejected")

	// ErrSchemaNotFound is returned by stores for an unregistered schema name
	ErrSchemaNotFound = errors.New("schema not found")
)

// DuplicateColumnError describes a repeated column name in a header row.
type DuplicateColumnError struct {
	// Column is the repeated name.
	Column string
	// Index is the 0-based position of the repetition.
	Index int
	// FirstIndex is the 0-based position where the name first appeared.
	FirstIndex int
}

// Error implements error.
func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("%s: %q at column %d (first seen at column %d)",
		ErrDuplicateColumnName, e.Column, e.Index+1, e.FirstIndex+1)
}

// Unwrap allows errors.Is(err, ErrDuplicateColumnName).
func (e *DuplicateColumnError) Unwrap() error {
	return ErrDuplicateColumnName
}

// RowRejectedError lists the columns that caused a record to be rejected.
type RowRejectedError struct {
	Offending []string
}

// Error implements error.
func (e *RowRejectedError) Error() string {
	return fmt.Sprintf("%s: invalid columns [%s]", ErrRowRejected, strings.Join(e.Offending, ", "))
}

// Unwrap allows errors.Is(err, ErrRowRejected).
func (e *RowRejectedError) Unwrap() error {
	return ErrRowRejected
}
