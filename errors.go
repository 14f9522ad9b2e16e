package tabimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/tabimport/domain/model"
)

// Standard error values. Per-source errors are recoverable and only skip
// the source; ErrStoreFatal aborts the whole run.
var (
	// ErrEmptySource indicates that a source has no header row
	ErrEmptySource = errors.New("tabimport: empty source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("tabimport: unsupported file format")

	// ErrMalformedSource indicates a source that could not be parsed
	ErrMalformedSource = errors.New("tabimport: malformed source")

	// ErrSchemaCollision indicates that two sources derive the same schema name
	// and the collision policy is CollisionReject
	ErrSchemaCollision = errors.New("tabimport: schema name collision")

	// ErrStoreFatal wraps every error returned by the target store
	ErrStoreFatal = errors.New("tabimport: store failure")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("tabimport: file not found")

	// ErrInvalidOptions indicates an invalid Options value
	ErrInvalidOptions = errors.New("tabimport: invalid options")

	// ErrDuplicateColumn indicates a header with a repeated column name
	ErrDuplicateColumn = model.ErrDuplicateColumnName

	// ErrEmptyColumnName indicates a header with a blank column name
	ErrEmptyColumnName = model.ErrEmptyColumnName

	// ErrReservedColumnName indicates a header using the object id column name
	ErrReservedColumnName = model.ErrReservedColumnName

	// ErrInvalidSchemaName indicates that the derived schema name is empty or invalid
	ErrInvalidSchemaName = model.ErrInvalidSchemaName

	// ErrRowRejected indicates a row that failed validation
	ErrRowRejected = model.ErrRowRejected
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Sheet     string
	Schema    string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithSheet adds sheet context to the error
func (ec *ErrorContext) WithSheet(sheet string) *ErrorContext {
	ec.Sheet = sheet
	return ec
}

// WithSchema adds schema context to the error
func (ec *ErrorContext) WithSchema(schema string) *ErrorContext {
	ec.Schema = schema
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("tabimport: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Sheet != "" {
		parts = append(parts, "sheet: "+ec.Sheet)
	}

	if ec.Schema != "" {
		parts = append(parts, "schema: "+ec.Schema)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	msg := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", msg, baseErr)
	}
	return errors.New(msg)
}

// storeFatal marks err as a store failure.
func storeFatal(err error) error {
	if err == nil || errors.Is(err, ErrStoreFatal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFatal, err)
}

// malformed marks err as a parse failure of the current source.
func malformed(err error) error {
	if err == nil || errors.Is(err, ErrMalformedSource) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrMalformedSource, err)
}

// isFatal reports whether err must abort the run.
func isFatal(err error) bool {
	return errors.Is(err, ErrStoreFatal) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
