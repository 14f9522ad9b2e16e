package tabimport

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/tabimport/domain/model"
)

// validator handles validation logic for Builder inputs
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath checks that an explicit input path exists and, for files,
// has a supported extension.
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	if !info.IsDir() && !isSupportedFile(path) {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, path, strings.Join(supportedExtensions(), ", "))
	}
	return nil
}

// validateInputDir checks the folder scanned when no explicit files are given.
// A missing folder is reported with ErrFileNotFound.
func (v *validator) validateInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: input folder %s", ErrFileNotFound, dir)
		}
		return fmt.Errorf("failed to stat input folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path exists but is not a directory: %s", dir)
	}
	return nil
}

// validateOptions rejects option values the importer cannot honor.
func (v *validator) validateOptions(opts Options) error {
	switch opts.HeaderMode {
	case model.HeaderAuto, model.HeaderPlain, model.HeaderTyped, model.HeaderSpreadsheet:
	default:
		return fmt.Errorf("%w: unknown header mode %d", ErrInvalidOptions, opts.HeaderMode)
	}

	switch opts.OnCollision {
	case CollisionOverwrite, CollisionReject, CollisionMerge:
	default:
		return fmt.Errorf("%w: unknown collision policy %d", ErrInvalidOptions, opts.OnCollision)
	}

	switch opts.Validation {
	case model.ValidationLenient, model.ValidationStrict:
	default:
		return fmt.Errorf("%w: unknown validation policy %d", ErrInvalidOptions, opts.Validation)
	}

	if strings.ContainsAny(opts.SheetDelimiter, "\r\n") {
		return fmt.Errorf("%w: sheet delimiter must fit on one line", ErrInvalidOptions)
	}
	return nil
}
