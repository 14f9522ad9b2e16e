package tabimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/tabimport/domain/model"
)

// Builder configures the inputs and options of an import run.
// Use NewBuilder to create a new instance, then chain method calls to configure it.
//
// The typical usage pattern is:
//
//	builder, err := tabimport.NewBuilder().SetInputDir("csv_files").Build(ctx)
//	if err != nil {
//		return err
//	}
//	summary, err := builder.Run(ctx, store)
type Builder struct {
	// paths contains explicit file or directory paths
	paths []string
	// inputDir is scanned when no explicit path is given
	inputDir string
	// recursive walks subdirectories of directory inputs
	recursive bool
	// options configures the importer
	options Options
	// rules are custom validation rules keyed by column name
	rules []columnRule
	// collectedPaths contains all files after Build validation
	collectedPaths []string
	// built is set once Build succeeded
	built bool
}

// columnRule is a custom validation rule for one column name
type columnRule struct {
	column string
	rule   model.Rule
}

// DefaultInputDir is the folder scanned when no explicit files are given.
const DefaultInputDir = "csv_files"

// NewBuilder creates a new builder with DefaultOptions and DefaultInputDir.
func NewBuilder() *Builder {
	return &Builder{
		paths:    make([]string, 0),
		inputDir: DefaultInputDir,
		options:  DefaultOptions(),
	}
}

// AddPath adds a file or directory path. When at least one path is added
// the input folder is not scanned.
//
// Supported file extensions: .csv, .tsv, .xlsx, .parquet
// Supported compression: .gz, .bz2, .xz, .zst
//
// Returns the builder for method chaining.
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple file or directory paths.
// Returns the builder for method chaining.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// SetInputDir sets the folder scanned when no explicit path is given.
// Returns the builder for method chaining.
func (b *Builder) SetInputDir(dir string) *Builder {
	b.inputDir = dir
	return b
}

// SetRecursive makes directory inputs include subdirectories.
// Returns the builder for method chaining.
func (b *Builder) SetRecursive(recursive bool) *Builder {
	b.recursive = recursive
	return b
}

// SetOptions replaces the importer options.
// Returns the builder for method chaining.
func (b *Builder) SetOptions(opts Options) *Builder {
	b.options = opts
	return b
}

// AddRule adds a custom validation rule for every column named column.
// Returns the builder for method chaining.
func (b *Builder) AddRule(column string, rule model.Rule) *Builder {
	b.rules = append(b.rules, columnRule{column: column, rule: rule})
	return b
}

// Build validates the options and collects the input files. Missing or
// unsupported explicit files and a missing input folder are logged and
// skipped, so a successful Build may collect no files at all.
//
// Returns the same builder instance for method chaining, or an error if validation fails.
func (b *Builder) Build(ctx context.Context) (*Builder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := newValidator()
	if err := v.validateOptions(b.options); err != nil {
		return nil, err
	}
	for _, r := range b.rules {
		if r.rule == nil {
			return nil, fmt.Errorf("%w: nil rule for column %q", ErrInvalidOptions, r.column)
		}
	}

	fp := newFileProcessor(b.options.logger())

	var (
		paths []string
		err   error
	)
	if len(b.paths) > 0 {
		paths, err = fp.collectFilesFromPaths(b.paths, b.recursive)
	} else {
		if b.inputDir == "" {
			return nil, errors.New("at least one path or an input folder must be provided")
		}
		paths, err = fp.collectFilesFromInputDir(b.inputDir, b.recursive)
	}
	if err != nil {
		return nil, err
	}

	b.collectedPaths = paths
	b.built = true
	return b, nil
}

// CollectedPaths returns the files collected by Build, in import order.
func (b *Builder) CollectedPaths() []string {
	return append([]string(nil), b.collectedPaths...)
}

// Run imports the collected files into store. Build must be called first.
// The store is not closed.
func (b *Builder) Run(ctx context.Context, store Store) (*Summary, error) {
	if !b.built {
		return nil, errors.New("no inputs collected, did you call Build()?")
	}
	if store == nil && !b.options.DryRun {
		return nil, errors.New("store cannot be nil")
	}

	importer := NewImporter(store, b.options)
	for _, r := range b.rules {
		importer.WithRule(r.column, r.rule)
	}
	return importer.Import(ctx, b.collectedPaths)
}
