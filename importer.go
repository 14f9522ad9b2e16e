package tabimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/tabimport/domain/model"
)

// Store is the embedded database objects are imported into.
type Store = model.Store

// WriteTx is a scoped write transaction of a Store.
type WriteTx = model.WriteTx

// Importer drives the import pipeline. Sources are processed one at a
// time and rows one at a time; every accepted row is created in its own
// write transaction.
//
// Per source the importer inspects the header, registers the schema,
// then streams, validates and persists rows. Problems with a source only
// skip that source. Store failures abort the run.
type Importer struct {
	store     Store
	options   Options
	validator *model.RowValidator
	session   *Session
	logger    *slog.Logger
}

// NewImporter creates an importer writing to store.
func NewImporter(store Store, opts Options) *Importer {
	return &Importer{
		store:     store,
		options:   opts,
		validator: model.NewRowValidator(opts.Validation),
		session:   newSession(opts.OnCollision),
		logger:    opts.logger(),
	}
}

// WithRule adds a custom validation rule for every column named column.
func (im *Importer) WithRule(column string, rule model.Rule) *Importer {
	im.validator.WithRule(column, rule)
	return im
}

// Session returns the session accumulated so far.
func (im *Importer) Session() *Session {
	return im.session
}

// Import imports every path in order and returns the session summary.
// On a fatal error the summary so far is returned together with the error.
func (im *Importer) Import(ctx context.Context, paths []string) (*Summary, error) {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			summary := im.session.Summary()
			return &summary, err
		}
		if err := im.importFile(ctx, path); err != nil {
			summary := im.session.Summary()
			return &summary, err
		}
	}

	summary := im.session.Summary()
	im.logger.Info("import finished",
		"sources", summary.SourcesProcessed,
		"skipped", summary.SourcesSkipped,
		"accepted", summary.RowsAccepted,
		"rejected", summary.RowsRejected,
		"schemas", len(summary.Schemas),
		"dry_run", im.options.DryRun)
	return &summary, nil
}

// importFile imports every sheet of one file. Only fatal errors are returned.
func (im *Importer) importFile(ctx context.Context, path string) error {
	f := newFile(path)
	logger := im.logger.With("source", f.displayName())

	src, err := openSource(ctx, f, im.options)
	if err != nil {
		if isFatal(err) {
			return err
		}
		im.session.summary.SourcesSkipped++
		logger.Warn("skipping unreadable source", "error", err)
		return nil
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("failed to close source", "error", err)
		}
	}()

	for {
		sheet, err := src.NextSheet()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			im.session.summary.SourcesSkipped++
			logger.Warn("aborting malformed source", "error", err)
			return nil
		}

		err = im.importSheet(ctx, f, sheet, logger)
		if closeErr := sheet.Reader.Close(); closeErr != nil {
			logger.Warn("failed to close sheet", "sheet", sheet.Label, "error", closeErr)
		}
		if err == nil {
			continue
		}
		if isFatal(err) {
			return err
		}
		// the remaining sheets of a malformed file cannot be trusted
		return nil
	}
}

// importSheet runs the Inspecting, SchemaReady and Streaming steps for one
// sheet. It returns fatal errors, and ErrMalformedSource errors so that
// the caller stops reading the file; everything else is handled here.
func (im *Importer) importSheet(ctx context.Context, f *file, sheet *SheetSource, logger *slog.Logger) error {
	if sheet.Label != "" {
		logger = logger.With("sheet", sheet.Label)
	}

	mode := effectiveHeaderMode(im.options.HeaderMode, f.fileType)
	header, err := inspectHeader(sheet.Reader, mode)
	if err != nil {
		return im.skip(logger, err)
	}
	logger.Debug("header inspected", "columns", len(header.Names), "typed", header.HasTypes())
	if mode == model.HeaderSpreadsheet && header.HasTypes() {
		logger.Info("second row read as column types, not imported as data", "types", header.Tokens)
	}
	for _, unknown := range header.Unknown {
		logger.Warn("unknown column type, validating as string", "column", unknown.Column, "type", unknown.Token)
	}

	schema, err := model.NewSchemaDescriptor(model.DeriveSchemaName(f.path, sheet.Label), header.Names, header.Types)
	if err != nil {
		return im.skip(logger, err)
	}
	logger = logger.With("schema", schema.Name())

	registered, err := im.register(ctx, f, sheet.Label, schema, logger)
	if err != nil {
		if isFatal(err) {
			return err
		}
		return im.skip(logger, err)
	}

	im.session.summary.SourcesProcessed++
	accepted, rejected, err := im.stream(ctx, f, sheet.Reader, schema, registered, logger)
	logger.Info("source imported", "accepted", accepted, "rejected", rejected)
	if err != nil && !isFatal(err) {
		logger.Warn("source aborted", "line", sheet.Reader.Line(), "error", err)
	}
	return err
}

// skip counts a skipped sheet and logs why.
func (im *Importer) skip(logger *slog.Logger, err error) error {
	im.session.summary.SourcesSkipped++
	logger.Warn("skipping source", "error", err)
	if errors.Is(err, ErrMalformedSource) {
		return err
	}
	return nil
}

// register applies the collision policy and registers the resulting
// definition with the store.
func (im *Importer) register(ctx context.Context, f *file, label string, schema *model.SchemaDescriptor, logger *slog.Logger) (*model.SchemaDescriptor, error) {
	resolved, how, err := im.session.resolve(schema)
	if err != nil {
		return nil, err
	}

	switch how {
	case collisionOverwritten:
		logger.Warn("schema definition replaced by later source", "definition", resolved.String())
	case collisionMerged:
		logger.Warn("schema definition merged with later source", "definition", resolved.String())
	}

	if !im.options.DryRun {
		if err := im.store.RegisterSchema(ctx, resolved); err != nil {
			return nil, storeFatal(NewErrorContext("register schema", f.path).
				WithSheet(label).
				WithSchema(resolved.Name()).
				Error(err))
		}
	}
	im.session.commit(resolved)
	logger.Debug("schema registered", "columns", resolved.ColumnNames())
	return resolved, nil
}

// stream validates and persists every row of r. Records are zipped with
// the source's own header and validated against the registered schema.
func (im *Importer) stream(ctx context.Context, f *file, r TabularReader, source, registered *model.SchemaDescriptor, logger *slog.Logger) (int, int, error) {
	var accepted, rejected int
	for {
		if err := ctx.Err(); err != nil {
			return accepted, rejected, err
		}

		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return accepted, rejected, nil
		}
		if err != nil {
			return accepted, rejected, malformed(err)
		}

		if len(row) > source.Len() {
			logger.Debug("cells beyond the header ignored", "line", r.Line(), "cells", row[source.Len():].Strings())
		}
		rec := model.NewCandidateRecord(source, row)
		result := im.validator.Validate(rec, registered)
		for _, ruleErr := range result.RuleErrors {
			logger.Warn("validation rule failed", "line", r.Line(), "policy", im.validator.Policy().String(), "error", ruleErr)
		}
		if !result.Accepted {
			rejected++
			im.session.summary.RowsRejected++
			logger.Warn("row rejected", "line", r.Line(), "error", result.Err(), "row", rec.Strings())
			continue
		}

		if err := im.persist(ctx, f, registered, rec); err != nil {
			return accepted, rejected, err
		}
		accepted++
		im.session.summary.RowsAccepted++
	}
}

// persist creates one object in its own write transaction.
func (im *Importer) persist(ctx context.Context, f *file, schema *model.SchemaDescriptor, rec model.CandidateRecord) error {
	if im.options.DryRun {
		return nil
	}

	ec := NewErrorContext("create object", f.path).WithSchema(schema.Name())
	tx, err := im.store.BeginWrite(ctx)
	if err != nil {
		return storeFatal(ec.WithDetails("begin write").Error(err))
	}

	if err := tx.CreateObject(ctx, schema, rec); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return storeFatal(ec.Error(err))
	}

	if err := tx.Commit(); err != nil {
		return storeFatal(ec.WithDetails("commit").Error(err))
	}
	return nil
}
