package tabimport

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/tabimport/domain/model"
)

// effectiveHeaderMode resolves HeaderAuto for the given file type.
// Parquet always carries types; text and spreadsheet sources get their
// type row detected.
func effectiveHeaderMode(mode model.HeaderMode, fileType FileType) model.HeaderMode {
	if mode != model.HeaderAuto {
		return mode
	}
	if fileType == FileTypeParquet {
		return model.HeaderTyped
	}
	return model.HeaderSpreadsheet
}

// inspectHeader reads the column names and optional declared types from
// the first rows of r. A sheet without rows fails with ErrEmptySource.
func inspectHeader(r TabularReader, mode model.HeaderMode) (model.Header, error) {
	names, err := r.ReadHeaderRow()
	if errors.Is(err, io.EOF) {
		return model.Header{}, ErrEmptySource
	}
	if err != nil {
		return model.Header{}, fmt.Errorf("failed to read header row: %w", err)
	}

	header := model.Header{Names: names}
	if mode == model.HeaderPlain {
		return header, nil
	}

	tokens, ok, err := r.ReadOptionalTypeRow(mode == model.HeaderTyped)
	if err != nil {
		return model.Header{}, fmt.Errorf("failed to read type row: %w", err)
	}
	if ok {
		header.Tokens = tokens
		header.Types, header.Unknown = model.ParseTypeRow(names, tokens)
	}
	return header, nil
}
