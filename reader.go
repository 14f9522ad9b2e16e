package tabimport

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/tabimport/domain/model"
)

// TabularReader is a forward-only, non-restartable reader over the rows of
// one sheet.
type TabularReader interface {
	// ReadHeaderRow returns the first non-empty row, or io.EOF when the
	// sheet has none.
	ReadHeaderRow() ([]string, error)
	// ReadOptionalTypeRow returns the row following the header as type
	// tokens. With force set the row is always consumed; otherwise it is
	// consumed only when it looks like a type row and is left in place as
	// data when it does not. ok is false when no type row was read.
	ReadOptionalTypeRow(force bool) (tokens []string, ok bool, err error)
	// Next returns the next data row, or io.EOF when the sheet is exhausted.
	Next() (model.RawRow, error)
	// Line returns the 1-based source line of the row last returned.
	Line() int
	// Close releases the sheet.
	Close() error
}

// SheetSource is one sheet of an input file. Files without sheets have a
// single SheetSource with an empty label.
type SheetSource struct {
	Label  string
	Reader TabularReader
}

// sourceFile yields the sheets of an opened input file in order.
type sourceFile interface {
	// NextSheet returns the next sheet, or io.EOF after the last one.
	// Unread rows of the previous sheet are discarded.
	NextSheet() (*SheetSource, error)
	Close() error
}

// rowFunc returns the next row of cells with its source line.
type rowFunc func() ([]string, int, error)

// cellReader adapts a function producing text rows to TabularReader.
type cellReader struct {
	next   rowFunc
	native bool
	// pending is a row pushed back by ReadOptionalTypeRow.
	pending     []string
	pendingLine int
	hasPending  bool
	line        int
	closer      func() error
}

// newCellReader creates a reader over text rows. native enables boolean
// and datetime detection.
func newCellReader(next rowFunc, native bool, closer func() error) *cellReader {
	return &cellReader{
		next:   next,
		native: native,
		closer: closer,
	}
}

// readRow returns the pushed back row or reads a new one.
func (r *cellReader) readRow() ([]string, error) {
	if r.hasPending {
		r.hasPending = false
		r.line = r.pendingLine
		return r.pending, nil
	}
	row, line, err := r.next()
	if err != nil {
		return nil, err
	}
	r.line = line
	return row, nil
}

// unread pushes row back so that the next read returns it again.
func (r *cellReader) unread(row []string) {
	r.pending = row
	r.pendingLine = r.line
	r.hasPending = true
}

// ReadHeaderRow skips leading blank rows and returns the first non-empty row.
func (r *cellReader) ReadHeaderRow() ([]string, error) {
	for {
		row, err := r.readRow()
		if err != nil {
			return nil, err
		}
		if !model.IsBlankRow(row) {
			return row, nil
		}
	}
}

// ReadOptionalTypeRow reads the row following the header as type tokens.
func (r *cellReader) ReadOptionalTypeRow(force bool) ([]string, bool, error) {
	row, err := r.readRow()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if force || model.LooksLikeTypeRow(row) {
		return row, true, nil
	}
	r.unread(row)
	return nil, false, nil
}

// Next returns the next non-blank data row.
func (r *cellReader) Next() (model.RawRow, error) {
	for {
		row, err := r.readRow()
		if err != nil {
			return nil, err
		}
		if model.IsBlankRow(row) {
			continue
		}
		return model.ParseTextRow(row, r.native), nil
	}
}

// Line returns the source line of the last row read.
func (r *cellReader) Line() int {
	return r.line
}

// Close releases the sheet.
func (r *cellReader) Close() error {
	if r.closer == nil {
		return nil
	}
	closer := r.closer
	r.closer = nil
	return closer()
}

// delimitedSource reads CSV and TSV files. With a sheet delimiter set, a
// record whose only non-empty field equals the delimiter ends the current
// sheet and starts the next one.
type delimitedSource struct {
	csvReader *csv.Reader
	cleanup   func() error
	delimiter string
	// sheets counts the sheets handed out so far.
	sheets int
	// current is the sheet being read.
	current *cellReader
	// sawDelimiter is set when the current sheet ended at a delimiter line.
	sawDelimiter bool
	// pending holds a record read ahead to check that a sheet follows.
	pending     []string
	pendingLine int
	// done is set once the underlying reader hit EOF.
	done   bool
	native bool
}

// openDelimitedSource opens a CSV or TSV file.
func openDelimitedSource(f *file, opts Options) (*delimitedSource, error) {
	reader, cleanup, err := NewCompressionFactory().CreateReaderForFile(f.path)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	if f.fileType == FileTypeTSV {
		csvReader.Comma = tsvDelimiter
	} else {
		csvReader.Comma = csvDelimiter
	}
	// rows may be shorter or longer than the header
	csvReader.FieldsPerRecord = -1

	return &delimitedSource{
		csvReader: csvReader,
		cleanup:   cleanup,
		delimiter: strings.TrimSpace(opts.SheetDelimiter),
		native:    opts.NativeValues,
	}, nil
}

// isDelimiterLine reports whether record separates two sheets.
func (s *delimitedSource) isDelimiterLine(record []string) bool {
	if s.delimiter == "" {
		return false
	}
	found := false
	for _, field := range record {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if field != s.delimiter || found {
			return false
		}
		found = true
	}
	return found
}

// readRecord reads the next record of the current sheet.
func (s *delimitedSource) readRecord() ([]string, int, error) {
	if s.done || s.sawDelimiter {
		return nil, 0, io.EOF
	}
	record, line, err := s.next()
	if err != nil {
		return nil, 0, err
	}
	if s.isDelimiterLine(record) {
		s.sawDelimiter = true
		return nil, 0, io.EOF
	}
	return record, line, nil
}

// next returns the pending record, or reads one from the file.
func (s *delimitedSource) next() ([]string, int, error) {
	if s.pending != nil {
		record := s.pending
		s.pending = nil
		return record, s.pendingLine, nil
	}
	record, err := s.csvReader.Read()
	if errors.Is(err, io.EOF) {
		s.done = true
		return nil, 0, io.EOF
	}
	if err != nil {
		return nil, 0, malformed(err)
	}
	line, _ := s.csvReader.FieldPos(0)
	return record, line, nil
}

// NextSheet returns the next section of the file. A delimiter line at the
// end of the file does not start another sheet.
func (s *delimitedSource) NextSheet() (*SheetSource, error) {
	if s.current != nil {
		// drain what the previous consumer left unread
		for {
			if _, _, err := s.readRecord(); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, err
			}
		}
		if s.done {
			return nil, io.EOF
		}
		s.sawDelimiter = false

		record, line, err := s.next()
		if err != nil {
			return nil, err
		}
		s.pending, s.pendingLine = record, line
	}

	s.sheets++
	s.current = newCellReader(s.readRecord, s.native, nil)

	label := ""
	if s.delimiter != "" {
		label = strconv.Itoa(s.sheets)
	}
	return &SheetSource{Label: label, Reader: s.current}, nil
}

// Close closes the underlying file.
func (s *delimitedSource) Close() error {
	if s.cleanup == nil {
		return nil
	}
	cleanup := s.cleanup
	s.cleanup = nil
	return cleanup()
}
