package tabimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/tabimport/domain/model"
)

// parquetBatchSize is the number of rows per record batch read from Parquet
const parquetBatchSize = 1024

// openReaderAt returns the file as random access input. Compressed files
// are decompressed into memory first since Parquet needs random access.
func openReaderAt(f *file) (parquet.ReaderAtSeeker, func() error, error) {
	if !f.isCompressed() {
		osFile, err := os.Open(f.path) //nolint:gosec // User-provided path is necessary for file operations
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file: %w", err)
		}
		return osFile, osFile.Close, nil
	}

	reader, cleanup, err := NewCompressionFactory().CreateReaderForFile(f.path)
	if err != nil {
		return nil, nil, err
	}
	data, err := io.ReadAll(reader)
	if closeErr := cleanup(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, nil, malformed(fmt.Errorf("failed to decompress %s: %w", f.displayName(), err))
	}
	return bytes.NewReader(data), func() error { return nil }, nil
}

// xlsxSource reads the worksheets of an XLSX workbook, one sheet each.
type xlsxSource struct {
	workbook *excelize.File
	sheets   []string
	next     int
	current  *cellReader
	native   bool
}

// openXLSXSource opens an XLSX workbook.
func openXLSXSource(f *file, opts Options) (*xlsxSource, error) {
	reader, cleanup, err := NewCompressionFactory().CreateReaderForFile(f.path)
	if err != nil {
		return nil, err
	}

	// excelize buffers the whole archive, so the file can be closed right away
	workbook, err := excelize.OpenReader(reader)
	closeErr := cleanup()
	if err != nil {
		return nil, malformed(fmt.Errorf("failed to open XLSX file: %w", err))
	}
	if closeErr != nil {
		_ = workbook.Close()
		return nil, closeErr
	}

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		_ = workbook.Close()
		return nil, fmt.Errorf("%w: no sheets found in XLSX file", ErrEmptySource)
	}

	return &xlsxSource{
		workbook: workbook,
		sheets:   sheets,
		native:   opts.NativeValues,
	}, nil
}

// NextSheet opens the rows iterator of the next worksheet.
func (s *xlsxSource) NextSheet() (*SheetSource, error) {
	if s.current != nil {
		if err := s.current.Close(); err != nil {
			return nil, err
		}
		s.current = nil
	}
	if s.next >= len(s.sheets) {
		return nil, io.EOF
	}

	sheetName := s.sheets[s.next]
	s.next++

	iter, err := s.workbook.Rows(sheetName)
	if err != nil {
		return nil, malformed(fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheetName, err))
	}

	rowNum := 0
	next := func() ([]string, int, error) {
		if !iter.Next() {
			if err := iter.Error(); err != nil {
				return nil, 0, malformed(fmt.Errorf("failed to read sheet %s: %w", sheetName, err))
			}
			return nil, 0, io.EOF
		}
		rowNum++
		row, err := iter.Columns()
		if err != nil {
			return nil, 0, malformed(fmt.Errorf("failed to read row %d in sheet %s: %w", rowNum, sheetName, err))
		}
		return row, rowNum, nil
	}
	s.current = newCellReader(next, s.native, iter.Close)

	label := ""
	if len(s.sheets) > 1 {
		label = sheetName
	}
	return &SheetSource{Label: label, Reader: s.current}, nil
}

// Close closes the workbook.
func (s *xlsxSource) Close() error {
	var errs []error
	if s.current != nil {
		errs = append(errs, s.current.Close())
		s.current = nil
	}
	if s.workbook != nil {
		errs = append(errs, s.workbook.Close())
		s.workbook = nil
	}
	return errors.Join(errs...)
}

// parquetSource reads a Parquet file as a single sheet.
type parquetSource struct {
	reader *parquetReader
	served bool
}

// openParquetSource opens a Parquet file.
func openParquetSource(ctx context.Context, f *file) (*parquetSource, error) {
	reader, err := newParquetReader(ctx, f)
	if err != nil {
		return nil, err
	}
	return &parquetSource{reader: reader}, nil
}

// NextSheet returns the only sheet once.
func (s *parquetSource) NextSheet() (*SheetSource, error) {
	if s.served {
		return nil, io.EOF
	}
	s.served = true
	return &SheetSource{Reader: s.reader}, nil
}

// Close releases the Parquet reader.
func (s *parquetSource) Close() error {
	return s.reader.Close()
}

// parquetReader implements TabularReader over Arrow record batches. The
// header comes from the Arrow schema and the type row from its field types.
type parquetReader struct {
	schema      *arrow.Schema
	table       arrow.Table
	tableReader *array.TableReader
	pqReader    *pqfile.Reader
	cleanup     func() error

	batch    arrow.Record
	batchRow int
	line     int
}

// newParquetReader reads the Parquet file into an Arrow table.
func newParquetReader(ctx context.Context, f *file) (*parquetReader, error) {
	input, cleanup, err := openReaderAt(f)
	if err != nil {
		return nil, err
	}

	pqReader, err := pqfile.NewParquetReader(input)
	if err != nil {
		_ = cleanup()
		return nil, malformed(fmt.Errorf("failed to create parquet reader: %w", err))
	}

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		_ = pqReader.Close()
		_ = cleanup()
		return nil, malformed(fmt.Errorf("failed to create arrow reader: %w", err))
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		_ = pqReader.Close()
		_ = cleanup()
		return nil, malformed(fmt.Errorf("failed to read table: %w", err))
	}

	return &parquetReader{
		schema:      table.Schema(),
		table:       table,
		tableReader: array.NewTableReader(table, parquetBatchSize),
		pqReader:    pqReader,
		cleanup:     cleanup,
	}, nil
}

// ReadHeaderRow returns the field names of the Arrow schema.
func (r *parquetReader) ReadHeaderRow() ([]string, error) {
	if r.schema.NumFields() == 0 {
		return nil, io.EOF
	}
	names := make([]string, r.schema.NumFields())
	for i, field := range r.schema.Fields() {
		names[i] = field.Name
	}
	return names, nil
}

// ReadOptionalTypeRow returns the type tokens of the Arrow fields. Parquet
// sources always carry types, so force is irrelevant.
func (r *parquetReader) ReadOptionalTypeRow(bool) ([]string, bool, error) {
	tokens := make([]string, r.schema.NumFields())
	for i, field := range r.schema.Fields() {
		tokens[i] = arrowTypeTag(field.Type).String()
	}
	return tokens, true, nil
}

// Next returns the next row of native values.
func (r *parquetReader) Next() (model.RawRow, error) {
	for r.batch == nil || r.batchRow >= int(r.batch.NumRows()) {
		if !r.tableReader.Next() {
			if err := r.tableReader.Err(); err != nil {
				return nil, malformed(fmt.Errorf("error reading table records: %w", err))
			}
			return nil, io.EOF
		}
		r.batch = r.tableReader.Record()
		r.batchRow = 0
	}

	row := make(model.RawRow, r.batch.NumCols())
	for j, col := range r.batch.Columns() {
		row[j] = arrowValue(col, r.batchRow)
	}
	r.batchRow++
	r.line++
	return row, nil
}

// Line returns the 1-based row number of the last row returned.
func (r *parquetReader) Line() int {
	return r.line
}

// Close releases the Arrow table and the file.
func (r *parquetReader) Close() error {
	if r.tableReader == nil {
		return nil
	}
	r.tableReader.Release()
	r.tableReader = nil
	r.table.Release()
	return errors.Join(r.pqReader.Close(), r.cleanup())
}

// arrowTypeTag maps an Arrow data type to the declared column type.
// Floating point columns are Double because Float only accepts values
// with a fractional part.
func arrowTypeTag(dt arrow.DataType) model.TypeTag {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return model.TypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64, arrow.DECIMAL128, arrow.DECIMAL256:
		return model.TypeDouble
	case arrow.BOOL:
		return model.TypeBoolean
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return model.TypeDate
	default:
		return model.TypeString
	}
}

// arrowValue extracts row i of an Arrow column as a Value.
func arrowValue(col arrow.Array, i int) model.Value {
	if col.IsNull(i) {
		return model.NullValue()
	}

	switch arr := col.(type) {
	case *array.Int8:
		return model.IntValue(int64(arr.Value(i)))
	case *array.Int16:
		return model.IntValue(int64(arr.Value(i)))
	case *array.Int32:
		return model.IntValue(int64(arr.Value(i)))
	case *array.Int64:
		return model.IntValue(arr.Value(i))
	case *array.Uint8:
		return model.IntValue(int64(arr.Value(i)))
	case *array.Uint16:
		return model.IntValue(int64(arr.Value(i)))
	case *array.Uint32:
		return model.IntValue(int64(arr.Value(i)))
	case *array.Uint64:
		v := arr.Value(i)
		if v > math.MaxInt64 {
			return model.StringValue(strconv.FormatUint(v, 10))
		}
		return model.IntValue(int64(v))
	case *array.Float32:
		return model.FloatValue(float64(arr.Value(i)))
	case *array.Float64:
		return model.FloatValue(arr.Value(i))
	case *array.Boolean:
		return model.BoolValue(arr.Value(i))
	case *array.String:
		return model.ParseText(arr.Value(i), false)
	case *array.LargeString:
		return model.ParseText(arr.Value(i), false)
	case *array.Binary:
		return model.ParseText(string(arr.Value(i)), false)
	case *array.Date32:
		return model.DateValue(arr.Value(i).ToTime())
	case *array.Date64:
		return model.DateValue(arr.Value(i).ToTime())
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return model.DateValue(arr.Value(i).ToTime(unit))
	default:
		return model.ParseText(col.ValueStr(i), false)
	}
}
