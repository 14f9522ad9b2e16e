package tabimport

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// FileType represents a supported input format, ignoring compression
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

const (
	// csvDelimiter is the CSV field separator
	csvDelimiter = ','
	// tsvDelimiter is the TSV field separator
	tsvDelimiter = '\t'
)

// String returns the name of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// file is an input file resolved to its format and compression
type file struct {
	path            string
	fileType        FileType
	compressionType CompressionType
}

// newFile creates a file from its path
func newFile(path string) *file {
	factory := NewCompressionFactory()
	return &file{
		path:            path,
		fileType:        factory.GetBaseFileType(path),
		compressionType: factory.DetectCompressionType(path),
	}
}

// isCompressed reports whether the file is compressed
func (f *file) isCompressed() bool {
	return f.compressionType != CompressionNone
}

// isSupportedFile checks if the file has a supported extension
func isSupportedFile(path string) bool {
	return newFile(path).fileType != FileTypeUnsupported
}

// supportedExtensions returns every accepted extension, compressed variants included
func supportedExtensions() []string {
	baseExts := []string{extCSV, extTSV, extXLSX, extParquet}
	compressionExts := []string{"", extGZ, extBZ2, extXZ, extZSTD}

	exts := make([]string, 0, len(baseExts)*len(compressionExts))
	for _, base := range baseExts {
		for _, comp := range compressionExts {
			exts = append(exts, base+comp)
		}
	}
	return exts
}

// displayName returns the file name for log output
func (f *file) displayName() string {
	return filepath.Base(f.path)
}

// openSource opens the file and returns its sheets.
func openSource(ctx context.Context, f *file, opts Options) (sourceFile, error) {
	switch f.fileType {
	case FileTypeCSV, FileTypeTSV:
		return openDelimitedSource(f, opts)
	case FileTypeXLSX:
		return openXLSXSource(f, opts)
	case FileTypeParquet:
		return openParquetSource(ctx, f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.ToLower(filepath.Ext(f.path)))
	}
}
