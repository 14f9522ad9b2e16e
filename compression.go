package tabimport

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType is the compression applied to an input file
type CompressionType int

const (
	// CompressionNone is an uncompressed file
	CompressionNone CompressionType = iota
	// CompressionGZ is gzip compression
	CompressionGZ
	// CompressionBZ2 is bzip2 compression
	CompressionBZ2
	// CompressionXZ is xz compression
	CompressionXZ
	// CompressionZSTD is zstd compression
	CompressionZSTD
)

// String returns the name of the compression type
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gzip"
	case CompressionBZ2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionBZ2:
		return extBZ2
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// CompressionHandler wraps readers with a decompressor
type CompressionHandler interface {
	// CreateReader wraps an io.Reader with a decompression reader if needed
	CreateReader(reader io.Reader) (io.Reader, func() error, error)
}

// compressionHandlerImpl implements the CompressionHandler interface
type compressionHandlerImpl struct {
	compressionType CompressionType
}

// NewCompressionHandler creates a new compression handler for the given compression type
func NewCompressionHandler(compressionType CompressionType) CompressionHandler {
	return &compressionHandlerImpl{
		compressionType: compressionType,
	}
}

// CreateReader creates a decompression reader based on the compression type
func (h *compressionHandlerImpl) CreateReader(reader io.Reader) (io.Reader, func() error, error) {
	switch h.compressionType {
	case CompressionNone:
		return reader, func() error { return nil }, nil

	case CompressionGZ:
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		// bzip2.NewReader doesn't need closing
		return bzip2.NewReader(reader), func() error { return nil }, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, func() error { return nil }, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type: %v", h.compressionType)
	}
}

// CompressionFactory resolves compression and format from file paths
type CompressionFactory struct{}

// NewCompressionFactory creates a new compression factory
func NewCompressionFactory() *CompressionFactory {
	return &CompressionFactory{}
}

// DetectCompressionType detects the compression type from a file path
func (f *CompressionFactory) DetectCompressionType(path string) CompressionType {
	path = strings.ToLower(path)

	switch {
	case strings.HasSuffix(path, extGZ):
		return CompressionGZ
	case strings.HasSuffix(path, extBZ2):
		return CompressionBZ2
	case strings.HasSuffix(path, extXZ):
		return CompressionXZ
	case strings.HasSuffix(path, extZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// CreateReaderForFile opens a file and returns a reader that handles decompression.
// The returned cleanup function closes both the decompressor and the file.
func (f *CompressionFactory) CreateReaderForFile(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	handler := NewCompressionHandler(f.DetectCompressionType(path))
	reader, cleanup, err := handler.CreateReader(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	compositeCleanup := func() error {
		var cleanupErr error
		if cleanup != nil {
			cleanupErr = cleanup()
		}
		if closeErr := file.Close(); closeErr != nil && cleanupErr == nil {
			cleanupErr = closeErr
		}
		return cleanupErr
	}

	return reader, compositeCleanup, nil
}

// RemoveCompressionExtension removes the compression extension from a file path if present
func (f *CompressionFactory) RemoveCompressionExtension(path string) string {
	ext := f.DetectCompressionType(path).Extension()
	return path[:len(path)-len(ext)]
}

// GetBaseFileType determines the base file type after removing compression extensions
func (f *CompressionFactory) GetBaseFileType(path string) FileType {
	basePath := f.RemoveCompressionExtension(path)
	ext := strings.ToLower(filepath.Ext(basePath))

	switch ext {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extParquet:
		return FileTypeParquet
	case extXLSX:
		return FileTypeXLSX
	default:
		return FileTypeUnsupported
	}
}
