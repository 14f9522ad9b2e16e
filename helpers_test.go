package tabimport

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/tabimport/domain/model"
	"github.com/ulikunitz/xz"
)

// quietOptions returns DefaultOptions with logging discarded.
func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

// writeTestFile writes content below dir and returns the full path.
func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// compressData compresses data with a compression that has a writer.
func compressData(t *testing.T, ct CompressionType, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch ct {
	case CompressionNone:
		buf.Write(data)
	case CompressionGZ:
		w := gzip.NewWriter(&buf)
		_, _ = w.Write(data)
		_ = w.Close()
	case CompressionXZ:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("failed to create xz writer: %v", err)
		}
		_, _ = w.Write(data)
		_ = w.Close()
	case CompressionZSTD:
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("failed to create zstd writer: %v", err)
		}
		_, _ = w.Write(data)
		_ = w.Close()
	default:
		t.Fatalf("no writer for %s", ct)
	}
	return buf.Bytes()
}

// memoryStore is an in-memory Store recording what the importer writes.
// Setting failAfter makes the n-th CreateObject call (1-based) fail.
type memoryStore struct {
	mu          sync.Mutex
	schemas     map[string]*model.SchemaDescriptor
	objects     map[string][]map[string]model.Value
	registered  []string
	creates     int
	failAfter   int
	failOnSetup bool
}

var errStoreBroken = errors.New("disk on fire")

func newMemoryStore() *memoryStore {
	return &memoryStore{
		schemas: make(map[string]*model.SchemaDescriptor),
		objects: make(map[string][]map[string]model.Value),
	}
}

func (s *memoryStore) RegisterSchema(_ context.Context, schema *model.SchemaDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOnSetup {
		return errStoreBroken
	}
	s.schemas[schema.Name()] = schema
	s.registered = append(s.registered, schema.Name())
	return nil
}

func (s *memoryStore) Schema(_ context.Context, name string) (*model.SchemaDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.schemas[name]
	if !ok {
		return nil, model.ErrSchemaNotFound
	}
	return schema, nil
}

func (s *memoryStore) BeginWrite(_ context.Context) (model.WriteTx, error) {
	return &memoryTx{store: s}, nil
}

func (s *memoryStore) Close() error {
	return nil
}

// rows returns the committed objects of a schema.
func (s *memoryStore) rows(name string) []map[string]model.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[name]
}

type memoryTx struct {
	store   *memoryStore
	pending []struct {
		schema string
		object map[string]model.Value
	}
}

func (tx *memoryTx) CreateObject(_ context.Context, schema *model.SchemaDescriptor, rec model.CandidateRecord) error {
	tx.store.mu.Lock()
	tx.store.creates++
	fail := tx.store.failAfter > 0 && tx.store.creates >= tx.store.failAfter
	tx.store.mu.Unlock()
	if fail {
		return errStoreBroken
	}

	object := make(map[string]model.Value)
	for _, f := range rec.Fields() {
		if _, ok := schema.Column(f.Name); ok {
			object[f.Name] = f.Value
		}
	}
	tx.pending = append(tx.pending, struct {
		schema string
		object map[string]model.Value
	}{schema.Name(), object})
	return nil
}

func (tx *memoryTx) Commit() error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, p := range tx.pending {
		tx.store.objects[p.schema] = append(tx.store.objects[p.schema], p.object)
	}
	tx.pending = nil
	return nil
}

func (tx *memoryTx) Rollback() error {
	tx.pending = nil
	return nil
}
