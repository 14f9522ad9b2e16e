package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/tabimport/domain/model"
	bolt "go.etcd.io/bbolt"
)

// schemaBucket holds the registered definition of every schema
var schemaBucket = []byte("_tabimport_schema")

// Bolt stores every schema as a bucket of JSON objects keyed by _id.
type Bolt struct {
	db *bolt.DB
}

var _ model.Store = (*Bolt)(nil)

// OpenBolt opens (creating if needed) the bbolt database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(schemaBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// RegisterSchema creates the bucket of schema if absent and records schema
// as the registered definition. Stored objects are left untouched.
func (b *Bolt) RegisterSchema(_ context.Context, schema *model.SchemaDescriptor) error {
	definition, err := encodeSchema(schema)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(schema.Name())); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", schema.Name(), err)
		}
		if err := tx.Bucket(schemaBucket).Put([]byte(schema.Name()), definition); err != nil {
			return fmt.Errorf("failed to record schema %s: %w", schema.Name(), err)
		}
		return nil
	})
}

// Schema returns the registered definition of name, or model.ErrSchemaNotFound.
func (b *Bolt) Schema(_ context.Context, name string) (*model.SchemaDescriptor, error) {
	var schema *model.SchemaDescriptor
	err := b.db.View(func(tx *bolt.Tx) error {
		// the value is only valid inside the transaction
		data := tx.Bucket(schemaBucket).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s", model.ErrSchemaNotFound, name)
		}
		var err error
		schema, err = decodeSchema(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return schema, nil
}

// Count returns the number of objects stored under a schema name.
func (b *Bolt) Count(_ context.Context, name string) (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil || tx.Bucket(schemaBucket).Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", model.ErrSchemaNotFound, name)
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

// Objects returns every object stored under a schema name, ordered by key.
func (b *Bolt) Objects(_ context.Context, name string) ([]map[string]any, error) {
	var objects []map[string]any
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil || tx.Bucket(schemaBucket).Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", model.ErrSchemaNotFound, name)
		}
		return bucket.ForEach(func(_, v []byte) error {
			var object map[string]any
			if err := json.Unmarshal(v, &object); err != nil {
				return fmt.Errorf("failed to decode object of %s: %w", name, err)
			}
			objects = append(objects, object)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// BeginWrite starts a read-write transaction. bbolt allows one writer at a
// time, so the transaction must be ended before the next one is started.
func (b *Bolt) BeginWrite(_ context.Context) (model.WriteTx, error) {
	tx, err := b.db.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &boltTx{tx: tx}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// boltTx is a write transaction of Bolt.
type boltTx struct {
	tx *bolt.Tx
}

// CreateObject stores rec as one JSON object in the schema's bucket. Null
// fields are omitted.
func (t *boltTx) CreateObject(_ context.Context, schema *model.SchemaDescriptor, rec model.CandidateRecord) error {
	bucket := t.tx.Bucket([]byte(schema.Name()))
	if bucket == nil {
		return fmt.Errorf("%w: %s", model.ErrSchemaNotFound, schema.Name())
	}

	id := uuid.NewString()
	object := map[string]any{IDField: id}
	for _, f := range rec.Fields() {
		col, ok := schema.Column(f.Name)
		if !ok || f.Value.IsNull() {
			continue
		}
		object[col.Name] = f.Value.Native(col.DeclaredType)
	}

	data, err := json.Marshal(object)
	if err != nil {
		return fmt.Errorf("failed to encode object of %s: %w", schema.Name(), err)
	}
	if err := bucket.Put([]byte(id), data); err != nil {
		return fmt.Errorf("failed to store object of %s: %w", schema.Name(), err)
	}
	return nil
}

// Commit commits the transaction.
func (t *boltTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *boltTx) Rollback() error {
	return t.tx.Rollback()
}
