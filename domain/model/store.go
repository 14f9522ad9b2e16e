// Package model provides domain model for tabimport
package model

import "context"

// Store is the embedded database objects are imported into.
//
// RegisterSchema must be called for a schema name before any object of
// that name is created. Registering a name again replaces the store's
// recorded definition; implementations never drop columns that already
// hold data.
type Store interface {
	RegisterSchema(ctx context.Context, schema *SchemaDescriptor) error
	Schema(ctx context.Context, name string) (*SchemaDescriptor, error)
	BeginWrite(ctx context.Context) (WriteTx, error)
	Close() error
}

// WriteTx is a scoped write transaction. Exactly one of Commit or
// Rollback ends it.
type WriteTx interface {
	CreateObject(ctx context.Context, schema *SchemaDescriptor, rec CandidateRecord) error
	Commit() error
	Rollback() error
}
