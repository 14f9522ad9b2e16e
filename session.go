package tabimport

import (
	"fmt"

	"github.com/nao1215/tabimport/domain/model"
)

// Summary reports the outcome of an import run.
type Summary struct {
	// SourcesProcessed counts sheets whose rows were streamed.
	SourcesProcessed int
	// SourcesSkipped counts sheets and files skipped before streaming.
	SourcesSkipped int
	// RowsAccepted counts rows persisted (or that would be, in a dry run).
	RowsAccepted int
	// RowsRejected counts rows that failed validation.
	RowsRejected int
	// Schemas lists registered schema names in registration order.
	Schemas []string
}

// String renders the summary line printed at the end of a run.
func (s Summary) String() string {
	return fmt.Sprintf("sources=%d skipped=%d accepted=%d rejected=%d schemas=%d",
		s.SourcesProcessed, s.SourcesSkipped, s.RowsAccepted, s.RowsRejected, len(s.Schemas))
}

// Session accumulates counters and the schema registry of one run. It is
// owned by a single Importer and is not safe for concurrent use.
type Session struct {
	summary  Summary
	policy   CollisionPolicy
	registry map[string]*model.SchemaDescriptor
}

// newSession creates an empty session.
func newSession(policy CollisionPolicy) *Session {
	return &Session{
		policy:   policy,
		registry: make(map[string]*model.SchemaDescriptor),
	}
}

// collision describes how a schema registration was resolved.
type collision int

const (
	// collisionNone means the name was new or identically defined
	collisionNone collision = iota
	// collisionOverwritten means the earlier definition was replaced
	collisionOverwritten
	// collisionMerged means both definitions were merged
	collisionMerged
)

// resolve applies the collision policy to schema and returns the
// descriptor to register. The session registry is not changed until
// commit is called.
func (s *Session) resolve(schema *model.SchemaDescriptor) (*model.SchemaDescriptor, collision, error) {
	prev, ok := s.registry[schema.Name()]
	if !ok || prev.Equal(schema) {
		return schema, collisionNone, nil
	}

	switch s.policy {
	case CollisionReject:
		return nil, collisionNone, fmt.Errorf("%w: %s is already registered as %s", ErrSchemaCollision, schema, prev)
	case CollisionMerge:
		merged := prev.Merge(schema)
		if merged.Equal(prev) {
			return prev, collisionNone, nil
		}
		return merged, collisionMerged, nil
	default:
		return schema, collisionOverwritten, nil
	}
}

// commit records schema as the registered definition for its name.
func (s *Session) commit(schema *model.SchemaDescriptor) {
	if _, ok := s.registry[schema.Name()]; !ok {
		s.summary.Schemas = append(s.summary.Schemas, schema.Name())
	}
	s.registry[schema.Name()] = schema
}

// Schema returns the registered definition of name.
func (s *Session) Schema(name string) (*model.SchemaDescriptor, bool) {
	schema, ok := s.registry[name]
	return schema, ok
}

// Summary returns a copy of the counters.
func (s *Session) Summary() Summary {
	out := s.summary
	out.Schemas = append([]string(nil), s.summary.Schemas...)
	return out
}
