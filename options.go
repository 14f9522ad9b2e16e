package tabimport

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/tabimport/domain/model"
)

// CollisionPolicy decides what happens when two sources derive the same
// schema name with different columns.
type CollisionPolicy int

const (
	// CollisionOverwrite replaces the earlier definition with the later one
	CollisionOverwrite CollisionPolicy = iota
	// CollisionReject skips the later source with ErrSchemaCollision
	CollisionReject
	// CollisionMerge registers the union of both column sets
	CollisionMerge
)

// String returns the flag spelling of the policy.
func (p CollisionPolicy) String() string {
	switch p {
	case CollisionReject:
		return "reject"
	case CollisionMerge:
		return "merge"
	default:
		return "overwrite"
	}
}

// ParseCollisionPolicy parses the flag spelling of a policy.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return CollisionOverwrite, nil
	case "reject":
		return CollisionReject, nil
	case "merge":
		return CollisionMerge, nil
	default:
		return CollisionOverwrite, fmt.Errorf("%w: unknown collision policy %q", ErrInvalidOptions, s)
	}
}

// Options configures an Importer.
type Options struct {
	// HeaderMode selects how column names and declared types are read.
	HeaderMode model.HeaderMode
	// OnCollision is applied when a schema name is registered twice.
	OnCollision CollisionPolicy
	// Validation decides what a failing custom rule means.
	Validation model.ValidationPolicy
	// SheetDelimiter splits CSV/TSV files into sheets. Empty disables splitting.
	SheetDelimiter string
	// NativeValues converts true/false and datetime text to typed values.
	NativeValues bool
	// DryRun validates every row without writing to the store.
	DryRun bool
	// Logger receives warnings and progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		HeaderMode:   model.HeaderAuto,
		OnCollision:  CollisionOverwrite,
		Validation:   model.ValidationLenient,
		NativeValues: true,
	}
}

// logger returns the configured logger or the default one.
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
