// Package config holds the settings of the tabimport command and turns them
// into importer options.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/tabimport"
	"github.com/nao1215/tabimport/domain/model"
	"github.com/nao1215/tabimport/internal/logging"
)

// Store kinds accepted by Config.StoreKind.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// DefaultOutput is the store file written when no output is configured.
const DefaultOutput = "default.realm"

// Config is the complete configuration of one run. RegisterFlags binds
// every field to a flag.
type Config struct {
	Files          []string
	InputDir       string
	Output         string
	StoreKind      string
	HeaderMode     string
	OnCollision    string
	Validation     string
	SheetDelimiter string
	Recursive      bool
	NativeValues   bool
	DryRun         bool
	LogLevel       string
	LogFormat      string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		InputDir:     tabimport.DefaultInputDir,
		Output:       DefaultOutput,
		StoreKind:    StoreSQLite,
		HeaderMode:   model.HeaderAuto.String(),
		OnCollision:  tabimport.CollisionOverwrite.String(),
		Validation:   model.ValidationLenient.String(),
		NativeValues: true,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.StoreKind) {
	case StoreSQLite, StoreBolt:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want %s or %s)", c.StoreKind, StoreSQLite, StoreBolt))
	}
	if !c.DryRun && strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output path cannot be empty"))
	}
	if len(c.Files) == 0 && strings.TrimSpace(c.InputDir) == "" {
		errs = append(errs, errors.New("either files or an input folder must be given"))
	}
	if _, err := model.ParseHeaderMode(c.HeaderMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := tabimport.ParseCollisionPolicy(c.OnCollision); err != nil {
		errs = append(errs, err)
	}
	if _, err := model.ParseValidationPolicy(c.Validation); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// ImportOptions converts the configuration into importer options that log
// to logger.
func (c Config) ImportOptions(logger *slog.Logger) (tabimport.Options, error) {
	headerMode, err := model.ParseHeaderMode(c.HeaderMode)
	if err != nil {
		return tabimport.Options{}, err
	}
	collision, err := tabimport.ParseCollisionPolicy(c.OnCollision)
	if err != nil {
		return tabimport.Options{}, err
	}
	validation, err := model.ParseValidationPolicy(c.Validation)
	if err != nil {
		return tabimport.Options{}, err
	}

	opts := tabimport.DefaultOptions()
	opts.HeaderMode = headerMode
	opts.OnCollision = collision
	opts.Validation = validation
	opts.SheetDelimiter = c.SheetDelimiter
	opts.NativeValues = c.NativeValues
	opts.DryRun = c.DryRun
	opts.Logger = logger
	return opts, nil
}
