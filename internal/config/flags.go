package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Bind.
const EnvPrefix = "TABIMPORT"

// RegisterFlags defines one flag per setting of c, using the current values
// of c as defaults. Parsing the flag set writes straight into c.
func RegisterFlags(flags *pflag.FlagSet, c *Config) {
	flags.StringSliceVarP(&c.Files, "files", "f", c.Files, "Files or directories to import. When empty the input folder is scanned.")
	flags.StringVarP(&c.InputDir, "input", "i", c.InputDir, "Folder scanned for importable files.")
	flags.StringVarP(&c.Output, "output", "o", c.Output, "Path of the object store file.")
	flags.StringVar(&c.StoreKind, "store", c.StoreKind, "Object store backend: sqlite or bolt.")
	flags.StringVar(&c.HeaderMode, "header", c.HeaderMode, "Header mode: auto, plain, typed or spreadsheet.")
	flags.StringVar(&c.OnCollision, "on-collision", c.OnCollision, "Schema name collision policy: overwrite, reject or merge.")
	flags.StringVar(&c.Validation, "validation", c.Validation, "Custom rule failure policy: lenient or strict.")
	flags.StringVar(&c.SheetDelimiter, "sheet-delimiter", c.SheetDelimiter, "Line that splits a CSV/TSV file into sheets.")
	flags.BoolVarP(&c.Recursive, "recursive", "r", c.Recursive, "Walk subdirectories of directory inputs.")
	flags.BoolVar(&c.NativeValues, "native-values", c.NativeValues, "Convert true/false and datetime text to typed values.")
	flags.BoolVar(&c.DryRun, "dry-run", c.DryRun, "Validate every row without writing to the store.")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error.")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: text or json.")
	flags.StringP("config", "c", "", "Configuration file to read from (toml, yaml or json).")
}

// Bind takes flags as the definition of all configuration options and their
// defaults, then applies the command line, the environment and the config
// file (if the "config" flag names one) in that priority order. Each flag
// holds a pointer to its setting, so Bind writes the result straight into
// the Config the flags were registered with.
//
// Environment variables are the capitalized flag names with dashes replaced
// by underscores, prefixed with EnvPrefix and an underscore.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %w", c, err)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		var value string
		if f.Value.Type() == "stringSlice" {
			// GetString is empty for a list read from a config file
			value = strings.Join(v.GetStringSlice(f.Name), ",")
		} else {
			value = v.GetString(f.Name)
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			// Set would append to the default instead of replacing it
			if value == "" {
				flagErr = sv.Replace(nil)
			} else {
				flagErr = sv.Replace(strings.Split(value, ","))
			}
			return
		}
		flagErr = f.Value.Set(value)
	})
	return flagErr
}
