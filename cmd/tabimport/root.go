package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nao1215/tabimport"
	"github.com/nao1215/tabimport/internal/config"
	"github.com/nao1215/tabimport/internal/logging"
	"github.com/nao1215/tabimport/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.Default()

	rc := &cobra.Command{
		Use:   "tabimport [flags] [files...]",
		Short: "Import tabular files into an object store",
		Long: `tabimport reads CSV, TSV, XLSX and Parquet files (optionally compressed
with gzip, bzip2, xz or zstd) and stores every row as an object. Each file,
or each sheet of a file, becomes a schema named after the file.

Files may be given as arguments or with --files. When none are given the
input folder is scanned.

Every flag can also be set through a TABIMPORT_* environment variable
(for example TABIMPORT_ON_COLLISION=merge), a .env file, or a config file
passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Bind(viper.New(), cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Files = append(cfg.Files, args...)
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	config.RegisterFlags(rc.Flags(), &cfg)

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// run imports the configured inputs and prints the summary to stdout.
func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup(stderr, cfg.LogLevel, cfg.LogFormat)
	opts, err := cfg.ImportOptions(logger)
	if err != nil {
		return err
	}

	builder, err := tabimport.NewBuilder().
		AddPaths(cfg.Files...).
		SetInputDir(cfg.InputDir).
		SetRecursive(cfg.Recursive).
		SetOptions(opts).
		Build(ctx)
	if err != nil {
		return err
	}
	logger.Debug("collected input files", "files", builder.CollectedPaths())

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close store", "path", cfg.Output, "error", err)
		}
	}()

	summary, err := builder.Run(ctx, st)
	if summary != nil {
		fmt.Fprintln(stdout, summary.String())
	}
	if err != nil {
		return err
	}

	if !cfg.DryRun {
		logger.Info("objects stored",
			slog.String("path", cfg.Output),
			slog.String("store", cfg.StoreKind),
			slog.Int("objects", summary.RowsAccepted),
		)
	}
	return nil
}

// openStore opens the configured object store. A dry run opens nothing.
func openStore(ctx context.Context, cfg config.Config) (tabimport.Store, func() error, error) {
	if cfg.DryRun {
		return nil, func() error { return nil }, nil
	}

	switch strings.ToLower(cfg.StoreKind) {
	case config.StoreBolt:
		st, err := store.OpenBolt(cfg.Output)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		st, err := store.OpenSQLite(ctx, cfg.Output)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
}
