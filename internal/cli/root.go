package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/bookstore/internal/app"
	"github.com/roach88/bookstore/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DataDir    string

	// Config is resolved in PersistentPreRunE before any subcommand runs.
	Config config.Config

	level *slog.LevelVar
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bookstore CLI.
// level, when non-nil, is set from the resolved configuration so the
// process logger follows --verbose and log_level.
func NewRootCommand(level *slog.LevelVar) *cobra.Command {
	opts := &RootOptions{level: level}

	cmd := &cobra.Command{
		Use:   "bookstore",
		Short: "Bookstore record management",
		Long: `A bookstore catalog with user accounts and an append-only ledger.

Without a subcommand, bookstore reads commands from standard input, the same
as "bookstore shell".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolveConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE configuration file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides configuration)")

	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveConfig layers the flags over the file and environment settings.
func (o *RootOptions) resolveConfig() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	o.Config = cfg

	if o.level != nil {
		level := cfg.Level()
		if o.Verbose {
			level = slog.LevelDebug
		}
		o.level.Set(level)
	}
	return nil
}

// openApp opens the data directory named by the resolved configuration.
func (o *RootOptions) openApp(ctx context.Context) (*app.App, error) {
	a, err := app.Open(ctx, o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open data directory", err)
	}
	return a, nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
