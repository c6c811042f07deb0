package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
//
// Values are resolved through viper before any command runs: an explicit
// flag wins, then SPECBENCH_* environment variables, then the config file.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string // optional YAML config file
	DB       string // SQLite path; empty means a throwaway temp database
	LogLevel string // "debug" | "info" | "warn" | "error"

	v      *viper.Viper
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EnvPrefix is the environment variable prefix read by viper.
const EnvPrefix = "SPECBENCH"

// NewRootCommand creates the root command for the specbench CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "specbench",
		Short: "specbench - composable specifications, in memory and in SQL",
		Long: `Build filters as Specification trees, evaluate them in memory and
translate them to SQL, and check that both paths select the same rows.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database (default: temporary)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads configuration for cmd and builds the logger. It is safe to
// call more than once; later calls are no-ops. Commands built on their own
// (as in tests) keep whatever values the options were created with.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if o.v != nil {
		return nil
	}

	v, err := newViper(cmd, o)
	if err != nil {
		return err
	}

	o.Verbose = v.GetBool("verbose")
	o.Format = v.GetString("format")
	o.DB = v.GetString("db")
	o.LogLevel = v.GetString("log-level")

	// Validate format flag
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), o.LogLevel, o.Verbose)
	if err != nil {
		return err
	}
	o.v = v
	o.logger = logger
	return nil
}

// Logger returns the logger built by resolve, or one that discards output
// if resolve has not run.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
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
