package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newViper binds cmd's flags, the SPECBENCH_* environment and the optional
// config file into one viper instance.
//
// Flag names map to environment variables by upper-casing and replacing
// dashes, so --log-level reads SPECBENCH_LOG_LEVEL. Config file keys use the
// flag names as written: "log-level: debug".
func newViper(cmd *cobra.Command, o *RootOptions) (*viper.Viper, error) {
	v := viper.New()

	// Values already on the options are the fallback when the command was
	// built without the persistent flags.
	v.SetDefault("verbose", o.Verbose)
	v.SetDefault("format", o.Format)
	v.SetDefault("db", o.DB)
	v.SetDefault("log-level", o.LogLevel)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configFile := o.Config
	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, WrapExitError(ExitCommandError,
				fmt.Sprintf("%s: reading config %s", ErrCodeConfig, configFile), err)
		}
	}
	return v, nil
}

// newLogger builds the stderr text logger. Verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*slog.Logger, error) {
	var lvl slog.Level
	if level == "" {
		level = "info"
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, WrapExitError(ExitCommandError,
			fmt.Sprintf("%s: invalid log level %q", ErrCodeConfig, level), err)
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), nil
}

// intFlag reads a command-local integer through viper so it can also come
// from the environment or config file. Before resolve it reads the flag.
func (o *RootOptions) intFlag(cmd *cobra.Command, name string) int {
	if o.v != nil {
		return o.v.GetInt(name)
	}
	n, _ := cmd.Flags().GetInt(name)
	return n
}

// stringFlag is the string counterpart of intFlag.
func (o *RootOptions) stringFlag(cmd *cobra.Command, name string) string {
	if o.v != nil {
		return o.v.GetString(name)
	}
	s, _ := cmd.Flags().GetString(name)
	return s
}

// uint64Flag is the uint64 counterpart of intFlag.
func (o *RootOptions) uint64Flag(cmd *cobra.Command, name string) uint64 {
	if o.v != nil {
		return o.v.GetUint64(name)
	}
	n, _ := cmd.Flags().GetUint64(name)
	return n
}
