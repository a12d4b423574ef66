package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries the configuration shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "parquet-schema",
		Short: "Resolve the nested schema of parquet files",
		Long: `parquet-schema reads the footer of a parquet file and resolves its flat schema
into a tree of logical fields annotated with definition and repetition levels,
plus the list of physical columns in on-disk order.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.setupLogger(cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./parquet-schema.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	flags.Bool("case-sensitive", false, "match column names case-sensitively")
	flags.String("decoder", decoderCompact, "footer decoder: compact, parquet-go")

	a.mustBindPFlag("log_level", flags.Lookup("log-level"))
	a.mustBindPFlag("log_format", flags.Lookup("log-format"))
	a.mustBindPFlag("case_sensitive", flags.Lookup("case-sensitive"))
	a.mustBindPFlag("decoder", flags.Lookup("decoder"))

	rootCmd.AddCommand(a.treeCmd())
	rootCmd.AddCommand(a.columnsCmd())
	rootCmd.AddCommand(a.lookupCmd())
	rootCmd.AddCommand(a.levelsCmd())
	return rootCmd
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("parquet-schema")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}

	a.v.SetEnvPrefix("PARQUET_SCHEMA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly named config file must exist.
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "reading config file")
		}
	}
	return nil
}

func (a *app) setupLogger(w io.Writer) error {
	level := a.v.GetString("log_level")
	format := a.v.GetString("log_format")

	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return errors.Errorf("unknown log level: %q (expected debug, info, warn, error)", level)
	}

	opts := &slog.HandlerOptions{Level: slogLevel}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return errors.Errorf("unknown log format: %q (expected text, json)", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func (a *app) mustBindPFlag(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("viper.BindPFlag(%q): %v", key, err))
	}
}
