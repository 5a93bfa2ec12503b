package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Gridfuse/gridfuse/config"
	"github.com/Gridfuse/gridfuse/internal/daterange"
	"github.com/Gridfuse/gridfuse/pkg/logger"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
	"github.com/Gridfuse/gridfuse/pkg/tracing"
)

// rootOptions is shared by every subcommand. cfg and logger are set
// before any subcommand runs.
type rootOptions struct {
	envFile  string
	logLevel string

	cfg    *config.Config
	logger logger.Logger
}

// NewRootCommand builds the gridquery command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "gridquery",
		Short:        "Compile record filters into SQL for Postgres and SQLite",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file to load if present")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	cmd.AddCommand(
		newCompileCommand(opts),
		newOperatorsCommand(opts),
		newApplyCommand(opts),
		newQueryCommand(opts),
	)
	return cmd
}

// load reads the configuration and sets up logging and tracing. Logs go
// to stderr so that stdout only carries command output.
func (o *rootOptions) load(stderr io.Writer) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvFile: o.envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	o.cfg = cfg

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	zerolog.SetGlobalLevel(logger.ParseLevel(level))
	o.logger = logger.NewLoggerWithWriter(stderr)

	if err := tracing.InitTracing(&cfg.Tracing); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return nil
}

// dialect resolves the --dialect flag, falling back to the configured one
func (o *rootOptions) dialect(flag string) (sqlexpr.Dialect, error) {
	if flag == "" {
		return o.cfg.Compiler.Dialect, nil
	}
	return sqlexpr.ParseDialect(flag)
}

// calculator builds a date calculator from the compiler config. A non-empty
// now pins the clock to an RFC 3339 instant.
func (o *rootOptions) calculator(now string) (*daterange.Calculator, error) {
	var clock func() time.Time
	if now != "" {
		pinned, err := time.Parse(time.RFC3339, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --now: %w", err)
		}
		clock = func() time.Time { return pinned }
	}
	return daterange.NewCalculator(clock, o.cfg.Compiler.WeekStart, o.cfg.Compiler.DefaultTimeZone), nil
}
