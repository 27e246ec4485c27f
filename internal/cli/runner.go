// Package cli exposes the catalog as urfave/cli commands: the HTTP server and
// one-shot operations that run against the configured storage backend.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

// Runner holds what every command needs and provides one method per command action.
type Runner struct {
	config  *config.Config
	version string
	output  io.Writer
	serve   func(cfg *config.Config, version string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *config.Config
	Version string
	Output  io.Writer

	// Serve replaces entrypoint.Run for the serve command (optional).
	Serve func(cfg *config.Config, version string) error
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = config.NewConfig()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Serve == nil {
		opts.Serve = entrypoint.Run
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Runner{
		config:  opts.Config,
		version: opts.Version,
		output:  opts.Output,
		serve:   opts.Serve,
	}
}

// Command builds the root command. Running it without a subcommand serves HTTP.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:    "bookshelf",
		Usage:   "Personal reading list with due dates and progress tracking",
		Version: r.version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: memory, csv, sqlite or postgres (env STORAGE_BACKEND)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite catalog path (env DATABASE_PATH)",
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "Postgres connection string (env DATABASE_DSN)",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "CSV catalog path (env CSV_PATH)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (env LOG_LEVEL)",
			},
		},
		Commands: r.register(),
		Action:   r.Serve,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range []func(*Runner) *cli.Command{
		serveCommand, listCommand, upcomingCommand, sweepCommand, importISBNCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// applyFlags copies global flag overrides onto the loaded configuration.
func (r *Runner) applyFlags(cmd *cli.Command) *config.Config {
	cfg := *r.config
	if v := cmd.String("backend"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := cmd.String("db"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := cmd.String("dsn"); v != "" {
		cfg.Storage.DatabaseDSN = v
	}
	if v := cmd.String("csv"); v != "" {
		cfg.Storage.CSVPath = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	return &cfg
}

// open bootstraps the catalog for a one-shot command.
func (r *Runner) open(cmd *cli.Command) (*entrypoint.App, error) {
	return entrypoint.Bootstrap(r.applyFlags(cmd))
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintln(r.output, string(output)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
