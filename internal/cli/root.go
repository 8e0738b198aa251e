package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/client"
	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/filter"
	"github.com/roach88/shelf/internal/format"
	"github.com/roach88/shelf/internal/library"
	"github.com/roach88/shelf/internal/record"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	EnvFile    string

	// Config allows overriding configuration loading (for testing).
	// If nil, configuration is loaded from --config, --env-file and the
	// environment.
	Config *config.Config

	// Fetcher allows overriding the REST client (for testing).
	// If nil, records are fetched with client.Client.
	Fetcher filter.Fetcher
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shelf CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "shelf - query your personal library",
		Long: `A command-line client for a personal library database.

Lists, searches and filters the records of the library tables (books,
authors, editions, publishers, artworks, reviews) served by a NocoDB-style
REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to a .env file with API_KEY and BASE_ID")

	// Add subcommands
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewEmptyCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewVibeCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewAuthorWorksCommand(opts))
	cmd.AddCommand(NewListEditionsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger returns the diagnostics logger. Diagnostics always go to w
// (stderr) so stdout carries only records or JSON.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// session bundles what a command needs once flags are parsed.
type session struct {
	cfg     *config.Config
	fetcher filter.Fetcher
	log     zerolog.Logger
	out     *OutputFormatter
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	log := newLogger(out.GetErrWriter(), opts.Verbose)

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(config.LoadOptions{
			ConfigFile: opts.ConfigFile,
			EnvFile:    opts.EnvFile,
		})
		if err != nil {
			_ = out.Error(ErrCodeConfig, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, ErrCodeConfig, err)
		}
		cfg = loaded
	}
	log.Debug().Str("base_url", cfg.BaseURL).Int("tables", len(cfg.Tables)).Msg("config loaded")

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = client.New(cfg, client.WithLogger(log))
	}

	return &session{cfg: cfg, fetcher: fetcher, log: log, out: out}, nil
}

// table resolves a user-supplied table name, reporting unknown names.
func (s *session) table(name string) (string, error) {
	canonical, err := s.cfg.ResolveTable(name)
	if err != nil {
		return "", fail(s.out, err)
	}
	return canonical, nil
}

func (s *session) library() *library.Library {
	return library.New(s.fetcher, s.cfg.Relations, s.log)
}

// printRecords writes recs with the table's formatter. Text mode only.
func (s *session) printRecords(table string, recs []record.Record) error {
	if s.out.JSON() {
		return nil
	}
	return format.All(s.out.Writer, format.For(table), recs)
}

// commandContext returns the command's context, or Background when the
// command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil(recs []record.Record) []record.Record {
	if recs == nil {
		return []record.Record{}
	}
	return recs
}
