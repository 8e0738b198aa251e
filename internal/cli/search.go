package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/library"
	"github.com/roach88/shelf/internal/record"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Fields []string
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <term> <table>",
		Short: "Search a table for a term",
		Long: `Search one or more fields of a table for a case-insensitive substring.

List fields are joined with ", " before matching. A record matching in
several fields is printed once.

Example:
  shelf search butler authors --field Name
  shelf search earth books --field Title --field Tags`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts.RootOptions, args[0], args[1], opts.Fields, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Fields, "field", []string{library.DefaultSearchField}, "field to search in (repeatable)")

	return cmd
}

// NewVibeCommand creates the vibe command.
func NewVibeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vibe <term>",
		Short: "Search the Genre and Tags of books",
		Long: `Search the Genre and Tags fields of the BOOKS table.

Example:
  shelf vibe cozy`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVibe(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSearch(opts *RootOptions, term, tableArg string, fields []string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	table, err := s.table(tableArg)
	if err != nil {
		return err
	}

	recs, err := s.library().Search(commandContext(cmd), table, term, fields...)
	if err != nil {
		return fail(s.out, err)
	}
	return s.printMatches(table, term, fields, recs)
}

func runVibe(opts *RootOptions, term string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	recs, err := s.library().Vibe(commandContext(cmd), term)
	if err != nil {
		return fail(s.out, err)
	}
	return s.printMatches(config.TableBooks, term, library.VibeFields, recs)
}

func (s *session) printMatches(table, term string, fields []string, recs []record.Record) error {
	if s.out.JSON() {
		return s.out.Success(map[string]any{
			"table":   table,
			"term":    term,
			"fields":  fields,
			"count":   len(recs),
			"records": nonNil(recs),
		})
	}
	if len(recs) == 0 {
		if len(fields) == 1 {
			s.out.Printf("No matches found for '%s' in %s of %s.\n", term, fields[0], table)
		} else {
			s.out.Printf("No matches found for '%s' in any of [%s] of %s.\n", term, strings.Join(fields, ", "), table)
		}
		return nil
	}
	return s.printRecords(table, recs)
}
