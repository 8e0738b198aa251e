package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/format"
)

// NewEmptyCommand creates the empty command.
func NewEmptyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empty <table> <field>",
		Short: "Find records with an empty field",
		Long: `Find records whose field is missing, null, blank, zero, false or an
empty list.

Example:
  shelf empty books Rating`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmpty(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runEmpty(opts *RootOptions, tableArg, field string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	table, err := s.table(tableArg)
	if err != nil {
		return err
	}

	recs, err := s.library().Empty(commandContext(cmd), table, field)
	if err != nil {
		return fail(s.out, err)
	}

	if s.out.JSON() {
		return s.out.Success(map[string]any{
			"table":   table,
			"field":   field,
			"count":   len(recs),
			"records": nonNil(recs),
		})
	}
	if len(recs) == 0 {
		s.out.Printf("No records with empty '%s' found in %s.\n", field, table)
		return nil
	}
	s.out.Printf("Records with empty '%s' in %s:\n", field, table)
	s.out.Println(format.Separator)
	return s.printRecords(table, recs)
}
