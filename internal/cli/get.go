package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <table>",
		Short: "Print every record of a table",
		Long: `Fetch and print every record of a table.

Example:
  shelf get books
  shelf get authors --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGet(opts *RootOptions, tableArg string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	table, err := s.table(tableArg)
	if err != nil {
		return err
	}

	recs, err := s.library().All(commandContext(cmd), table)
	if err != nil {
		return fail(s.out, err)
	}

	if s.out.JSON() {
		return s.out.Success(map[string]any{
			"table":   table,
			"count":   len(recs),
			"records": nonNil(recs),
		})
	}
	if len(recs) == 0 {
		s.out.Printf("No records found in %s.\n", table)
		return nil
	}
	return s.printRecords(table, recs)
}
