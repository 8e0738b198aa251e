package cli

import (
	"github.com/spf13/cobra"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields <table>",
		Short: "List the field names of a table",
		Long: `List the field names of a table, read from its first record.

Fails when the table has no records.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runFields(opts *RootOptions, tableArg string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	table, err := s.table(tableArg)
	if err != nil {
		return err
	}

	fields, err := s.library().Fields(commandContext(cmd), table)
	if err != nil {
		return fail(s.out, err)
	}

	if s.out.JSON() {
		return s.out.Success(map[string]any{"table": table, "fields": fields})
	}
	s.out.Printf("Fields for %s:\n", table)
	for _, field := range fields {
		s.out.Println(field)
	}
	return nil
}
