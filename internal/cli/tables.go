package cli

import (
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tables",
		Short:         "List the configured tables",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
	return cmd
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	names := s.cfg.TableNames()
	if s.out.JSON() {
		return s.out.Success(map[string]any{"tables": names})
	}

	s.out.Println("Available tables:")
	for _, name := range names {
		s.out.Println(name)
	}
	return nil
}
