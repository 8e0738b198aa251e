package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/filter"
	"github.com/roach88/shelf/internal/format"
	"github.com/roach88/shelf/internal/query"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Types map[string]string
}

// FilterResult is the JSON payload of the filter command.
type FilterResult struct {
	Table    string            `json:"table"`
	Criteria []string          `json:"criteria"`
	Types    map[string]string `json:"types"`
	Count    int               `json:"count"`
	Records  any               `json:"records"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter <table> <criterion>...",
		Short: "Filter records by field=value criteria",
		Long: `Filter the records of a table by one or more field=value criteria.

All criteria must hold. Each criterion has the form

  [NOT:|OR:]field=value[,value...]

Several values must all match, or any of them with the OR: prefix.
NOT: inverts the result. Field names and values are case-insensitive.
Each field's type is inferred from the table's records unless given
with --type.

Example:
  shelf filter books Genre=fantasy Owned=true
  shelf filter books OR:Status=reading,to-read NOT:Tags=horror
  shelf filter editions Pages=300 --type Pages=string`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Types, "type", nil, "field type override, e.g. --type Pages=integer (repeatable)")

	return cmd
}

func runFilter(opts *FilterOptions, tableArg string, criteria []string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	overrides, err := query.ParseTypes(opts.Types)
	if err != nil {
		err = fmt.Errorf("invalid --type: %w", err)
		_ = s.out.Error(ErrCodeUsage, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeUsage, err)
	}

	table, err := s.table(tableArg)
	if err != nil {
		return err
	}

	engine := filter.New(s.fetcher, filter.WithLogger(s.log))
	res, err := engine.Filter(commandContext(cmd), table, criteria, overrides)
	if err != nil {
		return fail(s.out, err)
	}

	described := make([]string, len(res.Predicates))
	types := make(map[string]string, len(res.Predicates))
	for i, p := range res.Predicates {
		described[i] = p.Criterion.String()
		types[p.Field] = p.Type.String()
	}

	if s.out.JSON() {
		return s.out.Success(FilterResult{
			Table:    table,
			Criteria: described,
			Types:    types,
			Count:    len(res.Records),
			Records:  nonNil(res.Records),
		})
	}

	if res.Empty() {
		s.out.Println("No matching records found.")
		return nil
	}
	s.out.Printf("%d record(s) in %s matching %s:\n", len(res.Records), table, strings.Join(described, " AND "))
	s.out.Println(format.Separator)
	return s.printRecords(table, res.Records)
}
