package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/format"
	"github.com/roach88/shelf/internal/library"
)

// NewAuthorWorksCommand creates the author-works command.
func NewAuthorWorksCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author-works <name>",
		Short: "List all books by an author",
		Long: `List all books linked to an author. The name must match exactly,
ignoring case.

Example:
  shelf author-works "Octavia E. Butler"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthorWorks(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runAuthorWorks(opts *RootOptions, name string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	author, works, err := s.library().AuthorWorks(commandContext(cmd), name)
	if err != nil {
		return fail(s.out, err)
	}

	if s.out.JSON() {
		return s.out.Success(map[string]any{
			"author": author,
			"count":  len(works),
			"books":  nonNil(works),
		})
	}
	s.out.Printf("Books by %s:\n", name)
	s.out.Println(format.Separator)
	if len(works) == 0 {
		s.out.Println("No books found from this author.")
		return nil
	}
	return s.printRecords(config.TableBooks, works)
}

// NewListEditionsCommand creates the list-editions command.
func NewListEditionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-editions <title>",
		Short: "List all editions of a book",
		Long: `List all editions of a book. The title may be the book's Title or
its Display Name and must match exactly, ignoring case.

Example:
  shelf list-editions kindred`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListEditions(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runListEditions(opts *RootOptions, title string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}

	book, editions, err := s.library().BookEditions(commandContext(cmd), title)
	if err != nil {
		return fail(s.out, err)
	}

	if s.out.JSON() {
		return s.out.Success(map[string]any{
			"book":     book,
			"count":    len(editions),
			"editions": nonNil(editions),
		})
	}
	s.out.Printf("Editions of %s:\n", library.DisplayName(book))
	s.out.Println(format.Separator)
	if len(editions) == 0 {
		s.out.Println("No editions found for this book.")
		return nil
	}
	return s.printRecords(config.TableEditions, editions)
}
