package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <book-id>",
		Short: "Show whether a book is AVAILABLE, OUT or RESERVED",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseBookIDs(args)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				status, err := a.desk.Status(cmd.Context(), ids[0])
				if err != nil {
					return err
				}

				view := statusView{BookID: ids[0], Status: status.String()}

				return opts.printer(cmd).print(view, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%d %s\n", view.BookID, view.Status)
					return err
				})
			})
		},
	}
}

// NewLoanedCommand creates the loaned command.
func NewLoanedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "loaned",
		Short: "List the ids of all checked-out books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				ids, err := a.desk.LoanedIDs(cmd.Context())
				if err != nil {
					return err
				}

				return printBookIDs(opts.printer(cmd), ids)
			})
		},
	}
}

// NewReservedCommand creates the reserved command.
func NewReservedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reserved",
		Short: "List the ids of all books with an open reservation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				ids, err := a.desk.ReservedIDs(cmd.Context())
				if err != nil {
					return err
				}

				return printBookIDs(opts.printer(cmd), ids)
			})
		},
	}
}

// NewOpenCommand creates the open command.
func NewOpenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <book-id>",
		Short: "List the open loan and reservations of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseBookIDs(args)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				actions, err := a.desk.OpenActions(cmd.Context(), ids[0])
				if err != nil {
					return err
				}

				return printActions(opts.printer(cmd), actions)
			})
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var bookID int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the ledger in append order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				actions, err := a.desk.AllActions(cmd.Context())
				if err != nil {
					return err
				}

				if cmd.Flags().Changed("book") {
					actions = core.FilterByBook(actions, bookID)
				}

				return printActions(opts.printer(cmd), actions)
			})
		},
	}

	cmd.Flags().IntVarP(&bookID, "book", "b", 0, "only show records of this book")

	return cmd
}

// NewBooksCommand creates the books command.
func NewBooksCommand(opts *RootOptions) *cobra.Command {
	var genre, author, title string

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Search the catalog",
		Long: "Search the catalog by genre, author or title. Matching is case-insensitive\n" +
			"and finds the term anywhere in the field. Without a flag all books are listed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				ctx := cmd.Context()

				var books []catalog.Book
				var err error

				switch {
				case genre != "":
					books, err = a.books.ByGenre(ctx, genre)
				case author != "":
					books, err = a.books.ByAuthor(ctx, author)
				case title != "":
					books, err = a.books.ByTitle(ctx, title)
				default:
					books, err = a.books.All(ctx)
				}

				if err != nil {
					return err
				}

				return opts.printer(cmd).print(toBookViews(books), func(w io.Writer) error {
					return writeLines(w, books, catalog.EncodeRecord)
				})
			})
		},
	}

	cmd.Flags().StringVar(&genre, "genre", "", "books whose genre contains this term")
	cmd.Flags().StringVar(&author, "author", "", "books whose author contains this term")
	cmd.Flags().StringVar(&title, "title", "", "books whose title contains this term")
	cmd.MarkFlagsMutuallyExclusive("genre", "author", "title")

	return cmd
}

func printBookIDs(p printer, ids []int) error {
	if ids == nil {
		ids = []int{}
	}

	return p.print(bookIDsView{BookIDs: ids}, func(w io.Writer) error {
		return writeLines(w, ids, strconv.Itoa)
	})
}

func printActions(p printer, actions ledger.Actions) error {
	return p.print(toActionViews(actions), func(w io.Writer) error {
		return writeLines(w, actions, ledger.EncodeRecord)
	})
}
