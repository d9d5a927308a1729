package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	operationCheckout  = "checkout"
	operationReserve   = "reserve"
	operationDereserve = "dereserve"
	operationReturn    = "return"
)

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <member-id> <book-id>...",
		Short: "Check one or more books out to a member",
		Long: "Check books out to a member. With several books the batch stops at the first\n" +
			"rejected book; books before it stay checked out.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID := args[0]

			ids, err := parseBookIDs(args[1:])
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				if len(ids) == 1 {
					err = a.desk.Checkout(cmd.Context(), ids[0], memberID)
				} else {
					err = a.desk.CheckoutAll(cmd.Context(), ids, memberID)
				}

				if err != nil {
					return err
				}

				return printWrite(opts.printer(cmd), operationCheckout, ids, memberID)
			})
		},
	}
}

// NewReserveCommand creates the reserve command.
func NewReserveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reserve <member-id> <book-id>...",
		Short: "Reserve one or more books for a member",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID := args[0]

			ids, err := parseBookIDs(args[1:])
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				if len(ids) == 1 {
					err = a.desk.Reserve(cmd.Context(), ids[0], memberID)
				} else {
					err = a.desk.ReserveAll(cmd.Context(), ids, memberID)
				}

				if err != nil {
					return err
				}

				return printWrite(opts.printer(cmd), operationReserve, ids, memberID)
			})
		},
	}
}

// NewDereserveCommand creates the dereserve command.
func NewDereserveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dereserve <book-id>",
		Short: "Cancel the oldest open reservation of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseBookIDs(args)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				if err := a.desk.Dereserve(cmd.Context(), ids[0]); err != nil {
					return err
				}

				return printWrite(opts.printer(cmd), operationDereserve, ids, "")
			})
		},
	}
}

// NewReturnCommand creates the return command.
func NewReturnCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id>...",
		Short: "Return one or more checked-out books",
		Long: "Return books. A return also cancels the oldest open reservation of the book,\n" +
			"so the reserving member can check it out next.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseBookIDs(args)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app) error {
				if len(ids) == 1 {
					err = a.desk.ReturnBook(cmd.Context(), ids[0])
				} else {
					err = a.desk.ReturnAll(cmd.Context(), ids)
				}

				if err != nil {
					return err
				}

				return printWrite(opts.printer(cmd), operationReturn, ids, "")
			})
		},
	}
}

func printWrite(p printer, operation string, ids []int, memberID string) error {
	view := writeView{Operation: operation, BookIDs: ids, MemberID: memberID}

	return p.print(view, func(w io.Writer) error {
		for _, id := range ids {
			var err error

			if memberID != "" {
				_, err = fmt.Fprintf(w, "%s %d %s\n", operation, id, memberID)
			} else {
				_, err = fmt.Fprintf(w, "%s %d\n", operation, id)
			}

			if err != nil {
				return err
			}
		}

		return nil
	})
}
