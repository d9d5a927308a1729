package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/catalog/sqlitecatalog"
	"github.com/bookledger/lendingledger/config"
)

// ErrPostgresEngineRequired is returned by commands that only work with the postgres engine.
var ErrPostgresEngineRequired = errors.New("the configured ledger engine is not postgres")

type importView struct {
	Imported int    `json:"imported"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type schemaView struct {
	Table string `json:"table"`
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the book catalog",
	}

	cmd.AddCommand(newCatalogImportCommand(opts))

	return cmd
}

func newCatalogImportCommand(opts *RootOptions) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the text catalog into the SQLite catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := opts.config.Catalog.Path
			if from != "" {
				source = from
			}

			books, err := catalog.LoadFile(source)
			if err != nil {
				return err
			}

			target, err := sqlitecatalog.Open(opts.config.Catalog.SQLitePath)
			if err != nil {
				return err
			}

			defer func() { _ = target.Close() }()

			if err := target.Import(cmd.Context(), books.All()...); err != nil {
				return err
			}

			view := importView{Imported: books.Len(), From: source, To: opts.config.Catalog.SQLitePath}

			opts.logger.Info("catalog imported", "books", view.Imported, "to", view.To)

			return opts.printer(cmd).print(view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "imported %d books from %s into %s\n", view.Imported, view.From, view.To)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "text catalog to import (default: catalog.path)")

	return cmd
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the ledger table of the postgres engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.config.Ledger.Engine != config.EnginePostgres {
				return WrapExitError(ExitCommandError, "schema", ErrPostgresEngineRequired)
			}

			a := &app{cfg: opts.config, logger: opts.logger}
			defer func() { _ = a.Close() }()

			store, err := a.openPostgres(cmd.Context())
			if err != nil {
				return err
			}

			if err := store.CreateSchema(cmd.Context()); err != nil {
				return err
			}

			view := schemaView{Table: store.TableName()}

			return opts.printer(cmd).print(view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "schema ready: %s\n", view.Table)
				return err
			})
		},
	}
}
