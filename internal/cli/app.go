package cli

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/catalog/sqlitecatalog"
	"github.com/bookledger/lendingledger/circulation"
	"github.com/bookledger/lendingledger/config"
	"github.com/bookledger/lendingledger/ledger/fileengine"
	"github.com/bookledger/lendingledger/ledger/oteladapters"
	"github.com/bookledger/lendingledger/ledger/postgresengine"
)

const instrumentationName = "github.com/bookledger/lendingledger"

// bookSearch answers the catalog queries of the books command.
type bookSearch interface {
	All(ctx context.Context) ([]catalog.Book, error)
	ByGenre(ctx context.Context, genre string) ([]catalog.Book, error)
	ByAuthor(ctx context.Context, author string) ([]catalog.Book, error)
	ByTitle(ctx context.Context, title string) ([]catalog.Book, error)
}

// textCatalog adapts the in-memory catalog to bookSearch.
type textCatalog struct {
	*catalog.Catalog
}

func (c textCatalog) All(context.Context) ([]catalog.Book, error) {
	return c.Catalog.All(), nil
}

func (c textCatalog) ByGenre(_ context.Context, genre string) ([]catalog.Book, error) {
	return c.Catalog.ByGenre(genre), nil
}

func (c textCatalog) ByAuthor(_ context.Context, author string) ([]catalog.Book, error) {
	return c.Catalog.ByAuthor(author), nil
}

func (c textCatalog) ByTitle(_ context.Context, title string) ([]catalog.Book, error) {
	return c.Catalog.ByTitle(title), nil
}

// app holds everything a command needs, built from the configuration.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	desk    *circulation.Desk
	books   bookSearch
	closers []func() error
}

func (a *app) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	return errors.Join(errs...)
}

// openApp opens the configured ledger engine and catalog and builds the Desk on top of them.
func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	a := &app{cfg: opts.config, logger: opts.logger}

	store, err := a.openLedger(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	books, err := a.openCatalog()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	deskOptions := []circulation.Option{}
	if a.cfg.Log.OTel {
		deskOptions = append(deskOptions,
			circulation.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))))
	}

	desk, err := circulation.NewDesk(store, books, deskOptions...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.desk = desk

	return a, nil
}

func (a *app) openLedger(ctx context.Context) (circulation.LedgerStore, error) {
	switch a.cfg.Ledger.Engine {
	case config.EnginePostgres:
		return a.openPostgres(ctx)

	default:
		options := []fileengine.Option{fileengine.WithLogger(a.logger)}

		if a.cfg.Log.OTel {
			options = append(options,
				fileengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)),
				fileengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
				fileengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
			)
		}

		return fileengine.NewLedgerStore(a.cfg.Ledger.Path, options...)
	}
}

func (a *app) openPostgres(ctx context.Context) (*postgresengine.LedgerStore, error) {
	pg := a.cfg.Ledger.Postgres

	options := []postgresengine.Option{
		postgresengine.WithTableName(pg.Table),
		postgresengine.WithLogger(a.logger),
	}

	if a.cfg.Log.OTel {
		options = append(options,
			postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)),
			postgresengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
			postgresengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
		)
	}

	switch pg.Driver {
	case config.DriverSQL:
		db, err := config.NewSQLDB(ctx, pg.DSN)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, db.Close)

		return postgresengine.NewLedgerStoreFromSQLDB(db, options...)

	case config.DriverSQLX:
		db, err := config.NewSQLXDB(ctx, pg.DSN)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, db.Close)

		return postgresengine.NewLedgerStoreFromSQLX(db, options...)

	default:
		pool, err := config.NewPGXPool(ctx, pg.DSN)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})

		return postgresengine.NewLedgerStoreFromPGXPool(pool, options...)
	}
}

func (a *app) openCatalog() (catalog.Reader, error) {
	if a.cfg.Catalog.Source == config.CatalogSourceSQLite {
		books, err := sqlitecatalog.Open(a.cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, books.Close)
		a.books = books

		return books, nil
	}

	books, err := catalog.LoadFile(a.cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	a.books = textCatalog{Catalog: books}

	return books, nil
}

// withApp opens the app, runs fn and closes the app again.
func withApp(ctx context.Context, opts *RootOptions, fn func(a *app) error) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}

	runErr := fn(a)

	if closeErr := a.Close(); closeErr != nil {
		a.logger.Warn("closing resources failed", logAttrError, closeErr.Error())
	}

	return runErr
}

// interface guards
var (
	_ circulation.LedgerStore = (*fileengine.LedgerStore)(nil)
	_ circulation.LedgerStore = (*postgresengine.LedgerStore)(nil)
	_ bookSearch              = (*sqlitecatalog.Catalog)(nil)
	_ bookSearch              = textCatalog{}
)
