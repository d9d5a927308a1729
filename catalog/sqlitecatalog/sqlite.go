package sqlitecatalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	_ "github.com/mattn/go-sqlite3"                    // sqlite driver

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/ledger"
)

const (
	dialectSQLite   = "sqlite3"
	tableBooks      = "books"
	colID           = "id"
	colGenre        = "genre"
	colTitle        = "title"
	colAuthor       = "author"
	colPrice        = "price"
	colPurchaseDate = "purchase_date"
	colGenreKey     = "genre_key"
	colTitleKey     = "title_key"
	colAuthorKey    = "author_key"
	containsExpr    = "instr(?, ?) > 0"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY CHECK (id > 0),
	genre TEXT NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	price INTEGER NOT NULL CHECK (price >= 0),
	purchase_date TEXT NOT NULL,
	genre_key TEXT NOT NULL,
	title_key TEXT NOT NULL,
	author_key TEXT NOT NULL
)`

var (
	// ErrWritingCatalogFailed is returned when books can not be imported.
	ErrWritingCatalogFailed = errors.New("writing the catalog failed")
)

// Catalog is a catalog.Reader backed by SQLite.
type Catalog struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
}

// Open creates or opens the SQLite database at path and applies the schema.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, ledger.StorageError(catalog.ErrReadingCatalogFailed, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, ledger.StorageError(catalog.ErrReadingCatalogFailed, err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, ledger.StorageError(ErrWritingCatalogFailed, fmt.Errorf("apply schema: %w", err))
	}

	return &Catalog{db: db, dialect: goqu.Dialect(dialectSQLite)}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Import inserts books, replacing the books that already exist with the same id.
// All books are written in one transaction.
func (c *Catalog) Import(ctx context.Context, books ...catalog.Book) error {
	if len(books) == 0 {
		return nil
	}

	records := make([]any, 0, len(books))
	for _, book := range books {
		records = append(records, goqu.Record{
			colID:           book.ID,
			colGenre:        book.Genre,
			colTitle:        book.Title,
			colAuthor:       book.Author,
			colPrice:        book.Price,
			colPurchaseDate: book.PurchaseDate.Format(catalog.DateLayout),
			colGenreKey:     catalog.FoldKey(book.Genre),
			colTitleKey:     catalog.FoldKey(book.Title),
			colAuthorKey:    catalog.FoldKey(book.Author),
		})
	}

	query, args, err := c.dialect.
		Insert(tableBooks).
		Prepared(true).
		Rows(records...).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colGenre:        goqu.L("excluded." + colGenre),
			colTitle:        goqu.L("excluded." + colTitle),
			colAuthor:       goqu.L("excluded." + colAuthor),
			colPrice:        goqu.L("excluded." + colPrice),
			colPurchaseDate: goqu.L("excluded." + colPurchaseDate),
			colGenreKey:     goqu.L("excluded." + colGenreKey),
			colTitleKey:     goqu.L("excluded." + colTitleKey),
			colAuthorKey:    goqu.L("excluded." + colAuthorKey),
		})).
		ToSQL()
	if err != nil {
		return ledger.StorageError(ErrWritingCatalogFailed, errors.Join(ledger.ErrBuildingQueryFailed, err))
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.StorageError(ErrWritingCatalogFailed, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return ledger.StorageError(ErrWritingCatalogFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return ledger.StorageError(ErrWritingCatalogFailed, err)
	}

	return nil
}

// Book returns the book with id.
func (c *Catalog) Book(ctx context.Context, id int) (catalog.Book, bool, error) {
	books, err := c.query(ctx, goqu.C(colID).Eq(id))
	if err != nil || len(books) == 0 {
		return catalog.Book{}, false, err
	}

	return books[0], true, nil
}

// All returns every book ordered by id.
func (c *Catalog) All(ctx context.Context) ([]catalog.Book, error) {
	return c.query(ctx)
}

// ByGenre returns the books whose genre contains genre, ignoring case.
func (c *Catalog) ByGenre(ctx context.Context, genre string) ([]catalog.Book, error) {
	return c.query(ctx, goqu.L(containsExpr, goqu.C(colGenreKey), catalog.FoldKey(genre)))
}

// ByAuthor returns the books whose author contains author, ignoring case.
func (c *Catalog) ByAuthor(ctx context.Context, author string) ([]catalog.Book, error) {
	return c.query(ctx, goqu.L(containsExpr, goqu.C(colAuthorKey), catalog.FoldKey(author)))
}

// ByTitle returns the books whose title contains title, ignoring case.
func (c *Catalog) ByTitle(ctx context.Context, title string) ([]catalog.Book, error) {
	return c.query(ctx, goqu.L(containsExpr, goqu.C(colTitleKey), catalog.FoldKey(title)))
}

func (c *Catalog) query(ctx context.Context, where ...goqu.Expression) ([]catalog.Book, error) {
	query, args, err := c.dialect.
		From(tableBooks).
		Prepared(true).
		Select(colID, colGenre, colTitle, colAuthor, colPrice, colPurchaseDate).
		Where(where...).
		Order(goqu.C(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, ledger.StorageError(catalog.ErrReadingCatalogFailed, errors.Join(ledger.ErrBuildingQueryFailed, err))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledger.StorageError(catalog.ErrReadingCatalogFailed, err)
	}

	defer func() { _ = rows.Close() }()

	books := make([]catalog.Book, 0)

	for rows.Next() {
		var book catalog.Book
		var purchaseDate string

		if err := rows.Scan(&book.ID, &book.Genre, &book.Title, &book.Author, &book.Price, &purchaseDate); err != nil {
			return nil, ledger.StorageError(catalog.ErrReadingCatalogFailed, errors.Join(ledger.ErrScanningDBRowFailed, err))
		}

		book.PurchaseDate, err = time.Parse(catalog.DateLayout, purchaseDate)
		if err != nil {
			return nil, ledger.StorageError(catalog.ErrMalformedCatalogRecord, err)
		}

		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError(catalog.ErrReadingCatalogFailed, err)
	}

	return books, nil
}

var _ catalog.Reader = (*Catalog)(nil)
