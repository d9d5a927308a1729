package catalog

import (
	"context"
	"errors"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrReadingCatalogFailed is returned when the catalog medium can not be read.
	ErrReadingCatalogFailed = errors.New("reading the catalog failed")

	// ErrMalformedCatalogRecord is returned for a catalog line that does not match the six-field schema.
	ErrMalformedCatalogRecord = errors.New("malformed catalog record")

	// ErrDuplicateBookID is returned when two books share one id.
	ErrDuplicateBookID = errors.New("duplicate book id")
)

// Book is one entry of the catalog.
type Book struct {
	ID           int
	Genre        string
	Title        string
	Author       string
	Price        int
	PurchaseDate time.Time
}

// Reader answers whether a book exists. A missing book is reported with found == false,
// err is reserved for failures of the medium.
type Reader interface {
	Book(ctx context.Context, id int) (book Book, found bool, err error)
}

// Contains reports whether reader knows a book with id.
func Contains(ctx context.Context, reader Reader, id int) (bool, error) {
	_, found, err := reader.Book(ctx, id)

	return found, err
}

// FoldKey returns s in the form used for case-insensitive matching:
// NFC normalized and case folded.
func FoldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
