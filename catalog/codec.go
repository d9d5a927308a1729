package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bookledger/lendingledger/ledger"
)

const (
	// RecordHeader is the first line of a catalog file.
	RecordHeader = "ID; Genre; Title; Author; Purchase Price; Purchase Date"

	// DateLayout is the layout of the purchase date field.
	DateLayout = "2006-01-02"

	fieldSeparator = ";"
	fieldCount     = 6
	headerIDField  = "id"
)

// LoadFile reads the catalog file at path.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ledger.StorageError(ErrReadingCatalogFailed, err)
	}

	defer func() { _ = file.Close() }()

	return Decode(file)
}

// Decode reads a catalog in file format from r. Blank lines are skipped,
// the first non-blank line is skipped when it is a header.
func Decode(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)

	books := make([]Book, 0)
	lineNumber := 0
	firstLine := true

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		if firstLine {
			firstLine = false
			if isHeader(line) {
				continue
			}
		}

		book, err := DecodeRecord(line)
		if err != nil {
			return nil, ledger.StorageError(ErrReadingCatalogFailed, fmt.Errorf("line %d: %w", lineNumber, err))
		}

		books = append(books, book)
	}

	if err := scanner.Err(); err != nil {
		return nil, ledger.StorageError(ErrReadingCatalogFailed, err)
	}

	c, err := New(books...)
	if err != nil {
		return nil, ledger.StorageError(ErrReadingCatalogFailed, err)
	}

	return c, nil
}

// DecodeRecord parses one catalog line.
func DecodeRecord(line string) (Book, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), fieldSeparator)
	if len(fields) != fieldCount {
		return Book{}, malformed("expected %d fields, got %d", fieldCount, len(fields))
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil || id < 1 {
		return Book{}, malformed("book id %q is not a positive integer", fields[0])
	}

	for i, name := range []string{"genre", "title", "author"} {
		if fields[i+1] == "" {
			return Book{}, malformed("%s of book %d is empty", name, id)
		}
	}

	price, err := strconv.Atoi(fields[4])
	if err != nil || price < 0 {
		return Book{}, malformed("price %q of book %d is not a whole non-negative amount", fields[4], id)
	}

	purchaseDate, err := time.Parse(DateLayout, fields[5])
	if err != nil {
		return Book{}, malformed("purchase date %q of book %d: %v", fields[5], id, err)
	}

	return Book{
		ID:           id,
		Genre:        fields[1],
		Title:        fields[2],
		Author:       fields[3],
		Price:        price,
		PurchaseDate: purchaseDate,
	}, nil
}

// EncodeRecord renders book as one catalog line.
func EncodeRecord(book Book) string {
	return strings.Join([]string{
		strconv.Itoa(book.ID),
		book.Genre,
		book.Title,
		book.Author,
		strconv.Itoa(book.Price),
		book.PurchaseDate.Format(DateLayout),
	}, fieldSeparator)
}

func isHeader(line string) bool {
	first, _, _ := strings.Cut(line, fieldSeparator)

	return strings.EqualFold(strings.TrimSpace(first), headerIDField)
}

func malformed(format string, args ...any) error {
	return errors.Join(ErrMalformedCatalogRecord, fmt.Errorf(format, args...))
}
