package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Catalog is an in-memory catalog, read-only after construction and safe for concurrent reads.
type Catalog struct {
	books map[int]Book
	ids   []int
}

// New builds a Catalog from books. Book ids must be unique.
func New(books ...Book) (*Catalog, error) {
	c := &Catalog{
		books: make(map[int]Book, len(books)),
		ids:   make([]int, 0, len(books)),
	}

	for _, book := range books {
		if _, exists := c.books[book.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateBookID, book.ID)
		}

		c.books[book.ID] = book
		c.ids = append(c.ids, book.ID)
	}

	slices.Sort(c.ids)

	return c, nil
}

// Book returns the book with id. The error is always nil.
func (c *Catalog) Book(_ context.Context, id int) (Book, bool, error) {
	book, found := c.books[id]

	return book, found, nil
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// All returns every book ordered by id.
func (c *Catalog) All() []Book {
	return c.where(func(Book) bool { return true })
}

// ByGenre returns the books whose genre contains genre, ignoring case.
func (c *Catalog) ByGenre(genre string) []Book {
	return c.containing(genre, func(b Book) string { return b.Genre })
}

// ByAuthor returns the books whose author contains author, ignoring case.
func (c *Catalog) ByAuthor(author string) []Book {
	return c.containing(author, func(b Book) string { return b.Author })
}

// ByTitle returns the books whose title contains title, ignoring case.
func (c *Catalog) ByTitle(title string) []Book {
	return c.containing(title, func(b Book) string { return b.Title })
}

// PricedAtMost returns the books that cost price or less.
func (c *Catalog) PricedAtMost(price int) []Book {
	return c.where(func(b Book) bool { return b.Price <= price })
}

// PurchasedBefore returns the books purchased strictly before day.
func (c *Catalog) PurchasedBefore(day time.Time) []Book {
	return c.where(func(b Book) bool { return b.PurchaseDate.Before(day) })
}

// PurchasedAfter returns the books purchased strictly after day.
func (c *Catalog) PurchasedAfter(day time.Time) []Book {
	return c.where(func(b Book) bool { return b.PurchaseDate.After(day) })
}

func (c *Catalog) containing(term string, field func(Book) string) []Book {
	key := FoldKey(strings.TrimSpace(term))

	return c.where(func(b Book) bool { return strings.Contains(FoldKey(field(b)), key) })
}

func (c *Catalog) where(match func(Book) bool) []Book {
	result := make([]Book, 0)

	for _, id := range c.ids {
		if book := c.books[id]; match(book) {
			result = append(result, book)
		}
	}

	return result
}

var _ Reader = (*Catalog)(nil)
