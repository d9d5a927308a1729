package catalog_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/ledger"
)

func loadFixture(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.LoadFile(filepath.Join("testdata", "book_info.txt"))
	require.NoError(t, err)

	return c
}

func bookIDs(books []catalog.Book) []int {
	ids := make([]int, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	return ids
}

func Test_LoadFile_ParsesFixture(t *testing.T) {
	// act
	c := loadFixture(t)

	// assert
	require.Equal(t, 5, c.Len())

	book, found, err := c.Book(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, catalog.Book{
		ID:           4,
		Genre:        "Crime",
		Title:        "Murder on the Orient Express",
		Author:       "Agatha Christie",
		Price:        7,
		PurchaseDate: time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC),
	}, book)
}

func Test_LoadFile_MissingFile(t *testing.T) {
	_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "nope.txt"))

	assert.ErrorIs(t, err, ledger.ErrStorage)
	assert.ErrorIs(t, err, catalog.ErrReadingCatalogFailed)
}

func Test_Decode_MalformedRecords(t *testing.T) {
	testCases := []struct {
		name string
		line string
	}{
		{"too few fields", "1;Fantasy;The Hobbit;Tolkien;12"},
		{"id not numeric", "one;Fantasy;The Hobbit;Tolkien;12;2021-03-04"},
		{"id not positive", "0;Fantasy;The Hobbit;Tolkien;12;2021-03-04"},
		{"empty title", "1;Fantasy; ;Tolkien;12;2021-03-04"},
		{"negative price", "1;Fantasy;The Hobbit;Tolkien;-3;2021-03-04"},
		{"bad date", "1;Fantasy;The Hobbit;Tolkien;12;04.03.2021"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.Decode(strings.NewReader(catalog.RecordHeader + "\n" + tc.line))

			assert.ErrorIs(t, err, ledger.ErrStorage)
			assert.ErrorIs(t, err, catalog.ErrMalformedCatalogRecord)
			assert.ErrorContains(t, err, "line 2")
		})
	}
}

func Test_Decode_DuplicateID(t *testing.T) {
	input := "1;A;B;C;1;2020-01-01\n1;D;E;F;2;2020-01-02"

	_, err := catalog.Decode(strings.NewReader(input))

	assert.ErrorIs(t, err, catalog.ErrDuplicateBookID)
}

func Test_Book_Unknown(t *testing.T) {
	c := loadFixture(t)

	found, err := catalog.Contains(context.Background(), c, 99)

	require.NoError(t, err)
	assert.False(t, found)
}

func Test_FieldQueries(t *testing.T) {
	c := loadFixture(t)

	assert.Equal(t, []int{1, 3}, bookIDs(c.ByGenre("fantasy")))
	assert.Equal(t, []int{2, 5}, bookIDs(c.ByGenre("  SCIENCE ")))
	assert.Equal(t, []int{5}, bookIDs(c.ByAuthor("stanisław")))
	assert.Equal(t, []int{5}, bookIDs(c.ByAuthor("STANISŁAW LEM")))
	assert.Equal(t, []int{3}, bookIDs(c.ByTitle("zauber")))
	assert.Equal(t, []int{3, 4}, bookIDs(c.PricedAtMost(9)))
	assert.Equal(t, []int{2, 3}, bookIDs(c.PurchasedBefore(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, []int{4, 5}, bookIDs(c.PurchasedAfter(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, bookIDs(c.All()))
	assert.Empty(t, c.ByTitle("ulysses"))
}

func Test_FoldKey_NormalizesComposition(t *testing.T) {
	composed := "Mu\u00f1oz"
	decomposed := "MUN\u0303OZ"

	assert.Equal(t, catalog.FoldKey(composed), catalog.FoldKey(decomposed))
}

func Test_EncodeRecord_Golden(t *testing.T) {
	// arrange
	c := loadFixture(t)
	var b strings.Builder
	b.WriteString(catalog.RecordHeader)

	// act
	for _, book := range c.All() {
		b.WriteString("\n")
		b.WriteString(catalog.EncodeRecord(book))
	}

	// assert
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "catalog_records", []byte(b.String()))
}

func Test_EncodeRecord_RoundTrip(t *testing.T) {
	c := loadFixture(t)

	for _, book := range c.All() {
		decoded, err := catalog.DecodeRecord(catalog.EncodeRecord(book))

		require.NoError(t, err)
		assert.Equal(t, book, decoded)
	}
}
