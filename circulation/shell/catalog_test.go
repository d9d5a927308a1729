package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/circulation/shell"
)

func Test_RequireKnownBook(t *testing.T) {
	books, err := catalog.New(catalog.Book{
		ID:           7,
		Genre:        "Fiction",
		Title:        "Solaris",
		Author:       "Stanisław Lem",
		Price:        12,
		PurchaseDate: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		bookID  int
		unknown bool
	}{
		{name: "known", bookID: 7},
		{name: "not in catalog", bookID: 8, unknown: true},
		{name: "zero", bookID: 0, unknown: true},
		{name: "negative", bookID: -7, unknown: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := shell.RequireKnownBook(context.Background(), books, tc.bookID)

			if !tc.unknown {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, core.ErrUnknownBook)
			assert.ErrorIs(t, err, core.ErrValidationFailed)
		})
	}
}
