package shell

import (
	"context"

	"github.com/bookledger/lendingledger/catalog"
	"github.com/bookledger/lendingledger/circulation/core"
)

// RequireKnownBook returns a core.ValidationError matching core.ErrUnknownBook
// when the catalog does not contain bookID. Catalog failures are returned as they are.
func RequireKnownBook(ctx context.Context, reader catalog.Reader, bookID int) error {
	if bookID < 1 {
		return core.NewUnknownBookError(bookID)
	}

	known, err := catalog.Contains(ctx, reader, bookID)
	if err != nil {
		return err
	}

	if !known {
		return core.NewUnknownBookError(bookID)
	}

	return nil
}
