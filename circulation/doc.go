// Package circulation provides the Desk, the single entry point for everything
// that reads or changes the lending ledger.
//
// Writes go through one command handler per use case (checkout, reserve,
// dereserve, returnbook), each validating its input against the catalog and
// deciding against the book's ledger history. Reads are answered from a
// projection of the ledger that is refreshed incrementally.
//
// The Desk serializes all of its operations. Batch operations run their items
// in order and stop at the first failure, keeping what was already appended.
//
// Usage:
//
//	store, _ := fileengine.NewLedgerStore("data/logfile.txt")
//	books, _ := catalog.LoadFile("data/book_info.txt")
//	desk, _ := circulation.NewDesk(store, books)
//
//	err := desk.Checkout(ctx, 17, "1234")
//	status, err := desk.Status(ctx, 17)
package circulation
