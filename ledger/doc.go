// Package ledger provides the core types of the book lending ledger: the append-only
// Action record, the record codec for the sequential text log, filters for querying
// the ledger, and the observability interfaces shared by all ledger engines.
//
// A ledger engine (see fileengine and postgresengine) offers two operations:
//
//   - Query returns the Actions matching a Filter in append order, together with the
//     MaxSequenceNumberUint of the last matching record.
//   - Append writes one or more Actions atomically, but only if the max sequence number
//     of the records matching the same Filter is still the one observed by the Query.
//
// Common usage pattern:
//
//	filter := ledger.BuildFilter().ForBooks(bookID).Finalize()
//
//	actions, maxSeq, err := store.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	action, err := ledger.BuildAction(ledger.ActionOut, bookID, "1234", time.Now())
//	err = store.Append(ctx, filter, maxSeq, action)
//
// Every failure of the underlying medium is reported as an error matching ErrStorage.
package ledger
