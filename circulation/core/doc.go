// Package core contains the pure domain logic of the lending desk:
// the status of a book, the error taxonomy of the transaction engine,
// and the derivation of current state from the ledger.
//
// Nothing in this package performs I/O. All functions work on ledger.Actions
// that the caller has already read, which keeps the derivation rules testable
// against hand-written ledgers.
//
// Two equivalent ways of deriving state are provided:
//
//   - scan functions (LoanedBookIDs, ReservedBookIDs, OpenActions, StatusOf, ...)
//     replay a whole ledger on every call.
//   - Projection is an index that is folded forward one Action at a time
//     and answers the same questions without a rescan.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
