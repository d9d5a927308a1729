// Package shell provides the infrastructure around the pure circulation core:
// retrying a command on ledger concurrency conflicts, the result metadata of a
// command handler, catalog lookups, and a projection cache that is refreshed
// incrementally from the ledger.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
