// Package cli implements the lendingledger command line tool on top of the
// circulation Desk. It is a thin presentation layer: it loads the configuration,
// opens the configured ledger engine and catalog, runs one Desk operation and
// renders the result as text or JSON.
package cli
