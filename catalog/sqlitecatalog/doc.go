// Package sqlitecatalog keeps the catalog in a SQLite database.
//
// Books are imported from a catalog.Catalog and queried with the same field queries.
// Folded search keys are stored next to genre, title and author so matching ignores
// case beyond ASCII, which SQLite's LOWER does not.
package sqlitecatalog
