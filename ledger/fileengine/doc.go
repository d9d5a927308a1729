// Package fileengine stores the ledger as a sequential text file, one record per line.
//
// The file starts with the header line "ACTION BOOK_ID MEMBER_ID DATE", followed by one
// "KIND BOOK_ID MEMBER_ID YYYY-MM-DD" record per line. Records are numbered from 1 in file
// order; that number is the sequence number used for conditional appends.
//
// All operations of one LedgerStore are serialized by a mutex. Appends are written with a
// single write call and synced before returning, so every append is visible to the next read.
//
// Usage:
//
//	store, err := fileengine.NewLedgerStore("data/logfile.txt",
//		fileengine.WithCreateIfMissing(),
//		fileengine.WithLogger(slog.Default()),
//	)
package fileengine
