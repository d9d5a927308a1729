// Package postgresengine keeps the ledger in an append-only PostgreSQL table.
//
// Every record is one row holding the four record fields plus a sequence_number column
// that numbers the rows in append order. No statement ever updates or deletes a row.
//
// It works with pgxpool.Pool, sql.DB (lib/pq), and sqlx.DB.
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewLedgerStoreFromPGXPool(
//		pool,
//		postgresengine.WithTableName("ledger_actions"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//	_ = store.CreateSchema(ctx)
//
//	actions, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, action)
package postgresengine
