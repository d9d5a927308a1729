// Package adapters lets the postgres ledger engine run on pgxpool.Pool, sql.DB, or sqlx.DB.
//
// Each adapter exposes the same two calls, Query and Exec, on plain SQL strings built by goqu.
package adapters
