package adapters

import (
	"context"
	"database/sql"
)

// DBAdapter is the database access the ledger engine needs.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows iterates over query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports the outcome of an Exec.
type DBResult interface {
	RowsAffected() (int64, error)
}

// stdRows wraps sql.Rows for the database/sql based adapters.
type stdRows struct {
	rows *sql.Rows
}

func (r *stdRows) Next() bool {
	return r.rows.Next()
}

func (r *stdRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *stdRows) Err() error {
	return r.rows.Err()
}

func (r *stdRows) Close() error {
	return r.rows.Close()
}

// stdResult wraps sql.Result for the database/sql based adapters.
type stdResult struct {
	result sql.Result
}

func (r *stdResult) RowsAffected() (int64, error) {
	return r.result.RowsAffected()
}
