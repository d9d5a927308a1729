package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// sqlConn is the part of sql.DB the engine uses; sqlx.DB has it through embedding.
type sqlConn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StdAdapter runs the engine on database/sql, directly or through sqlx.
type StdAdapter struct {
	conn sqlConn
}

// NewSQLAdapter creates a StdAdapter for a sql.DB opened with the lib/pq driver.
func NewSQLAdapter(db *sql.DB) *StdAdapter {
	return &StdAdapter{conn: db}
}

// NewSQLXAdapter creates a StdAdapter for a sqlx.DB.
func NewSQLXAdapter(db *sqlx.DB) *StdAdapter {
	return &StdAdapter{conn: db}
}

// Query runs a select and returns its rows.
func (a *StdAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := a.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec runs a statement that returns no rows.
func (a *StdAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := a.conn.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}
