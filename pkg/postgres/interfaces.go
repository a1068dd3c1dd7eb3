package postgres

import (
	"context"
	"database/sql"
)

// Client is the PostgreSQL surface the cycle archive runs on. Kept as an
// interface so stores can be tested without a live database.
type Client interface {
	// Connect opens the database and confirms it is reachable
	Connect(ctx context.Context) error

	// Disconnect closes the database handle
	Disconnect() error

	// Exec runs a statement without returning rows
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// Query runs a query that returns rows
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// QueryRow runs a query expected to return at most one row
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row

	// Transaction runs fn inside a transaction, rolling back on error
	Transaction(ctx context.Context, fn func(*sql.Tx) error) error

	// HealthCheck reports connection state for the health endpoint
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}
