// Package database defines the session contract the validation engine runs
// against. All layers above this package talk only to these interfaces —
// they never import the mssql driver package directly.
package database

import "context"

// Session is a single pinned database session.
//
// This is deliberately NOT a connection pool: the compile check flips
// session-scoped flags (NOEXEC, QUOTED_IDENTIFIER, ANSI_NULLS) and every
// statement of a validation pass must land on the same session, in order.
// A Session must therefore never be shared between concurrent passes.
type Session interface {
	// Exec runs a statement that returns no result set.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow executes a SQL statement that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Close releases the pinned session and its underlying resources.
	Close() error
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}
