// Package mssql provides the SQL Server implementation of database.Session.
//
// Unlike a normal pooled driver, this one pins a single connection for its
// whole lifetime. The validation engine toggles session-scoped flags
// (NOEXEC, QUOTED_IDENTIFIER, ANSI_NULLS), and those flags only behave
// correctly when every statement of a pass lands on the same session.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/errs"
)

// Driver is a SQL Server implementation of database.Session.
// It is NOT safe for concurrent use: callers own the session exclusively.
type Driver struct {
	db   *sql.DB
	conn *sql.Conn

	// queryTimeout caps every round trip. Zero means no per-statement
	// deadline beyond what the caller's context carries.
	queryTimeout time.Duration
}

// New opens a SQL Server session using the provided Config and returns a
// Driver pinned to exactly one engine session. It pings the session before
// returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	// One session, ever. Session flags must not leak across connections.
	db.SetMaxOpenConns(1)

	connCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	conn, err := db.Conn(connCtx)
	if err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to open session")
	}

	if err := conn.PingContext(connCtx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, mapError(err, "ping failed")
	}

	return &Driver{db: db, conn: conn, queryTimeout: cfg.QueryTimeout}, nil
}

// NewFromConn wraps an already-pinned *sql.Conn. The caller keeps ownership
// of the enclosing *sql.DB; Close releases only the pinned connection.
// Test seam: lets sqlmock-backed connections stand in for a live engine.
func NewFromConn(conn *sql.Conn) *Driver {
	return &Driver{conn: conn}
}

// WithQueryTimeout sets the per-statement deadline applied to every round
// trip and returns the Driver for chaining.
func (d *Driver) WithQueryTimeout(timeout time.Duration) *Driver {
	d.queryTimeout = timeout
	return d
}

// statementContext derives the per-statement context. The returned cancel
// must be held until the round trip's results are fully consumed.
func (d *Driver) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.queryTimeout)
}

// --- database.Session implementation ---

// Exec runs a statement that returns no result set.
func (d *Driver) Exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := d.statementContext(ctx)
	defer cancel()

	if _, err := d.conn.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "statement failed")
	}
	return nil
}

// Query executes a SQL statement that returns multiple rows.
// The statement deadline stays armed until the caller closes the rows.
func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	ctx, cancel := d.statementContext(ctx)

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, mapError(err, "query failed")
	}
	return &sqlRows{rows: rows, cancel: cancel}, nil
}

// QueryRow executes a SQL statement expected to return at most one row.
// The statement deadline stays armed until Scan is called.
func (d *Driver) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	ctx, cancel := d.statementContext(ctx)
	return &sqlRow{row: d.conn.QueryRowContext(ctx, query, args...), cancel: cancel}
}

// Close releases the pinned session, then the enclosing handle.
func (d *Driver) Close() error {
	err := d.conn.Close()
	if d.db != nil {
		if dbErr := d.db.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}

// --- sql.DB type wrappers ---

type sqlRows struct {
	rows   *sql.Rows
	cancel context.CancelFunc
}

func (r *sqlRows) Next() bool             { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *sqlRows) Err() error             { return r.rows.Err() }

func (r *sqlRows) Close() {
	_ = r.rows.Close()
	r.cancel()
}

type sqlRow struct {
	row    *sql.Row
	cancel context.CancelFunc
}

func (r *sqlRow) Scan(dest ...any) error {
	defer r.cancel()
	return r.row.Scan(dest...)
}

// --- error mapping ---

// mapError translates go-mssqldb errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var engineErr mssql.Error
	if errors.As(err, &engineErr) {
		return errs.Wrap(
			classifyEngineNumber(engineErr.Number),
			fmt.Sprintf("%s: %s", msg, engineErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyEngineNumber maps SQL Server error numbers to ErrKind.
func classifyEngineNumber(number int32) errs.ErrKind {
	switch number {
	case 4060, 18452, 18456, 18461:
		// cannot open database / login failures
		return errs.ErrKindConnectionFailed
	case 229, 230, 262, 297, 300:
		// statement-level permission denials
		return errs.ErrKindPermissionDenied
	case 102, 105, 156, 207, 208, 2812, 4104:
		// syntax errors, unresolved names
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
