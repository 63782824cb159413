package validate

import (
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/database/mssql"
	"github.com/sqlprobe/sqlprobe/internal/report"
)

// newMockSession pins a sqlmock-backed connection behind the real driver,
// so tests exercise the same session and error-mapping path as production.
func newMockSession(t *testing.T) (database.Session, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		_ = db.Close()
	})

	return mssql.NewFromConn(conn), mock
}

func discardReporter() *report.Reporter {
	return report.New(io.Discard, report.VerbosityNone)
}

// exact anchors a literal statement for sqlmock's regexp matcher.
func exact(stmt string) string {
	return "^" + regexp.QuoteMeta(stmt) + "$"
}
