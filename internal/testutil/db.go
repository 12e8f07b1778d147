// Package testutil provides test utilities for database setup.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/issueview/internal/infrastructure/sqlite/migrations"
)

// NewTestDB creates a migrated SQLite database in a temp directory and
// closes it when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issueview.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	require.NoError(t, migrations.Up(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}
