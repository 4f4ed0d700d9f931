// store_test.go provides a shared test database helper for the store tests.
// Every test gets its own migrated SQLite file under t.TempDir().
package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agencysite/internal/database"
)

// testDB opens a fresh database file and runs migrations. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "content.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// testStore returns a ContentStore over a fresh database whose clock is
// pinned to at.
func testStore(t *testing.T, at time.Time) *ContentStore {
	t.Helper()

	s := NewContentStore(testDB(t))
	s.now = func() time.Time { return at }
	return s
}
