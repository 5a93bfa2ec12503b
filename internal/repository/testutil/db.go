// Package testutil holds database fixtures shared by repository tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Gridfuse/gridfuse/internal/database"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

// SetupMockDB creates a sqlmock connection. Expectations use the default
// regexp matcher.
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// SetupSQLiteDB opens a private in-memory SQLite database with the
// metadata tables created. The database is closed when the test ends.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	database.ConfigurePool(db, "sqlite")
	require.NoError(t, database.InitializeDatabase(context.Background(), db, sqlexpr.SQLite))
	return db
}
