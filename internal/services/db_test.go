package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelks/todo-api-be/internal/database"
)

// newTestDB opens an in-memory database with the full schema. A single
// connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}
