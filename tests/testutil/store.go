package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/goal-tracker/internal/store"
)

// NewTestStore opens an in-memory activity journal with all migrations
// applied. It is closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return openStore(t, ":memory:")
}

// NewFileStore opens a journal backed by a file in a fresh temp dir and
// returns it with its path, so a test can reopen the same database.
func NewFileStore(t *testing.T) (*store.SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activity.db")
	return openStore(t, path), path
}

func openStore(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err, "opening journal %s", path)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
