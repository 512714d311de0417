package testsupport

import (
	"path/filepath"
	"testing"

	"cadenza/internal/dbschema"
)

// MustOpenStore opens an index database in a temp directory and registers
// cleanup. It returns the store and the database path.
func MustOpenStore(t testing.TB) (*dbschema.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index.db")
	store, err := dbschema.Open(path)
	if err != nil {
		t.Fatalf("dbschema.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store, path
}
