package dbschema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNewerSchema indicates the database was written by a newer release.
var ErrNewerSchema = errors.New("database schema is newer than this release")

// Store manages the index database connection and its schema version.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the index database at path, creating it at the current
// schema version when absent. An existing database is opened as-is; callers
// gate data-dependent work behind EnsureCurrent.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	fresh, err := store.isFresh(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if fresh {
		if err := store.createAtCurrent(context.Background()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the database handle to collaborators such as the index engine.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) isFresh(ctx context.Context) (bool, error) {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return false, fmt.Errorf("check schema_version table: %w", err)
	}
	return tableExists == 0, nil
}

// Version returns the number of migrations the database has applied.
func (s *Store) Version(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// ExpectedVersion returns the schema version this release requires.
func ExpectedVersion() (int, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return 0, err
	}
	return len(migrations), nil
}

// EnsureCurrent checks the stored schema version against this release's
// expectation. A current database returns true with no side effects and the
// consent callback is never invoked. A stale database invokes consent exactly
// once, synchronously, with the pending migrations' human-readable reasons;
// consent may block on interactive input. Granted consent applies the pending
// migrations and returns true. Refusal returns false and leaves the schema
// and its data unchanged. Open may already have switched the journal mode, so
// the file bytes are not guaranteed pristine, only the stored rows are.
func (s *Store) EnsureCurrent(ctx context.Context, consent func(reasons []string) bool) (bool, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return false, err
	}

	version, err := s.Version(ctx)
	if err != nil {
		return false, err
	}

	switch {
	case version == len(migrations):
		return true, nil
	case version > len(migrations):
		return false, fmt.Errorf("%w: database has version %d, this release expects %d",
			ErrNewerSchema, version, len(migrations))
	}

	pending := migrations[version:]
	reasons := make([]string, 0, len(pending))
	for _, m := range pending {
		reason := m.reason
		if reason == "" {
			reason = m.name
		}
		reasons = append(reasons, reason)
	}

	if consent == nil || !consent(reasons) {
		return false, nil
	}

	for i, m := range pending {
		if err := s.apply(ctx, m, version+i+1); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) apply(ctx context.Context, m migration, newVersion int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.name, err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE schema_version SET version = ?", newVersion); err != nil {
		return fmt.Errorf("record schema version %d: %w", newVersion, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.name, err)
	}
	return nil
}

func (s *Store) createAtCurrent(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", len(migrations)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Reset deletes the index database files so the next Open recreates them at
// the current version. This is the drop-and-rebuild path; it requires no
// consent because the operator's explicit reset action is the consent.
func Reset(path string) error {
	for _, candidate := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(candidate); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", candidate, err)
		}
	}
	return nil
}
