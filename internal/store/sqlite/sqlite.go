// ABOUTME: SQLite-backed storage engine for the media library.
// ABOUTME: Handles XDG-style file creation, schema versioning via user_version and migrations.

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type migration struct {
	version int
	name    string
	stmts   string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create media and playlists collections",
		stmts: `
CREATE TABLE IF NOT EXISTS media (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('audio', 'video')),
    mime_type TEXT NOT NULL,
    size INTEGER NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    artist TEXT NOT NULL DEFAULT '',
    album TEXT NOT NULL DEFAULT '',
    content BLOB,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_media_created_at ON media(created_at);

CREATE TABLE IF NOT EXISTS playlists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    media_ids TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_playlists_created_at ON playlists(created_at);
`,
	},
}

type Store struct {
	db        *sql.DB
	closed    atomic.Bool
	media     *mediaCollection
	playlists *playlistCollection
}

// Open opens or creates the database file at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w: %w", store.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", store.ErrStorageUnavailable, err)
	}
	// One connection: writes serialize and an in-memory database stays shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure database: %w: %w", store.ErrStorageUnavailable, err)
	}
	if path != MemoryPath {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w: %w", store.ErrStorageUnavailable, err)
		}
	}

	if err := migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	s.media = &mediaCollection{db: db, closed: &s.closed}
	s.playlists = &playlistCollection{db: db, closed: &s.closed}
	return s, nil
}

func (s *Store) Media() store.Collection[*models.MediaItem] {
	return s.media
}

func (s *Store) Playlists() store.Collection[*models.Playlist] {
	return s.playlists
}

func (s *Store) SchemaVersion() (int, error) {
	if s.closed.Load() {
		return 0, errClosed("read schema version")
	}
	v, err := userVersion(s.db)
	if err != nil {
		return 0, txnErr("read schema version", err)
	}
	return v, nil
}

func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func userVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

func migrate(db *sql.DB, steps []migration) error {
	latest := 0
	if len(steps) > 0 {
		latest = steps[len(steps)-1].version
	}

	current, err := userVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w: %w", store.ErrStorageUnavailable, err)
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than supported %d: %w", current, latest, store.ErrStorageUnavailable)
	}

	for _, m := range steps {
		if m.version <= current {
			continue
		}
		err := withTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.stmts); err != nil {
				return err
			}
			_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version))
			return err
		})
		if err != nil {
			return txnErr(fmt.Sprintf("migrate to v%d (%s)", m.version, m.name), err)
		}
		current = m.version
	}
	return nil
}

// withTx runs fn in a transaction and rolls back on any error.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func errClosed(op string) error {
	return fmt.Errorf("%s: %w: database closed", op, store.ErrStorageUnavailable)
}

func txnErr(op string, err error) error {
	if errors.Is(err, store.ErrInvalidRecord) || errors.Is(err, store.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, store.ErrTransactionFailed, err)
}
