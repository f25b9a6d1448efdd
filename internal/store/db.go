package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// busyTimeoutMS is how long a writer waits on a lock held by another
// deltalens process (a sync daemon and a report run share one file).
const busyTimeoutMS = 5000

// DB is the deltalens delta cache.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the cache at path, creating the file and its directory on
// first use, and brings the schema up to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	return setup(conn, path,
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMS),
		"PRAGMA foreign_keys=ON",
	)
}

// OpenInMemory returns an empty cache that lives as long as the DB.
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	return setup(conn, ":memory:", "PRAGMA foreign_keys=ON")
}

// setup pins the pool to one connection, so the pragmas hold for every
// query and an in-memory database is not split across connections.
func setup(conn *sql.DB, path string, pragmas ...string) (*DB, error) {
	conn.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s on %s: %w", p, path, err)
		}
	}
	db := &DB{conn: conn, path: path}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return db, nil
}

// Path returns the file the cache lives in, or ":memory:".
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
