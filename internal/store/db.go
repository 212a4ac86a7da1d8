package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath is the Path of databases opened with OpenMemory.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection to the pulse SQLite database. It serves
// sessions, the message corpus and the sqlite analysis cache.
type DB struct {
	*sql.DB
	Path string
}

// pragmas applied to every connection; WAL is skipped for :memory:.
var pragmas = []string{
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA mmap_size=268435456", // 256MB
	"PRAGMA busy_timeout=5000",
}

// DefaultDBPath returns the default database path: ~/.pulse/pulse.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".pulse", "pulse.db"), nil
}

// Open opens (or creates) the SQLite database at path, configures pragmas
// and runs migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return open(path)
}

// OpenMemory opens a migrated in-memory database for tests.
func OpenMemory() (*DB, error) {
	return open(MemoryPath)
}

func open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{DB: sqlDB, Path: path}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	all := pragmas
	if db.Path != MemoryPath {
		all = append([]string{"PRAGMA journal_mode=WAL"}, pragmas...)
	}
	for _, p := range all {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}
