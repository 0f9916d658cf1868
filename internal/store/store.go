package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// DefaultMaxHistoryItems is the number of quiz history items kept when no
// limit is configured.
const DefaultMaxHistoryItems = 50

// Store owns the SQLite connection and provides access to repositories.
type Store struct {
	db *sqlx.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs the embedded migrations.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: sqlx.NewDb(db, "sqlite")}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HistoryRepo returns a HistoryRepo keeping at most maxItems entries.
// A non-positive maxItems uses DefaultMaxHistoryItems.
func (s *Store) HistoryRepo(maxItems int) HistoryRepo {
	if maxItems <= 0 {
		maxItems = DefaultMaxHistoryItems
	}
	return &historyRepo{db: s.db, maxItems: maxItems}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// builder returns an SQL statement builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QUIZDECK_DB environment variable
// 2. $XDG_DATA_HOME/quizdeck/quizdeck.db
// 3. ~/.local/share/quizdeck/quizdeck.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZDECK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quizdeck", "quizdeck.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
