// Package namestore persists obfuscation rename tables in SQLite so that
// placeholders in an extracted corpus can be mapped back to source names.
package namestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoRun is returned by SaveNames before BeginRun.
var ErrNoRun = errors.New("no active run")

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both contexts.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection holding runs and their name maps.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
	run    string
}

// Open opens or creates the database at dbPath, creating its directory.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newStore(db, dbPath)
}

// OpenMemory opens an in-memory database (for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	return newStore(db, ":memory:")
}

func newStore(db *sql.DB, dbPath string) (*Store, error) {
	// One connection: every :memory: connection is its own database, and
	// writers are serialized by the batch sink anyway.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, q: db, dbPath: dbPath}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction executes fn within a single SQLite transaction. The
// callback receives a transaction-scoped Store.
func (s *Store) WithTransaction(ctx context.Context, fn func(txStore *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath, run: s.run}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		config TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS name_maps (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		file TEXT NOT NULL,
		method_ordinal INTEGER NOT NULL,
		method TEXT NOT NULL,
		placeholder TEXT NOT NULL,
		original TEXT NOT NULL,
		PRIMARY KEY (run_id, file, method_ordinal, placeholder)
	);

	CREATE INDEX IF NOT EXISTS idx_name_maps_file ON name_maps(file, run_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Now returns the current time in the format stored in started_at.
func Now() string {
	return time.Now().UTC().Format(timeLayout)
}
