// Package sqlite provides the local persistence layer for plantae.
//
// Storage is a single key-value table holding JSON blobs, mirroring the
// bounded synchronous medium the app was designed around. Collection stores
// (history, garden) layer their semantics on top of it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// StoreConfig holds store initialization options.
type StoreConfig struct {
	Path     string
	MaxConns int
	WALMode  bool
}

// Store wraps the SQLite connection with a prepared statement cache.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	stmts map[string]*sql.Stmt
}

// NewStore opens (or creates) the database at cfg.Path and runs migrations.
func NewStore(cfg StoreConfig) (*Store, error) {
	dsn := cfg.Path
	if cfg.WALMode {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	store := newStoreFromDB(db)
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func newStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db, stmts: make(map[string]*sql.Stmt)}
}

func (s *Store) migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_epoch INTEGER NOT NULL
		)
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetStmt returns a cached prepared statement for the query.
func (s *Store) GetStmt(query string) (*sql.Stmt, error) {
	s.mu.RLock()
	stmt, ok := s.stmts[query]
	s.mu.RUnlock()
	if ok {
		return stmt, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stmt, ok := s.stmts[query]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	s.stmts[query] = stmt
	return stmt, nil
}

// ExecContext executes a query using the statement cache.
func (s *Store) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	stmt, err := s.GetStmt(query)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

// QueryRowContext executes a single-row query using the statement cache.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	stmt, err := s.GetStmt(query)
	if err != nil {
		return s.db.QueryRowContext(ctx, query, args...)
	}
	return stmt.QueryRowContext(ctx, args...)
}

// GetValue reads the value stored under key. The second return reports
// whether the key was present.
func (s *Store) GetValue(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM kv_store WHERE key = ? LIMIT 1`

	var value string
	err := s.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetValue writes value under key, replacing any previous value.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_store (key, value, updated_at_epoch)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at_epoch = excluded.updated_at_epoch
	`
	_, err := s.ExecContext(ctx, query, key, value, time.Now().UnixMilli())
	return err
}

// DeleteValue removes key. Deleting an absent key is not an error.
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_store WHERE key = ?`
	_, err := s.ExecContext(ctx, query, key)
	return err
}

// Ping checks the database connection.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes cached statements and the database.
func (s *Store) Close() error {
	s.mu.Lock()
	for _, stmt := range s.stmts {
		stmt.Close()
	}
	s.stmts = make(map[string]*sql.Stmt)
	s.mu.Unlock()

	return s.db.Close()
}
