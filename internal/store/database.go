package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MycelicMemory/mycelicmemory/internal/logging"
	_ "github.com/mattn/go-sqlite3"
)

var log = logging.GetLogger("store")

// Store represents a connection to the embedded SQLite database backing
// the memory lifecycle engine. Single-writer, many-reader: only one
// connection is held open so SQLite's own locking enforces the
// serialization the spec requires of writes.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens a database connection and initializes the schema if needed.
func Open(path string) (*Store, error) {
	log.Info("opening store", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Error("failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		log.Error("failed to ping database", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	log.Info("store connection established", "path", path)
	return s, nil
}

// InitSchema initializes the database schema idempotently.
func (s *Store) InitSchema() error {
	log.Info("initializing schema", "version", SchemaVersion)

	s.mu.Lock()
	defer s.mu.Unlock()

	var tableName string
	err := s.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='memories'
		LIMIT 1
	`).Scan(&tableName)
	if err == nil && tableName != "" {
		log.Info("schema already initialized")
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(CoreSchema); err != nil {
		return fmt.Errorf("failed to create core schema: %w", err)
	}

	if _, err := tx.Exec(FTS5Schema); err != nil {
		log.Warn("failed to create FTS5 schema (skipping)", "error", err)
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO schema_version (version, applied_at)
		VALUES (?, CURRENT_TIMESTAMP)
	`, SchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}

	log.Info("schema initialized successfully", "version", SchemaVersion)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	log.Info("closing store")
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
	}
	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Exec executes a SQL statement.
func (s *Store) Exec(query string, args ...interface{}) (sql.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Exec(query, args...)
}

// Query executes a SQL query and returns rows.
func (s *Store) Query(query string, args ...interface{}) (*sql.Rows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Query(query, args...)
}

// QueryRow executes a SQL query and returns a single row.
func (s *Store) QueryRow(query string, args ...interface{}) *sql.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.QueryRow(query, args...)
}

// Begin starts a new transaction.
func (s *Store) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

const (
	retryInitialBackoff = 100 * time.Millisecond
	retryMaxBackoff      = 2 * time.Second
	retryMaxAttempts     = 3
	retryJitterFraction  = 0.10
)

// WithRetry runs fn, retrying with bounded exponential backoff when it
// fails with a "database is locked" error (spec §5 retry policy: 100ms
// initial, x2, cap 2s, <=3 attempts, +-10% jitter). Any non-lock error
// is surfaced immediately. Exhausted retries surface a DatabaseLocked
// error carrying the attempt count.
func WithRetry(fn func() error) error {
	backoff := retryInitialBackoff
	var lastErr error
	for attempt := 1; attempt <= retryMaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isLockedError(lastErr) {
			return lastErr
		}
		if attempt == retryMaxAttempts {
			break
		}
		jitter := 1 + (rand.Float64()*2-1)*retryJitterFraction
		sleep := time.Duration(float64(backoff) * jitter)
		time.Sleep(sleep)
		backoff *= 2
		if backoff > retryMaxBackoff {
			backoff = retryMaxBackoff
		}
	}
	return &DatabaseLockedError{Attempts: retryMaxAttempts, Cause: lastErr}
}

func isLockedError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// GetSchemaVersion returns the current schema version.
func (s *Store) GetSchemaVersion() (int, error) {
	var version int
	err := s.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// TableExists checks if a table exists in the database.
func (s *Store) TableExists(name string) (bool, error) {
	var count int
	err := s.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name=?
	`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountRows returns the number of rows in a table. The table name is
// not parameterizable in SQLite; callers must pass only trusted,
// schema-defined names.
func (s *Store) CountRows(table string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := s.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// Vacuum runs VACUUM to optimize the database file.
func (s *Store) Vacuum() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("VACUUM")
	return err
}

// Checkpoint forces a WAL checkpoint.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Stats reports storage-level counts.
type Stats struct {
	Path          string
	SchemaVersion int
	TableCount    int
	MemoryCount   int
	FileSizeBytes int64
}

// GetStats returns database statistics.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{Path: s.path}

	if version, err := s.GetSchemaVersion(); err == nil {
		stats.SchemaVersion = version
	}

	var tableCount int
	s.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&tableCount)
	stats.TableCount = tableCount

	s.QueryRow("SELECT COUNT(*) FROM memories").Scan(&stats.MemoryCount)

	if info, err := os.Stat(s.path); err == nil {
		stats.FileSizeBytes = info.Size()
	}

	return stats, nil
}
