package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	DirName = ".framecore"
	DBName  = "state.db"

	DefaultQuota      = 5 * 1024 * 1024
	DefaultSessionTTL = 24 * time.Hour
)

// ErrQuotaExceeded is returned by Set when the write would push a scope past
// its byte quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a key/value medium over SQLite with a durable local scope and a
// session scope bound to one session ID.
type Store struct {
	db         *sql.DB
	rootDir    string
	sessionID  string
	resumed    bool
	quota      int
	sessionTTL time.Duration
}

type Option func(*Store)

// WithQuota caps the total bytes of values per scope.
func WithQuota(bytes int) Option { return func(s *Store) { s.quota = bytes } }

// WithSession resumes an existing session scope instead of starting a new one.
// A resumed session is not purged on Close.
func WithSession(id string) Option {
	return func(s *Store) {
		if id != "" {
			s.sessionID = id
			s.resumed = true
		}
	}
}

// WithSessionTTL sets how long an untouched session scope survives.
func WithSessionTTL(d time.Duration) Option { return func(s *Store) { s.sessionTTL = d } }

func New(projectDir string, opts ...Option) (*Store, error) {
	ctxDir := filepath.Join(projectDir, DirName)
	if err := os.MkdirAll(ctxDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", DirName, err)
	}

	dbPath := filepath.Join(ctxDir, DBName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:         db,
		rootDir:    projectDir,
		sessionID:  uuid.NewString(),
		quota:      DefaultQuota,
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.purgeStaleSessions(); err != nil {
		db.Close()
		return nil, fmt.Errorf("purge sessions: %w", err)
	}
	return s, nil
}

// Exists reports whether projectDir holds an initialized store.
func Exists(projectDir string) bool {
	_, err := os.Stat(filepath.Join(projectDir, DirName, DBName))
	return err == nil
}

// Close drops the session scope (unless it was resumed) and closes the database.
func (s *Store) Close() error {
	if !s.resumed {
		s.db.Exec("DELETE FROM session_storage WHERE session_id = ?", s.sessionID)
	}
	return s.db.Close()
}

func (s *Store) SessionID() string { return s.sessionID }

// Dir returns the project directory the store lives in.
func (s *Store) Dir() string { return s.rootDir }

func (s *Store) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 10000;

	CREATE TABLE IF NOT EXISTS local_storage (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_storage (
		session_id TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (session_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_session_updated ON session_storage(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) purgeStaleSessions() error {
	cutoff := time.Now().UTC().Add(-s.sessionTTL)
	_, err := s.db.Exec(
		"DELETE FROM session_storage WHERE session_id != ? AND updated_at < ?",
		s.sessionID, cutoff,
	)
	return err
}

func (s *Store) Get(ctx context.Context, scope Scope, key string) (string, bool, error) {
	var value string
	var err error
	switch scope {
	case ScopeLocal:
		err = s.db.QueryRowContext(ctx,
			"SELECT value FROM local_storage WHERE key = ?", key,
		).Scan(&value)
	case ScopeSession:
		err = s.db.QueryRowContext(ctx,
			"SELECT value FROM session_storage WHERE session_id = ? AND key = ?", s.sessionID, key,
		).Scan(&value)
	default:
		return "", false, fmt.Errorf("unknown scope %q", scope)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any previous value. The write fails
// with ErrQuotaExceeded if the scope's total value bytes would exceed the quota.
func (s *Store) Set(ctx context.Context, scope Scope, key, value string) error {
	used, err := s.usage(ctx, scope, key)
	if err != nil {
		return err
	}
	if used+len(value) > s.quota {
		return fmt.Errorf("set %s/%s (%d bytes, %d in use, quota %d): %w",
			scope, key, len(value), used, s.quota, ErrQuotaExceeded)
	}

	now := time.Now().UTC()
	switch scope {
	case ScopeLocal:
		_, err = s.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)",
			key, value, now,
		)
	case ScopeSession:
		_, err = s.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO session_storage (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)",
			s.sessionID, key, value, now,
		)
	}
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, scope Scope, key string) error {
	var err error
	switch scope {
	case ScopeLocal:
		_, err = s.db.ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", key)
	case ScopeSession:
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM session_storage WHERE session_id = ? AND key = ?", s.sessionID, key)
	default:
		return fmt.Errorf("unknown scope %q", scope)
	}
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", scope, key, err)
	}
	return nil
}

// List returns every entry in scope ordered by key.
func (s *Store) List(ctx context.Context, scope Scope) ([]Entry, error) {
	var rows *sql.Rows
	var err error
	switch scope {
	case ScopeLocal:
		rows, err = s.db.QueryContext(ctx,
			"SELECT key, value, updated_at FROM local_storage ORDER BY key")
	case ScopeSession:
		rows, err = s.db.QueryContext(ctx,
			"SELECT key, value, updated_at FROM session_storage WHERE session_id = ? ORDER BY key", s.sessionID)
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Scope: scope}
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// usage returns the bytes held in scope by keys other than key.
func (s *Store) usage(ctx context.Context, scope Scope, key string) (int, error) {
	var used int
	var err error
	switch scope {
	case ScopeLocal:
		err = s.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0) FROM local_storage WHERE key != ?", key,
		).Scan(&used)
	case ScopeSession:
		err = s.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0) FROM session_storage WHERE session_id = ? AND key != ?",
			s.sessionID, key,
		).Scan(&used)
	default:
		return 0, fmt.Errorf("unknown scope %q", scope)
	}
	if err != nil {
		return 0, fmt.Errorf("usage %s: %w", scope, err)
	}
	return used, nil
}

// IsFull reports whether err indicates a capacity failure: the configured
// quota or an SQLite SQLITE_FULL condition.
func IsFull(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_FULL") ||
		strings.Contains(msg, "database or disk is full")
}
