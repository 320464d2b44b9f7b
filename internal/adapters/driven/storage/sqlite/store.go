// Package sqlite persists calendar connections and the sync audit log in a
// single SQLite database, using the pure-Go driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // database/sql driver
)

// schema creates all tables on first open. The sync_events sequence column is
// the insertion order that defines recency; created_at alone is too coarse.
const schema = `
CREATE TABLE IF NOT EXISTS calendar_connections (
	tenant_id            TEXT NOT NULL,
	provider             TEXT NOT NULL,
	external_calendar_id TEXT NOT NULL DEFAULT '',
	access_token         TEXT NOT NULL DEFAULT '',
	refresh_token        TEXT NOT NULL DEFAULT '',
	token_expiry         INTEGER NOT NULL DEFAULT 0,
	is_active            INTEGER NOT NULL DEFAULT 1,
	client_id            TEXT NOT NULL DEFAULT '',
	client_secret        TEXT NOT NULL DEFAULT '',
	created_at           INTEGER NOT NULL,
	updated_at           INTEGER NOT NULL,
	PRIMARY KEY (tenant_id, provider)
);

CREATE TABLE IF NOT EXISTS sync_events (
	seq               INTEGER PRIMARY KEY AUTOINCREMENT,
	id                TEXT NOT NULL UNIQUE,
	tenant_id         TEXT NOT NULL,
	appointment_id    TEXT NOT NULL,
	provider          TEXT NOT NULL,
	external_event_id TEXT,
	status            TEXT NOT NULL,
	error_message     TEXT,
	created_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_events_appointment
	ON sync_events (tenant_id, appointment_id);
CREATE INDEX IF NOT EXISTS idx_sync_events_status
	ON sync_events (tenant_id, status);

CREATE TABLE IF NOT EXISTS appointments (
	id           TEXT NOT NULL,
	tenant_id    TEXT NOT NULL,
	client_name  TEXT NOT NULL DEFAULT '',
	client_email TEXT NOT NULL DEFAULT '',
	service_id   TEXT NOT NULL DEFAULT '',
	employee_id  TEXT NOT NULL DEFAULT '',
	start_time   INTEGER NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (id, tenant_id)
);

CREATE TABLE IF NOT EXISTS services (
	id               TEXT NOT NULL,
	tenant_id        TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL DEFAULT 60,
	PRIMARY KEY (id, tenant_id)
);

CREATE TABLE IF NOT EXISTS employees (
	id        TEXT NOT NULL,
	tenant_id TEXT NOT NULL,
	name      TEXT NOT NULL DEFAULT '',
	email     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (id, tenant_id)
);
`

// Store is the unified SQLite store for all persisted state.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path. An empty path defaults to
// ~/.calsync/calsync.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir := filepath.Join(home, ".calsync")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		path = filepath.Join(dir, "calsync.db")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for collaborators sharing the database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Connections returns the connection registry backed by this store.
func (s *Store) Connections() *ConnectionStore {
	return &ConnectionStore{db: s.db}
}

// SyncEvents returns the sync audit log backed by this store.
func (s *Store) SyncEvents() *SyncEventStore {
	return &SyncEventStore{db: s.db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
