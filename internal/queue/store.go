// Package queue provides the durable store of pending write records. It is a
// dumb persistence surface keyed by clientId; the reconciliation engine owns
// entry lifecycle.
package queue

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/floodworks/sesloc/internal/record"
	_ "modernc.org/sqlite"
)

// Entry wraps a record awaiting delivery. ClientID is both the storage key
// and the record's idempotency key. Entries are never partially updated:
// always full replace or delete.
type Entry struct {
	ClientID   string
	Record     record.Record
	EnqueuedAt string
}

// NewEntry wraps a record for queueing, keyed by its clientId.
func NewEntry(rec record.Record) Entry {
	return Entry{
		ClientID:   rec.ClientID,
		Record:     rec,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// StorageError reports a failure of the underlying medium. Queue operations
// never fail on logical grounds; any error from this package wraps one of
// these.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("queue %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Notifier receives the queue size after every successful mutation. A count
// of zero means any pending indicator should be suppressed.
type Notifier func(count int)

// Store persists queue entries in a local SQLite database surviving process
// restarts.
type Store struct {
	db     *sql.DB
	notify Notifier
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier installs a pending-count callback invoked after every
// successful Put and Delete.
func WithNotifier(fn Notifier) Option {
	return func(s *Store) { s.notify = fn }
}

// Open opens (creating if needed) the queue database at path, applies
// pragmas and runs migrations. Use ":memory:" for tests.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Err: err}
	}

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts an entry by clientId. Idempotent: re-putting the same entry
// replaces it wholesale.
func (s *Store) Put(e Entry) error {
	payload, err := json.Marshal(e.Record)
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	_, err = s.db.Exec(`
		INSERT INTO queue_entries (client_id, payload, enqueued_at)
		VALUES (?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			payload = excluded.payload,
			enqueued_at = excluded.enqueued_at
	`, e.ClientID, string(payload), e.EnqueuedAt)
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	s.publishCount()
	return nil
}

// GetAll returns a snapshot of every pending entry, oldest first. The
// snapshot reflects all Put/Delete calls completed before it on this
// process.
func (s *Store) GetAll() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT client_id, payload, enqueued_at
		FROM queue_entries
		ORDER BY enqueued_at ASC, client_id ASC
	`)
	if err != nil {
		return nil, &StorageError{Op: "get all", Err: err}
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.ClientID, &payload, &e.EnqueuedAt); err != nil {
			return nil, &StorageError{Op: "get all", Err: err}
		}
		if err := json.Unmarshal([]byte(payload), &e.Record); err != nil {
			return nil, &StorageError{Op: "get all", Err: err}
		}
		// The stored payload is authoritative, but the key column is the
		// idempotency key the engine retries with.
		if e.Record.ClientID == "" {
			e.Record.ClientID = e.ClientID
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "get all", Err: err}
	}

	return entries, nil
}

// Delete removes the entry with the given clientId. Deleting an absent key
// is a no-op, not an error.
func (s *Store) Delete(clientID string) error {
	if clientID == "" {
		return nil
	}

	if _, err := s.db.Exec(`DELETE FROM queue_entries WHERE client_id = ?`, clientID); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	s.publishCount()
	return nil
}

// Count returns the number of pending entries.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM queue_entries`).Scan(&count); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return count, nil
}

func (s *Store) publishCount() {
	if s.notify == nil {
		return
	}
	count, err := s.Count()
	if err != nil {
		slog.Warn("queue count unavailable", "error", err)
		return
	}
	s.notify(count)
}
