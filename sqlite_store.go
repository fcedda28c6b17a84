package smartbot

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const createBlobsTable = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

type sqliteStore struct {
	db     *sql.DB
	closed bool
	mtx    sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path and
// returns a BlobStore backed by a single blobs table. The returned store
// implements io.Closer; callers own the database lifetime.
func NewSQLiteStore(path string) (BlobStore, error) {
	// modernc.org/sqlite uses the _pragma=name(value) DSN syntax.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createBlobsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create blobs table: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// Read returns the stored bytes for key, or ErrKeyNotFound if nothing has
// been written yet
func (ss *sqliteStore) Read(key string) ([]byte, error) {
	ss.mtx.RLock()
	defer ss.mtx.RUnlock()

	if ss.closed {
		return nil, ErrStoreClosed
	}

	var value []byte
	err := ss.db.QueryRow("SELECT value FROM blobs WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return value, nil
}

// Write stores data under key, replacing any previous value
func (ss *sqliteStore) Write(key string, data []byte) error {
	ss.mtx.Lock()
	defer ss.mtx.Unlock()

	if ss.closed {
		return ErrStoreClosed
	}

	_, err := ss.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}

// Close releases the underlying database. Further reads and writes fail
// with ErrStoreClosed.
func (ss *sqliteStore) Close() error {
	ss.mtx.Lock()
	defer ss.mtx.Unlock()

	if ss.closed {
		return nil
	}
	ss.closed = true

	return ss.db.Close()
}
