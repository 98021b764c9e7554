package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kaizenapp/kaizen/pkg/models"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	response BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
`

// SQLite is a durable Store for multi-instance and production deployments.
// Rows carry their own expiry; expired rows are deleted on read.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the cache database at path.
// Parent directories are created and WAL mode is enabled for concurrent reads.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache table: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Get returns the entry for the key. Expired rows are deleted and reported
// as absent.
func (s *SQLite) Get(key string) (Entry, bool, error) {
	var blob []byte
	var createdAt, expiresAt int64

	err := s.db.QueryRow(
		`SELECT response, created_at, expires_at FROM cache_entries WHERE key = ?`,
		key,
	).Scan(&blob, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache select: %w", err)
	}

	entry := Entry{
		Key:       key,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}
	if entry.Expired(s.now()) {
		_ = s.Delete(key)
		return Entry{}, false, nil
	}

	var result models.GenerationResult
	if err := json.Unmarshal(blob, &result); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached response: %w", err)
	}
	entry.Result = result
	return entry, true, nil
}

// Set inserts or replaces the entry for its key.
func (s *SQLite) Set(entry Entry) error {
	blob, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (key, response, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		entry.Key, blob, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	return nil
}

// Delete removes the entry for the key.
func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Len returns the number of stored rows, expired included.
func (s *SQLite) Len() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return count, nil
}

// Clear removes rows; only expired ones when expiredOnly is set.
func (s *SQLite) Clear(expiredOnly bool) error {
	var err error
	if expiredOnly {
		_, err = s.db.Exec(`DELETE FROM cache_entries WHERE expires_at < ?`, s.now().Unix())
	} else {
		_, err = s.db.Exec(`DELETE FROM cache_entries`)
	}
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
