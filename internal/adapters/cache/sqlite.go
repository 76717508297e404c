// Package cache keeps raw Codeforces API results in SQLite so collection
// reruns can skip the network.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite is a response cache keyed by API method and handle.
type SQLite struct {
	db     *sql.DB
	closed atomic.Bool
	now    func() time.Time
}

// Open opens (or creates) the cache database at path and ensures its schema.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpen, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return New(ctx, db)
}

// New wraps an open database and ensures its schema.
func New(ctx context.Context, db *sql.DB) (*SQLite, error) {
	// SQLite allows one writer; workers share this connection.
	db.SetMaxOpenConns(1)
	c := &SQLite{db: db, now: time.Now}
	if err := c.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLite) init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS responses (
			method     TEXT NOT NULL,
			handle     TEXT NOT NULL,
			payload    BLOB NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (method, handle)
		);`)
	if err != nil {
		return fmt.Errorf("%w: init schema: %w", ErrOpen, err)
	}
	return nil
}

// Get returns the cached payload for method and handle.
func (c *SQLite) Get(ctx context.Context, method, handle string) ([]byte, bool, error) {
	if c.closed.Load() {
		return nil, false, ErrClosed
	}
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM responses WHERE method = ? AND handle = ?`, method, handle,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query response: %w", err)
	}
	return payload, true, nil
}

// Put stores or replaces the payload for method and handle.
func (c *SQLite) Put(ctx context.Context, method, handle string, payload []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO responses (method, handle, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(method, handle) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		method, handle, payload, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// Len returns the number of cached responses.
func (c *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (c *SQLite) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}
