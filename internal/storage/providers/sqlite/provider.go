// Package sqlite implements storage.Backend on an embedded SQLite database.
// All namespaces share one table keyed by (namespace, key).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/memohai/mediaclip/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	namespace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	body       BLOB    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// Provider stores documents in a SQLite database file.
type Provider struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Provider, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writes ordered and makes ":memory:" databases usable.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Provider{db: db}, nil
}

// Read returns the stored body, or storage.ErrNotExist.
func (p *Provider) Read(ctx context.Context, namespace, key string) ([]byte, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotExist
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return body, nil
}

// Write upserts the document body in a single statement.
func (p *Provider) Write(ctx context.Context, namespace, key string, data []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO documents (namespace, key, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		namespace, key, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Close closes the database.
func (p *Provider) Close() error {
	return p.db.Close()
}
