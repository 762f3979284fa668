// Package sqlite provides a SQLite-backed roster document provider.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	_ "modernc.org/sqlite"
)

const createTableQuery = `CREATE TABLE IF NOT EXISTS roster_documents (
	storage_key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Provider persists roster snapshots in a single SQLite table.
type Provider struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path. ":memory:" keeps it in process.
func Open(ctx context.Context, path string) (*Provider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := otelsql.Open("sqlite", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName(filepath.Base(path)),
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create roster_documents table: %w", err)
	}

	return &Provider{db: db, now: time.Now}, nil
}

func (p *Provider) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *Provider) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM roster_documents WHERE storage_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select roster document key=%s: %w", key, err)
	}
	return payload, true, nil
}

func (p *Provider) Save(ctx context.Context, key string, payload []byte) error {
	now := p.now().UTC().UnixMilli()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO roster_documents (storage_key, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (storage_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert roster document key=%s: %w", key, err)
	}
	return nil
}
