package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	selectDocumentQuery = `SELECT storage_key, payload, created_at, updated_at
FROM roster_documents
WHERE storage_key = $1`

	upsertDocumentQuery = `INSERT INTO roster_documents (storage_key, payload, created_at, updated_at)
VALUES ($1, $2::jsonb, $3, $3)
ON CONFLICT (storage_key) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

type documentTableModel struct {
	StorageKey string    `db:"storage_key"`
	Payload    []byte    `db:"payload"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Provider stores roster snapshots as one JSONB row per storage key.
type Provider struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewProvider(db *sqlx.DB) *Provider {
	return &Provider{db: db, now: time.Now}
}

func (p *Provider) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var row documentTableModel
	if err := p.db.GetContext(ctx, &row, selectDocumentQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get roster document key=%s: %w", key, err)
	}

	return row.Payload, true, nil
}

func (p *Provider) Save(ctx context.Context, key string, payload []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertDocumentQuery, key, string(payload), p.now().UTC()); err != nil {
		return fmt.Errorf("upsert roster document key=%s: %w", key, err)
	}
	return nil
}
