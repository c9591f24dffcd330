package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLiteKV stores each (tenant, key) document as one row of kv_entries.
type SQLiteKV struct {
	db *sqlx.DB
}

func NewSQLiteKV(db *sqlx.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

const upsertEntry = `
	INSERT INTO kv_entries (tenant, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(tenant, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

func (s *SQLiteKV) Get(ctx context.Context, tenant, key string) ([]byte, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE tenant = ? AND key = ?`, NormalizeTenant(tenant), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteKV) Put(ctx context.Context, tenant, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, upsertEntry, NormalizeTenant(tenant), key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// PutBatch writes all entries in one transaction.
func (s *SQLiteKV) PutBatch(ctx context.Context, tenant string, entries map[string][]byte) error {
	t := NormalizeTenant(tenant)
	now := time.Now().UTC()
	return WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for key, value := range entries {
			if _, err := tx.ExecContext(ctx, upsertEntry, t, key, string(value), now); err != nil {
				return fmt.Errorf("kv put %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *SQLiteKV) Tenants(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.db.SelectContext(ctx, &out, `SELECT DISTINCT tenant FROM kv_entries ORDER BY tenant ASC`); err != nil {
		return nil, fmt.Errorf("kv tenants: %w", err)
	}
	return out, nil
}
