package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AliAamir1/budsapp/internal/dbx"
)

// KeyValue is the durable key-value store backing the session layer.
// Implemented by KeyValueStore; fakes satisfy it in tests.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// KeyValueStore persists opaque values by key in the metadata table.
type KeyValueStore struct {
	db dbx.DBTX
}

func NewKeyValueStore(db dbx.DBTX) *KeyValueStore {
	return &KeyValueStore{db: db}
}

// Get returns the stored value, or (nil, nil) when the key is absent.
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key.
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	return upsert(ctx, s.db, key, value)
}

// SetMany upserts every key in values. When the store is backed by a plain
// *sql.DB the writes run in one transaction, so related keys (such as a
// token pair) commit or roll back together.
func (s *KeyValueStore) SetMany(ctx context.Context, values map[string][]byte) error {
	if db, ok := s.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return upsertAll(ctx, tx, values)
		})
	}
	return upsertAll(ctx, s.db, values)
}

func upsertAll(ctx context.Context, db dbx.DBTX, values map[string][]byte) error {
	for key, value := range values {
		if err := upsert(ctx, db, key, value); err != nil {
			return err
		}
	}
	return nil
}

func upsert(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	query := `INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// Delete removes key if present. Deleting an absent key is not an error.
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

// Clear removes every stored key.
func (s *KeyValueStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
