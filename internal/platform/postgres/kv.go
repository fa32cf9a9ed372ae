// Package postgres implements the KV persistence collaborator on top
// of a hosted PostgreSQL database. It mirrors the in-memory deck store
// for deployments where state must survive the local machine; schema
// management is handled by embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/ba1414/studydeck/internal/platform/logger"
	"github.com/ba1414/studydeck/internal/store"
)

// Open connects to the PostgreSQL database at url and verifies the
// connection. Schema setup is a separate step; see Migrate.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to ping postgres database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	return db, nil
}

// KV implements the store.KV interface using a PostgreSQL database as
// the storage backend.
type KV struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewKV creates a new PostgreSQL implementation of the KV interface.
// It accepts a database connection that should be initialized and
// managed by the caller. If logger is nil, a default logger is used.
func NewKV(db store.DBTX, log *slog.Logger) *KV {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &KV{
		db:     db,
		logger: log.With(slog.String("component", "postgres_kv")),
	}
}

// Ensure KV implements store.KV interface
var _ store.KV = (*KV)(nil)

// Load implements store.KV.Load.
func (kv *KV) Load(ctx context.Context, scope, key string) ([]byte, error) {
	query := `SELECT value FROM blobs WHERE scope = $1 AND key = $2`

	var value []byte
	err := kv.db.QueryRowContext(ctx, query, scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("blob", "load", "query failed", err)
	}

	return value, nil
}

// List implements store.KV.List.
func (kv *KV) List(ctx context.Context, scope string) (map[string][]byte, error) {
	log := logger.FromContextOrDefault(ctx, kv.logger)

	query := `SELECT key, value FROM blobs WHERE scope = $1`

	rows, err := kv.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, store.NewStoreError("blob", "list", "query failed", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	blobs := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, store.NewStoreError("blob", "list", "scan failed", err)
		}
		blobs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("blob", "list", "row iteration failed", err)
	}

	return blobs, nil
}

// Save implements store.KV.Save. Existing values are replaced;
// concurrent writers follow last-write-wins.
func (kv *KV) Save(ctx context.Context, scope, key string, value []byte) error {
	query := `
		INSERT INTO blobs (scope, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := kv.db.ExecContext(ctx, query, scope, key, value); err != nil {
		return store.NewStoreError("blob", "save", "upsert failed", err)
	}

	return nil
}

// Delete implements store.KV.Delete. Deleting a missing key is a no-op.
func (kv *KV) Delete(ctx context.Context, scope, key string) error {
	query := `DELETE FROM blobs WHERE scope = $1 AND key = $2`

	if _, err := kv.db.ExecContext(ctx, query, scope, key); err != nil {
		return store.NewStoreError("blob", "delete", "delete failed", err)
	}

	return nil
}
