// Package sqlite implements the KV persistence collaborator on top of
// a local SQLite database file. This is the offline store: it keeps
// working with no network and no external services.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/ba1414/studydeck/internal/platform/logger"
	"github.com/ba1414/studydeck/internal/store"
)

// schema is applied at open. A single blob table keyed by (scope, key)
// is the whole storage contract; decks are opaque values.
const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	scope      TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (scope, key)
);
`

// Open opens (creating if necessary) the SQLite database at path and
// ensures the blob table exists.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite handles one writer at a time; a larger pool just queues
	// on the file lock.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// KV implements the store.KV interface using a SQLite database as the
// storage backend.
type KV struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewKV creates a new SQLite implementation of the KV interface.
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
		logger: log.With(slog.String("component", "sqlite_kv")),
	}
}

// Ensure KV implements store.KV interface
var _ store.KV = (*KV)(nil)

// Load implements store.KV.Load.
func (kv *KV) Load(ctx context.Context, scope, key string) ([]byte, error) {
	query := `SELECT value FROM blobs WHERE scope = ? AND key = ?`

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

	query := `SELECT key, value FROM blobs WHERE scope = ?`

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
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := kv.db.ExecContext(ctx, query, scope, key, value, now); err != nil {
		return store.NewStoreError("blob", "save", "upsert failed", err)
	}

	return nil
}

// Delete implements store.KV.Delete. Deleting a missing key is a no-op.
func (kv *KV) Delete(ctx context.Context, scope, key string) error {
	query := `DELETE FROM blobs WHERE scope = ? AND key = ?`

	if _, err := kv.db.ExecContext(ctx, query, scope, key); err != nil {
		return store.NewStoreError("blob", "delete", "delete failed", err)
	}

	return nil
}
