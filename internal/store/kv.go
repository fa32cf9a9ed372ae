// Package store provides abstractions and implementations for data persistence.
package store

import "context"

// Scope names used by the application when talking to a KV backend.
const (
	// ScopeDecks holds one blob per deck, keyed by deck ID.
	ScopeDecks = "decks"
)

// KV is the persistence collaborator: an opaque key-value blob store
// grouped into scopes. The application does not depend on the backend's
// schema, query language, or transaction guarantees; a deck is stored
// as a single serialized blob under an application-chosen key.
//
// Implementations live in internal/platform (SQLite for the local
// offline store, PostgreSQL for the cloud mirror).
type KV interface {
	// Load retrieves the value stored under the given scope and key.
	// Returns ErrNotFound if no value exists.
	Load(ctx context.Context, scope, key string) ([]byte, error)

	// List retrieves all values in a scope, keyed by their store key.
	// An unknown scope yields an empty map, not an error.
	List(ctx context.Context, scope string) (map[string][]byte, error)

	// Save stores the value under the given scope and key, replacing
	// any previous value. Concurrent writers from different processes
	// follow last-write-wins; no merge is attempted.
	Save(ctx context.Context, scope, key string, value []byte) error

	// Delete removes the value under the given scope and key.
	// Deleting a missing key is a no-op.
	Delete(ctx context.Context, scope, key string) error
}

// Persister is the fire-and-forget write path the in-memory store uses
// to mirror its state into a KV backend. Enqueued writes must never
// block the caller and failures must never be surfaced to it; the
// background saver logs and retries at its own discretion.
type Persister interface {
	// EnqueueSave schedules value to be written under scope/key.
	EnqueueSave(scope, key string, value []byte)

	// EnqueueDelete schedules the removal of scope/key.
	EnqueueDelete(scope, key string)
}
