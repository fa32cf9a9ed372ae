package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ba1414/studydeck/internal/domain"
)

// fakePersister applies enqueued writes synchronously to an in-memory
// map so tests can observe what would reach the KV backend.
type fakePersister struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deletes []string
}

func newFakePersister() *fakePersister {
	return &fakePersister{blobs: make(map[string][]byte)}
}

func (p *fakePersister) EnqueueSave(scope, key string, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs[scope+"/"+key] = value
}

func (p *fakePersister) EnqueueDelete(scope, key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blobs, scope+"/"+key)
	p.deletes = append(p.deletes, scope+"/"+key)
}

func (p *fakePersister) get(scope, key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	blob, ok := p.blobs[scope+"/"+key]
	return blob, ok
}

// fakeKV serves a canned set of blobs for DeckStore.Load tests.
type fakeKV struct {
	blobs map[string][]byte
}

func (kv *fakeKV) Load(_ context.Context, scope, key string) ([]byte, error) {
	blob, ok := kv.blobs[scope+"/"+key]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

func (kv *fakeKV) List(_ context.Context, scope string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for key, blob := range kv.blobs {
		if len(key) > len(scope) && key[:len(scope)] == scope {
			out[key[len(scope)+1:]] = blob
		}
	}
	return out, nil
}

func (kv *fakeKV) Save(_ context.Context, scope, key string, value []byte) error {
	kv.blobs[scope+"/"+key] = value
	return nil
}

func (kv *fakeKV) Delete(_ context.Context, scope, key string) error {
	delete(kv.blobs, scope+"/"+key)
	return nil
}

func TestDeckStoreCreateAndGet(t *testing.T) {
	t.Parallel()
	persister := newFakePersister()
	s := NewDeckStore(persister, nil)

	deck, err := s.CreateDeck("biology")
	require.NoError(t, err)

	got, err := s.GetDeck(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "biology", got.Name)

	// The deck snapshot reached the persistence path.
	_, ok := persister.get(ScopeDecks, deck.ID.String())
	assert.True(t, ok, "expected deck blob to be enqueued for saving")
}

func TestDeckStoreGetMissing(t *testing.T) {
	t.Parallel()
	s := NewDeckStore(newFakePersister(), nil)

	_, err := s.GetDeck(uuid.New())
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestDeckStoreListOrder(t *testing.T) {
	t.Parallel()
	s := NewDeckStore(newFakePersister(), nil)

	for _, name := range []string{"one", "two", "three"} {
		_, err := s.CreateDeck(name)
		require.NoError(t, err)
	}

	decks := s.ListDecks()
	require.Len(t, decks, 3)
	assert.Equal(t, "one", decks[0].Name)
	assert.Equal(t, "two", decks[1].Name)
	assert.Equal(t, "three", decks[2].Name)
}

func TestDeckStoreDeleteCascades(t *testing.T) {
	t.Parallel()
	persister := newFakePersister()
	s := NewDeckStore(persister, nil)

	deck, err := s.CreateDeck("doomed")
	require.NoError(t, err)
	card, err := s.AddCard(deck.ID, "front", "back")
	require.NoError(t, err)

	require.NoError(t, s.DeleteDeck(deck.ID))

	_, err = s.GetDeck(deck.ID)
	assert.ErrorIs(t, err, ErrDeckNotFound)

	// Cards went with the deck; the blob was deleted from the mirror.
	_, err = s.UpdateCard(deck.ID, card.ID, "a", "b")
	assert.ErrorIs(t, err, ErrDeckNotFound)
	_, ok := persister.get(ScopeDecks, deck.ID.String())
	assert.False(t, ok)
}

func TestDeckStoreCardCRUD(t *testing.T) {
	t.Parallel()
	s := NewDeckStore(newFakePersister(), nil)

	deck, err := s.CreateDeck("vocab")
	require.NoError(t, err)

	card, err := s.AddCard(deck.ID, "你好", "hello")
	require.NoError(t, err)

	// Content edits stick and preserve scheduling state.
	updated, err := s.UpdateCard(deck.ID, card.ID, "早晨", "good morning")
	require.NoError(t, err)
	assert.Equal(t, "早晨", updated.Front)
	assert.Equal(t, card.Scheduling, updated.Scheduling)

	// Empty content is rejected at the CRUD boundary.
	_, err = s.AddCard(deck.ID, "", "back")
	assert.ErrorIs(t, err, domain.ErrCardFrontEmpty)

	require.NoError(t, s.DeleteCard(deck.ID, card.ID))
	assert.ErrorIs(t, s.DeleteCard(deck.ID, card.ID), ErrCardNotFound)
}

func TestDeckStoreApplyReview(t *testing.T) {
	t.Parallel()
	persister := newFakePersister()
	s := NewDeckStore(persister, nil)

	deck, err := s.CreateDeck("review")
	require.NoError(t, err)
	card, err := s.AddCard(deck.ID, "front", "back")
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	state := card.Scheduling
	state.Repetitions = 1
	state.Interval = 1
	state.LastReviewedAt = now
	state.NextReviewAt = now.AddDate(0, 0, 1)

	got, err := s.ApplyReview(deck.ID, card.ID, state)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Scheduling.Repetitions)

	// The persisted snapshot carries the new scheduling state.
	blob, ok := persister.get(ScopeDecks, deck.ID.String())
	require.True(t, ok)
	var persisted domain.Deck
	require.NoError(t, json.Unmarshal(blob, &persisted))
	require.Len(t, persisted.Cards, 1)
	assert.Equal(t, 1, persisted.Cards[0].Scheduling.Repetitions)
}

func TestDeckStoreApplyReviewRejectsInvalidState(t *testing.T) {
	t.Parallel()
	s := NewDeckStore(newFakePersister(), nil)

	deck, err := s.CreateDeck("invalid")
	require.NoError(t, err)
	card, err := s.AddCard(deck.ID, "front", "back")
	require.NoError(t, err)

	bad := card.Scheduling
	bad.EaseFactor = 0.5

	_, err = s.ApplyReview(deck.ID, card.ID, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidEaseFactor)
}

func TestDeckStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()
	persister := newFakePersister()
	s := NewDeckStore(persister, nil)

	deck, err := s.CreateDeck("persisted")
	require.NoError(t, err)
	_, err = s.AddCard(deck.ID, "front", "back")
	require.NoError(t, err)

	// Boot a second store from the blobs the first one wrote.
	kv := &fakeKV{blobs: persister.blobs}
	restored := NewDeckStore(newFakePersister(), nil)
	require.NoError(t, restored.Load(context.Background(), kv))

	got, err := restored.GetDeck(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "front", got.Cards[0].Front)
}

func TestDeckStoreLoadSkipsCorruptBlobs(t *testing.T) {
	t.Parallel()

	kv := &fakeKV{blobs: map[string][]byte{
		ScopeDecks + "/garbage": []byte("{not json"),
	}}
	s := NewDeckStore(newFakePersister(), nil)

	require.NoError(t, s.Load(context.Background(), kv))
	assert.Empty(t, s.ListDecks())
}

func TestDeckStoreClonesAreIsolated(t *testing.T) {
	t.Parallel()
	s := NewDeckStore(newFakePersister(), nil)

	deck, err := s.CreateDeck("isolation")
	require.NoError(t, err)
	_, err = s.AddCard(deck.ID, "front", "back")
	require.NoError(t, err)

	got, err := s.GetDeck(deck.ID)
	require.NoError(t, err)
	got.Cards[0].Scheduling.Repetitions = 99

	again, err := s.GetDeck(deck.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Cards[0].Scheduling.Repetitions)
}
