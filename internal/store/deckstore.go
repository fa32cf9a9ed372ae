package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ba1414/studydeck/internal/domain"
)

// DeckStore is the in-process authoritative collection of decks and
// their cards. All reads and writes during a session go through the
// in-memory state; the KV backend is an asynchronous, eventually
// consistent mirror fed through the Persister.
//
// Writers are the CRUD operations below and the review path
// (ApplyReview, MarkDeckStudied); queue building and scheduling never
// mutate the store. A mutex serializes writers, and every accessor
// hands out clones so callers cannot mutate shared state.
type DeckStore struct {
	mu        sync.RWMutex
	decks     map[uuid.UUID]*domain.Deck
	order     []uuid.UUID // deck creation order, for stable listings
	persister Persister
	logger    *slog.Logger
}

// NewDeckStore creates an empty DeckStore that mirrors its state
// through the given persister. If logger is nil, the default logger is
// used.
func NewDeckStore(persister Persister, logger *slog.Logger) *DeckStore {
	if persister == nil {
		panic("persister cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckStore{
		decks:     make(map[uuid.UUID]*domain.Deck),
		persister: persister,
		logger:    logger.With(slog.String("component", "deck_store")),
	}
}

// Load rebuilds the in-memory collection from the KV backend. It is
// called once at startup, before any writer exists; blobs that fail to
// decode are logged and skipped rather than aborting startup.
func (s *DeckStore) Load(ctx context.Context, kv KV) error {
	blobs, err := kv.List(ctx, ScopeDecks)
	if err != nil {
		return fmt.Errorf("failed to list deck blobs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := make([]*domain.Deck, 0, len(blobs))
	for key, blob := range blobs {
		var deck domain.Deck
		if err := json.Unmarshal(blob, &deck); err != nil {
			s.logger.Error("skipping undecodable deck blob",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		if err := deck.Validate(); err != nil {
			s.logger.Error("skipping invalid deck blob",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		loaded = append(loaded, &deck)
	}

	// Map iteration order is random; restore creation order.
	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].CreatedAt.Before(loaded[j].CreatedAt)
	})

	s.decks = make(map[uuid.UUID]*domain.Deck, len(loaded))
	s.order = make([]uuid.UUID, 0, len(loaded))
	for _, deck := range loaded {
		s.decks[deck.ID] = deck
		s.order = append(s.order, deck.ID)
	}

	s.logger.Info("deck store loaded", slog.Int("deck_count", len(s.decks)))
	return nil
}

// CreateDeck creates and persists a new empty deck.
func (s *DeckStore) CreateDeck(name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.decks[deck.ID] = deck
	s.order = append(s.order, deck.ID)
	s.persistLocked(deck)

	return deck.Clone(), nil
}

// GetDeck returns a deep copy of the deck with the given ID.
// Returns ErrDeckNotFound if the deck does not exist.
func (s *DeckStore) GetDeck(id uuid.UUID) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[id]
	if !ok {
		return nil, ErrDeckNotFound
	}
	return deck.Clone(), nil
}

// ListDecks returns deep copies of all decks in creation order.
func (s *DeckStore) ListDecks() []*domain.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decks := make([]*domain.Deck, 0, len(s.order))
	for _, id := range s.order {
		if deck, ok := s.decks[id]; ok {
			decks = append(decks, deck.Clone())
		}
	}
	return decks
}

// DeleteDeck removes a deck and, by extension, all of its cards.
// The deletion is permanent; there is no soft delete.
// Returns ErrDeckNotFound if the deck does not exist.
func (s *DeckStore) DeleteDeck(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.decks[id]; !ok {
		return ErrDeckNotFound
	}

	delete(s.decks, id)
	for i, orderID := range s.order {
		if orderID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persister.EnqueueDelete(ScopeDecks, id.String())

	return nil
}

// AddCard creates a new card in the given deck and persists the deck.
// Content validation happens here, at the CRUD boundary; scheduling
// code downstream assumes well-formed cards.
func (s *DeckStore) AddCard(deckID uuid.UUID, front, back string) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return nil, ErrDeckNotFound
	}

	card, err := domain.NewCard(deckID, front, back)
	if err != nil {
		return nil, err
	}
	if err := deck.AddCard(card); err != nil {
		return nil, err
	}
	s.persistLocked(deck)

	return card.Clone(), nil
}

// UpdateCard replaces a card's front and back text. The scheduling
// state is untouched; display edits never affect review progress.
func (s *DeckStore) UpdateCard(deckID, cardID uuid.UUID, front, back string) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return nil, ErrDeckNotFound
	}

	card := deck.FindCard(cardID)
	if card == nil {
		return nil, ErrCardNotFound
	}

	if err := card.UpdateContent(front, back); err != nil {
		return nil, err
	}
	s.persistLocked(deck)

	return card.Clone(), nil
}

// DeleteCard permanently removes a card from its deck.
func (s *DeckStore) DeleteCard(deckID, cardID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}

	if !deck.RemoveCard(cardID) {
		return ErrCardNotFound
	}
	s.persistLocked(deck)

	return nil
}

// ApplyReview writes scheduler output back into a card. This is the
// only path that mutates scheduling state after card creation.
func (s *DeckStore) ApplyReview(deckID, cardID uuid.UUID, state domain.SchedulingState) (*domain.Card, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return nil, ErrDeckNotFound
	}

	card := deck.FindCard(cardID)
	if card == nil {
		return nil, ErrCardNotFound
	}

	card.ApplyScheduling(state)
	s.persistLocked(deck)

	return card.Clone(), nil
}

// MarkDeckStudied stamps the deck's LastStudied time and persists it.
func (s *DeckStore) MarkDeckStudied(deckID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}

	deck.MarkStudied(now)
	s.persistLocked(deck)

	return nil
}

// persistLocked snapshots the deck as a JSON blob and hands it to the
// background saver. Callers must hold the write lock. A deck that fails
// to marshal is logged and skipped; the in-memory state stays
// authoritative either way.
func (s *DeckStore) persistLocked(deck *domain.Deck) {
	blob, err := json.Marshal(deck)
	if err != nil {
		s.logger.Error("failed to marshal deck for persistence",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return
	}
	s.persister.EnqueueSave(ScopeDecks, deck.ID.String(), blob)
}
