package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck's name is empty.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrCardWrongDeck is returned when a card's deck ID does not match
	// the deck it is being added to.
	ErrCardWrongDeck = errors.New("card belongs to a different deck")
)

// Deck is a named collection of cards. Cards belong to exactly one deck
// and are kept in insertion order for display; study order is decided
// by the queue builder, not the deck.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Cards       []*Card   `json:"cards"`
	LastStudied time.Time `json:"last_studied"` // zero until first study session
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a new empty Deck with the given display name.
// Returns an error if validation fails.
func NewDeck(name string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:        uuid.New(),
		Name:      name,
		Cards:     []*Card{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data, including all its cards.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}

	if d.Name == "" {
		return ErrDeckNameEmpty
	}

	for _, card := range d.Cards {
		if card.DeckID != d.ID {
			return ErrCardWrongDeck
		}
		if err := card.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// AddCard appends a card to the deck, preserving insertion order.
// The card's DeckID must match this deck.
func (d *Deck) AddCard(card *Card) error {
	if card.DeckID != d.ID {
		return ErrCardWrongDeck
	}
	if err := card.Validate(); err != nil {
		return err
	}

	d.Cards = append(d.Cards, card)
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// FindCard returns the card with the given ID, or nil if the deck does
// not contain it.
func (d *Deck) FindCard(cardID uuid.UUID) *Card {
	for _, card := range d.Cards {
		if card.ID == cardID {
			return card
		}
	}
	return nil
}

// RemoveCard deletes the card with the given ID from the deck.
// Reports whether a card was removed. Removal is permanent; there is no
// soft delete.
func (d *Deck) RemoveCard(cardID uuid.UUID) bool {
	for i, card := range d.Cards {
		if card.ID == cardID {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
			d.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// MarkStudied stamps the deck with the time a study session started.
func (d *Deck) MarkStudied(now time.Time) {
	d.LastStudied = now
	d.UpdatedAt = now
}

// Clone returns a deep copy of the deck and its cards.
func (d *Deck) Clone() *Deck {
	clone := *d
	clone.Cards = make([]*Card, len(d.Cards))
	for i, card := range d.Cards {
		clone.Cards[i] = card.Clone()
	}
	return &clone
}
