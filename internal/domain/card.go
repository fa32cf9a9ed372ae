package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrInvalidInterval is returned when a card's interval is negative.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidEaseFactor is returned when a card's ease factor is below the floor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
)

// DefaultEaseFactor is the ease factor assigned to new cards.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the lower bound for a card's ease factor.
const MinEaseFactor = 1.3

// SchedulingState holds the spaced-repetition bookkeeping for a card.
// It is mutated only by applying scheduler output; display and read
// paths never change it.
//
// A zero NextReviewAt means the card has never been reviewed and is
// immediately due. Go's zero time (year 1) is used as the "absent" tag;
// it cannot collide with any real review timestamp.
type SchedulingState struct {
	EaseFactor     float64   `json:"ease_factor"`
	Interval       int       `json:"interval"` // days until next review
	Repetitions    int       `json:"repetitions"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time `json:"next_review_at"`
	Mastered       bool      `json:"mastered"`
}

// NewSchedulingState returns the scheduling state assigned to a card
// that has never been reviewed.
func NewSchedulingState() SchedulingState {
	return SchedulingState{
		EaseFactor:  DefaultEaseFactor,
		Interval:    0,
		Repetitions: 0,
	}
}

// IsDue reports whether the card should be presented for study at the
// given time. Never-reviewed cards are always due.
func (s SchedulingState) IsDue(now time.Time) bool {
	return s.NextReviewAt.IsZero() || s.NextReviewAt.Before(now)
}

// Validate checks the scheduling state invariants.
func (s SchedulingState) Validate() error {
	if s.Interval < 0 {
		return ErrInvalidInterval
	}
	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}
	return nil
}

// Card represents a single flashcard belonging to exactly one deck.
// Front and back are user-supplied arbitrary strings.
type Card struct {
	ID         uuid.UUID       `json:"id"`
	DeckID     uuid.UUID       `json:"deck_id"`
	Front      string          `json:"front"`
	Back       string          `json:"back"`
	Scheduling SchedulingState `json:"scheduling"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewCard creates a new Card with the given deck ID and content.
// It generates a new UUID for the card ID and initializes the
// scheduling state for immediate review.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:         uuid.New(),
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Scheduling: NewSchedulingState(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	return c.Scheduling.Validate()
}

// UpdateContent updates the card's front and back text and bumps the
// UpdatedAt timestamp. The scheduling state is untouched.
// Returns an error if the new content is invalid.
func (c *Card) UpdateContent(front, back string) error {
	origFront, origBack := c.Front, c.Back
	c.Front = front
	c.Back = back

	if err := c.Validate(); err != nil {
		c.Front, c.Back = origFront, origBack
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyScheduling replaces the card's scheduling state with scheduler
// output and bumps the UpdatedAt timestamp. This is the only mutation
// path for scheduling fields outside card creation.
func (c *Card) ApplyScheduling(state SchedulingState) {
	c.Scheduling = state
	c.UpdatedAt = time.Now().UTC()
}

// Clone returns a copy of the card. Stores hand out clones so callers
// cannot mutate the authoritative in-memory state behind its back.
func (c *Card) Clone() *Card {
	clone := *c
	return &clone
}
