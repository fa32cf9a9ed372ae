package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/ba1414/studydeck/internal/domain"
	"github.com/ba1414/studydeck/internal/domain/srs"
)

// CreateDeckRequest is the request body for creating a deck.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateCardRequest is the request body for adding a card to a deck.
type CreateCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// UpdateCardRequest is the request body for editing a card's content.
type UpdateCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// PostponeCardRequest is the request body for pushing a card's next
// review into the future.
type PostponeCardRequest struct {
	Days int `json:"days" validate:"required,gte=1"`
}

// RateCardRequest is the request body for grading the current card in
// a study session.
type RateCardRequest struct {
	Grade string `json:"grade" validate:"required,oneof=again hard good easy"`
}

// SchedulingResponse is the wire form of a card's scheduling state.
type SchedulingResponse struct {
	EaseFactor     float64    `json:"ease_factor"`
	Interval       int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	Mastered       bool       `json:"mastered"`
}

// CardResponse is the wire form of a card.
type CardResponse struct {
	ID         uuid.UUID          `json:"id"`
	DeckID     uuid.UUID          `json:"deck_id"`
	Front      string             `json:"front"`
	Back       string             `json:"back"`
	Scheduling SchedulingResponse `json:"scheduling"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// DeckResponse is the wire form of a deck. Cards are summarized by
// count; the card listing endpoint returns them in full.
type DeckResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	CardCount   int        `json:"card_count"`
	DueCount    int        `json:"due_count"`
	LastStudied *time.Time `json:"last_studied,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SessionResponse is the wire form of a study session's current state.
type SessionResponse struct {
	ID       uuid.UUID     `json:"id"`
	DeckID   uuid.UUID     `json:"deck_id"`
	State    string        `json:"state"`
	Position int           `json:"position"`
	Total    int           `json:"total"`
	Card     *CardResponse `json:"card,omitempty"`
	Revealed bool          `json:"revealed"`
}

// optionalTime maps the zero time to nil so "never" serializes as an
// absent field instead of year one.
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func newCardResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:     card.ID,
		DeckID: card.DeckID,
		Front:  card.Front,
		Back:   card.Back,
		Scheduling: SchedulingResponse{
			EaseFactor:     card.Scheduling.EaseFactor,
			Interval:       card.Scheduling.Interval,
			Repetitions:    card.Scheduling.Repetitions,
			LastReviewedAt: optionalTime(card.Scheduling.LastReviewedAt),
			NextReviewAt:   optionalTime(card.Scheduling.NextReviewAt),
			Mastered:       card.Scheduling.Mastered,
		},
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

func newDeckResponse(deck *domain.Deck, now time.Time) DeckResponse {
	return DeckResponse{
		ID:          deck.ID,
		Name:        deck.Name,
		CardCount:   len(deck.Cards),
		DueCount:    srs.CountDue(deck.Cards, now),
		LastStudied: optionalTime(deck.LastStudied),
		CreatedAt:   deck.CreatedAt,
		UpdatedAt:   deck.UpdatedAt,
	}
}
