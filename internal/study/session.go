// Package study drives the interactive review loop: show a card's
// front, reveal the back, rate the recall, advance. A session is an
// ephemeral, in-memory walk over a queue built from one deck; it is
// never persisted and does not survive a restart. Ratings, in
// contrast, are applied to the card store one at a time as they happen
// and are never rolled back.
package study

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ba1414/studydeck/internal/domain"
	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/store"
)

// State identifies where a session is in the review loop.
type State string

// Session states
const (
	// StateIdle means the session has ended, either by exhausting its
	// queue or by an explicit exit.
	StateIdle State = "idle"

	// StatePresenting means a card's front is shown and its back hidden.
	StatePresenting State = "presenting"

	// StateRevealed means the current card's back has been shown and
	// the session is waiting for a rating.
	StateRevealed State = "revealed"
)

// Transition guard errors. Calling a transition from the wrong state is
// a programmer error in the calling layer, not a user-facing failure;
// these sentinels exist so that layer can guard itself.
var (
	// ErrEmptyDeck is returned when starting a session on a deck with no cards.
	ErrEmptyDeck = errors.New("cannot study an empty deck")

	// ErrSessionEnded is returned when acting on a session that is already idle.
	ErrSessionEnded = errors.New("session has ended")

	// ErrAlreadyRevealed is returned when revealing a card twice.
	ErrAlreadyRevealed = errors.New("card is already revealed")

	// ErrNotRevealed is returned when rating a card whose back has not been shown.
	ErrNotRevealed = errors.New("card has not been revealed")
)

// Session is one continuous study pass over the cards of a single
// deck. The queue is materialized once at start; cards added to the
// deck afterwards join the next session, not this one.
//
// Methods are safe for concurrent use, but the state machine still
// enforces one cursor: there is no way to interleave two ratings for
// the same position.
type Session struct {
	id     uuid.UUID
	deckID uuid.UUID

	mu     sync.Mutex
	state  State
	queue  []*domain.Card
	cursor int

	deckStore *store.DeckStore
	scheduler srs.Service
	logger    *slog.Logger
	now       func() time.Time
}

// Start begins a study session over the given deck. The deck must have
// at least one card. Side effects: the deck's LastStudied timestamp is
// updated, and the session enters StatePresenting on the first card of
// the queue.
func Start(
	deckStore *store.DeckStore,
	scheduler srs.Service,
	deckID uuid.UUID,
	logger *slog.Logger,
) (*Session, error) {
	if deckStore == nil {
		panic("deckStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:        uuid.New(),
		deckID:    deckID,
		deckStore: deckStore,
		scheduler: scheduler,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.logger = logger.With(
		slog.String("component", "study_session"),
		slog.String("session_id", s.id.String()),
		slog.String("deck_id", deckID.String()),
	)

	deck, err := deckStore.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if len(deck.Cards) == 0 {
		return nil, ErrEmptyDeck
	}

	startedAt := s.now()
	s.queue = srs.BuildQueue(deck.Cards, startedAt)
	s.cursor = 0
	s.state = StatePresenting

	if err := deckStore.MarkDeckStudied(deckID, startedAt); err != nil {
		return nil, err
	}

	s.logger.Debug("session started",
		slog.Int("queue_length", len(s.queue)),
		slog.Int("due_count", srs.CountDue(deck.Cards, startedAt)))

	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// DeckID returns the ID of the deck this session studies.
func (s *Session) DeckID() uuid.UUID {
	return s.deckID
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the card under the cursor and whether its back has
// been revealed. Returns ErrSessionEnded once the session is idle.
func (s *Session) Current() (*domain.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return nil, false, ErrSessionEnded
	}
	return s.queue[s.cursor].Clone(), s.state == StateRevealed, nil
}

// Progress returns the zero-based cursor position and the queue length.
func (s *Session) Progress() (position, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, len(s.queue)
}

// Reveal shows the back of the current card. Valid only while
// presenting; revealing has no scheduling side effect.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return ErrSessionEnded
	case StateRevealed:
		return ErrAlreadyRevealed
	}

	s.state = StateRevealed
	return nil
}

// Rate applies a review grade to the current card and advances the
// cursor. Valid only after Reveal. The scheduler output is written back
// to the card store immediately (and mirrored asynchronously); it is
// not rolled back if the session later exits early.
//
// Returns the updated card. When the queue is exhausted the session
// transitions to StateIdle.
func (s *Session) Rate(grade domain.ReviewGrade) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return nil, ErrSessionEnded
	case StatePresenting:
		return nil, ErrNotRevealed
	}

	if !grade.IsValid() {
		return nil, domain.ErrInvalidReviewGrade
	}

	current := s.queue[s.cursor]
	next, err := s.scheduler.CalculateNextReview(current.Scheduling, grade, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.deckStore.ApplyReview(s.deckID, current.ID, next)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("card rated",
		slog.String("card_id", current.ID.String()),
		slog.String("grade", string(grade)),
		slog.Int("interval", next.Interval),
		slog.Float64("ease_factor", next.EaseFactor))

	s.cursor++
	if s.cursor >= len(s.queue) {
		s.finishLocked("queue exhausted")
	} else {
		s.state = StatePresenting
	}

	return updated, nil
}

// Exit ends the session immediately from any non-idle state. Ratings
// already applied stay persisted; nothing is rolled back. Exiting an
// idle session is a no-op.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return
	}
	s.finishLocked("explicit exit")
}

// finishLocked moves the session to idle and drops the queue.
// Callers must hold the mutex.
func (s *Session) finishLocked(reason string) {
	s.state = StateIdle
	s.queue = nil
	s.cursor = 0
	s.logger.Debug("session ended", slog.String("reason", reason))
}
