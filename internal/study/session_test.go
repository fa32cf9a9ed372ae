package study

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ba1414/studydeck/internal/domain"
	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/store"
)

// recordingPersister captures enqueued blobs so tests can check what
// was persisted and when.
type recordingPersister struct {
	mu    sync.Mutex
	saves map[string]int
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{saves: make(map[string]int)}
}

func (p *recordingPersister) EnqueueSave(scope, key string, _ []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves[scope+"/"+key]++
}

func (p *recordingPersister) EnqueueDelete(_, _ string) {}

func newTestStore(t *testing.T, cardFronts ...string) (*store.DeckStore, *domain.Deck) {
	t.Helper()

	s := store.NewDeckStore(newRecordingPersister(), nil)
	deck, err := s.CreateDeck("test deck")
	require.NoError(t, err)
	for _, front := range cardFronts {
		_, err := s.AddCard(deck.ID, front, "back of "+front)
		require.NoError(t, err)
	}

	got, err := s.GetDeck(deck.ID)
	require.NoError(t, err)
	return s, got
}

func TestStartEmptyDeck(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t)

	_, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestStartUnknownDeck(t *testing.T) {
	t.Parallel()
	deckStore, _ := newTestStore(t, "a")

	_, err := Start(deckStore, srs.NewDefaultService(), uuid.New(), nil)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
}

func TestStartMarksDeckStudied(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "a")
	require.True(t, deck.LastStudied.IsZero())

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatePresenting, session.State())

	got, err := deckStore.GetDeck(deck.ID)
	require.NoError(t, err)
	assert.False(t, got.LastStudied.IsZero(), "starting a session should stamp LastStudied")
}

func TestRevealAndRateFlow(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "a", "b")

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)

	// Presenting: back hidden, rating not allowed yet.
	card, revealed, err := session.Current()
	require.NoError(t, err)
	assert.False(t, revealed)
	_, err = session.Rate(domain.ReviewGradeGood)
	assert.ErrorIs(t, err, ErrNotRevealed)

	// Reveal, then rating works and advances to the next card.
	require.NoError(t, session.Reveal())
	assert.ErrorIs(t, session.Reveal(), ErrAlreadyRevealed)

	updated, err := session.Rate(domain.ReviewGradeGood)
	require.NoError(t, err)
	assert.Equal(t, card.ID, updated.ID)
	assert.Equal(t, 1, updated.Scheduling.Repetitions)
	assert.Equal(t, StatePresenting, session.State())

	next, revealed, err := session.Current()
	require.NoError(t, err)
	assert.False(t, revealed)
	assert.NotEqual(t, card.ID, next.ID)
}

func TestRateInvalidGrade(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "a")

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)
	require.NoError(t, session.Reveal())

	_, err = session.Rate(domain.ReviewGrade("brilliant"))
	assert.ErrorIs(t, err, domain.ErrInvalidReviewGrade)

	// The session is still waiting on a valid rating.
	assert.Equal(t, StateRevealed, session.State())
}

func TestSessionExhaustion(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "a", "b", "c")

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, session.Reveal())
		_, err := session.Rate(domain.ReviewGradeEasy)
		require.NoError(t, err)
	}

	// Rating the last card ended the session.
	assert.Equal(t, StateIdle, session.State())
	_, _, err = session.Current()
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, session.Reveal(), ErrSessionEnded)
	_, err = session.Rate(domain.ReviewGradeGood)
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestExitKeepsAppliedRatings(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "a", "b")

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)

	// Rate the first card, then bail before the second.
	first, _, err := session.Current()
	require.NoError(t, err)
	require.NoError(t, session.Reveal())
	_, err = session.Rate(domain.ReviewGradeGood)
	require.NoError(t, err)

	session.Exit()
	assert.Equal(t, StateIdle, session.State())

	// The first card's rating survived the exit.
	got, err := deckStore.GetDeck(deck.ID)
	require.NoError(t, err)
	rated := got.FindCard(first.ID)
	require.NotNil(t, rated)
	assert.Equal(t, 1, rated.Scheduling.Repetitions)
	assert.False(t, rated.Scheduling.NextReviewAt.IsZero())

	// Exit is idempotent.
	session.Exit()
	assert.Equal(t, StateIdle, session.State())
}

func TestQueueOrdersDueCardsFirst(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "new", "future")

	// Push the second card into the future; the never-reviewed card
	// must come up first.
	now := time.Now().UTC()
	future := deck.Cards[1]
	state := future.Scheduling
	state.LastReviewedAt = now
	state.NextReviewAt = now.AddDate(0, 0, 10)
	_, err := deckStore.ApplyReview(deck.ID, future.ID, state)
	require.NoError(t, err)

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)

	card, _, err := session.Current()
	require.NoError(t, err)
	assert.Equal(t, "new", card.Front)

	position, total := session.Progress()
	assert.Equal(t, 0, position)
	assert.Equal(t, 2, total)
}

func TestCardsAddedMidSessionJoinNextSession(t *testing.T) {
	t.Parallel()
	deckStore, deck := newTestStore(t, "a")

	session, err := Start(deckStore, srs.NewDefaultService(), deck.ID, nil)
	require.NoError(t, err)

	// The queue was materialized at start; a card added now is not part
	// of this session.
	_, err = deckStore.AddCard(deck.ID, "late", "arrival")
	require.NoError(t, err)

	_, total := session.Progress()
	assert.Equal(t, 1, total)
}
