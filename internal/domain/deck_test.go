package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("Cantonese vocabulary")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, deck.ID)
	assert.Equal(t, "Cantonese vocabulary", deck.Name)
	assert.Empty(t, deck.Cards)
	assert.True(t, deck.LastStudied.IsZero())
}

func TestNewDeckEmptyName(t *testing.T) {
	t.Parallel()

	_, err := NewDeck("")
	assert.ErrorIs(t, err, ErrDeckNameEmpty)
}

func TestDeckAddCard(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("chemistry")
	require.NoError(t, err)

	first, err := NewCard(deck.ID, "H", "hydrogen")
	require.NoError(t, err)
	second, err := NewCard(deck.ID, "He", "helium")
	require.NoError(t, err)

	require.NoError(t, deck.AddCard(first))
	require.NoError(t, deck.AddCard(second))

	// Insertion order is preserved for display.
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, first.ID, deck.Cards[0].ID)
	assert.Equal(t, second.ID, deck.Cards[1].ID)
}

func TestDeckAddCardWrongDeck(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("one")
	require.NoError(t, err)
	other, err := NewDeck("two")
	require.NoError(t, err)

	card, err := NewCard(other.ID, "front", "back")
	require.NoError(t, err)

	assert.ErrorIs(t, deck.AddCard(card), ErrCardWrongDeck)
}

func TestDeckRemoveCard(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("geography")
	require.NoError(t, err)

	card, err := NewCard(deck.ID, "front", "back")
	require.NoError(t, err)
	require.NoError(t, deck.AddCard(card))

	assert.True(t, deck.RemoveCard(card.ID))
	assert.Empty(t, deck.Cards)
	assert.Nil(t, deck.FindCard(card.ID))

	// Removing a missing card reports false.
	assert.False(t, deck.RemoveCard(card.ID))
}

func TestDeckMarkStudied(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("history")
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	deck.MarkStudied(now)
	assert.True(t, deck.LastStudied.Equal(now))
}

func TestDeckClone(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck("physics")
	require.NoError(t, err)
	card, err := NewCard(deck.ID, "front", "back")
	require.NoError(t, err)
	require.NoError(t, deck.AddCard(card))

	clone := deck.Clone()
	clone.Name = "changed"
	clone.Cards[0].Front = "changed"

	assert.Equal(t, "physics", deck.Name)
	assert.Equal(t, "front", deck.Cards[0].Front)
}
