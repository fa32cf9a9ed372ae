package srs

import (
	"sort"
	"time"

	"github.com/ba1414/studydeck/internal/domain"
)

// BuildQueue orders a deck's cards into a study sequence evaluated
// against the given time.
//
// Ordering policy:
//   - every due card (NextReviewAt zero or in the past) sorts before
//     every not-yet-due card;
//   - due cards among themselves sort by ascending NextReviewAt, so
//     never-reviewed cards (zero due time) come first, then overdue
//     cards in the order they became due;
//   - future cards among themselves sort by ascending NextReviewAt,
//     soonest upcoming first.
//
// The sort is stable, so calling BuildQueue twice on an unchanged deck
// yields the same ordering. No cards are dropped or added; the input
// slice is not modified.
func BuildQueue(cards []*domain.Card, now time.Time) []*domain.Card {
	queue := make([]*domain.Card, len(cards))
	copy(queue, cards)

	sort.SliceStable(queue, func(i, j int) bool {
		dueI := queue[i].Scheduling.IsDue(now)
		dueJ := queue[j].Scheduling.IsDue(now)

		if dueI != dueJ {
			return dueI
		}

		// Both due or both future: earlier NextReviewAt first. The zero
		// time of never-reviewed cards naturally sorts ahead of any
		// real timestamp.
		return queue[i].Scheduling.NextReviewAt.Before(queue[j].Scheduling.NextReviewAt)
	})

	return queue
}

// CountDue returns how many of the given cards are due for review at
// the given time.
func CountDue(cards []*domain.Card, now time.Time) int {
	n := 0
	for _, card := range cards {
		if card.Scheduling.IsDue(now) {
			n++
		}
	}
	return n
}
