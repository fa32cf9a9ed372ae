package srs

import (
	"math"
	"time"

	"github.com/ba1414/studydeck/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a
// successful recall.
//
// The ease factor controls how quickly intervals grow - higher values
// mean the card is easier. The adjustment follows the SM-2 recurrence
// over the quality rating q in {2, 3}:
//
//	ef' = ef + (0.1 - (3-q)*(0.08 + (3-q)*0.02))
//
// so an easy recall (q=3) earns a larger boost than a good one (q=2).
// The result is clamped at params.MinEaseFactor.
//
// Lapses (q < 2) do not call this function: the ease factor is left
// unchanged on a failed recall. Classic SM-2 penalizes ease on failure;
// this scheduler deliberately does not, and callers must not "fix"
// that here.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (3-q)*(0.08+(3-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days until the next
// review after a successful recall.
//
// The progression is the standard SM-2 ladder: the first success since
// a lapse earns FirstInterval, the second SecondInterval, and every
// later success multiplies the previous interval by the new ease
// factor, rounded to the nearest day.
func calculateNewInterval(currentInterval, repetitions int, easeFactor float64, params *Params) int {
	switch {
	case repetitions == 1:
		return params.FirstInterval
	case repetitions == 2:
		return params.SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * easeFactor))
	}
}

// calculateNextState computes the scheduling state a card should carry
// after being rated with the given grade at the given time.
//
// This is a pure function: the input state is not modified, the clock
// is supplied by the caller, and the same inputs always produce the
// same output. Persisting the result is the caller's responsibility.
//
// Behavior by grade:
//   - again/hard (quality < 2): treated as a lapse. Repetitions resets
//     to 0 and the interval to params.LapseInterval. The ease factor is
//     not touched.
//   - good/easy (quality >= 2): the ease factor is adjusted and
//     clamped, repetitions increments, and the interval advances along
//     the SM-2 ladder using the new ease factor.
//
// In both branches LastReviewedAt is set to now, NextReviewAt to now
// plus the new interval in days, and Mastered is derived from the
// repetition count against params.MasteryThreshold.
func calculateNextState(
	state domain.SchedulingState,
	grade domain.ReviewGrade,
	now time.Time,
	params *Params,
) domain.SchedulingState {
	next := state

	if grade.IsSuccess() {
		next.EaseFactor = calculateNewEaseFactor(state.EaseFactor, grade.Quality(), params)
		next.Repetitions = state.Repetitions + 1
		next.Interval = calculateNewInterval(state.Interval, next.Repetitions, next.EaseFactor, params)
	} else {
		next.Repetitions = 0
		next.Interval = params.LapseInterval
	}

	next.LastReviewedAt = now
	next.NextReviewAt = now.AddDate(0, 0, next.Interval)
	next.Mastered = next.Repetitions > params.MasteryThreshold

	return next
}
