package srs

import (
	"errors"
	"time"

	"github.com/ba1414/studydeck/internal/domain"
)

// Common errors
var (
	ErrInvalidGrade = errors.New("invalid review grade")
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
)

// Service defines the interface for review scheduling operations.
type Service interface {
	// CalculateNextReview computes the scheduling state a card should
	// carry after being rated with the given grade at the given time.
	CalculateNextReview(
		state domain.SchedulingState,
		grade domain.ReviewGrade,
		now time.Time,
	) (domain.SchedulingState, error)

	// PostponeReview pushes the next review time forward by a specified
	// number of days without otherwise touching the scheduling state.
	PostponeReview(
		state domain.SchedulingState,
		days int,
		now time.Time,
	) (domain.SchedulingState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface.
func (s *defaultService) CalculateNextReview(
	state domain.SchedulingState,
	grade domain.ReviewGrade,
	now time.Time,
) (domain.SchedulingState, error) {
	if !grade.IsValid() {
		return domain.SchedulingState{}, ErrInvalidGrade
	}

	return calculateNextState(state, grade, now, s.params), nil
}

// PostponeReview implements the Service interface.
//
// A never-reviewed card (zero NextReviewAt) is postponed relative to
// now rather than relative to the zero time.
func (s *defaultService) PostponeReview(
	state domain.SchedulingState,
	days int,
	now time.Time,
) (domain.SchedulingState, error) {
	if days < 1 {
		return domain.SchedulingState{}, ErrInvalidDays
	}

	next := state
	base := state.NextReviewAt
	if base.IsZero() {
		base = now
	}
	next.NextReviewAt = base.AddDate(0, 0, days)

	return next, nil
}
