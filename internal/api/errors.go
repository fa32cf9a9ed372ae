package api

import (
	"errors"
	"net/http"

	"github.com/ba1414/studydeck/internal/domain"
	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/store"
	"github.com/ba1414/studydeck/internal/study"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, study.ErrSessionNotFound):
		return http.StatusNotFound

	// Session state errors
	case errors.Is(err, study.ErrSessionEnded),
		errors.Is(err, study.ErrAlreadyRevealed),
		errors.Is(err, study.ErrNotRevealed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, study.ErrEmptyDeck),
		errors.Is(err, srs.ErrInvalidGrade),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, domain.ErrInvalidReviewGrade),
		errors.Is(err, domain.ErrDeckNameEmpty),
		errors.Is(err, domain.ErrCardFrontEmpty),
		errors.Is(err, domain.ErrCardBackEmpty):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, study.ErrSessionNotFound):
		return "Study session not found"

	case errors.Is(err, study.ErrSessionEnded):
		return "Study session has ended"

	case errors.Is(err, study.ErrAlreadyRevealed):
		return "Card is already revealed"

	case errors.Is(err, study.ErrNotRevealed):
		return "Reveal the card before rating it"

	case errors.Is(err, study.ErrEmptyDeck):
		return "Deck has no cards to study"

	case errors.Is(err, srs.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidReviewGrade):
		return "Invalid review grade"

	case errors.Is(err, srs.ErrInvalidDays):
		return "Postpone days must be at least 1"

	case errors.Is(err, domain.ErrDeckNameEmpty):
		return "Deck name cannot be empty"

	case errors.Is(err, domain.ErrCardFrontEmpty):
		return "Card front cannot be empty"

	case errors.Is(err, domain.ErrCardBackEmpty):
		return "Card back cannot be empty"

	default:
		return "An unexpected error occurred"
	}
}
