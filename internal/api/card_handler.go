package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ba1414/studydeck/internal/api/shared"
	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/store"
)

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	deckStore *store.DeckStore
	scheduler srs.Service
	timeFunc  func() time.Time
	logger    *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(deckStore *store.DeckStore, scheduler srs.Service, logger *slog.Logger) *CardHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		deckStore: deckStore,
		scheduler: scheduler,
		timeFunc:  time.Now,
		logger:    logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /api/decks/{deckID}/cards. Cards come back in
// study order: due cards first, then future reviews.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}

	deck, err := h.deckStore.GetDeck(deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	queue := srs.BuildQueue(deck.Cards, h.timeFunc())

	resp := make([]CardResponse, 0, len(queue))
	for _, card := range queue {
		resp = append(resp, newCardResponse(card))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateCard handles POST /api/decks/{deckID}/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Card front and back are required")
		return
	}

	card, err := h.deckStore.AddCard(deckID, req.Front, req.Back)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, newCardResponse(card))
}

// UpdateCard handles PUT /api/decks/{deckID}/cards/{cardID}. Only the
// front and back text change; scheduling state is untouched.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := parseIDParam(w, r, "cardID")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Card front and back are required")
		return
	}

	card, err := h.deckStore.UpdateCard(deckID, cardID, req.Front, req.Back)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(card))
}

// DeleteCard handles DELETE /api/decks/{deckID}/cards/{cardID}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := parseIDParam(w, r, "cardID")
	if !ok {
		return
	}

	if err := h.deckStore.DeleteCard(deckID, cardID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// PostponeCard handles POST /api/decks/{deckID}/cards/{cardID}/postpone.
// It pushes the card's next review the requested number of days into
// the future without touching ease, interval, or repetitions.
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := parseIDParam(w, r, "cardID")
	if !ok {
		return
	}

	var req PostponeCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Postpone days must be at least 1")
		return
	}

	deck, err := h.deckStore.GetDeck(deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	card := deck.FindCard(cardID)
	if card == nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusNotFound, GetSafeErrorMessage(store.ErrCardNotFound), store.ErrCardNotFound)
		return
	}

	next, err := h.scheduler.PostponeReview(card.Scheduling, req.Days, h.timeFunc())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	updated, err := h.deckStore.ApplyReview(deckID, cardID, next)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", req.Days))

	shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(updated))
}
