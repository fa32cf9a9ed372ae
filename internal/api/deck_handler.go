package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ba1414/studydeck/internal/api/shared"
	"github.com/ba1414/studydeck/internal/store"
)

// DeckHandler handles deck-related HTTP requests.
type DeckHandler struct {
	deckStore *store.DeckStore
	timeFunc  func() time.Time
	logger    *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckStore *store.DeckStore, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckHandler{
		deckStore: deckStore,
		timeFunc:  time.Now,
		logger:    logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Deck name is required")
		return
	}

	deck, err := h.deckStore.CreateDeck(req.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))

	shared.RespondWithJSON(w, r, http.StatusCreated, newDeckResponse(deck, h.timeFunc()))
}

// ListDecks handles GET /api/decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks := h.deckStore.ListDecks()
	now := h.timeFunc()

	resp := make([]DeckResponse, 0, len(decks))
	for _, deck := range decks {
		resp = append(resp, newDeckResponse(deck, now))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDeck handles GET /api/decks/{deckID}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
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

	shared.RespondWithJSON(w, r, http.StatusOK, newDeckResponse(deck, h.timeFunc()))
}

// DeleteDeck handles DELETE /api/decks/{deckID}.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}

	if err := h.deckStore.DeleteDeck(deckID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("deck deleted", slog.String("deck_id", deckID.String()))

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

// parseIDParam extracts and parses a UUID path parameter, writing a 400
// response on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}

	return id, true
}
