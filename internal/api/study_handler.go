package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ba1414/studydeck/internal/api/shared"
	"github.com/ba1414/studydeck/internal/domain"
	"github.com/ba1414/studydeck/internal/study"
)

// StudyHandler handles study-session HTTP requests. Sessions live in
// memory only; they do not survive a server restart.
type StudyHandler struct {
	manager *study.Manager
	logger  *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(manager *study.Manager, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &StudyHandler{
		manager: manager,
		logger:  logger.With(slog.String("component", "study_handler")),
	}
}

// newSessionResponse snapshots a session for the wire. An idle session
// reports no card.
func newSessionResponse(s *study.Session) SessionResponse {
	position, total := s.Progress()

	resp := SessionResponse{
		ID:       s.ID(),
		DeckID:   s.DeckID(),
		State:    string(s.State()),
		Position: position,
		Total:    total,
	}

	card, revealed, err := s.Current()
	if err == nil {
		cardResp := newCardResponse(card)
		// The back stays hidden until the session reveals it.
		if !revealed {
			cardResp.Back = ""
		}
		resp.Card = &cardResp
		resp.Revealed = revealed
	}

	return resp
}

// StartSession handles POST /api/decks/{deckID}/study.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	deckID, ok := parseIDParam(w, r, "deckID")
	if !ok {
		return
	}

	session, err := h.manager.StartSession(deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("study session started",
		slog.String("session_id", session.ID().String()),
		slog.String("deck_id", deckID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, newSessionResponse(session))
}

// GetSession handles GET /api/study/{sessionID}.
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// RevealCard handles POST /api/study/{sessionID}/reveal.
func (h *StudyHandler) RevealCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	if err := session.Reveal(); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// RateCard handles POST /api/study/{sessionID}/rate.
func (h *StudyHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req RateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid review grade")
		return
	}

	if _, err := session.Rate(domain.ReviewGrade(req.Grade)); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(session))
}

// EndSession handles DELETE /api/study/{sessionID}. Ending a session is
// idempotent from the caller's view; ratings already applied stay.
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseIDParam(w, r, "sessionID")
	if !ok {
		return
	}

	if err := h.manager.EndSession(sessionID); err != nil {
		if errors.Is(err, study.ErrSessionNotFound) {
			// Already gone counts as ended.
			shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("study session ended", slog.String("session_id", sessionID.String()))

	shared.RespondWithJSON(w, r, http.StatusNoContent, nil)
}

func (h *StudyHandler) lookupSession(w http.ResponseWriter, r *http.Request) (*study.Session, bool) {
	sessionID, ok := parseIDParam(w, r, "sessionID")
	if !ok {
		return nil, false
	}

	session, err := h.manager.GetSession(sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}

	return session, true
}
