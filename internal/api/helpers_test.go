package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/store"
	"github.com/ba1414/studydeck/internal/study"
)

// noopPersister satisfies store.Persister without any backing storage.
type noopPersister struct{}

func (noopPersister) EnqueueSave(scope, key string, value []byte) {}
func (noopPersister) EnqueueDelete(scope, key string)             {}

// testEnv wires real components behind an in-process router, the same
// shape the server mounts in production.
type testEnv struct {
	router    chi.Router
	deckStore *store.DeckStore
	manager   *study.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deckStore := store.NewDeckStore(noopPersister{}, logger)
	scheduler := srs.NewDefaultService()
	manager := study.NewManager(deckStore, scheduler, logger)

	deckHandler := NewDeckHandler(deckStore, logger)
	cardHandler := NewCardHandler(deckStore, scheduler, logger)
	studyHandler := NewStudyHandler(manager, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/", deckHandler.ListDecks)
			r.Route("/{deckID}", func(r chi.Router) {
				r.Get("/", deckHandler.GetDeck)
				r.Delete("/", deckHandler.DeleteDeck)
				r.Post("/study", studyHandler.StartSession)
				r.Route("/cards", func(r chi.Router) {
					r.Get("/", cardHandler.ListCards)
					r.Post("/", cardHandler.CreateCard)
					r.Route("/{cardID}", func(r chi.Router) {
						r.Put("/", cardHandler.UpdateCard)
						r.Delete("/", cardHandler.DeleteCard)
						r.Post("/postpone", cardHandler.PostponeCard)
					})
				})
			})
		})
		r.Route("/study/{sessionID}", func(r chi.Router) {
			r.Get("/", studyHandler.GetSession)
			r.Post("/reveal", studyHandler.RevealCard)
			r.Post("/rate", studyHandler.RateCard)
			r.Delete("/", studyHandler.EndSession)
		})
	})

	return &testEnv{
		router:    r,
		deckStore: deckStore,
		manager:   manager,
	}
}

// do executes a request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// mustCreateDeck creates a deck through the API and returns its response.
func (e *testEnv) mustCreateDeck(t *testing.T, name string) DeckResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/decks", CreateDeckRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code)

	var deck DeckResponse
	decode(t, rec, &deck)
	return deck
}

// mustCreateCard creates a card through the API and returns its response.
func (e *testEnv) mustCreateCard(t *testing.T, deckID, front, back string) CardResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/decks/"+deckID+"/cards",
		CreateCardRequest{Front: front, Back: back})
	require.Equal(t, http.StatusCreated, rec.Code)

	var card CardResponse
	decode(t, rec, &card)
	return card
}
