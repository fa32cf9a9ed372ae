package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ba1414/studydeck/internal/api"
	apiMiddleware "github.com/ba1414/studydeck/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	deckHandler := api.NewDeckHandler(app.deckStore, app.logger)
	cardHandler := api.NewCardHandler(app.deckStore, app.scheduler, app.logger)
	studyHandler := api.NewStudyHandler(app.sessions, app.logger)

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

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
