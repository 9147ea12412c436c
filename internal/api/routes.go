package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Post("/", s.handleCreateDeck)
			r.Get("/", s.handleListDecks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDeck)
				r.Put("/", s.handleUpdateDeck)
				r.Delete("/", s.handleDeleteDeck)
				r.Put("/easy-days", s.handleSetEasyDays)

				r.Post("/cards", s.handleCreateCard)
				r.Get("/cards", s.handleListCards)
				r.Get("/due", s.handleDeckDue)
				r.Get("/new-cards", s.handleNewCards)

				r.Get("/forecast", s.handleForecast)
				r.Post("/balance", s.handleBalance)
				r.Get("/catchup", s.handleCatchUp)
				r.Get("/phase", s.handlePhase)
				r.Get("/preparedness", s.handlePreparedness)
				r.Get("/prioritized", s.handlePrioritized)
			})
		})

		r.Route("/cards/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteCard)
			r.Post("/review", s.handleReviewCard)
			r.Get("/previews", s.handlePreviews)
			r.Post("/convert", s.handleConvertCard)
			r.Get("/history", s.handleCardHistory)
			r.Post("/suspend", s.handleSuspendCard)
		})

		r.Get("/study/due", s.handleStudyDue)
	})

	return r
}
