package api

import (
	"net/http"

	"github.com/prepdeck/prepdeck/internal/worker"
)

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	forecast, err := s.Planner.Forecast(r.Context(), deckID, intQuery(r, "days", 0), now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, forecast)
}

// handleBalance runs synchronously when the caller asks for the result,
// otherwise it queues a background job and returns 202.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if r.URL.Query().Get("async") == "true" && s.PlannerPool != nil {
		s.PlannerPool.Submit(&worker.BalanceDeckJob{Planner: s.Planner, DeckID: deckID, Now: now})
		respondJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}
	result, err := s.Planner.Balance(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	buckets, err := s.Planner.CatchUp(r.Context(), deckID, intQuery(r, "days", 0), now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, buckets)
}

func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	status, err := s.Planner.Phase(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, status)
}

func (s *Server) handlePreparedness(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	report, err := s.Planner.Preparedness(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, report)
}

func (s *Server) handlePrioritized(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Planner.Prioritized(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cards)
}
