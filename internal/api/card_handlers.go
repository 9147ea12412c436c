package api

import (
	"net/http"

	"github.com/prepdeck/prepdeck/internal/models"
)

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
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
	card, err := s.Decks.CreateCard(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter := models.CardFilter{
		DeckID: deckID,
		Mode:   models.Mode(r.URL.Query().Get("mode")),
		Limit:  intQuery(r, "limit", 0),
		Offset: intQuery(r, "offset", 0),
	}
	if leech := r.URL.Query().Get("leech"); leech != "" {
		isLeech := leech == "true" || leech == "1"
		filter.IsLeech = &isLeech
	}
	cards, err := s.Decks.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Decks.DeleteCard(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

type reviewRequest struct {
	Rating models.Rating `json:"rating"`
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	result, err := s.Reviews.Rate(r.Context(), id, req.Rating, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handlePreviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	previews, err := s.Reviews.Previews(r.Context(), id, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, previews)
}

func (s *Server) handleConvertCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Reviews.ConvertToLongTerm(r.Context(), id, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.Reviews.History(r.Context(), id, intQuery(r, "limit", 0))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, entries)
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

func (s *Server) handleSuspendCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req suspendRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Decks.SuspendLeech(r.Context(), id, req.Suspended); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
