package api

import (
	"net/http"
)

func (s *Server) handleStudyDue(w http.ResponseWriter, r *http.Request) {
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Study.DueCards(r.Context(), now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleDeckDue(w http.ResponseWriter, r *http.Request) {
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
	cards, err := s.Study.DueCardsForDeck(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleNewCards(w http.ResponseWriter, r *http.Request) {
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
	cards, err := s.Study.NewCardsForToday(r.Context(), deckID, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cards)
}
