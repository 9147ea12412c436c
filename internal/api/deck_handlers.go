package api

import (
	"net/http"
	"time"

	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/models"
)

type deckRequest struct {
	Name             string                `json:"name"`
	Mode             models.Mode           `json:"mode"`
	TestDate         *string               `json:"test_date"`
	DesiredRetention float64               `json:"desired_retention"`
	MaxCardsPerDay   int                   `json:"max_cards_per_day"`
	NewCardsPerDay   int                   `json:"new_cards_per_day"`
	InsertionOrder   models.InsertionOrder `json:"insertion_order"`
}

func (req deckRequest) toModel() (models.Deck, error) {
	deck := models.Deck{
		Name:             req.Name,
		Mode:             req.Mode,
		DesiredRetention: req.DesiredRetention,
		MaxCardsPerDay:   req.MaxCardsPerDay,
		NewCardsPerDay:   req.NewCardsPerDay,
		InsertionOrder:   req.InsertionOrder,
	}
	if req.TestDate != nil && *req.TestDate != "" {
		t, err := models.ParseTime(*req.TestDate)
		if err != nil {
			return models.Deck{}, errors.NewBadRequestError("invalid test_date: " + *req.TestDate)
		}
		deck.TestDate = &t
	}
	return deck, nil
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req deckRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := req.toModel()
	if err != nil {
		handleError(w, r, err)
		return
	}
	now, err := requestTime(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created, err := s.Decks.CreateDeck(r.Context(), deck, now)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	filter := models.DeckFilter{
		Mode:   models.Mode(r.URL.Query().Get("mode")),
		Limit:  intQuery(r, "limit", 0),
		Offset: intQuery(r, "offset", 0),
	}
	decks, err := s.Decks.ListDecks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := s.Decks.GetDeck(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req deckRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := req.toModel()
	if err != nil {
		handleError(w, r, err)
		return
	}
	deck.ID = id
	updated, err := s.Decks.UpdateDeck(r.Context(), deck)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Decks.DeleteDeck(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

type easyDayRequest struct {
	Weekday  *int    `json:"weekday"`
	Date     *string `json:"date"`
	MaxCards int     `json:"max_cards"`
}

func (s *Server) handleSetEasyDays(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var reqs []easyDayRequest
	if err := decodeJSON(r, &reqs); err != nil {
		handleError(w, r, err)
		return
	}
	days := make([]models.EasyDay, 0, len(reqs))
	for _, req := range reqs {
		day := models.EasyDay{DeckID: id, MaxCards: req.MaxCards}
		if req.Weekday != nil {
			wd := time.Weekday(*req.Weekday)
			day.Weekday = &wd
		}
		if req.Date != nil && *req.Date != "" {
			t, err := models.ParseTime(*req.Date)
			if err != nil {
				handleError(w, r, errors.NewBadRequestError("invalid date: "+*req.Date))
				return
			}
			day.Date = &t
		}
		days = append(days, day)
	}
	deck, err := s.Decks.SetEasyDays(r.Context(), id, days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}
