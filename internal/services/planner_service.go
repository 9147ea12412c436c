package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/examphase"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
	"github.com/prepdeck/prepdeck/internal/workload"
)

// PhaseStatus is a deck's exam-phase report, including the post-exam
// recommendation when the test has passed.
type PhaseStatus struct {
	examphase.Status
	PostExamAction examphase.PostExamAction `json:"post_exam_action,omitempty"`
}

// PlannerService covers everything about future workload: forecasts,
// load balancing, catch-up schedules, and exam-phase planning.
type PlannerService interface {
	Forecast(ctx context.Context, deckID int64, days int, now time.Time) ([]workload.DailyLoad, error)
	Balance(ctx context.Context, deckID int64, now time.Time) (*workload.BalanceResult, error)
	CatchUp(ctx context.Context, deckID int64, days int, now time.Time) ([]workload.Bucket, error)
	Phase(ctx context.Context, deckID int64, now time.Time) (*PhaseStatus, error)
	Preparedness(ctx context.Context, deckID int64, now time.Time) (*examphase.Report, error)
	Prioritized(ctx context.Context, deckID int64, now time.Time) ([]models.Card, error)
}

type plannerService struct {
	cards        repository.CardRepository
	decks        repository.DeckRepository
	forecastDays int
}

// NewPlannerService creates a new PlannerService
func NewPlannerService(cards repository.CardRepository, decks repository.DeckRepository, forecastDays int) PlannerService {
	return &plannerService{cards: cards, decks: decks, forecastDays: forecastDays}
}

func (s *plannerService) Forecast(ctx context.Context, deckID int64, days int, now time.Time) ([]workload.DailyLoad, error) {
	log := logger.FromContext(ctx)
	if days <= 0 {
		days = s.forecastDays
	}
	log.Debug("forecasting workload: deck_id=%d, days=%d", deckID, days)

	deck, cards, err := s.deckWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return workload.Forecast(cards, days, deckConfig(deck), now), nil
}

func (s *plannerService) Balance(ctx context.Context, deckID int64, now time.Time) (*workload.BalanceResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("balancing workload: deck_id=%d", deckID)

	deck, cards, err := s.deckWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	result := workload.Balance(cards, deckConfig(deck), now)
	if len(result.Updates) > 0 {
		if err := s.cards.ApplyUpdates(ctx, result.Updates); err != nil {
			log.Error("failed to persist balance moves: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}
	log.Info("deck %d balanced: %d cards moved, %d days still overloaded", deckID, len(result.Moves), len(result.StillOverloaded))
	return &result, nil
}

func (s *plannerService) CatchUp(ctx context.Context, deckID int64, days int, now time.Time) ([]workload.Bucket, error) {
	log := logger.FromContext(ctx)
	if days <= 0 {
		days = s.forecastDays
	}
	log.Debug("building catch-up schedule: deck_id=%d, days=%d", deckID, days)

	deck, cards, err := s.deckWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	var overdue []models.Card
	for _, c := range cards {
		if c.NextReviewAt.Before(models.StartOfDay(now)) && !c.LeechSuspended {
			overdue = append(overdue, c)
		}
	}
	maxPerDay := deck.MaxCardsPerDay
	if maxPerDay <= 0 {
		// An unlimited deck still needs a finite bucket size; spread the
		// backlog evenly instead.
		maxPerDay = (len(overdue) + days - 1) / days
		if maxPerDay == 0 {
			maxPerDay = 1
		}
	}
	return workload.CatchUp(overdue, days, maxPerDay, now), nil
}

func (s *plannerService) Phase(ctx context.Context, deckID int64, now time.Time) (*PhaseStatus, error) {
	deck, err := s.getDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.TestDate == nil {
		return nil, errors.NewValidationError("test_date", "deck has no test date")
	}
	status := PhaseStatus{Status: examphase.ForTestDate(*deck.TestDate, now)}
	if status.Phase == examphase.PhasePostExam {
		status.PostExamAction = examphase.PostExamRecommendation(*deck.TestDate, now)
	}
	return &status, nil
}

func (s *plannerService) Preparedness(ctx context.Context, deckID int64, now time.Time) (*examphase.Report, error) {
	deck, cards, err := s.deckWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.TestDate == nil {
		return nil, errors.NewValidationError("test_date", "deck has no test date")
	}
	report := examphase.Preparedness(cards, *deck.TestDate, now)
	return &report, nil
}

func (s *plannerService) Prioritized(ctx context.Context, deckID int64, now time.Time) ([]models.Card, error) {
	deck, cards, err := s.deckWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.TestDate == nil {
		return nil, errors.NewValidationError("test_date", "deck has no test date")
	}
	return examphase.Prioritize(cards, *deck.TestDate, now), nil
}

func (s *plannerService) deckWithCards(ctx context.Context, deckID int64) (*models.Deck, []models.Card, error) {
	deck, err := s.getDeck(ctx, deckID)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
	if err != nil {
		return nil, nil, errors.NewInternalError(err)
	}
	return deck, cards, nil
}

func (s *plannerService) getDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func deckConfig(d *models.Deck) workload.Config {
	return workload.Config{
		DefaultMaxPerDay: d.MaxCardsPerDay,
		NewPerDay:        d.NewCardsPerDay,
		EasyDays:         d.EasyDays,
		InsertionOrder:   d.InsertionOrder,
	}
}
