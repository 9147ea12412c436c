package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
	"github.com/prepdeck/prepdeck/internal/selector"
	"github.com/prepdeck/prepdeck/internal/workload"
)

// StudyService builds the day's study queue: due cards across decks and
// the metered batch of never-reviewed cards.
type StudyService interface {
	DueCards(ctx context.Context, now time.Time) ([]models.Card, error)
	DueCardsForDeck(ctx context.Context, deckID int64, now time.Time) ([]models.Card, error)
	NewCardsForToday(ctx context.Context, deckID int64, now time.Time) ([]models.Card, error)
}

type studyService struct {
	cards    repository.CardRepository
	decks    repository.DeckRepository
	defaults SchedulerDefaults
	newPer   int
	rng      *rand.Rand
}

// NewStudyService creates a new StudyService. The seed drives new-card
// shuffling for RANDOM insertion order; pass a fixed seed in tests.
func NewStudyService(cards repository.CardRepository, decks repository.DeckRepository, defaults SchedulerDefaults, newCardsPerDay int, seed int64) StudyService {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &studyService{
		cards:    cards,
		decks:    decks,
		defaults: defaults,
		newPer:   newCardsPerDay,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *studyService) DueCards(ctx context.Context, now time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("selecting due cards across all decks")

	decks, err := s.decks.List(ctx, models.DeckFilter{})
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	cards, err := s.cards.ListAll(ctx)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	due := selector.DueCards(cards, decks, now)
	log.Debug("%d of %d cards due", len(due), len(cards))
	return due, nil
}

func (s *studyService) DueCardsForDeck(ctx context.Context, deckID int64, now time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("selecting due cards: deck_id=%d", deckID)

	deck, err := s.getDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	due := selector.DueCards(cards, []models.Deck{*deck}, now)
	log.Debug("%d of %d cards due in deck %d", len(due), len(cards), deckID)
	return due, nil
}

func (s *studyService) NewCardsForToday(ctx context.Context, deckID int64, now time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("picking new cards: deck_id=%d", deckID)

	deck, err := s.getDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	cfg := workload.Config{
		DefaultMaxPerDay: deck.MaxCardsPerDay,
		NewPerDay:        deck.NewCardsPerDay,
		EasyDays:         deck.EasyDays,
		InsertionOrder:   deck.InsertionOrder,
	}
	if cfg.NewPerDay <= 0 {
		cfg.NewPerDay = s.newPer
	}
	picked := workload.NewCardsForToday(cards, cfg, s.rng)
	log.Debug("picked %d new cards for deck %d", len(picked), deckID)
	return picked, nil
}

func (s *studyService) getDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}
