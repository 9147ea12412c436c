package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
	"github.com/prepdeck/prepdeck/internal/testprep"
)

// DeckService handles deck and card lifecycle: creation, listing,
// easy-day overrides, and leech suspension.
type DeckService interface {
	CreateDeck(ctx context.Context, deck models.Deck, now time.Time) (*models.Deck, error)
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error)
	UpdateDeck(ctx context.Context, deck models.Deck) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	SetEasyDays(ctx context.Context, deckID int64, days []models.EasyDay) (*models.Deck, error)

	CreateCard(ctx context.Context, deckID int64, now time.Time) (*models.Card, error)
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	DeleteCard(ctx context.Context, id int64) error
	SuspendLeech(ctx context.Context, cardID int64, suspended bool) error
}

type deckService struct {
	decks repository.DeckRepository
	cards repository.CardRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository) DeckService {
	return &deckService{decks: decks, cards: cards}
}

func validateDeck(d models.Deck) error {
	if d.Name == "" {
		return errors.NewValidationError("name", "must not be empty")
	}
	if d.Mode != models.ModeTestPrep && d.Mode != models.ModeLongTerm {
		return errors.NewValidationError("mode", "must be TEST_PREP or LONG_TERM")
	}
	if d.DesiredRetention < 0 || d.DesiredRetention >= 1 {
		return errors.NewValidationError("desired_retention", "must be in [0, 1)")
	}
	if d.InsertionOrder != "" && d.InsertionOrder != models.OrderSequential && d.InsertionOrder != models.OrderRandom {
		return errors.NewValidationError("insertion_order", "must be SEQUENTIAL or RANDOM")
	}
	for _, e := range d.EasyDays {
		if err := validateEasyDay(e); err != nil {
			return err
		}
	}
	return nil
}

func validateEasyDay(e models.EasyDay) error {
	if (e.Weekday == nil) == (e.Date == nil) {
		return errors.NewValidationError("easy_days", "exactly one of weekday or date must be set")
	}
	if e.Weekday != nil && (*e.Weekday < time.Sunday || *e.Weekday > time.Saturday) {
		return errors.NewValidationError("easy_days", "weekday must be 0 (Sunday) to 6 (Saturday)")
	}
	if e.MaxCards < 0 {
		return errors.NewValidationError("easy_days", "max_cards must not be negative")
	}
	return nil
}

func (s *deckService) CreateDeck(ctx context.Context, deck models.Deck, now time.Time) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating deck: name=%s, mode=%s", deck.Name, deck.Mode)

	if deck.InsertionOrder == "" {
		deck.InsertionOrder = models.OrderSequential
	}
	if err := validateDeck(deck); err != nil {
		return nil, err
	}
	if deck.Mode == models.ModeTestPrep && deck.TestDate == nil {
		log.Warn("test-prep deck %q created without a test date", deck.Name)
	}
	deck.CreatedAt = now

	id, err := s.decks.Insert(ctx, deck)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetDeck(ctx, id)
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("deck", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) UpdateDeck(ctx context.Context, deck models.Deck) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating deck: id=%d", deck.ID)

	if err := validateDeck(deck); err != nil {
		return nil, err
	}
	if _, err := s.GetDeck(ctx, deck.ID); err != nil {
		return nil, err
	}
	if err := s.decks.Update(ctx, deck); err != nil {
		log.Error("failed to update deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetDeck(ctx, deck.ID)
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: id=%d", id)

	if err := s.decks.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", id)
		}
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) SetEasyDays(ctx context.Context, deckID int64, days []models.EasyDay) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("setting easy days: deck_id=%d, count=%d", deckID, len(days))

	for _, e := range days {
		if err := validateEasyDay(e); err != nil {
			return nil, err
		}
	}
	if _, err := s.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	if err := s.decks.ReplaceEasyDays(ctx, deckID, days); err != nil {
		log.Error("failed to replace easy days: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetDeck(ctx, deckID)
}

func (s *deckService) CreateCard(ctx context.Context, deckID int64, now time.Time) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating card: deck_id=%d", deckID)

	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	card := models.NewCard(deckID, deck.Mode, now)
	if deck.Mode == models.ModeTestPrep {
		testDate := models.StartOfDay(now).AddDate(0, 0, testprep.FallbackTestDays)
		if deck.TestDate != nil {
			testDate = *deck.TestDate
		} else {
			log.Warn("deck %d has no test date, card scheduled against a %d-day fallback", deckID, testprep.FallbackTestDays)
		}
		card.TestPrep.TestDate = testDate
		card.TestPrep.Schedule = testprep.GenerateSchedule(testDate, now)
	}

	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	card.ID = id
	log.Debug("card created: id=%d", id)
	return &card, nil
}

func (s *deckService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *deckService) DeleteCard(ctx context.Context, id int64) error {
	if err := s.cards.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("card", id)
		}
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) SuspendLeech(ctx context.Context, cardID int64, suspended bool) error {
	log := logger.FromContext(ctx)
	log.Debug("suspending leech: card_id=%d, suspended=%v", cardID, suspended)

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("card", cardID)
		}
		return errors.NewInternalError(err)
	}
	if suspended && !card.IsLeech {
		return errors.NewConflictError("card is not flagged as a leech")
	}
	if err := s.cards.SetLeechSuspended(ctx, cardID, suspended); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}
