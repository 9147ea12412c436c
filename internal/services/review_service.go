package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/fsrs"
	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/longterm"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
	"github.com/prepdeck/prepdeck/internal/testprep"
)

// ReviewResult is what a single rating produced: the card after the update,
// the session action (if any), and the applied interval for display.
type ReviewResult struct {
	Card     models.Card         `json:"card"`
	Action   models.ReviewAction `json:"action,omitempty"`
	Interval string              `json:"interval"`
}

// ReviewService handles rating cards and everything derived from a rating:
// interval previews, review history, and mode conversion.
type ReviewService interface {
	Rate(ctx context.Context, cardID int64, rating models.Rating, now time.Time) (*ReviewResult, error)
	Previews(ctx context.Context, cardID int64, now time.Time) (*models.IntervalPreviews, error)
	ConvertToLongTerm(ctx context.Context, cardID int64, now time.Time) (*models.Card, error)
	History(ctx context.Context, cardID int64, limit int) ([]models.ReviewEntry, error)
}

// SchedulerDefaults are the instance-wide knobs applied when a deck carries
// no override.
type SchedulerDefaults struct {
	DesiredRetention float64
	LeechThreshold   int
	DisableFuzz      bool
}

type reviewService struct {
	cards    repository.CardRepository
	decks    repository.DeckRepository
	history  repository.ReviewHistoryRepository
	defaults SchedulerDefaults
}

// NewReviewService creates a new ReviewService
func NewReviewService(cards repository.CardRepository, decks repository.DeckRepository, history repository.ReviewHistoryRepository, defaults SchedulerDefaults) ReviewService {
	return &reviewService{cards: cards, decks: decks, history: history, defaults: defaults}
}

func (s *reviewService) Rate(ctx context.Context, cardID int64, rating models.Rating, now time.Time) (*ReviewResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("rating card: card_id=%d, rating=%s", cardID, rating)

	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	var update models.CardUpdate
	switch card.Mode {
	case models.ModeTestPrep:
		if _, fallback := testprep.EffectiveTestDate(*card, now); fallback {
			log.Warn("card %d has no test date, scheduling against a %d-day fallback", card.ID, testprep.FallbackTestDays)
		}
		update, err = testprep.Review(*card, rating, now)
	case models.ModeLongTerm:
		cfg, cfgErr := s.longtermConfig(ctx, card.DeckID)
		if cfgErr != nil {
			return nil, cfgErr
		}
		update, err = longterm.Review(cfg, *card, rating, now)
	default:
		return nil, errors.NewValidationError("mode", "unknown scheduling mode")
	}
	if err != nil {
		if stderrors.Is(err, models.ErrInvalidRating) {
			return nil, errors.NewValidationError("rating", "must be 1 (AGAIN) to 4 (EASY)")
		}
		log.Error("failed to schedule card %d: %v", cardID, err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.cards.ApplyUpdate(ctx, update); err != nil {
		log.Error("failed to persist card update: %v", err)
		return nil, errors.NewInternalError(err)
	}

	updated := card.Apply(update)
	if card.Mode == models.ModeLongTerm {
		entry := longterm.HistoryEntry(*card, update, rating, now)
		if _, err := s.history.Insert(ctx, entry); err != nil {
			log.Error("failed to record review history: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}
	if update.IsLeech != nil && *update.IsLeech && !card.IsLeech {
		log.Warn("card %d flagged as leech after %d lapses", card.ID, updated.Lapses)
	}

	log.Debug("card %d rated: next_review_at=%s", card.ID, updated.NextReviewAt.Format(time.RFC3339))
	return &ReviewResult{
		Card:     updated,
		Action:   update.Action,
		Interval: models.FormatInterval(update.Interval),
	}, nil
}

func (s *reviewService) Previews(ctx context.Context, cardID int64, now time.Time) (*models.IntervalPreviews, error) {
	log := logger.FromContext(ctx)
	log.Debug("previewing intervals: card_id=%d", cardID)

	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	var previews models.IntervalPreviews
	switch card.Mode {
	case models.ModeTestPrep:
		previews, err = testprep.Previews(*card, now)
	case models.ModeLongTerm:
		cfg, cfgErr := s.longtermConfig(ctx, card.DeckID)
		if cfgErr != nil {
			return nil, cfgErr
		}
		previews, err = longterm.Previews(cfg, *card, now)
	default:
		return nil, errors.NewValidationError("mode", "unknown scheduling mode")
	}
	if err != nil {
		log.Error("failed to preview card %d: %v", cardID, err)
		return nil, errors.NewInternalError(err)
	}
	return &previews, nil
}

func (s *reviewService) ConvertToLongTerm(ctx context.Context, cardID int64, now time.Time) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("converting card to long-term: card_id=%d", cardID)

	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	update, err := longterm.ConvertToLongTerm(*card, now)
	if err != nil {
		if stderrors.Is(err, models.ErrWrongMode) {
			return nil, errors.NewConflictError("card is already in long-term mode")
		}
		log.Error("failed to convert card %d: %v", cardID, err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.cards.ApplyUpdate(ctx, update); err != nil {
		log.Error("failed to persist conversion: %v", err)
		return nil, errors.NewInternalError(err)
	}
	updated := card.Apply(update)
	log.Info("card %d converted to long-term: stability=%.1f", card.ID, updated.Memory.Stability)
	return &updated, nil
}

func (s *reviewService) History(ctx context.Context, cardID int64, limit int) ([]models.ReviewEntry, error) {
	if _, err := s.getCard(ctx, cardID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListForCard(ctx, cardID, limit)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *reviewService) getCard(ctx context.Context, id int64) (*models.Card, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("card", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

// longtermConfig builds the scheduling config for a deck, layering the
// deck's desired retention over the instance defaults.
func (s *reviewService) longtermConfig(ctx context.Context, deckID int64) (longterm.Config, error) {
	cfg := longterm.DefaultConfig()
	if s.defaults.DesiredRetention > 0 {
		cfg.Params.DesiredRetention = s.defaults.DesiredRetention
	}
	if s.defaults.LeechThreshold > 0 {
		cfg.LeechThreshold = s.defaults.LeechThreshold
	}
	cfg.DisableFuzz = s.defaults.DisableFuzz

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return cfg, nil
		}
		return cfg, errors.NewInternalError(err)
	}
	if deck.DesiredRetention > 0 {
		cfg.Params.DesiredRetention = deck.DesiredRetention
	}
	if err := cfg.Params.Validate(); err != nil {
		cfg.Params = fsrs.DefaultParams()
	}
	return cfg, nil
}
