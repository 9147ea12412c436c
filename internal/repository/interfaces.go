package repository

import (
	"context"

	"github.com/prepdeck/prepdeck/internal/models"
)

// CardRepository handles card data access. Scheduling functions return
// partial-field diffs (models.CardUpdate); ApplyUpdate persists only the
// set fields.
type CardRepository interface {
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	ListAll(ctx context.Context) ([]models.Card, error)
	Insert(ctx context.Context, card models.Card) (int64, error)
	ApplyUpdate(ctx context.Context, update models.CardUpdate) error
	ApplyUpdates(ctx context.Context, updates []models.CardUpdate) error
	SetLeechSuspended(ctx context.Context, id int64, suspended bool) error
	Delete(ctx context.Context, id int64) error
}

// DeckRepository handles deck data access, including easy-day overrides.
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Update(ctx context.Context, deck models.Deck) error
	Delete(ctx context.Context, id int64) error
	ReplaceEasyDays(ctx context.Context, deckID int64, days []models.EasyDay) error
}

// ReviewHistoryRepository appends and reads immutable review records.
type ReviewHistoryRepository interface {
	Insert(ctx context.Context, entry models.ReviewEntry) (int64, error)
	ListForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewEntry, error)
}
