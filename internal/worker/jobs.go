package worker

import (
	"context"
	"time"

	"github.com/prepdeck/prepdeck/internal/logger"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/workload"
)

// PlannerInterface is the slice of the planner service the jobs need.
// Declared here so the worker package does not import services.
type PlannerInterface interface {
	Balance(ctx context.Context, deckID int64, now time.Time) (*workload.BalanceResult, error)
}

// DeckLister is the slice of the deck service the nightly job needs.
type DeckLister interface {
	ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.Deck, error)
}

// BalanceDeckJob runs one load-balancing pass over a deck.
type BalanceDeckJob struct {
	Planner PlannerInterface
	DeckID  int64
	Now     time.Time
}

func (j *BalanceDeckJob) Name() string { return "balance_deck" }

func (j *BalanceDeckJob) Run(ctx context.Context) error {
	now := j.Now
	if now.IsZero() {
		now = time.Now()
	}
	result, err := j.Planner.Balance(ctx, j.DeckID, now)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Debug("deck %d: %d cards moved", j.DeckID, len(result.Moves))
	return nil
}

// BalanceAllJob enqueues a balance pass for every deck. Intended to run
// nightly so due dates stay smooth without user action.
type BalanceAllJob struct {
	Planner PlannerInterface
	Decks   DeckLister
	Pool    *Pool
}

func (j *BalanceAllJob) Name() string { return "balance_all" }

func (j *BalanceAllJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	decks, err := j.Decks.ListDecks(ctx, models.DeckFilter{})
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return err
	}
	for _, d := range decks {
		j.Pool.Submit(&BalanceDeckJob{Planner: j.Planner, DeckID: d.ID})
	}
	log.Info("queued balance jobs for %d decks", len(decks))
	return nil
}
