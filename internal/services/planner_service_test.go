package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/examphase"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/services"
	"github.com/prepdeck/prepdeck/internal/testutil/mocks"
)

func newPlannerService() (services.PlannerService, *mocks.MockCardRepository, *mocks.MockDeckRepository) {
	cards := new(mocks.MockCardRepository)
	decks := new(mocks.MockDeckRepository)
	return services.NewPlannerService(cards, decks, 30), cards, decks
}

func reviewCard(id int64, stability float64, dueInDays int) models.Card {
	last := now.AddDate(0, 0, -1)
	return models.Card{
		ID:           id,
		DeckID:       3,
		Mode:         models.ModeLongTerm,
		Memory:       &models.MemoryModel{State: models.StateReview, Stability: stability},
		LastReviewAt: &last,
		NextReviewAt: now.AddDate(0, 0, dueInDays),
	}
}

func TestPlannerForecast(t *testing.T) {
	svc, cards, decks := newPlannerService()
	deck := &models.Deck{ID: 3, Mode: models.ModeLongTerm, MaxCardsPerDay: 1}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	cards.On("List", mock.Anything, models.CardFilter{DeckID: 3}).
		Return([]models.Card{reviewCard(1, 10, 0), reviewCard(2, 10, 0)}, nil)

	forecast, err := svc.Forecast(context.Background(), 3, 7, now)

	require.NoError(t, err)
	require.Len(t, forecast, 7)
	assert.Equal(t, 2, forecast[0].Total)
	assert.True(t, forecast[0].Overloaded)
}

func TestPlannerBalance_PersistsMoves(t *testing.T) {
	svc, cards, decks := newPlannerService()
	deck := &models.Deck{ID: 3, Mode: models.ModeLongTerm, MaxCardsPerDay: 1}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	cards.On("List", mock.Anything, models.CardFilter{DeckID: 3}).
		Return([]models.Card{reviewCard(1, 5, 1), reviewCard(2, 50, 1)}, nil)
	cards.On("ApplyUpdates", mock.Anything, mock.MatchedBy(func(us []models.CardUpdate) bool {
		return len(us) == 1 && us[0].CardID == 2
	})).Return(nil)

	result, err := svc.Balance(context.Background(), 3, now)

	require.NoError(t, err)
	require.Len(t, result.Moves, 1)
	cards.AssertExpectations(t)
}

func TestPlannerBalance_NothingToMove(t *testing.T) {
	svc, cards, decks := newPlannerService()
	deck := &models.Deck{ID: 3, Mode: models.ModeLongTerm, MaxCardsPerDay: 10}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	cards.On("List", mock.Anything, models.CardFilter{DeckID: 3}).
		Return([]models.Card{reviewCard(1, 5, 1)}, nil)

	result, err := svc.Balance(context.Background(), 3, now)

	require.NoError(t, err)
	assert.Empty(t, result.Moves)
	cards.AssertNotCalled(t, "ApplyUpdates", mock.Anything, mock.Anything)
}

func TestPlannerCatchUp_UnlimitedDeckSpreadsEvenly(t *testing.T) {
	svc, cards, decks := newPlannerService()
	deck := &models.Deck{ID: 3, Mode: models.ModeLongTerm} // no per-day cap
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	backlog := []models.Card{
		reviewCard(1, 10, -5),
		reviewCard(2, 10, -4),
		reviewCard(3, 10, -3),
		reviewCard(4, 10, 2), // not overdue
	}
	cards.On("List", mock.Anything, models.CardFilter{DeckID: 3}).Return(backlog, nil)

	buckets, err := svc.CatchUp(context.Background(), 3, 3, now)

	require.NoError(t, err)
	require.Len(t, buckets, 3)
	for _, b := range buckets {
		assert.Len(t, b.Cards, 1)
	}
}

func TestPlannerPhase(t *testing.T) {
	svc, _, decks := newPlannerService()
	td := models.StartOfDay(now).AddDate(0, 0, 5)
	deck := &models.Deck{ID: 3, Mode: models.ModeTestPrep, TestDate: &td}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)

	status, err := svc.Phase(context.Background(), 3, now)

	require.NoError(t, err)
	assert.Equal(t, examphase.PhaseCram, status.Phase)
	assert.Empty(t, status.PostExamAction)
}

func TestPlannerPhase_PostExamRecommendation(t *testing.T) {
	svc, _, decks := newPlannerService()
	td := models.StartOfDay(now).AddDate(0, 0, -3)
	deck := &models.Deck{ID: 3, Mode: models.ModeTestPrep, TestDate: &td}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)

	status, err := svc.Phase(context.Background(), 3, now)

	require.NoError(t, err)
	assert.Equal(t, examphase.PhasePostExam, status.Phase)
	assert.Equal(t, examphase.ActionConvert, status.PostExamAction)
}

func TestPlannerPhase_NoTestDate(t *testing.T) {
	svc, _, decks := newPlannerService()
	decks.On("Get", mock.Anything, int64(3)).Return(&models.Deck{ID: 3, Mode: models.ModeTestPrep}, nil)

	_, err := svc.Phase(context.Background(), 3, now)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
}

func TestStudyService_NewCardsUsesDeckOrder(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	decks := new(mocks.MockDeckRepository)
	svc := services.NewStudyService(cards, decks, defaults, 20, 42)

	deck := &models.Deck{ID: 3, Mode: models.ModeLongTerm, NewCardsPerDay: 1, InsertionOrder: models.OrderSequential}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	fresh := models.NewCard(3, models.ModeLongTerm, now)
	fresh.ID = 1
	older := models.NewCard(3, models.ModeLongTerm, now.AddDate(0, 0, -2))
	older.ID = 2
	cards.On("List", mock.Anything, models.CardFilter{DeckID: 3}).
		Return([]models.Card{fresh, older}, nil)

	got, err := svc.NewCardsForToday(context.Background(), 3, now)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID, "oldest card first")
}

func TestStudyService_DueCardsAcrossDecks(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	decks := new(mocks.MockDeckRepository)
	svc := services.NewStudyService(cards, decks, defaults, 20, 42)

	decks.On("List", mock.Anything, models.DeckFilter{}).
		Return([]models.Deck{{ID: 3, Mode: models.ModeLongTerm}}, nil)
	due := reviewCard(1, 10, 0)
	notDue := reviewCard(2, 10, 3)
	cards.On("ListAll", mock.Anything).Return([]models.Card{due, notDue}, nil)

	got, err := svc.DueCards(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}
