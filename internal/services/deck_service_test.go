package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/prepdeck/prepdeck/internal/errors"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/services"
	"github.com/prepdeck/prepdeck/internal/testutil/mocks"
)

func newDeckService() (services.DeckService, *mocks.MockDeckRepository, *mocks.MockCardRepository) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockCardRepository)
	return services.NewDeckService(decks, cards), decks, cards
}

func TestCreateDeck(t *testing.T) {
	svc, decks, _ := newDeckService()
	deck := models.Deck{Name: "anatomy", Mode: models.ModeLongTerm, DesiredRetention: 0.9}
	stored := deck
	stored.ID = 1
	decks.On("Insert", mock.Anything, mock.MatchedBy(func(d models.Deck) bool {
		return d.Name == "anatomy" && d.InsertionOrder == models.OrderSequential && d.CreatedAt.Equal(now)
	})).Return(int64(1), nil)
	decks.On("Get", mock.Anything, int64(1)).Return(&stored, nil)

	got, err := svc.CreateDeck(context.Background(), deck, now)

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	decks.AssertExpectations(t)
}

func TestCreateDeck_Validation(t *testing.T) {
	weekday := time.Weekday(9)
	date := models.StartOfDay(now)
	tests := []struct {
		name string
		deck models.Deck
	}{
		{"empty name", models.Deck{Mode: models.ModeLongTerm}},
		{"bad mode", models.Deck{Name: "x", Mode: "SOMETIMES"}},
		{"retention out of range", models.Deck{Name: "x", Mode: models.ModeLongTerm, DesiredRetention: 1.0}},
		{"bad insertion order", models.Deck{Name: "x", Mode: models.ModeLongTerm, InsertionOrder: "SHUFFLED"}},
		{"easy day with both keys", models.Deck{Name: "x", Mode: models.ModeLongTerm,
			EasyDays: []models.EasyDay{{Weekday: &weekday, Date: &date}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, decks, _ := newDeckService()
			_, err := svc.CreateDeck(context.Background(), tt.deck, now)

			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
			decks.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateDeck_NotFound(t *testing.T) {
	svc, decks, _ := newDeckService()
	decks.On("Get", mock.Anything, int64(7)).Return(nil, sql.ErrNoRows)

	_, err := svc.UpdateDeck(context.Background(), models.Deck{ID: 7, Name: "x", Mode: models.ModeLongTerm})

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
}

func TestSetEasyDays(t *testing.T) {
	svc, decks, _ := newDeckService()
	weekday := time.Sunday
	days := []models.EasyDay{{Weekday: &weekday, MaxCards: 10}}
	deck := &models.Deck{ID: 3, Name: "x", Mode: models.ModeLongTerm, EasyDays: days}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	decks.On("ReplaceEasyDays", mock.Anything, int64(3), days).Return(nil)

	got, err := svc.SetEasyDays(context.Background(), 3, days)

	require.NoError(t, err)
	assert.Len(t, got.EasyDays, 1)
	decks.AssertExpectations(t)
}

func TestCreateCard_TestPrepGetsSchedule(t *testing.T) {
	svc, decks, cards := newDeckService()
	td := models.StartOfDay(now).AddDate(0, 0, 30)
	deck := &models.Deck{ID: 3, Name: "x", Mode: models.ModeTestPrep, TestDate: &td}
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	cards.On("Insert", mock.Anything, mock.MatchedBy(func(c models.Card) bool {
		return c.TestPrep != nil && c.TestPrep.TestDate.Equal(td) && len(c.TestPrep.Schedule) > 0
	})).Return(int64(11), nil)

	got, err := svc.CreateCard(context.Background(), 3, now)

	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, models.ModeTestPrep, got.Mode)
	assert.Equal(t, 0, got.TestPrep.Schedule[0], "first rung is today")
	cards.AssertExpectations(t)
}

func TestCreateCard_FallbackTestDate(t *testing.T) {
	svc, decks, cards := newDeckService()
	deck := &models.Deck{ID: 3, Name: "x", Mode: models.ModeTestPrep} // no test date
	decks.On("Get", mock.Anything, int64(3)).Return(deck, nil)
	cards.On("Insert", mock.Anything, mock.Anything).Return(int64(12), nil)

	got, err := svc.CreateCard(context.Background(), 3, now)

	require.NoError(t, err)
	assert.False(t, got.TestPrep.TestDate.IsZero())
	assert.True(t, got.TestPrep.TestDate.After(now))
}

func TestSuspendLeech_NotALeech(t *testing.T) {
	svc, _, cards := newDeckService()
	cards.On("Get", mock.Anything, int64(4)).Return(&models.Card{ID: 4, IsLeech: false}, nil)

	err := svc.SuspendLeech(context.Background(), 4, true)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeConflict, appErr.Code)
	cards.AssertNotCalled(t, "SetLeechSuspended", mock.Anything, mock.Anything, mock.Anything)
}

func TestSuspendLeech_UnsuspendAlwaysAllowed(t *testing.T) {
	svc, _, cards := newDeckService()
	cards.On("Get", mock.Anything, int64(4)).Return(&models.Card{ID: 4, IsLeech: false}, nil)
	cards.On("SetLeechSuspended", mock.Anything, int64(4), false).Return(nil)

	assert.NoError(t, svc.SuspendLeech(context.Background(), 4, false))
	cards.AssertExpectations(t)
}
