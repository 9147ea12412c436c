package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/repository"
	"github.com/prepdeck/prepdeck/internal/repository/sqlite"
	"github.com/prepdeck/prepdeck/internal/testutil"
)

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DeckRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	td := models.StartOfDay(testNow).AddDate(0, 0, 45)
	weekday := time.Sunday

	id, err := s.repo.Insert(ctx, models.Deck{
		Name:             "pharmacology",
		Mode:             models.ModeTestPrep,
		TestDate:         &td,
		DesiredRetention: 0.92,
		MaxCardsPerDay:   120,
		NewCardsPerDay:   15,
		InsertionOrder:   models.OrderRandom,
		EasyDays:         []models.EasyDay{{Weekday: &weekday, MaxCards: 30}},
		CreatedAt:        testNow,
	})
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("pharmacology", got.Name)
	s.Equal(models.ModeTestPrep, got.Mode)
	s.Require().NotNil(got.TestDate)
	s.True(got.TestDate.Equal(td))
	s.InDelta(0.92, got.DesiredRetention, 1e-9)
	s.Equal(120, got.MaxCardsPerDay)
	s.Equal(models.OrderRandom, got.InsertionOrder)
	s.Require().Len(got.EasyDays, 1)
	s.Require().NotNil(got.EasyDays[0].Weekday)
	s.Equal(time.Sunday, *got.EasyDays[0].Weekday)
	s.Equal(30, got.EasyDays[0].MaxCards)
}

func (s *DeckRepositorySuite) TestReplaceEasyDays() {
	ctx := context.Background()
	id, err := s.repo.Insert(ctx, models.Deck{
		Name: "kanji", Mode: models.ModeLongTerm,
		InsertionOrder: models.OrderSequential, CreatedAt: testNow,
	})
	s.Require().NoError(err)

	date := models.StartOfDay(testNow).AddDate(0, 0, 3)
	s.Require().NoError(s.repo.ReplaceEasyDays(ctx, id, []models.EasyDay{{Date: &date, MaxCards: 5}}))

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().Len(got.EasyDays, 1)
	s.Nil(got.EasyDays[0].Weekday)
	s.Require().NotNil(got.EasyDays[0].Date)
	s.True(got.EasyDays[0].Date.Equal(date))

	// Replacing with an empty set clears them.
	s.Require().NoError(s.repo.ReplaceEasyDays(ctx, id, nil))
	got, err = s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Empty(got.EasyDays)
}

func (s *DeckRepositorySuite) TestListByMode() {
	ctx := context.Background()
	for _, d := range []models.Deck{
		{Name: "a", Mode: models.ModeLongTerm, InsertionOrder: models.OrderSequential, CreatedAt: testNow},
		{Name: "b", Mode: models.ModeTestPrep, InsertionOrder: models.OrderSequential, CreatedAt: testNow},
	} {
		_, err := s.repo.Insert(ctx, d)
		s.Require().NoError(err)
	}

	decks, err := s.repo.List(ctx, models.DeckFilter{Mode: models.ModeTestPrep})
	s.Require().NoError(err)
	s.Require().Len(decks, 1)
	s.Equal("b", decks[0].Name)
}

func (s *DeckRepositorySuite) TestUpdate() {
	ctx := context.Background()
	id, err := s.repo.Insert(ctx, models.Deck{
		Name: "old", Mode: models.ModeLongTerm,
		InsertionOrder: models.OrderSequential, CreatedAt: testNow,
	})
	s.Require().NoError(err)

	deck, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	deck.Name = "renamed"
	deck.DesiredRetention = 0.85
	s.Require().NoError(s.repo.Update(ctx, *deck))

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("renamed", got.Name)
	s.InDelta(0.85, got.DesiredRetention, 1e-9)
}

func (s *DeckRepositorySuite) TestDeleteCascadesToCards() {
	ctx := context.Background()
	id, err := s.repo.Insert(ctx, models.Deck{
		Name: "gone", Mode: models.ModeLongTerm,
		InsertionOrder: models.OrderSequential, CreatedAt: testNow,
	})
	s.Require().NoError(err)

	cards := sqlite.NewCardRepository(s.db)
	cardID, err := cards.Insert(ctx, models.NewCard(id, models.ModeLongTerm, testNow))
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, id))
	_, err = s.repo.Get(ctx, id)
	s.ErrorIs(err, sql.ErrNoRows)
	_, err = cards.Get(ctx, cardID)
	s.ErrorIs(err, sql.ErrNoRows)
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}

type ReviewHistorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ReviewHistoryRepository
}

func (s *ReviewHistorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewReviewHistoryRepository(s.db)
}

func (s *ReviewHistorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewHistorySuite) TestInsertAndList() {
	ctx := context.Background()
	decks := sqlite.NewDeckRepository(s.db)
	deckID, err := decks.Insert(ctx, models.Deck{
		Name: "x", Mode: models.ModeLongTerm,
		InsertionOrder: models.OrderSequential, CreatedAt: testNow,
	})
	s.Require().NoError(err)
	cards := sqlite.NewCardRepository(s.db)
	cardID, err := cards.Insert(ctx, models.NewCard(deckID, models.ModeLongTerm, testNow))
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, err := s.repo.Insert(ctx, models.ReviewEntry{
			CardID:        cardID,
			Rating:        models.RatingGood,
			ElapsedDays:   float64(i),
			ScheduledDays: float64(i + 1),
			State:         models.StateReview,
			Stability:     10 + float64(i),
			Difficulty:    5,
			ReviewedAt:    testNow.AddDate(0, 0, i),
		})
		s.Require().NoError(err)
	}

	entries, err := s.repo.ListForCard(ctx, cardID, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.True(entries[0].ReviewedAt.After(entries[1].ReviewedAt), "newest first")
	s.Equal(models.RatingGood, entries[0].Rating)
	s.InDelta(12.0, entries[0].Stability, 1e-9)

	none, err := s.repo.ListForCard(ctx, 9999, 0)
	s.Require().NoError(err)
	s.Empty(none)
}

func TestReviewHistorySuite(t *testing.T) {
	suite.Run(t, new(ReviewHistorySuite))
}
