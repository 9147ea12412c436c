package longterm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/prepdeck/prepdeck/internal/longterm"
	"github.com/prepdeck/prepdeck/internal/models"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newLongTermCard() models.Card {
	c := models.NewCard(1, models.ModeLongTerm, base)
	c.ID = 42
	return c
}

func reviewingCard(stability, difficulty float64, daysAgo int) models.Card {
	c := newLongTermCard()
	last := base.AddDate(0, 0, -daysAgo)
	c.Memory = &models.MemoryModel{State: models.StateReview, Stability: stability, Difficulty: difficulty}
	c.LastReviewAt = &last
	c.NextReviewAt = base
	c.Reps = 4
	return c
}

func TestReview_NewCard(t *testing.T) {
	cfg := longterm.DefaultConfig()
	card := newLongTermCard()

	u, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)

	require.NotNil(t, u.State)
	assert.Equal(t, models.StateLearning, *u.State)
	require.NotNil(t, u.Stability)
	assert.Greater(t, *u.Stability, 0.0)
	require.NotNil(t, u.Reps)
	assert.Equal(t, 1, *u.Reps)

	// Learning-step outcome: due again within the session, not tomorrow.
	require.NotNil(t, u.NextReviewAt)
	assert.True(t, u.NextReviewAt.Before(base.Add(24*time.Hour)))
}

func TestReview_LearningStep(t *testing.T) {
	cfg := longterm.DefaultConfig()

	// First review puts the card into learning at step 1.
	u, err := longterm.Review(cfg, newLongTermCard(), models.RatingGood, base)
	require.NoError(t, err)
	require.NotNil(t, u.LearningStep)
	assert.Equal(t, 1, *u.LearningStep)

	// HARD keeps the card in learning and advances the step.
	learning := newLongTermCard()
	learning.Memory = &models.MemoryModel{State: models.StateLearning, Stability: 1, Difficulty: 5}
	learning.LearningStep = 1
	last := base.Add(-10 * time.Minute)
	learning.LastReviewAt = &last
	learning.Reps = 1

	u, err = longterm.Review(cfg, learning, models.RatingHard, base)
	require.NoError(t, err)
	require.NotNil(t, u.LearningStep)
	assert.Equal(t, 2, *u.LearningStep)

	// AGAIN restarts the steps; graduating clears them.
	u, err = longterm.Review(cfg, learning, models.RatingAgain, base)
	require.NoError(t, err)
	assert.Equal(t, 0, *u.LearningStep)

	u, err = longterm.Review(cfg, learning, models.RatingGood, base)
	require.NoError(t, err)
	require.NotNil(t, u.State)
	assert.Equal(t, models.StateReview, *u.State)
	assert.Equal(t, 0, *u.LearningStep)
}

func TestReview_RatingFloors(t *testing.T) {
	cfg := longterm.DefaultConfig()
	card := newLongTermCard()

	tests := []struct {
		rating models.Rating
		floor  time.Duration
	}{
		{models.RatingHard, 5 * time.Minute},
		{models.RatingGood, 10 * time.Minute},
	}

	for _, tt := range tests {
		u, err := longterm.Review(cfg, card, tt.rating, base)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, u.Interval, tt.floor, "rating %s", tt.rating)
	}
}

func TestReview_GoodGrowsTheInterval(t *testing.T) {
	cfg := longterm.DefaultConfig()
	cfg.DisableFuzz = true
	card := reviewingCard(10, 5, 10)

	u, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)

	require.NotNil(t, u.Stability)
	assert.Greater(t, *u.Stability, 10.0, "successful recall must grow stability")
	assert.Greater(t, u.Interval, 10*24*time.Hour)
	require.NotNil(t, u.LearningState)
	assert.Equal(t, models.LearningStateGraduated, *u.LearningState)
}

func TestReview_AgainLapses(t *testing.T) {
	cfg := longterm.DefaultConfig()
	card := reviewingCard(10, 5, 10)

	u, err := longterm.Review(cfg, card, models.RatingAgain, base)
	require.NoError(t, err)

	require.NotNil(t, u.State)
	assert.Equal(t, models.StateRelearning, *u.State)
	require.NotNil(t, u.Lapses)
	assert.Equal(t, card.Lapses+1, *u.Lapses)
	require.NotNil(t, u.Stability)
	assert.Less(t, *u.Stability, 10.0, "a lapse must shrink stability")
	require.NotNil(t, u.Mastery)
	assert.Equal(t, models.MasteryStruggling, *u.Mastery)
}

func TestReview_HardKeepsStabilityBelowGood(t *testing.T) {
	cfg := longterm.DefaultConfig()
	cfg.DisableFuzz = true
	card := reviewingCard(10, 5, 10)

	hard, err := longterm.Review(cfg, card, models.RatingHard, base)
	require.NoError(t, err)
	good, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)
	easy, err := longterm.Review(cfg, card, models.RatingEasy, base)
	require.NoError(t, err)

	assert.Less(t, *hard.Stability, *good.Stability)
	assert.Less(t, *good.Stability, *easy.Stability)
}

func TestReview_LeechFlag(t *testing.T) {
	cfg := longterm.DefaultConfig()
	cfg.LeechThreshold = 3
	card := reviewingCard(5, 7, 5)
	card.Lapses = 2

	u, err := longterm.Review(cfg, card, models.RatingAgain, base)
	require.NoError(t, err)

	require.NotNil(t, u.IsLeech)
	assert.True(t, *u.IsLeech)

	// Already-flagged cards are not re-flagged.
	card.IsLeech = true
	card.Lapses = 5
	u, err = longterm.Review(cfg, card, models.RatingAgain, base)
	require.NoError(t, err)
	assert.Nil(t, u.IsLeech)
}

func TestReview_FuzzIsDeterministicWithinADay(t *testing.T) {
	cfg := longterm.DefaultConfig()
	card := reviewingCard(30, 5, 30)

	first, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)
	second, err := longterm.Review(cfg, card, models.RatingGood, base.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.Interval/time.Hour/24, second.Interval/time.Hour/24,
		"same card, same day: fuzz must not disagree")
}

func TestReview_DisableFuzz(t *testing.T) {
	cfg := longterm.DefaultConfig()
	cfg.DisableFuzz = true
	card := reviewingCard(30, 5, 30)

	first, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)
	second, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)

	assert.Equal(t, first.Interval, second.Interval)
}

func TestReview_InvalidInput(t *testing.T) {
	cfg := longterm.DefaultConfig()

	_, err := longterm.Review(cfg, newLongTermCard(), models.Rating(0), base)
	assert.ErrorIs(t, err, models.ErrInvalidRating)

	testPrep := models.NewCard(1, models.ModeTestPrep, base)
	_, err = longterm.Review(cfg, testPrep, models.RatingGood, base)
	assert.ErrorIs(t, err, models.ErrWrongMode)
}

func TestPreviews_MatchReview(t *testing.T) {
	cfg := longterm.DefaultConfig()
	card := reviewingCard(30, 5, 30)

	p, err := longterm.Previews(cfg, card, base)
	require.NoError(t, err)

	u, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)
	assert.Equal(t, models.FormatInterval(u.Interval), p.Good)

	u, err = longterm.Review(cfg, card, models.RatingEasy, base)
	require.NoError(t, err)
	assert.Equal(t, models.FormatInterval(u.Interval), p.Easy)
}

func TestHistoryEntry(t *testing.T) {
	cfg := longterm.DefaultConfig()
	card := reviewingCard(10, 5, 12)
	card.NextReviewAt = card.LastReviewAt.AddDate(0, 0, 10)

	u, err := longterm.Review(cfg, card, models.RatingGood, base)
	require.NoError(t, err)

	entry := longterm.HistoryEntry(card, u, models.RatingGood, base)
	assert.Equal(t, card.ID, entry.CardID)
	assert.Equal(t, models.RatingGood, entry.Rating)
	assert.InDelta(t, 12, entry.ElapsedDays, 0.01)
	assert.InDelta(t, 10, entry.ScheduledDays, 0.01)
	assert.Equal(t, *u.Stability, entry.Stability)
	assert.Equal(t, base, entry.ReviewedAt)
}
