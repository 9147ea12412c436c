package longterm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/prepdeck/prepdeck/internal/longterm"
	"github.com/prepdeck/prepdeck/internal/models"
)

func convertibleCard(level models.Mastery) models.Card {
	c := models.NewCard(1, models.ModeTestPrep, base)
	c.ID = 7
	c.TestPrep = &models.TestPrepState{
		TestDate:    base.AddDate(0, 0, -1),
		Schedule:    []int{0, 1, 3},
		CurrentStep: 2,
	}
	c.Mastery = level
	return c
}

func TestConvertToLongTerm_Mastered(t *testing.T) {
	card := convertibleCard(models.MasteryMastered)

	u, err := longterm.ConvertToLongTerm(card, base)
	require.NoError(t, err)

	require.NotNil(t, u.Mode)
	assert.Equal(t, models.ModeLongTerm, *u.Mode)
	assert.True(t, u.ClearTestPrep)
	require.NotNil(t, u.State)
	assert.Equal(t, models.StateReview, *u.State)
	assert.Equal(t, 21.0, *u.Stability)
	assert.Equal(t, 5.0, *u.Difficulty)
	require.NotNil(t, u.NextReviewAt)
	assert.Equal(t, base.AddDate(0, 0, 21), *u.NextReviewAt)

	applied := card.Apply(u)
	assert.Nil(t, applied.TestPrep, "test-prep state must be cleared")
	require.NotNil(t, applied.Memory)
	assert.Equal(t, models.MasteryMastered, applied.Mastery)
	assert.Equal(t, 0, applied.LearningStep, "ladder steps do not carry over")
}

func TestConvertToLongTerm_Struggling(t *testing.T) {
	card := convertibleCard(models.MasteryStruggling)
	card.Lapses = 3

	u, err := longterm.ConvertToLongTerm(card, base)
	require.NoError(t, err)

	require.NotNil(t, u.State)
	assert.Equal(t, models.StateNew, *u.State)
	assert.Equal(t, 0.0, *u.Stability)
	assert.Equal(t, 7.0, *u.Difficulty)
	require.NotNil(t, u.NextReviewAt)
	assert.Equal(t, base, *u.NextReviewAt, "zero stability means due immediately")
	require.NotNil(t, u.Mastery)
	assert.Equal(t, models.MasteryStruggling, *u.Mastery)
}

func TestConvertToLongTerm_Learning(t *testing.T) {
	card := convertibleCard(models.MasteryLearning)

	u, err := longterm.ConvertToLongTerm(card, base)
	require.NoError(t, err)

	require.NotNil(t, u.State)
	assert.Equal(t, models.StateLearning, *u.State)
	assert.Equal(t, 3.0, *u.Stability)
	assert.Equal(t, base.AddDate(0, 0, 3), *u.NextReviewAt)
}

func TestConvertToLongTerm_WrongMode(t *testing.T) {
	card := models.NewCard(1, models.ModeLongTerm, base)

	_, err := longterm.ConvertToLongTerm(card, base)
	assert.ErrorIs(t, err, models.ErrWrongMode)
}
