package retention_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/retention"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestAt(t *testing.T) {
	tests := []struct {
		name      string
		stability float64
		elapsed   float64
		want      float64
	}{
		{name: "just reviewed", stability: 10, elapsed: 0, want: 1.0},
		{name: "zero stability", stability: 0, elapsed: 5, want: 1.0},
		{name: "elapsed equals stability", stability: 10, elapsed: 10, want: 0.8165},
		{name: "long decay", stability: 1, elapsed: 99, want: 0.1400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, retention.At(tt.stability, tt.elapsed), 0.001)
		})
	}
}

func TestAt_MonotonicDecay(t *testing.T) {
	prev := 1.0
	for days := 1.0; days <= 60; days++ {
		r := retention.At(10, days)
		assert.Less(t, r, prev, "R must strictly decrease at %v days", days)
		prev = r
	}
}

func TestDaysUntilDrop_InvertsAt(t *testing.T) {
	for _, threshold := range []float64{0.95, 0.9, 0.75} {
		days := retention.DaysUntilDrop(10, threshold)
		require.Positive(t, days)
		assert.InDelta(t, threshold, retention.At(10, days), 1e-9)
	}

	assert.Zero(t, retention.DaysUntilDrop(0, 0.9))
	assert.Zero(t, retention.DaysUntilDrop(10, 1.5))
}

func TestEffectiveStability(t *testing.T) {
	longTerm := models.Card{
		Mode:   models.ModeLongTerm,
		Memory: &models.MemoryModel{Stability: 17.5},
	}
	assert.Equal(t, 17.5, retention.EffectiveStability(longTerm))

	testPrep := models.Card{
		Mode:     models.ModeTestPrep,
		TestPrep: &models.TestPrepState{Schedule: []int{0, 1, 3, 7, 14}, CurrentStep: 3},
	}
	assert.Equal(t, 7.0, retention.EffectiveStability(testPrep), "ladder offset stands in for stability")

	testPrep.TestPrep.CurrentStep = 0
	assert.Equal(t, 1.0, retention.EffectiveStability(testPrep), "sub-day rungs clamp to one day")

	testPrep.TestPrep.CurrentStep = 99
	assert.Equal(t, 14.0, retention.EffectiveStability(testPrep), "past-the-end uses the last rung")

	assert.Zero(t, retention.EffectiveStability(models.Card{}))
}

func TestProjectedAt(t *testing.T) {
	last := base.AddDate(0, 0, -5)
	c := models.Card{
		Mode:         models.ModeLongTerm,
		Memory:       &models.MemoryModel{Stability: 10},
		LastReviewAt: &last,
	}

	now := retention.ForCard(c, base)
	future := retention.ProjectedAt(c, base.AddDate(0, 0, 20))
	assert.Less(t, future, now)

	unreviewed := models.Card{Mode: models.ModeLongTerm, Memory: &models.MemoryModel{}}
	assert.Equal(t, 1.0, retention.ProjectedAt(unreviewed, base))
}

func cardWithRetention(id int64, stability float64, daysAgo int) models.Card {
	last := base.AddDate(0, 0, -daysAgo)
	return models.Card{
		ID:           id,
		Mode:         models.ModeLongTerm,
		Memory:       &models.MemoryModel{Stability: stability},
		LastReviewAt: &last,
	}
}

func TestSortByRetrievability(t *testing.T) {
	cards := []models.Card{
		cardWithRetention(1, 50, 2),  // strong
		cardWithRetention(2, 1, 10),  // nearly forgotten
		cardWithRetention(3, 10, 10), // in between
	}

	sorted := retention.SortByRetrievability(cards, base)

	assert.Equal(t, []int64{2, 3, 1}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, int64(1), cards[0].ID, "input order must not change")
}

func TestFilterBelow(t *testing.T) {
	cards := []models.Card{
		cardWithRetention(1, 50, 2),
		cardWithRetention(2, 1, 30),
	}

	weak := retention.FilterBelow(cards, 0.5, base)

	require.Len(t, weak, 1)
	assert.Equal(t, int64(2), weak[0].ID)
}
