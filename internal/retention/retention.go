// Package retention models the probability of recall as a power-law decay
// over elapsed time and provides the urgency ordering used by the exam-phase
// controller and the load balancer.
package retention

import (
	"math"
	"sort"
	"time"

	"github.com/prepdeck/prepdeck/internal/models"
)

// Power-law decay constants: R(t) = (1 + factor*t/S)^(-power).
const (
	factor = 0.5
	power  = 0.5
)

// At returns the probability of recall after elapsedDays given a stability
// of S days. Degenerate inputs (S <= 0 or t <= 0) resolve to 1.0 rather
// than NaN; a card that was just reviewed is fully retrievable.
func At(stability, elapsedDays float64) float64 {
	if stability <= 0 || elapsedDays <= 0 {
		return 1.0
	}
	return math.Pow(1+factor*elapsedDays/stability, -power)
}

// DaysUntilDrop solves R(t) = threshold for t:
// t = S * (threshold^(-1/power) - 1) / factor.
func DaysUntilDrop(stability, threshold float64) float64 {
	if stability <= 0 || threshold <= 0 || threshold >= 1 {
		return 0
	}
	return stability * (math.Pow(threshold, -1/power) - 1) / factor
}

// EffectiveStability returns the stability to use for decay math.
// Long-term cards carry it directly. Test-prep cards have no model state,
// so the ladder offset at the current step stands in for it: a card sitting
// on a 14-day rung holds roughly a 14-day memory.
func EffectiveStability(c models.Card) float64 {
	if c.Memory != nil {
		return c.Memory.Stability
	}
	if c.TestPrep != nil && len(c.TestPrep.Schedule) > 0 {
		step := c.TestPrep.CurrentStep
		if step >= len(c.TestPrep.Schedule) {
			step = len(c.TestPrep.Schedule) - 1
		}
		if step < 0 {
			step = 0
		}
		if s := float64(c.TestPrep.Schedule[step]); s >= 1 {
			return s
		}
		return 1
	}
	return 0
}

// ForCard returns the card's current retrievability at `now`.
// Unreviewed cards report 1.0 per the degenerate-input rule.
func ForCard(c models.Card, now time.Time) float64 {
	return ProjectedAt(c, now)
}

// ProjectedAt returns the card's retrievability at an arbitrary (usually
// future) date: "how well will I remember this on exam day".
func ProjectedAt(c models.Card, target time.Time) float64 {
	if c.LastReviewAt == nil {
		return 1.0
	}
	elapsed := target.Sub(*c.LastReviewAt).Hours() / 24
	return At(EffectiveStability(c), elapsed)
}

// SortByRetrievability returns the cards ordered by ascending current R,
// most forgettable first. The input slice is not mutated.
func SortByRetrievability(cards []models.Card, now time.Time) []models.Card {
	out := append([]models.Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		return ForCard(out[i], now) < ForCard(out[j], now)
	})
	return out
}

// SortByProjected returns the cards ordered by ascending projected R at the
// exam date, weakest-at-exam first. The input slice is not mutated.
func SortByProjected(cards []models.Card, examDate time.Time) []models.Card {
	out := append([]models.Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		return ProjectedAt(out[i], examDate) < ProjectedAt(out[j], examDate)
	})
	return out
}

// FilterBelow returns the cards whose current R at `now` is strictly below
// the threshold, in the input order.
func FilterBelow(cards []models.Card, threshold float64, now time.Time) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if ForCard(c, now) < threshold {
			out = append(out, c)
		}
	}
	return out
}
