// Package mastery is the single source of truth for deriving a card's
// mastery level. No other package may reimplement these thresholds.
package mastery

import "github.com/prepdeck/prepdeck/internal/models"

// MasteredStability is the memory-model stability (days) at which a
// reviewing card counts as mastered.
const MasteredStability = 21.0

// StrugglingLapses is the lapse count at which a card counts as struggling
// regardless of its current state.
const StrugglingLapses = 2

// FromModel derives mastery from memory-model state. Pure: the same
// (state, stability, lapses) always yields the same level.
func FromModel(state models.MemoryState, stability float64, lapses int) models.Mastery {
	if state == models.StateRelearning || lapses >= StrugglingLapses {
		return models.MasteryStruggling
	}
	if state == models.StateReview && stability >= MasteredStability {
		return models.MasteryMastered
	}
	return models.MasteryLearning
}

// Derive returns the card's mastery level. Long-term cards derive it from
// their model state; test-prep cards carry the level their ladder outcomes
// assigned.
func Derive(c models.Card) models.Mastery {
	if c.Mode == models.ModeLongTerm && c.Memory != nil {
		return FromModel(c.Memory.State, c.Memory.Stability, c.Lapses)
	}
	if c.Mastery == "" {
		return models.MasteryLearning
	}
	return c.Mastery
}
