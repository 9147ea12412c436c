package longterm

import (
	"time"

	"github.com/prepdeck/prepdeck/internal/mastery"
	"github.com/prepdeck/prepdeck/internal/models"
)

// ConvertToLongTerm migrates a test-prep card into the adaptive memory
// model, one way. The initial model state is seeded from the card's current
// mastery; all test-prep fields are cleared.
//
//	MASTERED   -> Review state, stability 21, difficulty 5
//	LEARNING   -> Learning state, stability 3, difficulty 5
//	STRUGGLING -> New state, stability 0, difficulty 7
func ConvertToLongTerm(c models.Card, now time.Time) (models.CardUpdate, error) {
	if c.Mode != models.ModeTestPrep {
		return models.CardUpdate{}, models.ErrWrongMode
	}

	var (
		state      models.MemoryState
		stability  float64
		difficulty float64
	)
	switch mastery.Derive(c) {
	case models.MasteryMastered:
		state, stability, difficulty = models.StateReview, 21, 5
	case models.MasteryStruggling:
		state, stability, difficulty = models.StateNew, 0, 7
	default:
		state, stability, difficulty = models.StateLearning, 3, 5
	}

	// Due in `stability` days; a zero-stability seed is due immediately.
	next := now
	if stability > 0 {
		next = now.AddDate(0, 0, int(stability))
	}

	mode := models.ModeLongTerm
	level := mastery.FromModel(state, stability, c.Lapses)
	u := models.CardUpdate{
		CardID:        c.ID,
		Mode:          &mode,
		ClearTestPrep: true,
		State:         &state,
		Stability:     &stability,
		Difficulty:    &difficulty,
		Mastery:       &level,
		NextReviewAt:  &next,
	}
	learned := learningStateFor(state)
	u.LearningState = &learned
	step := 0
	u.LearningStep = &step
	cardType := models.CardTypeInterday
	if stability == 0 {
		cardType = models.CardTypeIntraday
	}
	u.LearningCardType = &cardType
	return u, nil
}
