// Package longterm schedules open-ended retention cards by wrapping the
// fixed-weight memory model with per-rating interval floors, mastery
// derivation, leech detection, and declustering fuzz.
package longterm

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/prepdeck/prepdeck/internal/fsrs"
	"github.com/prepdeck/prepdeck/internal/mastery"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/retention"
)

// Minimum intervals applied after the model call, per rating. AGAIN and
// EASY have no floor: AGAIN may repeat the same session, and the model's
// EASY intervals are already long.
var ratingFloors = map[models.Rating]time.Duration{
	models.RatingAgain: 0,
	models.RatingHard:  5 * time.Minute,
	models.RatingGood:  10 * time.Minute,
	models.RatingEasy:  0,
}

// DefaultLeechThreshold is the lapse count at which a card is flagged as a
// leech. Informational: scheduling continues normally.
const DefaultLeechThreshold = 8

// Config carries everything a long-term scheduling call needs. There is no
// package-level model instance; construct a Config and pass it in.
type Config struct {
	Params         fsrs.Params
	LeechThreshold int
	DisableFuzz    bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Params:         fsrs.DefaultParams(),
		LeechThreshold: DefaultLeechThreshold,
	}
}

// Review applies one rating to a long-term card and returns the partial
// update for the store. The card itself is not mutated.
func Review(cfg Config, c models.Card, rating models.Rating, now time.Time) (models.CardUpdate, error) {
	if !rating.IsValid() {
		return models.CardUpdate{}, fmt.Errorf("%w: %d", models.ErrInvalidRating, int(rating))
	}
	if c.Mode != models.ModeLongTerm || c.Memory == nil {
		return models.CardUpdate{}, models.ErrWrongMode
	}

	var elapsedDays float64
	if c.LastReviewAt != nil {
		elapsedDays = now.Sub(*c.LastReviewAt).Hours() / 24
	}

	mem := cfg.Params.Next(fsrs.Memory{
		State:      c.Memory.State,
		Stability:  c.Memory.Stability,
		Difficulty: c.Memory.Difficulty,
		Reps:       c.Reps,
		Lapses:     c.Lapses,
	}, rating, elapsedDays)

	days := mem.IntervalDays
	if days >= 2 && !cfg.DisableFuzz {
		rng := rand.New(rand.NewSource(fuzzSeed(c, now)))
		days = retention.FuzzDays(days, rng)
	}

	interval := time.Duration(days) * 24 * time.Hour
	if floor := ratingFloors[rating]; interval < floor {
		interval = floor
	}
	next := now.Add(interval)

	level := mastery.FromModel(mem.State, mem.Stability, mem.Lapses)

	u := models.CardUpdate{CardID: c.ID}
	u.State = &mem.State
	u.Stability = &mem.Stability
	u.Difficulty = &mem.Difficulty
	u.Reps = &mem.Reps
	u.Lapses = &mem.Lapses
	u.Mastery = &level
	u.NextReviewAt = &next
	u.LastReviewAt = &now
	r := rating
	u.LastResponse = &r
	u.Interval = interval

	learned := learningStateFor(mem.State)
	u.LearningState = &learned
	step := learningStepFor(c, mem.State, rating)
	u.LearningStep = &step
	cardType := models.CardTypeInterday
	if interval < 24*time.Hour {
		cardType = models.CardTypeIntraday
	}
	u.LearningCardType = &cardType

	if mem.Lapses >= cfg.LeechThreshold && !c.IsLeech {
		leech := true
		u.IsLeech = &leech
	}
	return u, nil
}

// Previews returns the interval each rating would produce, formatted for
// display, without mutating the card. Fuzz is seeded from the card and the
// calendar day, so previews match the outcome of actually pressing the
// rating at the same time.
func Previews(cfg Config, c models.Card, now time.Time) (models.IntervalPreviews, error) {
	var out models.IntervalPreviews
	for _, rating := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
		u, err := Review(cfg, c, rating, now)
		if err != nil {
			return models.IntervalPreviews{}, err
		}
		label := models.FormatInterval(u.Interval)
		switch rating {
		case models.RatingAgain:
			out.Again = label
		case models.RatingHard:
			out.Hard = label
		case models.RatingGood:
			out.Good = label
		case models.RatingEasy:
			out.Easy = label
		}
	}
	return out, nil
}

// HistoryEntry builds the immutable review record for a completed review.
func HistoryEntry(c models.Card, u models.CardUpdate, rating models.Rating, now time.Time) models.ReviewEntry {
	var elapsed, scheduled float64
	if c.LastReviewAt != nil {
		elapsed = now.Sub(*c.LastReviewAt).Hours() / 24
		scheduled = c.NextReviewAt.Sub(*c.LastReviewAt).Hours() / 24
	}
	entry := models.ReviewEntry{
		CardID:        c.ID,
		Rating:        rating,
		ElapsedDays:   elapsed,
		ScheduledDays: scheduled,
		ReviewedAt:    now,
	}
	if u.State != nil {
		entry.State = *u.State
	}
	if u.Stability != nil {
		entry.Stability = *u.Stability
	}
	if u.Difficulty != nil {
		entry.Difficulty = *u.Difficulty
	}
	return entry
}

// learningStepFor tracks the intra-day step index while a card sits in a
// learning state: AGAIN restarts it, other ratings advance it, and leaving
// the learning states resets it.
func learningStepFor(c models.Card, state models.MemoryState, rating models.Rating) int {
	if state != models.StateLearning && state != models.StateRelearning {
		return 0
	}
	if rating == models.RatingAgain {
		return 0
	}
	return c.LearningStep + 1
}

func learningStateFor(state models.MemoryState) models.LearningState {
	switch state {
	case models.StateReview:
		return models.LearningStateGraduated
	case models.StateRelearning:
		return models.LearningStateRelearning
	default:
		return models.LearningStateLearning
	}
}

// fuzzSeed derives a deterministic RNG seed from the card identity, its
// review count, and the calendar day, so repeated calls within a day (and
// the previews that precede them) agree.
func fuzzSeed(c models.Card, now time.Time) int64 {
	day := models.StartOfDay(now).Unix() / 86400
	return c.ID*1_000_003 + int64(c.Reps)*31 + day
}
