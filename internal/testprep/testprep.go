// Package testprep schedules cards against a fixed ladder of review
// offsets capped by an exam date. The ladder is forgiving inside a session
// (AGAIN only requeues) but nothing ever lands on or past the test day.
package testprep

import (
	"fmt"
	"time"

	"github.com/prepdeck/prepdeck/internal/models"
)

// StandardLadder is the full offset sequence a test-prep card climbs,
// in days. GenerateSchedule truncates it to the available runway.
var StandardLadder = []int{0, 1, 3, 7, 14, 21, 28, 35, 45, 60}

// FallbackTestDays is the assumed runway when a test-prep card is missing
// its test date. Recoverable: the caller logs it, scheduling continues.
const FallbackTestDays = 30

// GenerateSchedule builds the ladder for a test on testDate as seen from
// now. With one day or less of runway the ladder collapses to [0]; otherwise
// only offsets strictly inside the remaining days survive.
func GenerateSchedule(testDate, now time.Time) []int {
	daysLeft := models.CalendarDaysBetween(now, testDate)
	if daysLeft <= 1 {
		return []int{0}
	}
	var out []int
	for _, offset := range StandardLadder {
		if offset < daysLeft {
			out = append(out, offset)
		}
	}
	if len(out) == 0 {
		return []int{0}
	}
	return out
}

// EffectiveTestDate returns the card's test date, falling back to
// FallbackTestDays out when it is missing. The second result reports
// whether the fallback was used so the caller can log it.
func EffectiveTestDate(c models.Card, now time.Time) (time.Time, bool) {
	if c.TestPrep != nil && !c.TestPrep.TestDate.IsZero() {
		return c.TestPrep.TestDate, false
	}
	return models.StartOfDay(now).AddDate(0, 0, FallbackTestDays), true
}

// Review applies one rating to a test-prep card and returns the partial
// update for the store. The card itself is not mutated.
//
// AGAIN is a same-session requeue: the ladder pointer, reps, and mastery
// stay untouched and the update carries ActionRequeue.
func Review(c models.Card, rating models.Rating, now time.Time) (models.CardUpdate, error) {
	if !rating.IsValid() {
		return models.CardUpdate{}, fmt.Errorf("%w: %d", models.ErrInvalidRating, int(rating))
	}
	if c.Mode != models.ModeTestPrep || c.TestPrep == nil {
		return models.CardUpdate{}, models.ErrWrongMode
	}

	testDate, _ := EffectiveTestDate(c, now)
	schedule := c.TestPrep.Schedule
	if len(schedule) == 0 {
		schedule = GenerateSchedule(testDate, now)
	}

	u := models.CardUpdate{CardID: c.ID}
	r := rating
	u.LastResponse = &r

	if rating == models.RatingAgain {
		// Session-only: reappear before the session ends, keep everything else.
		due := now
		u.NextReviewAt = &due
		u.Action = models.ActionRequeue
		intraday := models.CardTypeIntraday
		u.LearningCardType = &intraday
		return u, nil
	}

	// EASY below step 2 is downgraded to GOOD so the ladder cannot be
	// skipped before the card has proven itself.
	if rating == models.RatingEasy && c.TestPrep.CurrentStep < 2 {
		rating = models.RatingGood
	}

	step := c.TestPrep.CurrentStep
	var (
		next    time.Time
		level   models.Mastery
		learned models.LearningState
	)

	switch rating {
	case models.RatingHard:
		if step > 0 {
			step--
		}
		next = now.AddDate(0, 0, 1)
		level = models.MasteryStruggling
		learned = models.LearningStateRelearning

	case models.RatingGood, models.RatingEasy:
		advance := 1
		if rating == models.RatingEasy {
			advance = 2
		}
		step += advance
		if step >= len(schedule) {
			// Past the ladder: jump to the day before the test.
			next = dayBeforeTest(testDate)
			level = models.MasteryMastered
			learned = models.LearningStateGraduated
		} else {
			next = now.AddDate(0, 0, schedule[step])
			level = models.MasteryLearning
			learned = models.LearningStateLearning
		}
	}

	next = capToBrickWall(next, testDate)

	reps := c.Reps + 1
	interday := models.CardTypeInterday
	u.CurrentStep = &step
	u.NextReviewAt = &next
	u.Mastery = &level
	u.LearningState = &learned
	u.LearningCardType = &interday
	u.Reps = &reps
	u.LastReviewAt = &now
	u.Interval = next.Sub(now)
	return u, nil
}

// Previews returns the interval each rating would produce, formatted for
// display, without mutating the card. Matches the real Review outcomes.
func Previews(c models.Card, now time.Time) (models.IntervalPreviews, error) {
	var out models.IntervalPreviews
	for _, rating := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
		u, err := Review(c, rating, now)
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

// dayBeforeTest is midnight of the final review day.
func dayBeforeTest(testDate time.Time) time.Time {
	return models.StartOfDay(testDate).AddDate(0, 0, -1)
}

// capToBrickWall enforces the invariant that no review may land on or
// after the test date itself.
func capToBrickWall(next, testDate time.Time) time.Time {
	if models.CalendarDaysBetween(next, testDate) <= 0 {
		return dayBeforeTest(testDate)
	}
	return next
}
