// Package examphase classifies a test-prep deck by how far its exam is and
// blends the adaptive model against that deadline: which cards to surface,
// how hard to push retention, and what to do once the exam has passed.
package examphase

import (
	"math"
	"time"

	"github.com/prepdeck/prepdeck/internal/mastery"
	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/retention"
)

// Phase is the temporal position of a deck relative to its exam.
type Phase string

const (
	PhaseMaintenance   Phase = "MAINTENANCE"   // > 30 days out
	PhaseConsolidation Phase = "CONSOLIDATION" // 8-30 days
	PhaseCram          Phase = "CRAM"          // 1-7 days
	PhaseExamDay       Phase = "EXAM_DAY"      // exam day
	PhasePostExam      Phase = "POST_EXAM"     // exam has passed
)

// Status describes the current phase and its retention target.
type Status struct {
	Phase           Phase   `json:"phase"`
	DaysLeft        int     `json:"days_left"`
	TargetRetention float64 `json:"target_retention"`
	Strategy        string  `json:"strategy"`
}

// EarlyReviewThreshold: a card should be pulled in ahead of its due date
// when its projected retention on exam day falls below this.
const EarlyReviewThreshold = 0.85

// ForTestDate classifies the deck by calendar days until the test,
// midnight to midnight.
func ForTestDate(testDate, now time.Time) Status {
	daysLeft := models.CalendarDaysBetween(now, testDate)
	switch {
	case daysLeft > 30:
		return Status{PhaseMaintenance, daysLeft, 0.75, "minimum effort"}
	case daysLeft >= 8:
		// Linear ramp 0.75 -> 0.95 as the window closes from 30 to 8 days.
		t := 0.75 + float64(30-daysLeft)/22*0.20
		return Status{PhaseConsolidation, daysLeft, t, "tighten intervals"}
	case daysLeft >= 1:
		// Linear ramp 0.95 -> 0.99 over the final week.
		t := 0.95 + float64(7-daysLeft)/6*0.04
		return Status{PhaseCram, daysLeft, t, "review weakest at exam first"}
	case daysLeft == 0:
		return Status{PhaseExamDay, 0, 1.0, "struggling cards only"}
	default:
		return Status{PhasePostExam, daysLeft, 0.90, "convert or archive"}
	}
}

// Prioritize returns the cards worth reviewing in the deck's current phase,
// most urgent first.
func Prioritize(cards []models.Card, testDate, now time.Time) []models.Card {
	status := ForTestDate(testDate, now)
	switch status.Phase {
	case PhaseMaintenance, PhaseConsolidation:
		below := retention.FilterBelow(cards, status.TargetRetention, now)
		return retention.SortByRetrievability(below, now)
	case PhaseCram:
		return retention.SortByProjected(cards, testDate)
	case PhaseExamDay:
		var out []models.Card
		for _, c := range cards {
			if mastery.Derive(c) == models.MasteryStruggling {
				out = append(out, c)
			}
		}
		return out
	default:
		// Post exam: nothing to review; the caller should prompt conversion.
		return nil
	}
}

// NeedsEarlyReview reports whether the card should be reviewed outside its
// normal due date to hold up through the exam.
func NeedsEarlyReview(c models.Card, examDate time.Time) bool {
	return retention.ProjectedAt(c, examDate) < EarlyReviewThreshold
}

// PostExamAction is the recommendation for a deck whose exam has passed.
type PostExamAction string

const (
	ActionConvert PostExamAction = "CONVERT" // fold into long-term retention
	ActionArchive PostExamAction = "ARCHIVE"
)

// PostExamRecommendation suggests converting recently finished decks and
// archiving stale ones.
func PostExamRecommendation(testDate, now time.Time) PostExamAction {
	if models.CalendarDaysBetween(testDate, now) <= 7 {
		return ActionConvert
	}
	return ActionArchive
}

// Report summarizes how prepared a deck is for its exam.
type Report struct {
	Ready            int     `json:"ready"`    // projected R >= 0.90
	AtRisk           int     `json:"at_risk"`  // 0.70 <= projected R < 0.90
	Critical         int     `json:"critical"` // projected R < 0.70
	EstimatedScore   int     `json:"estimated_score"`
	DailyCardsNeeded int     `json:"daily_cards_needed"`
	MeanRetention    float64 `json:"mean_retention"`
	Recommendation   string  `json:"recommendation"`
}

// Preparedness projects every card's retention onto exam day and buckets
// the deck. Deterministic: the recommendation is a pure function of the
// mean projected retention.
func Preparedness(cards []models.Card, examDate, now time.Time) Report {
	var report Report
	if len(cards) == 0 {
		report.Recommendation = recommendationFor(0)
		return report
	}

	var sum float64
	for _, c := range cards {
		r := retention.ProjectedAt(c, examDate)
		sum += r
		switch {
		case r >= 0.90:
			report.Ready++
		case r >= 0.70:
			report.AtRisk++
		default:
			report.Critical++
		}
	}

	mean := sum / float64(len(cards))
	report.MeanRetention = mean
	report.EstimatedScore = int(math.Round(mean * 100))

	needingWork := report.AtRisk + report.Critical
	daysLeft := models.CalendarDaysBetween(now, examDate)
	if daysLeft <= 0 {
		report.DailyCardsNeeded = needingWork
	} else {
		report.DailyCardsNeeded = int(math.Ceil(float64(needingWork) / float64(daysLeft)))
	}
	report.Recommendation = recommendationFor(mean)
	return report
}

func recommendationFor(mean float64) string {
	switch {
	case mean >= 0.90:
		return "On track: keep up the current pace."
	case mean >= 0.80:
		return "Nearly there: focus daily reviews on at-risk cards."
	case mean >= 0.70:
		return "Behind: increase daily reviews, prioritize critical cards."
	default:
		return "At risk: significantly increase study time before the exam."
	}
}
