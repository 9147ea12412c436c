// Package selector implements the top-level due-card query combining
// lockout rules, the final-review-day override, and standard due filtering
// across decks. Stateless: every call is evaluated fresh.
package selector

import (
	"sort"
	"time"

	"github.com/prepdeck/prepdeck/internal/mastery"
	"github.com/prepdeck/prepdeck/internal/models"
)

// masteryOrder sorts final-review-day cards weakest first.
var masteryOrder = map[models.Mastery]int{
	models.MasteryStruggling: 0,
	models.MasteryLearning:   1,
	models.MasteryMastered:   2,
}

// DueCards returns every card due for review at `now` across the given
// decks.
//
// Long-term decks compare exact timestamps, because the memory model can
// schedule sub-day intervals. Test-prep decks compare calendar days, are
// locked out entirely on the test day, and surface the whole deck on the
// day before the test. Due-ness never depends on when the learner last
// showed up: skipping a weekend does not shrink the backlog.
func DueCards(cards []models.Card, decks []models.Deck, now time.Time) []models.Card {
	byDeck := make(map[int64][]models.Card)
	for _, c := range cards {
		byDeck[c.DeckID] = append(byDeck[c.DeckID], c)
	}

	var out []models.Card
	for _, deck := range decks {
		deckCards := byDeck[deck.ID]
		if len(deckCards) == 0 {
			continue
		}

		if deck.Mode == models.ModeLongTerm {
			for _, c := range deckCards {
				if c.LeechSuspended {
					continue
				}
				if !c.NextReviewAt.After(now) {
					out = append(out, c)
				}
			}
			continue
		}

		// Test prep from here on.
		if deck.TestDate == nil {
			// Recoverable misconfiguration: degrade to the calendar-day
			// filter rather than dropping the deck.
			out = append(out, dueByCalendarDay(deckCards, now)...)
			continue
		}

		switch models.CalendarDaysBetween(now, *deck.TestDate) {
		case 0:
			// Lockout: the deck contributes nothing on test day.
		case 1:
			// Final review: the whole deck, weakest first.
			all := append([]models.Card(nil), deckCards...)
			sort.SliceStable(all, func(i, j int) bool {
				return masteryOrder[mastery.Derive(all[i])] < masteryOrder[mastery.Derive(all[j])]
			})
			out = append(out, all...)
		default:
			out = append(out, dueByCalendarDay(deckCards, now)...)
		}
	}
	return out
}

func dueByCalendarDay(cards []models.Card, now time.Time) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.LeechSuspended {
			continue
		}
		if models.CalendarDaysBetween(now, c.NextReviewAt) <= 0 {
			out = append(out, c)
		}
	}
	return out
}
