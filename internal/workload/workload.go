// Package workload forecasts daily review volume and smooths it out:
// spreading overloaded days onto nearby ones, building catch-up schedules
// for backlogs, and metering new-card introduction.
package workload

import (
	"math/rand"
	"sort"
	"time"

	"github.com/prepdeck/prepdeck/internal/models"
	"github.com/prepdeck/prepdeck/internal/retention"
)

// DefaultSearchWindowDays bounds how far forward the balancer may push a
// card off an overloaded day.
const DefaultSearchWindowDays = 7

// Config carries the smoothing knobs, usually taken from the deck.
type Config struct {
	DefaultMaxPerDay int // 0 = unlimited
	NewPerDay        int
	EasyDays         []models.EasyDay
	InsertionOrder   models.InsertionOrder
	SearchWindowDays int // 0 = DefaultSearchWindowDays
}

func (c Config) searchWindow() int {
	if c.SearchWindowDays <= 0 {
		return DefaultSearchWindowDays
	}
	return c.SearchWindowDays
}

// capacityFor returns the allowed volume for a calendar day and whether a
// limit applies at all. An easy-day override always limits; MaxCards 0 is
// a day off. Without an override, DefaultMaxPerDay 0 means unlimited.
func (c Config) capacityFor(day time.Time) (int, bool) {
	for _, e := range c.EasyDays {
		if e.Matches(day) {
			return e.MaxCards, true
		}
	}
	if c.DefaultMaxPerDay <= 0 {
		return 0, false
	}
	return c.DefaultMaxPerDay, true
}

// DailyLoad is one day of the forecast.
type DailyLoad struct {
	Day        time.Time `json:"day"`
	New        int       `json:"new"`    // cards never reviewed
	Review     int       `json:"review"` // cards with review history
	Total      int       `json:"total"`
	Capacity   int       `json:"capacity"` // -1 = unlimited, 0 = day off
	Overloaded bool      `json:"overloaded"`
}

// Forecast buckets cards by the calendar day of their due timestamp for the
// next `days` days. Overdue cards land on today.
func Forecast(cards []models.Card, days int, cfg Config, now time.Time) []DailyLoad {
	if days <= 0 {
		days = DefaultSearchWindowDays
	}
	today := models.StartOfDay(now)
	out := make([]DailyLoad, days)
	limited := make([]bool, days)
	for i := range out {
		day := today.AddDate(0, 0, i)
		out[i].Day = day
		out[i].Capacity, limited[i] = cfg.capacityFor(day)
		if !limited[i] {
			out[i].Capacity = -1
		}
	}

	for _, c := range cards {
		idx := models.CalendarDaysBetween(today, c.NextReviewAt)
		if idx < 0 {
			idx = 0 // backlog counts against today
		}
		if idx >= days {
			continue
		}
		if c.LastReviewAt == nil {
			out[idx].New++
		} else {
			out[idx].Review++
		}
		out[idx].Total++
	}

	for i := range out {
		out[i].Overloaded = limited[i] && out[i].Total > out[i].Capacity
	}
	return out
}

// Move records one load-balancing reassignment.
type Move struct {
	CardID int64     `json:"card_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// BalanceResult is the outcome of a balancing pass. Cards are never created
// or destroyed: every card either stays put or appears in exactly one move.
type BalanceResult struct {
	Moves           []Move              `json:"moves"`
	Updates         []models.CardUpdate `json:"updates"`
	StillOverloaded []time.Time         `json:"still_overloaded,omitempty"`
}

// Balance redistributes the excess of every overloaded day onto the nearest
// subsequent day with spare capacity, within the search window. The cards
// with the highest stability move; they tolerate the longest delay without
// memory loss. Days whose excess cannot be placed are reported back rather
// than silently overflowed.
func Balance(cards []models.Card, cfg Config, now time.Time) BalanceResult {
	var result BalanceResult
	today := models.StartOfDay(now)

	// Horizon: far enough to cover every due card plus the search window.
	horizon := 1
	byDay := make(map[int][]models.Card)
	for _, c := range cards {
		idx := models.CalendarDaysBetween(today, c.NextReviewAt)
		if idx < 0 {
			idx = 0
		}
		byDay[idx] = append(byDay[idx], c)
		if idx+1 > horizon {
			horizon = idx + 1
		}
	}
	horizon += cfg.searchWindow()

	counts := make([]int, horizon)
	caps := make([]int, horizon)
	capped := make([]bool, horizon)
	for i := 0; i < horizon; i++ {
		counts[i] = len(byDay[i])
		caps[i], capped[i] = cfg.capacityFor(today.AddDate(0, 0, i))
	}

	for day := 0; day < horizon; day++ {
		if !capped[day] || counts[day] <= caps[day] {
			continue
		}
		excess := counts[day] - caps[day]

		// Highest stability first: those cards decay slowest.
		candidates := append([]models.Card(nil), byDay[day]...)
		sort.SliceStable(candidates, func(i, j int) bool {
			return retention.EffectiveStability(candidates[i]) > retention.EffectiveStability(candidates[j])
		})

		placed := 0
		for _, c := range candidates {
			if placed == excess {
				break
			}
			// A test-prep card must stay strictly before its test date,
			// no matter how overloaded the day is.
			lastDay := horizon - 1
			if c.Mode == models.ModeTestPrep && c.TestPrep != nil && !c.TestPrep.TestDate.IsZero() {
				if limit := models.CalendarDaysBetween(today, c.TestPrep.TestDate) - 1; limit < lastDay {
					lastDay = limit
				}
			}
			target := -1
			for offset := 1; offset <= cfg.searchWindow(); offset++ {
				d := day + offset
				if d > lastDay {
					break
				}
				if !capped[d] || counts[d] < caps[d] {
					target = d
					break
				}
			}
			if target < 0 {
				// No room anywhere in the window; the card stays put.
				continue
			}

			from := c.NextReviewAt
			to := moveDate(from, today.AddDate(0, 0, target))
			counts[day]--
			counts[target]++
			placed++

			u := models.CardUpdate{CardID: c.ID}
			u.NextReviewAt = &to
			orig := from
			if c.OriginalDueAt != nil {
				orig = *c.OriginalDueAt // keep the earliest audit value
			}
			u.OriginalDueAt = &orig
			result.Updates = append(result.Updates, u)
			result.Moves = append(result.Moves, Move{CardID: c.ID, From: from, To: to})
		}
		if counts[day] > caps[day] {
			result.StillOverloaded = append(result.StillOverloaded, today.AddDate(0, 0, day))
		}
	}
	return result
}

// moveDate reassigns the calendar day while keeping the original clock time.
func moveDate(orig, day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, orig.Hour(), orig.Minute(), orig.Second(), orig.Nanosecond(), orig.Location())
}

// Bucket is one day of a catch-up schedule.
type Bucket struct {
	Day   time.Time     `json:"day"`
	Cards []models.Card `json:"cards"`
}

// CatchUp spreads a backlog of overdue cards over the next `days` days,
// most urgent (lowest retrievability) first, at most maxPerDay per bucket.
// Cards beyond days*maxPerDay are left for a later pass.
func CatchUp(overdue []models.Card, days, maxPerDay int, now time.Time) []Bucket {
	if days <= 0 || maxPerDay <= 0 {
		return nil
	}
	ordered := retention.SortByRetrievability(overdue, now)
	today := models.StartOfDay(now)

	buckets := make([]Bucket, 0, days)
	for i := 0; i < days && len(ordered) > 0; i++ {
		n := maxPerDay
		if n > len(ordered) {
			n = len(ordered)
		}
		buckets = append(buckets, Bucket{
			Day:   today.AddDate(0, 0, i),
			Cards: ordered[:n],
		})
		ordered = ordered[n:]
	}
	return buckets
}

// NewCardsForToday picks today's batch of never-reviewed cards: ordered by
// creation time for SEQUENTIAL decks or a seeded shuffle for RANDOM ones,
// truncated to the daily new-card limit.
func NewCardsForToday(cards []models.Card, cfg Config, rng *rand.Rand) []models.Card {
	var fresh []models.Card
	for _, c := range cards {
		if c.LastReviewAt == nil && !c.LeechSuspended {
			fresh = append(fresh, c)
		}
	}

	if cfg.InsertionOrder == models.OrderRandom && rng != nil {
		rng.Shuffle(len(fresh), func(i, j int) {
			fresh[i], fresh[j] = fresh[j], fresh[i]
		})
	} else {
		sort.SliceStable(fresh, func(i, j int) bool {
			return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
		})
	}

	if cfg.NewPerDay > 0 && len(fresh) > cfg.NewPerDay {
		fresh = fresh[:cfg.NewPerDay]
	}
	return fresh
}
