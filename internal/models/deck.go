package models

import "time"

// InsertionOrder controls how new cards are picked for a day's session.
type InsertionOrder string

const (
	OrderSequential InsertionOrder = "SEQUENTIAL"
	OrderRandom     InsertionOrder = "RANDOM"
)

// EasyDay caps the review volume on a weekday or a specific date.
// Exactly one of Weekday / Date is set. MaxCards 0 is a day off.
type EasyDay struct {
	ID       int64         `json:"id"`
	DeckID   int64         `json:"deck_id"`
	Weekday  *time.Weekday `json:"weekday,omitempty"`
	Date     *time.Time    `json:"date,omitempty"`
	MaxCards int           `json:"max_cards"`
}

// Matches reports whether the easy day applies to the given calendar day.
func (e EasyDay) Matches(day time.Time) bool {
	if e.Date != nil {
		return SameDay(*e.Date, day)
	}
	if e.Weekday != nil {
		return day.Weekday() == *e.Weekday
	}
	return false
}

// Deck is a collection of cards sharing a mode and, for test prep,
// a deadline.
type Deck struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Mode             Mode           `json:"mode"`
	TestDate         *time.Time     `json:"test_date,omitempty"`
	DesiredRetention float64        `json:"desired_retention"`
	MaxCardsPerDay   int            `json:"max_cards_per_day"` // 0 = unlimited
	NewCardsPerDay   int            `json:"new_cards_per_day"`
	InsertionOrder   InsertionOrder `json:"insertion_order"`
	EasyDays         []EasyDay      `json:"easy_days,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// DeckFilter narrows deck list queries.
type DeckFilter struct {
	Mode   Mode
	Limit  int
	Offset int
}

// CardFilter narrows card list queries.
type CardFilter struct {
	DeckID  int64
	Mode    Mode
	DueBy   *time.Time
	IsLeech *bool
	Limit   int
	Offset  int
}
