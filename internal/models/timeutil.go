package models

import (
	"fmt"
	"math"
	"time"
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CalendarDaysBetween counts whole calendar days from `from` to `to`,
// midnight to midnight. Negative when `to` is in the past. DST shifts the
// length of a day, so the midnight difference is rounded rather than
// truncated.
func CalendarDaysBetween(from, to time.Time) int {
	f := StartOfDay(from)
	t := StartOfDay(to)
	return int(math.Round(t.Sub(f).Hours() / 24))
}

// FormatInterval renders a scheduling interval the way review buttons show
// it: "now", "5m", "2h", "3d", "2mo", "1.5y".
func FormatInterval(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo", int(d.Hours()/24/30))
	default:
		return fmt.Sprintf("%.1fy", d.Hours()/24/365)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime accepts the date representations storage and clients actually
// send: RFC3339 timestamps (with or without fractional seconds or zone)
// and bare dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
