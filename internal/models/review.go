package models

import "time"

// ReviewEntry is an immutable record of one rating event, appended after
// each review. Kept for later model calibration; never read back by the
// scheduling core.
type ReviewEntry struct {
	ID            int64       `json:"id"`
	CardID        int64       `json:"card_id"`
	Rating        Rating      `json:"rating"`
	ElapsedDays   float64     `json:"elapsed_days"`
	ScheduledDays float64     `json:"scheduled_days"`
	State         MemoryState `json:"state"`
	Stability     float64     `json:"stability"`
	Difficulty    float64     `json:"difficulty"`
	ReviewedAt    time.Time   `json:"reviewed_at"`
}
