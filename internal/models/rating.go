package models

import (
	"encoding"
	"fmt"
)

// Rating is the learner's assessment of recall quality.
type Rating int

const (
	RatingAgain Rating = iota + 1 // failed to recall
	RatingHard                    // recalled with significant difficulty
	RatingGood                    // recalled with some effort
	RatingEasy                    // recalled effortlessly
)

var ratingNames = [...]string{
	RatingAgain: "AGAIN",
	RatingHard:  "HARD",
	RatingGood:  "GOOD",
	RatingEasy:  "EASY",
}

var ratingByName = map[string]Rating{
	"AGAIN": RatingAgain,
	"HARD":  RatingHard,
	"GOOD":  RatingGood,
	"EASY":  RatingEasy,
}

var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler; Rating serializes as its name.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid rating: %d", int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid rating: %q", text)
	}
	*r = v
	return nil
}
