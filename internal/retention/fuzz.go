package retention

import (
	"math"
	"math/rand"
)

// fuzzBand is the graduated fuzz width applied to an interval, as a
// fraction of the interval. Short intervals are left exact; long ones get
// only a few percent of slack so the schedule stays recognizable.
type fuzzBand struct {
	maxDays  float64
	fraction float64
}

var fuzzBands = []fuzzBand{
	{2, 0},              // under 2 days: no fuzz
	{7, 0.25},           // 2-7 days: ±25%
	{30, 0.15},          // 7-30 days: ±15%
	{math.Inf(1), 0.05}, // beyond: ±5%
}

func fuzzFraction(days float64) float64 {
	for _, b := range fuzzBands {
		if days < b.maxDays {
			return b.fraction
		}
	}
	return 0
}

// triangular draws from a triangular distribution over (low, mode, high).
func triangular(low, mode, high float64, rng *rand.Rand) float64 {
	if high <= low {
		return mode
	}
	u := rng.Float64()
	cut := (mode - low) / (high - low)
	if u < cut {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// FuzzDays declusters an interval by drawing from a triangular distribution
// centered on it, with the band width graduated by interval length.
// The result never drops below 1 day. Deterministic for a seeded rng.
func FuzzDays(days int, rng *rand.Rand) int {
	d := float64(days)
	frac := fuzzFraction(d)
	if frac == 0 {
		if days < 1 {
			return 1
		}
		return days
	}
	fuzzed := triangular(d*(1-frac), d, d*(1+frac), rng)
	out := int(math.Round(fuzzed))
	if out < 1 {
		out = 1
	}
	return out
}
