package fsrs

import (
	"math"

	"github.com/prepdeck/prepdeck/internal/models"
)

// Memory is the model's view of a card: the inputs it consumes and the
// outputs it produces. IntervalDays is the model's raw scheduling output
// before the caller applies per-rating floors.
type Memory struct {
	State        models.MemoryState
	Stability    float64
	Difficulty   float64
	Reps         int
	Lapses       int
	IntervalDays int
}

// Next runs one model update: given the current memory state, the rating,
// and the days elapsed since the last review, it returns the updated state.
// Sub-day outcomes (learning steps, lapses) come back with IntervalDays 0.
func (p Params) Next(m Memory, rating models.Rating, elapsedDays float64) Memory {
	out := m
	out.Reps++

	switch m.State {
	case models.StateNew:
		out.Stability = p.initStability(rating)
		out.Difficulty = p.initDifficulty(rating)
		if rating == models.RatingEasy {
			out.State = models.StateReview
			out.IntervalDays = p.nextIntervalDays(out.Stability)
		} else {
			out.State = models.StateLearning
			out.IntervalDays = 0
		}

	case models.StateLearning, models.StateRelearning:
		if elapsedDays < 1 {
			out.Stability = p.shortTermStability(m.Stability, rating)
		} else {
			r := p.retrievability(elapsedDays, m.Stability)
			out.Stability = p.nextStability(m.Difficulty, m.Stability, r, rating)
		}
		out.Difficulty = p.nextDifficulty(m.Difficulty, rating)
		if rating == models.RatingGood || rating == models.RatingEasy {
			// Graduate.
			out.State = models.StateReview
			out.IntervalDays = p.nextIntervalDays(out.Stability)
		} else {
			out.IntervalDays = 0
		}

	case models.StateReview:
		r := p.retrievability(elapsedDays, m.Stability)
		out.Stability = p.nextStability(m.Difficulty, m.Stability, r, rating)
		out.Difficulty = p.nextDifficulty(m.Difficulty, rating)
		if rating == models.RatingAgain {
			out.State = models.StateRelearning
			out.Lapses++
			out.IntervalDays = 0
		} else {
			out.IntervalDays = p.nextIntervalDays(out.Stability)
		}
	}

	return out
}

// retrievability computes the model's own recall curve R(t, S).
func (p Params) retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 || elapsedDays <= 0 {
		return 1.0
	}
	return math.Pow(1+ivlFactor*elapsedDays/stability, decay)
}

// nextIntervalDays inverts the curve for the desired retention:
// I = (S / FACTOR) * (r^(1/DECAY) - 1), clamped to [1, max].
func (p Params) nextIntervalDays(stability float64) int {
	ivl := stability / ivlFactor * (math.Pow(p.DesiredRetention, 1/decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > p.MaxIntervalDays {
		days = p.MaxIntervalDays
	}
	return days
}

// initStability returns S0(G) = w[G-1].
func (p Params) initStability(r models.Rating) float64 {
	return clampStability(p.W[r-1])
}

// initDifficulty returns D0(G) = w[4] - e^(w[5]*(G-1)) + 1, clamped.
func (p Params) initDifficulty(r models.Rating) float64 {
	return clampDifficulty(p.rawInitDifficulty(r))
}

func (p Params) rawInitDifficulty(r models.Rating) float64 {
	return p.W[4] - math.Exp(p.W[5]*float64(r-1)) + 1
}

// nextDifficulty applies linear damping then mean reversion toward D0(Easy).
func (p Params) nextDifficulty(d float64, r models.Rating) float64 {
	deltaD := -p.W[6] * (float64(r) - 3)
	damped := d + (10-d)*deltaD/9
	reverted := p.W[7]*p.rawInitDifficulty(models.RatingEasy) + (1-p.W[7])*damped
	return clampDifficulty(reverted)
}

func (p Params) nextStability(d, s, r float64, rating models.Rating) float64 {
	if rating == models.RatingAgain {
		return p.forgetStability(d, s, r)
	}
	return p.recallStability(d, s, r, rating)
}

// recallStability: S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) *
// (e^((1-R)*w[10]) - 1) * hardPenalty * easyBonus).
func (p Params) recallStability(d, s, r float64, rating models.Rating) float64 {
	hardPenalty := 1.0
	if rating == models.RatingHard {
		hardPenalty = p.W[15]
	}
	easyBonus := 1.0
	if rating == models.RatingEasy {
		easyBonus = p.W[16]
	}
	return clampStability(s * (1 + math.Exp(p.W[8])*
		(11-d)*
		math.Pow(s, -p.W[9])*
		(math.Exp((1-r)*p.W[10])-1)*
		hardPenalty*easyBonus))
}

// forgetStability: min of the long-term forget formula and the short-term
// bound S / e^(w[17]*w[18]).
func (p Params) forgetStability(d, s, r float64) float64 {
	long := p.W[11] *
		math.Pow(d, -p.W[12]) *
		(math.Pow(s+1, p.W[13]) - 1) *
		math.Exp((1-r)*p.W[14])
	short := s / math.Exp(p.W[17]*p.W[18])
	return clampStability(math.Min(long, short))
}

// shortTermStability handles same-day reviews:
// S' = S * e^(w[17] * (G - 3 + w[18])), never shrinking on Good/Easy.
func (p Params) shortTermStability(s float64, rating models.Rating) float64 {
	sInc := math.Exp(p.W[17] * (float64(rating) - 3 + p.W[18]))
	if rating == models.RatingGood || rating == models.RatingEasy {
		sInc = math.Max(sInc, 1.0)
	}
	return clampStability(s * sInc)
}

func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
