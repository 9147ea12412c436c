// Package fsrs implements the fixed-weight adaptive memory model behind
// long-term scheduling. The 19-value weight table is a versioned constant;
// it is supplied to the engine, never learned by it.
package fsrs

import "fmt"

// DefaultWeights is the FSRS-5 default parameter table.
// The values are reproduced verbatim; do not re-derive them.
var DefaultWeights = [19]float64{
	0.40255, 1.18385, 3.173, 15.69105, // w[0..3]  initial stability per rating
	7.1949, 0.5345, 1.4604, 0.0046, // w[4..7]  difficulty
	1.54575, 0.1192, 1.01925, // w[8..10] recall stability
	1.9395, 0.11, 0.29605, 2.2698, // w[11..14] forget stability
	0.2315, 2.9898, // w[15..16] hard penalty, easy bonus
	0.51655, 0.6621, // w[17..18] short-term (same-day) stability
}

// Model-internal decay curve constants (distinct from the coarser engine
// curve in the retention package).
const (
	decay     = -0.5
	ivlFactor = 19.0 / 81.0
)

// Params configures the memory model. Construct one and pass it into every
// long-term scheduling call; there is no package-level instance.
type Params struct {
	W                [19]float64
	DesiredRetention float64
	MaxIntervalDays  int
}

// DefaultParams returns the standard configuration: default weights,
// 90% desired retention, 10-year interval cap.
func DefaultParams() Params {
	return Params{
		W:                DefaultWeights,
		DesiredRetention: 0.9,
		MaxIntervalDays:  3650,
	}
}

// Validate checks the tunable fields. The weight table itself is trusted.
func (p Params) Validate() error {
	if p.DesiredRetention <= 0 || p.DesiredRetention >= 1 {
		return fmt.Errorf("desired retention %.3f out of range (0, 1)", p.DesiredRetention)
	}
	if p.MaxIntervalDays < 1 {
		return fmt.Errorf("max interval %d must be at least 1 day", p.MaxIntervalDays)
	}
	return nil
}
