package bot

import "time"

// Tuning holds the knobs difficulty interpolates between. Fields ending in
// Easy apply at difficulty 0, fields ending in Hard at difficulty 1.
type Tuning struct {
	MinReach         float64
	MaxReachDistance float64
	// ReachBias is the share of the remaining miss chance a difficulty of 1 removes.
	ReachBias float64

	InsetEasy float64
	InsetHard float64

	WindupEasy time.Duration
	WindupHard time.Duration

	// PaceBoost is added to the flight pace multiplier at difficulty 1.
	PaceBoost float64

	MoveSpeedEasy float64 // units per second
	MoveSpeedHard float64
}

// DefaultTuning keeps the reference reach curve and scales everything else mildly.
var DefaultTuning = Tuning{
	MinReach:         0.3,
	MaxReachDistance: 400,
	ReachBias:        0.6,

	InsetEasy: 48,
	InsetHard: 16,

	WindupEasy: 300 * time.Millisecond,
	WindupHard: 80 * time.Millisecond,

	PaceBoost: 0.4,

	MoveSpeedEasy: 160,
	MoveSpeedHard: 320,
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
