package app

import "time"

// Timing defaults for the casual variant. Window delays are measured from the
// moment the ball lands on the player's half.
const (
	DefaultServeDelay       = time.Second
	DefaultWindowOpenDelay  = 200 * time.Millisecond
	DefaultWindowCloseDelay = 800 * time.Millisecond
	DefaultPointPause       = 1500 * time.Millisecond
	DefaultSwingDuration    = 300 * time.Millisecond

	DefaultPlayerSpeed = 260.0 // units per second
	DefaultTargetInset = 20.0
	DefaultHomeInset   = 24.0
)
