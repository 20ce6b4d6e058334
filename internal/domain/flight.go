package domain

import (
	"math"
	"time"
)

// FlightParams tunes the ball flight model.
type FlightParams struct {
	MsPerUnit   float64       // flight time per unit of ground distance
	MinDuration time.Duration // clamp floor
	MaxDuration time.Duration // clamp ceiling
	ArcFactor   float64       // peak height per unit of ground distance
	MaxArc      float64       // peak height ceiling
	Pace        float64       // speed multiplier applied before clamping; <= 0 means 1
}

// DefaultFlightParams matches the casual game's feel.
var DefaultFlightParams = FlightParams{
	MsPerUnit:   1.5,
	MinDuration: 500 * time.Millisecond,
	MaxDuration: 1200 * time.Millisecond,
	ArcFactor:   0.3,
	MaxArc:      150,
	Pace:        1,
}

const minShadowScale = 0.5

// FlightPlan is a fully determined trajectory from Start to End.
type FlightPlan struct {
	Start      Vec2
	End        Vec2
	Duration   time.Duration
	PeakHeight float64
}

// ComputeFlight derives duration and arc from the straight-line distance between start and end.
// Identical inputs always yield identical plans.
func ComputeFlight(start, end Vec2, params FlightParams) FlightPlan {
	dist := start.Dist(end)

	pace := params.Pace
	if pace <= 0 {
		pace = 1
	}
	ms := dist * params.MsPerUnit / pace
	durMs := clamp(ms, float64(params.MinDuration.Milliseconds()), float64(params.MaxDuration.Milliseconds()))

	return FlightPlan{
		Start:      start,
		End:        end,
		Duration:   time.Duration(durMs * float64(time.Millisecond)),
		PeakHeight: math.Min(params.MaxArc, dist*params.ArcFactor),
	}
}

// Progress converts elapsed flight time into normalized progress in [0,1].
func (f FlightPlan) Progress(elapsed time.Duration) float64 {
	if f.Duration <= 0 {
		return 1
	}
	return clamp(float64(elapsed)/float64(f.Duration), 0, 1)
}

// GroundAt is the shadow position: the ground projection with no height offset.
func (f FlightPlan) GroundAt(t float64) Vec2 {
	return f.Start.Lerp(f.End, clamp(t, 0, 1))
}

// HeightAt is the ball's altitude above the ground, peaking at t=0.5.
func (f FlightPlan) HeightAt(t float64) float64 {
	t = clamp(t, 0, 1)
	return f.PeakHeight * 4 * t * (1 - t)
}

// PositionAt is the rendered ball position. Screen-space up is negative y,
// so the height is subtracted from the ground y.
func (f FlightPlan) PositionAt(t float64) Vec2 {
	g := f.GroundAt(t)
	g.Y -= f.HeightAt(t)
	return g
}

// Elevation is the height normalized to the plan's peak, in [0,1].
func (f FlightPlan) Elevation(t float64) float64 {
	if f.PeakHeight <= 0 {
		return 0
	}
	return f.HeightAt(t) / f.PeakHeight
}

// ShadowScale shrinks the shadow from 1 on the ground to minShadowScale at the peak.
func (f FlightPlan) ShadowScale(t float64) float64 {
	return 1 - (1-minShadowScale)*f.Elevation(t)
}
