package domain

import "math"

// Facing is one of eight render directions, clockwise from north (screen up).
type Facing int

const (
	FacingNorth Facing = iota
	FacingNorthEast
	FacingEast
	FacingSouthEast
	FacingSouth
	FacingSouthWest
	FacingWest
	FacingNorthWest
)

var facingNames = [...]string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}

func (f Facing) String() string {
	if f < 0 || int(f) >= len(facingNames) {
		return "?"
	}
	return facingNames[f]
}

// FacingToward picks the octant pointing from one position to another.
// A zero-length vector keeps fallback.
func FacingToward(from, to Vec2, fallback Facing) Facing {
	d := to.Sub(from)
	if d.Len() < 1e-9 {
		return fallback
	}
	// atan2 with -Y so that angle 0 is east and angles grow counter-clockwise on screen.
	angle := math.Atan2(-d.Y, d.X)
	octant := int(math.Round(angle/(math.Pi/4))+8) % 8
	// octant 0 = east, 2 = north, 4 = west, 6 = south.
	return [...]Facing{
		FacingEast, FacingNorthEast, FacingNorth, FacingNorthWest,
		FacingWest, FacingSouthWest, FacingSouth, FacingSouthEast,
	}[octant]
}
