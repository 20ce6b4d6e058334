package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidCourt = errors.New("invalid court geometry")

// Court is the playable area in screen space. The player defends the half below
// the net line (larger y), the opponent the half above it.
type Court struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	NetY   float64
}

// DefaultCourt fits a 360x640 portrait viewport.
var DefaultCourt = Court{Left: 40, Right: 320, Top: 80, Bottom: 580, NetY: 330}

// Validate checks that the bounds are ordered and the net lies strictly inside them.
func (c Court) Validate() error {
	if c.Left >= c.Right {
		return fmt.Errorf("%w: left %.1f must be less than right %.1f", ErrInvalidCourt, c.Left, c.Right)
	}
	if c.Top >= c.NetY || c.NetY >= c.Bottom {
		return fmt.Errorf("%w: net %.1f must lie between top %.1f and bottom %.1f", ErrInvalidCourt, c.NetY, c.Top, c.Bottom)
	}
	return nil
}

// Bounds returns the full court rectangle.
func (c Court) Bounds() Rect {
	return Rect{MinX: c.Left, MinY: c.Top, MaxX: c.Right, MaxY: c.Bottom}
}

// InBounds reports whether p is inside the court lines, regardless of side.
func (c Court) InBounds(p Vec2) bool {
	return c.Bounds().Contains(p)
}

// SideOf returns the half containing p. Points on the net line belong to neither side.
func (c Court) SideOf(p Vec2) Side {
	switch {
	case p.Y > c.NetY:
		return SidePlayer
	case p.Y < c.NetY:
		return SideOpponent
	default:
		return SideNone
	}
}

// Half returns the rectangle defended by side.
func (c Court) Half(side Side) Rect {
	if side == SideOpponent {
		return Rect{MinX: c.Left, MinY: c.Top, MaxX: c.Right, MaxY: c.NetY}
	}
	return Rect{MinX: c.Left, MinY: c.NetY, MaxX: c.Right, MaxY: c.Bottom}
}

// TargetRect is the legal landing area on side's half, pulled in from the lines by inset.
func (c Court) TargetRect(side Side, inset float64) Rect {
	return c.Half(side).Inset(inset)
}

// ServiceBox is the part of receiver's half nearer the net, inset from the lines.
func (c Court) ServiceBox(receiver Side, inset float64) Rect {
	half := c.Half(receiver)
	mid := (half.MinY + half.MaxY) / 2
	if receiver == SideOpponent {
		half.MinY = mid
	} else {
		half.MaxY = mid
	}
	return half.Inset(inset)
}

// Home is the baseline centre a side returns to between shots.
func (c Court) Home(side Side, inset float64) Vec2 {
	x := (c.Left + c.Right) / 2
	if side == SideOpponent {
		return Vec2{X: x, Y: c.Top + inset}
	}
	return Vec2{X: x, Y: c.Bottom - inset}
}

// RallyContext is the per-point view of who hit last and where everything is.
type RallyContext struct {
	Court       Court
	Server      Side
	ShotCount   int // shots struck so far, the serve included
	Ball        Vec2
	Target      Vec2
	PlayerPos   Vec2
	OpponentPos Vec2
}

// LastHitter derives the side that struck the ball most recently from the
// alternation rule: odd shot counts belong to the server.
func (r RallyContext) LastHitter() Side {
	if r.ShotCount <= 0 {
		return SideNone
	}
	if r.ShotCount%2 == 1 {
		return r.Server
	}
	return r.Server.Other()
}

// Receiver is the side expected to play the next shot.
func (r RallyContext) Receiver() Side {
	if r.ShotCount <= 0 {
		return r.Server
	}
	return r.LastHitter().Other()
}

// PositionOf returns the current position of side.
func (r RallyContext) PositionOf(side Side) Vec2 {
	if side == SideOpponent {
		return r.OpponentPos
	}
	return r.PlayerPos
}

// LandingFault reports whether a ball struck by the last hitter and landing at p
// loses the point for that hitter: outside the lines, or short of the net.
func (r RallyContext) LandingFault(p Vec2) bool {
	hitter := r.LastHitter()
	if !r.Court.InBounds(p) {
		return true
	}
	return r.Court.SideOf(p) != hitter.Other()
}

// PointWinner returns who wins a point ended by outcome during this rally.
// Faults and misses are charged to the side that produced them.
func (r RallyContext) PointWinner(outcome ShotOutcome) Side {
	if !outcome.Hitter.Valid() {
		return SideNone
	}
	return outcome.Hitter.Other()
}
