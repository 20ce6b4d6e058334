package app

import (
	"time"

	"github.com/Buster-Games/buster-games/internal/domain"
)

// ballScaleBoost enlarges the ball sprite at the top of its arc.
const ballScaleBoost = 0.5

type BallFrame struct {
	Position    domain.Vec2 // rendered position, height applied
	Shadow      domain.Vec2 // ground projection
	Elevation   float64     // 0 on the ground, 1 at the peak
	ShadowScale float64
	Scale       float64
	InFlight    bool
}

type CharacterFrame struct {
	Position domain.Vec2
	Target   domain.Vec2
	Facing   domain.Facing
	Swinging bool
}

type WindowFrame struct {
	ID      uint64
	OpenAt  time.Duration
	CloseAt time.Duration
	Open    bool
}

// FrameState is everything a renderer needs for the current instant.
type FrameState struct {
	Now      time.Duration
	Phase    Phase
	Stage    RallyStage
	Server   domain.Side
	Ball     BallFrame
	Player   CharacterFrame
	Opponent CharacterFrame
	Window   *WindowFrame
}

// Frame samples the match at the current clock.
func (m *Match) Frame() FrameState {
	f := FrameState{
		Now:      m.sched.Now(),
		Phase:    m.phase,
		Stage:    m.stage,
		Server:   m.server,
		Ball:     m.ballFrame(),
		Player:   m.player.frame(),
		Opponent: m.opponent.frame(),
	}
	if w := m.window; w != nil {
		f.Window = &WindowFrame{ID: w.ID, OpenAt: w.OpenAt, CloseAt: w.CloseAt, Open: w.State() == domain.WindowOpen}
	}
	return f
}

func (m *Match) ballFrame() BallFrame {
	if m.flight == nil {
		return BallFrame{Position: m.rally.Ball, Shadow: m.rally.Ball, ShadowScale: 1, Scale: 1}
	}
	t := m.flight.Progress(m.sched.Now() - m.flightStart)
	elev := m.flight.Elevation(t)
	return BallFrame{
		Position:    m.flight.PositionAt(t),
		Shadow:      m.flight.GroundAt(t),
		Elevation:   elev,
		ShadowScale: m.flight.ShadowScale(t),
		Scale:       1 + ballScaleBoost*elev,
		InFlight:    true,
	}
}

func (c character) frame() CharacterFrame {
	return CharacterFrame{Position: c.pos, Target: c.target, Facing: c.facing, Swinging: c.swinging}
}
