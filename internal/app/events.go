package app

import (
	"time"

	"github.com/Buster-Games/buster-games/internal/domain"
)

// EventKind identifies emitted match events for dispatch.
type EventKind string

const (
	EventServeStarted EventKind = "serve_started"
	EventShotStruck   EventKind = "shot_struck"
	EventBallLanded   EventKind = "ball_landed"
	EventWindowOpened EventKind = "window_opened"
	EventWindowClosed EventKind = "window_closed"
	EventFault        EventKind = "fault"
	EventPointWon     EventKind = "point_won"
	EventGameWon      EventKind = "game_won"
	EventSetWon       EventKind = "set_won"
	EventMatchWon     EventKind = "match_won"
)

// Event is a match event with its typed payload.
type Event struct {
	Kind    EventKind
	Payload any
	At      time.Duration // match clock
}

// ServeStartedPayload announces a new point waiting on Server.
type ServeStartedPayload struct {
	Server     domain.Side
	ServiceBox domain.Rect
}

type ShotStruckPayload struct {
	Hitter     domain.Side
	Kind       domain.ShotKind
	From       domain.Vec2
	Target     domain.Vec2
	Duration   time.Duration
	PeakHeight float64
	ShotNumber int
}

type BallLandedPayload struct {
	Position domain.Vec2
	Hitter   domain.Side
	InBounds bool
	Fault    bool
}

type WindowOpenedPayload struct {
	WindowID uint64
	OpenAt   time.Duration
	CloseAt  time.Duration
}

type WindowClosedPayload struct {
	WindowID uint64
	Hit      bool
	Kind     domain.ShotKind
}

// FaultPayload names the side charged with losing the point and why.
type FaultPayload struct {
	Side domain.Side
	Kind domain.ShotKind
}

// ScorePayload accompanies every tier event.
type ScorePayload struct {
	Winner domain.Side
	Tier   domain.Tier
	Score  domain.Snapshot
	Call   string
}

func tierEventKind(t domain.Tier) EventKind {
	switch t {
	case domain.TierGame:
		return EventGameWon
	case domain.TierSet:
		return EventSetWon
	case domain.TierMatch:
		return EventMatchWon
	default:
		return EventPointWon
	}
}
