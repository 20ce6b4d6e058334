package domain

import (
	"errors"
	"fmt"
	"time"
)

// ShotKind tags a ShotOutcome.
type ShotKind int

const (
	ShotReturn ShotKind = iota
	ShotWideLeft
	ShotWideRight
	ShotNetFault
	ShotOutFault
	// ShotMissed means the timing window closed without a tap.
	ShotMissed
	// ShotUnreached means the opponent could not get to the ball.
	ShotUnreached
)

func (k ShotKind) String() string {
	switch k {
	case ShotReturn:
		return "return"
	case ShotWideLeft:
		return "wide_left"
	case ShotWideRight:
		return "wide_right"
	case ShotNetFault:
		return "net_fault"
	case ShotOutFault:
		return "out_fault"
	case ShotMissed:
		return "missed"
	case ShotUnreached:
		return "unreached"
	default:
		return "unknown"
	}
}

// ShotOutcome is the decision for one shot attempt.
type ShotOutcome struct {
	Kind ShotKind
	// Hitter is the side that played, or failed to play, the shot.
	Hitter Side
	// Target is where the ball is sent. Unused when the ball is never struck.
	Target Vec2
}

// Struck reports whether the ball leaves the racket and needs a flight.
func (o ShotOutcome) Struck() bool {
	return o.Kind != ShotMissed && o.Kind != ShotUnreached
}

// IsFault reports whether the outcome loses the point without the ball landing in.
// Wide and out shots are struck and only become faults when they land.
func (o ShotOutcome) IsFault() bool {
	return o.Kind == ShotMissed || o.Kind == ShotUnreached
}

// WindowState is the lifecycle of a TimingWindow.
type WindowState int

const (
	WindowUnopened WindowState = iota
	WindowOpen
	WindowConsumed
	WindowExpired
)

func (s WindowState) String() string {
	switch s {
	case WindowUnopened:
		return "unopened"
	case WindowOpen:
		return "open"
	case WindowConsumed:
		return "consumed"
	case WindowExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// TimingWindow is one opportunity for the player to strike the ball.
// Timestamps are offsets on the match clock.
type TimingWindow struct {
	ID        uint64
	ArrivedAt time.Duration
	OpenAt    time.Duration
	CloseAt   time.Duration

	state WindowState
}

// NewTimingWindow creates an unopened window.
func NewTimingWindow(id uint64, arrivedAt, openAt, closeAt time.Duration) *TimingWindow {
	return &TimingWindow{ID: id, ArrivedAt: arrivedAt, OpenAt: openAt, CloseAt: closeAt}
}

// State returns the window's lifecycle state.
func (w *TimingWindow) State() WindowState { return w.state }

// Live reports whether the window can still produce an outcome.
func (w *TimingWindow) Live() bool {
	return w.state == WindowUnopened || w.state == WindowOpen
}

// Open marks the window interactive. It is a no-op once the window has resolved.
func (w *TimingWindow) Open() {
	if w.state == WindowUnopened {
		w.state = WindowOpen
	}
}

// TapResult classifies a tap that the window accepted.
type TapResult struct {
	// OnTime is false when the tap arrived after CloseAt and expired the window.
	OnTime bool
	// Fraction locates the tap inside the window: 0 at OpenAt, 1 at CloseAt.
	Fraction float64
}

// Tap applies a tap at instant at. Taps before OpenAt and taps on a resolved
// window are ignored. A tap after CloseAt is the first stimulus to observe the
// expiry, so it resolves the window as expired.
func (w *TimingWindow) Tap(at time.Duration) (TapResult, bool) {
	if !w.Live() || at < w.OpenAt {
		return TapResult{}, false
	}
	if at > w.CloseAt {
		w.state = WindowExpired
		return TapResult{OnTime: false, Fraction: 1}, true
	}
	w.state = WindowConsumed
	frac := 1.0
	if span := w.CloseAt - w.OpenAt; span > 0 {
		frac = float64(at-w.OpenAt) / float64(span)
	}
	return TapResult{OnTime: true, Fraction: frac}, true
}

// Expire resolves a still-live window whose close time has passed. It returns
// true at most once per window.
func (w *TimingWindow) Expire(now time.Duration) bool {
	if !w.Live() || now < w.CloseAt {
		return false
	}
	w.state = WindowExpired
	return true
}

var ErrInvalidBands = errors.New("invalid timing bands")

// TimingBands is an optional refinement of the binary hit/miss gate. Each field
// is a fraction of the window measured from its nearest edge. Taps inside
// Extreme are net or out faults, taps inside Edge are wide shots, anything
// else is a clean return.
type TimingBands struct {
	Extreme float64
	Edge    float64
}

// Validate requires 0 <= Extreme <= Edge < 0.5 so a clean band always remains.
func (b TimingBands) Validate() error {
	if b.Extreme < 0 || b.Edge < b.Extreme || b.Edge >= 0.5 {
		return fmt.Errorf("%w: extreme=%.3f edge=%.3f", ErrInvalidBands, b.Extreme, b.Edge)
	}
	return nil
}

// Classify maps a window fraction to a shot kind.
func (b TimingBands) Classify(fraction float64) ShotKind {
	switch {
	case fraction < b.Extreme:
		return ShotNetFault
	case fraction < b.Edge:
		return ShotWideLeft
	case fraction > 1-b.Extreme:
		return ShotOutFault
	case fraction > 1-b.Edge:
		return ShotWideRight
	default:
		return ShotReturn
	}
}

// wideMargin is how far past the sideline a wide shot lands.
const wideMargin = 30

// ShotResolver turns player taps into shot outcomes.
type ShotResolver struct {
	Court Court
	// Inset pulls returns in from the lines so clean hits never land out.
	Inset float64
	// Bands enables early/late banding; nil keeps the binary timing gate.
	Bands *TimingBands

	rng Rand
}

// NewShotResolver builds a resolver drawing targets from rng.
func NewShotResolver(court Court, inset float64, bands *TimingBands, rng Rand) *ShotResolver {
	return &ShotResolver{Court: court, Inset: inset, Bands: bands, rng: rng}
}

// ResolveTap consumes window with a tap at instant at. It returns false when the
// tap had no effect (too early or window already resolved).
func (r *ShotResolver) ResolveTap(at time.Duration, w *TimingWindow, rally RallyContext) (ShotOutcome, bool) {
	hitter := rally.Receiver()
	res, ok := w.Tap(at)
	if !ok {
		return ShotOutcome{}, false
	}
	if !res.OnTime {
		return ShotOutcome{Kind: ShotMissed, Hitter: hitter}, true
	}

	kind := ShotReturn
	if r.Bands != nil {
		kind = r.Bands.Classify(res.Fraction)
	}
	return ShotOutcome{Kind: kind, Hitter: hitter, Target: r.target(kind, hitter, rally)}, true
}

// ResolveExpiry produces the miss for a window whose close time has passed.
func (r *ShotResolver) ResolveExpiry(now time.Duration, w *TimingWindow, rally RallyContext) (ShotOutcome, bool) {
	if !w.Expire(now) {
		return ShotOutcome{}, false
	}
	return ShotOutcome{Kind: ShotMissed, Hitter: rally.Receiver()}, true
}

func (r *ShotResolver) target(kind ShotKind, hitter Side, rally RallyContext) Vec2 {
	defender := hitter.Other()
	area := r.Court.TargetRect(defender, r.Inset)
	switch kind {
	case ShotWideLeft:
		p := area.RandomPoint(r.rng)
		p.X = r.Court.Left - wideMargin
		return p
	case ShotWideRight:
		p := area.RandomPoint(r.rng)
		p.X = r.Court.Right + wideMargin
		return p
	case ShotNetFault:
		// Dies on the hitter's side of the net.
		p := area.RandomPoint(r.rng)
		if hitter == SidePlayer {
			p.Y = r.Court.NetY + wideMargin/3
		} else {
			p.Y = r.Court.NetY - wideMargin/3
		}
		return p
	case ShotOutFault:
		p := area.RandomPoint(r.rng)
		if defender == SideOpponent {
			p.Y = r.Court.Top - wideMargin
		} else {
			p.Y = r.Court.Bottom + wideMargin
		}
		return p
	default:
		return WeakZone(area, rally.PositionOf(defender)).RandomPoint(r.rng)
	}
}

// WeakZone returns the half of area farther from the defender's x position.
func WeakZone(area Rect, defender Vec2) Rect {
	mid := (area.MinX + area.MaxX) / 2
	if defender.X >= mid {
		area.MaxX = mid
	} else {
		area.MinX = mid
	}
	return area
}
