package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/domain"
)

var ErrMatchStalled = errors.New("match did not finish")

const (
	DefaultStep          = 10 * time.Millisecond
	DefaultMaxMatchClock = 4 * time.Hour
)

// Autoplayer stands in for the human: it serves immediately and taps inside
// each timing window with probability Accuracy.
type Autoplayer struct {
	accuracy float64
	step     time.Duration
	maxClock time.Duration
	rng      *rand.Rand

	windowID uint64
	tapAt    time.Duration
	swing    bool
}

// NewAutoplayer clamps accuracy to [0, 1]. A nil rng is time seeded.
func NewAutoplayer(accuracy float64, rng *rand.Rand) *Autoplayer {
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 1 {
		accuracy = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Autoplayer{accuracy: accuracy, step: DefaultStep, maxClock: DefaultMaxMatchClock, rng: rng}
}

// Result is the outcome of one simulated match.
type Result struct {
	MatchID      string
	Seed         int64
	Winner       domain.Side
	PlayerSets   int
	OpponentSets int
	Sets         []domain.SetScore
	PointsPlayed int
	LongestRally int
	Shots        int
	Clock        time.Duration // match clock at the end
}

// Play drives m to completion on a fixed step.
func (a *Autoplayer) Play(ctx context.Context, m *app.Match) (Result, error) {
	for m.Phase() != app.PhaseMatchOver {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if m.Now() > a.maxClock {
			return Result{}, fmt.Errorf("%w: %s after %v, score %s", ErrMatchStalled, m.ID(), m.Now(), m.CallScore())
		}
		if ev, ok := a.nextTap(m); ok {
			m.Tap(ev)
		}
		m.Tick(a.step)
	}

	res, _ := m.Result()
	stats := m.Stats()
	return Result{
		MatchID:      res.MatchID,
		Winner:       res.Winner,
		PlayerSets:   res.PlayerSets,
		OpponentSets: res.OpponentSets,
		Sets:         res.Sets,
		PointsPlayed: res.PointsPlayed,
		LongestRally: res.LongestRally,
		Shots:        stats.Shots,
		Clock:        m.Now(),
	}, nil
}

func (a *Autoplayer) nextTap(m *app.Match) (app.TapEvent, bool) {
	if m.Phase() == app.PhaseServing && m.Server() == domain.SidePlayer {
		court := m.Settings().Court
		return app.TapEvent{At: m.Now(), X: court.Left + a.rng.Float64()*(court.Right-court.Left)}, true
	}

	w, ok := m.Window()
	if !ok || !w.Live() {
		return app.TapEvent{}, false
	}
	if w.ID != a.windowID {
		a.plan(w)
	}
	if a.swing && m.Now() >= a.tapAt {
		a.swing = false
		return app.TapEvent{At: a.tapAt}, true
	}
	return app.TapEvent{}, false
}

// plan decides once per window whether and when to swing. The tap lands at
// least one step before the close so the expiry timer cannot win the race.
func (a *Autoplayer) plan(w domain.TimingWindow) {
	a.windowID = w.ID
	a.swing = a.rng.Float64() < a.accuracy
	last := w.CloseAt - a.step
	if last < w.OpenAt {
		last = w.OpenAt
	}
	a.tapAt = w.OpenAt + time.Duration(a.rng.Float64()*float64(last-w.OpenAt))
}
