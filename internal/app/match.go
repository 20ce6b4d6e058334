package app

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Buster-Games/buster-games/internal/bot"
	"github.com/Buster-Games/buster-games/internal/domain"
)

// Phase is the top-level match state.
type Phase string

const (
	PhaseServing      Phase = "serving"
	PhaseRallying     Phase = "rallying"
	PhasePointSettled Phase = "point_settled"
	PhaseMatchOver    Phase = "match_over"
)

// RallyStage splits rallying into ball-in-flight and waiting-for-a-shot.
type RallyStage string

const (
	StageIdle        RallyStage = ""
	StageInFlight    RallyStage = "in_flight"
	StageAwaitingHit RallyStage = "awaiting_hit"
)

// TapEvent is a raw player tap. At is on the match clock and is clamped to the
// current time; X and Y are screen coordinates, only used to aim the serve.
type TapEvent struct {
	At time.Duration
	X  float64
	Y  float64
}

// Opponent decides the AI side's shots. *bot.Policy is the production implementation.
type Opponent interface {
	Serve(court domain.Court) domain.ShotOutcome
	DecideReturn(landing, position domain.Vec2, court domain.Court) (domain.ShotOutcome, bool)
	Windup() time.Duration
	Pace() float64
	MoveSpeed() float64
}

// Stats counts what happened over the match so far.
type Stats struct {
	PointsPlayed   int
	Shots          int
	LongestRally   int
	PlayerFaults   int
	OpponentFaults int
}

type Option func(*Match)

// WithOpponent replaces the difficulty-driven bot policy.
func WithOpponent(o Opponent) Option {
	return func(m *Match) { m.opponentAI = o }
}

// WithID fixes the match ID instead of generating one.
func WithID(id string) Option {
	return func(m *Match) { m.id = id }
}

type character struct {
	pos      domain.Vec2
	target   domain.Vec2
	facing   domain.Facing
	swinging bool
	swing    Handle
}

// Match drives one tennis match: serve, rally, point settlement and scoring.
// It only advances through Tap and Tick and is not safe for concurrent use.
type Match struct {
	id         string
	settings   Settings
	score      *domain.MatchState
	resolver   *domain.ShotResolver
	opponentAI Opponent
	sched      *Scheduler
	rng        *rand.Rand

	phase  Phase
	stage  RallyStage
	server domain.Side
	rally  domain.RallyContext
	shot   domain.ShotOutcome

	flight      *domain.FlightPlan
	flightStart time.Duration
	window      *domain.TimingWindow
	windowSeq   uint64
	pointTimers []Handle

	player   character
	opponent character
	stats    Stats

	out []Event
}

// NewMatch validates settings and puts the match in serving. The serve_started
// event for the first point is returned by the first Tap, Tick or Reset call.
func NewMatch(settings Settings, rng *rand.Rand, opts ...Option) (*Match, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	score, err := domain.NewMatchState(settings.Format)
	if err != nil {
		return nil, err
	}
	m := &Match{
		settings: settings,
		score:    score,
		resolver: domain.NewShotResolver(settings.Court, settings.TargetInset, settings.Bands, rng),
		sched:    NewScheduler(),
		rng:      rng,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.opponentAI == nil {
		policy, err := bot.NewPolicyWithDifficulty(settings.Difficulty, rng)
		if err != nil {
			return nil, err
		}
		m.opponentAI = policy
	}
	if m.id == "" {
		m.id = uuid.NewString()
	}
	m.start()
	return m, nil
}

func (m *Match) ID() string { return m.id }
func (m *Match) Settings() Settings { return m.settings }
func (m *Match) Phase() Phase { return m.phase }
func (m *Match) Stage() RallyStage { return m.stage }
func (m *Match) Server() domain.Side { return m.server }
func (m *Match) Rally() domain.RallyContext { return m.rally }
func (m *Match) Score() domain.Snapshot { return m.score.Snapshot() }
func (m *Match) CallScore() string { return m.score.CallScore() }
func (m *Match) Now() time.Duration { return m.sched.Now() }
func (m *Match) Stats() Stats { return m.stats }
func (m *Match) PendingTimers() int { return m.sched.Pending() }
func (m *Match) Window() (domain.TimingWindow, bool) {
	if m.window == nil {
		return domain.TimingWindow{}, false
	}
	return *m.window, true
}

// Tap applies a player tap. Taps that do not fit the current state are ignored.
func (m *Match) Tap(ev TapEvent) []Event {
	if now := m.sched.Now(); ev.At > now {
		ev.At = now
	}
	switch m.phase {
	case PhaseServing:
		if m.server == domain.SidePlayer {
			m.playerServe(ev)
		}
	case PhaseRallying:
		if m.stage == StageAwaitingHit && m.window != nil {
			if outcome, ok := m.resolver.ResolveTap(ev.At, m.window, m.rally); ok {
				m.resolveWindow(outcome)
			}
		}
	}
	return m.drain()
}

// Tick advances movement and the match clock by dt.
func (m *Match) Tick(dt time.Duration) []Event {
	if dt < 0 {
		dt = 0
	}
	m.move(dt)
	m.sched.Advance(dt)
	return m.drain()
}

// Reset cancels every pending timer and flight and starts a fresh match.
func (m *Match) Reset() []Event {
	m.sched.CancelAll()
	m.pointTimers = nil
	m.score.Reset()
	m.stats = Stats{}
	m.out = nil
	m.windowSeq = 0
	m.start()
	return m.drain()
}

// Result returns the final result once the match is over.
func (m *Match) Result() (MatchResult, bool) {
	if m.phase != PhaseMatchOver {
		return MatchResult{}, false
	}
	snap := m.score.Snapshot()
	return MatchResult{
		MatchID:      m.id,
		Winner:       snap.Winner,
		PlayerSets:   snap.PlayerSets,
		OpponentSets: snap.OpponentSets,
		Sets:         snap.Completed,
		PointsPlayed: m.stats.PointsPlayed,
		LongestRally: m.stats.LongestRally,
		Difficulty:   m.settings.Difficulty,
	}, true
}

func (m *Match) start() {
	m.server = m.settings.FirstServer
	if m.server == domain.SideNone {
		m.server = domain.SidePlayer
	}
	m.player = character{facing: domain.FacingNorth}
	m.opponent = character{facing: domain.FacingSouth}
	m.enterServing()
}

func (m *Match) emit(kind EventKind, payload any) {
	m.out = append(m.out, Event{Kind: kind, Payload: payload, At: m.sched.Now()})
}

func (m *Match) drain() []Event {
	out := m.out
	m.out = nil
	return out
}

func (m *Match) after(d time.Duration, fn func()) {
	m.pointTimers = append(m.pointTimers, m.sched.After(d, fn))
}

func (m *Match) cancelPointTimers() {
	for _, h := range m.pointTimers {
		m.sched.Cancel(h)
	}
	m.pointTimers = nil
}

func (m *Match) enterServing() {
	court := m.settings.Court
	m.phase = PhaseServing
	m.stage = StageIdle
	m.flight = nil
	m.window = nil
	m.pointTimers = nil

	m.player.pos = court.Home(domain.SidePlayer, m.settings.HomeInset)
	m.player.target = m.player.pos
	m.opponent.pos = court.Home(domain.SideOpponent, m.settings.HomeInset)
	m.opponent.target = m.opponent.pos

	m.rally = domain.RallyContext{
		Court:       court,
		Server:      m.server,
		PlayerPos:   m.player.pos,
		OpponentPos: m.opponent.pos,
	}
	m.rally.Ball = m.rally.PositionOf(m.server)
	m.shot = domain.ShotOutcome{}

	m.emit(EventServeStarted, ServeStartedPayload{
		Server:     m.server,
		ServiceBox: court.ServiceBox(m.server.Other(), m.settings.TargetInset),
	})
	if m.server == domain.SideOpponent {
		m.after(m.settings.ServeDelay, m.opponentServe)
	}
}

// playerServe aims at the half of the service box on the tapped side of the court.
func (m *Match) playerServe(ev TapEvent) {
	box := m.settings.Court.ServiceBox(domain.SideOpponent, m.settings.TargetInset)
	mid := box.Center().X
	if ev.X < mid {
		box.MaxX = mid
	} else {
		box.MinX = mid
	}
	m.swing(&m.player)
	m.strike(domain.ShotOutcome{Kind: domain.ShotReturn, Hitter: domain.SidePlayer, Target: box.RandomPoint(m.rng)}, 1)
}

func (m *Match) opponentServe() {
	if m.phase != PhaseServing {
		return
	}
	m.swing(&m.opponent)
	m.strike(m.opponentAI.Serve(m.settings.Court), m.opponentAI.Pace())
}

func (m *Match) strike(outcome domain.ShotOutcome, pace float64) {
	from := m.rally.Ball
	params := m.settings.Flight
	if params.Pace <= 0 {
		params.Pace = 1
	}
	params.Pace *= pace
	plan := domain.ComputeFlight(from, outcome.Target, params)

	m.rally.ShotCount++
	m.rally.Target = outcome.Target
	m.shot = outcome
	m.flight = &plan
	m.flightStart = m.sched.Now()
	m.phase = PhaseRallying
	m.stage = StageInFlight
	m.stats.Shots++

	// The player runs to the ball while it flies; the opponent only moves once
	// it has committed to a return, so its reach reflects where it stood.
	m.char(outcome.Hitter).target = m.settings.Court.Home(outcome.Hitter, m.settings.HomeInset)
	if outcome.Hitter == domain.SideOpponent {
		m.player.target = outcome.Target
	}

	m.emit(EventShotStruck, ShotStruckPayload{
		Hitter:     outcome.Hitter,
		Kind:       outcome.Kind,
		From:       from,
		Target:     outcome.Target,
		Duration:   plan.Duration,
		PeakHeight: plan.PeakHeight,
		ShotNumber: m.rally.ShotCount,
	})
	m.after(plan.Duration, m.land)
}

func (m *Match) land() {
	court := m.settings.Court
	p := m.rally.Target
	m.rally.Ball = p
	m.flight = nil
	m.stage = StageIdle

	hitter := m.rally.LastHitter()
	fault := m.rally.LandingFault(p)
	m.emit(EventBallLanded, BallLandedPayload{Position: p, Hitter: hitter, InBounds: court.InBounds(p), Fault: fault})
	if fault {
		m.fault(hitter, m.landingFaultKind(p))
		return
	}

	m.stage = StageAwaitingHit
	if m.rally.Receiver() == domain.SidePlayer {
		m.openWindow()
		return
	}

	outcome, ok := m.opponentAI.DecideReturn(p, m.opponent.pos, court)
	if !ok {
		m.fault(domain.SideOpponent, domain.ShotUnreached)
		return
	}
	m.opponent.target = p
	m.after(m.opponentAI.Windup(), func() {
		m.swing(&m.opponent)
		m.strike(outcome, m.opponentAI.Pace())
	})
}

func (m *Match) landingFaultKind(p domain.Vec2) domain.ShotKind {
	if m.shot.Kind != domain.ShotReturn {
		return m.shot.Kind
	}
	if !m.settings.Court.InBounds(p) {
		return domain.ShotOutFault
	}
	return domain.ShotNetFault
}

func (m *Match) openWindow() {
	now := m.sched.Now()
	m.windowSeq++
	w := domain.NewTimingWindow(m.windowSeq, now, now+m.settings.WindowOpenDelay, now+m.settings.WindowCloseDelay)
	m.window = w

	m.after(m.settings.WindowOpenDelay, func() {
		if m.window != w || !w.Live() {
			return
		}
		w.Open()
		m.emit(EventWindowOpened, WindowOpenedPayload{WindowID: w.ID, OpenAt: w.OpenAt, CloseAt: w.CloseAt})
	})
	m.after(m.settings.WindowCloseDelay, func() {
		if m.window != w {
			return
		}
		if outcome, ok := m.resolver.ResolveExpiry(m.sched.Now(), w, m.rally); ok {
			m.resolveWindow(outcome)
		}
	})
}

func (m *Match) resolveWindow(outcome domain.ShotOutcome) {
	w := m.window
	m.window = nil
	m.cancelPointTimers()
	m.emit(EventWindowClosed, WindowClosedPayload{WindowID: w.ID, Hit: outcome.Struck(), Kind: outcome.Kind})
	if !outcome.Struck() {
		m.fault(outcome.Hitter, outcome.Kind)
		return
	}
	m.swing(&m.player)
	m.strike(outcome, 1)
}

func (m *Match) fault(side domain.Side, kind domain.ShotKind) {
	if side == domain.SidePlayer {
		m.stats.PlayerFaults++
	} else {
		m.stats.OpponentFaults++
	}
	m.emit(EventFault, FaultPayload{Side: side, Kind: kind})
	m.settle(side.Other())
}

// settle cancels point-scoped timers before scoring so a point is counted once.
func (m *Match) settle(winner domain.Side) {
	m.cancelPointTimers()
	m.window = nil
	m.flight = nil
	m.phase = PhasePointSettled
	m.stage = StageIdle

	m.stats.PointsPlayed++
	if m.rally.ShotCount > m.stats.LongestRally {
		m.stats.LongestRally = m.rally.ShotCount
	}

	res := m.score.ScorePoint(winner)
	m.emit(tierEventKind(res.Tier), ScorePayload{
		Winner: res.Winner,
		Tier:   res.Tier,
		Score:  m.score.Snapshot(),
		Call:   m.score.CallScore(),
	})
	if res.Tier == domain.TierMatch {
		m.phase = PhaseMatchOver
		return
	}
	m.after(m.settings.PointPause, func() {
		m.server = m.server.Other()
		m.enterServing()
	})
}

func (m *Match) char(side domain.Side) *character {
	if side == domain.SideOpponent {
		return &m.opponent
	}
	return &m.player
}

func (m *Match) swing(c *character) {
	if m.settings.SwingDuration <= 0 {
		return
	}
	m.sched.Cancel(c.swing)
	c.swinging = true
	c.swing = m.sched.After(m.settings.SwingDuration, func() { c.swinging = false })
}

func (m *Match) move(dt time.Duration) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}
	m.player.pos, _ = m.player.pos.MoveToward(m.player.target, m.settings.PlayerSpeed*secs)
	m.opponent.pos, _ = m.opponent.pos.MoveToward(m.opponent.target, m.opponentAI.MoveSpeed()*secs)
	m.rally.PlayerPos = m.player.pos
	m.rally.OpponentPos = m.opponent.pos

	ball := m.ballGround()
	m.player.facing = domain.FacingToward(m.player.pos, ball, m.player.facing)
	m.opponent.facing = domain.FacingToward(m.opponent.pos, ball, m.opponent.facing)
}

func (m *Match) ballGround() domain.Vec2 {
	if m.flight == nil {
		return m.rally.Ball
	}
	return m.flight.GroundAt(m.flight.Progress(m.sched.Now() - m.flightStart))
}
