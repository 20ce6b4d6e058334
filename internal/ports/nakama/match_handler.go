package nakama

import (
	"context"
	"database/sql"
	"time"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/bot"
	"github.com/Buster-Games/buster-games/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Match create params.
const (
	ParamUserID = "user_id"
	ParamLevel  = "level"
)

// MatchState holds the authoritative runtime state for one practice session.
type MatchState struct {
	PlayerID      string           `json:"player_id"`      // the only user allowed to join
	Level         string           `json:"level"`          // requested opponent level, empty for the configured default
	OpponentID    string           `json:"opponent_id"`    // bot identity shown to the client
	Tick          int64            `json:"tick"`           // last Nakama tick
	TickRate      int              `json:"tick_rate"`      // ticks per second
	EmptyTicks    int              `json:"empty_ticks"`    // consecutive ticks with nobody connected
	FinishedTicks int              `json:"finished_ticks"` // ticks since the match ended
	Delivered     bool             `json:"delivered"`      // result handed to the ResultPort
	LastPhase     app.Phase        `json:"last_phase"`     // phase published in the label
	Presence      runtime.Presence `json:"-"`              // connected player, nil while away
	Match         *app.Match       `json:"-"`              // engine for this session
}

func (ms *MatchState) isOpen() bool { return ms.Presence == nil }

// tickDuration is the match clock advance per Nakama tick.
func (ms *MatchState) tickDuration() time.Duration {
	if ms.TickRate <= 0 {
		return time.Second / defaultTickRate
	}
	return time.Second / time.Duration(ms.TickRate)
}

type matchHandler struct {
	svc      *app.Service
	results  ports.ResultPort
	tickRate int
	opts     []app.Option
	now      func() time.Time
}

func newMatchHandler(svc *app.Service, results ports.ResultPort, tickRate int) *matchHandler {
	if tickRate <= 0 {
		tickRate = defaultTickRate
	}
	return &matchHandler{svc: svc, results: results, tickRate: tickRate, now: time.Now}
}

// NewMatch is the factory function registered with Nakama. The handler keeps
// no per-match data, so every match shares it.
func (mh *matchHandler) NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return mh, nil
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	userID, _ := params[ParamUserID].(string)
	level, _ := params[ParamLevel].(string)
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	opts := append([]app.Option{}, mh.opts...)
	if matchID != "" {
		opts = append(opts, app.WithID(matchID))
	}
	m, identity, err := mh.svc.StartPractice(level, opts...)
	if err != nil {
		logger.Error("MatchInit: Failed to start practice (level=%q): %v", level, err)
		return nil, 0, ""
	}

	state := &MatchState{
		PlayerID:   userID,
		Level:      level,
		OpponentID: identity.ID(),
		TickRate:   mh.tickRate,
		LastPhase:  m.Phase(),
		Match:      m,
	}

	label, err := matchLabel(state.LastPhase, true)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Debug("MatchInit: Practice %s for %q against %s (difficulty %.2f).", m.ID(), userID, identity.Username, m.Settings().Difficulty)
	return state, state.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if bot.IsBot(userID) {
		return state, false, "Bots cannot join"
	}
	if matchState.PlayerID != "" && matchState.PlayerID != userID {
		return state, false, "Match reserved"
	}
	if !matchState.isOpen() {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.PlayerID == "" {
			matchState.PlayerID = p.GetUserId()
		}
		if p.GetUserId() != matchState.PlayerID {
			logger.Warn("MatchJoin: Ignoring unexpected user %s.", p.GetUserId())
			continue
		}
		matchState.Presence = p
		matchState.EmptyTicks = 0
		logger.Info("MatchJoin: User %s joined practice %s.", p.GetUserId(), matchState.Match.ID())
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastFrame(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
// The engine is single player, so the session ends with the player.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.Presence != nil && p.GetSessionId() == matchState.Presence.GetSessionId() {
			matchState.Presence = nil
		}
	}

	if matchState.Presence == nil {
		logger.Info("MatchLeave: Player %s left, terminating practice %s.", matchState.PlayerID, matchState.Match.ID())
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// The clock only runs while the player is connected.
	if matchState.Presence == nil {
		matchState.EmptyTicks++
		if matchState.EmptyTicks >= joinTimeoutSec*matchState.TickRate {
			logger.Info("MatchLoop: Nobody joined practice %s, terminating.", matchState.Match.ID())
			return nil
		}
		return matchState
	}

	wallMs := mh.now().UnixMilli()
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpTap:
			mh.handleTap(ctx, matchState, dispatcher, logger, msg, wallMs)
		case OpReset:
			mh.handleReset(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	events := matchState.Match.Tick(matchState.tickDuration())
	mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)

	over := matchState.Match.Phase() == app.PhaseMatchOver
	if !over || len(events) > 0 {
		mh.broadcastFrame(matchState, dispatcher, logger)
	}
	if over {
		matchState.FinishedTicks++
		if matchState.FinishedTicks >= finishedLingerSec*matchState.TickRate {
			logger.Info("MatchLoop: Practice %s finished and idle, terminating.", matchState.Match.ID())
			return nil
		}
	}

	return matchState
}

func (mh *matchHandler) handleTap(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, wallMs int64) {
	senderID := msg.GetUserId()
	if senderID != state.PlayerID {
		logger.Warn("handleTap: Tap from %s ignored, match belongs to %s.", senderID, state.PlayerID)
		return
	}

	request, err := decodeTap(msg.GetData())
	if err != nil {
		logger.Warn("handleTap: Invalid tap payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, 400, "invalid tap payload")
		return
	}

	at := mh.tapTime(state.Match.Now(), request, msg.GetReceiveTime(), wallMs, state.tickDuration())
	events := state.Match.Tap(app.TapEvent{At: at, X: request.X, Y: request.Y})
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// tapTime places a tap on the match clock. A client timestamp wins; otherwise
// the receive time backdates the tap within the current tick. Either way the
// result is clamped to [now-maxClientTapLag, now].
func (mh *matchHandler) tapTime(now time.Duration, req tapRequest, receiveMs, wallMs int64, tick time.Duration) time.Duration {
	at := now
	switch {
	case req.HasAt:
		at = time.Duration(req.AtMs) * time.Millisecond
	case receiveMs > 0 && wallMs > receiveMs:
		lag := time.Duration(wallMs-receiveMs) * time.Millisecond
		if lag > tick {
			lag = tick
		}
		at = now - lag
	}

	floor := now - maxClientTapLagMs*time.Millisecond
	if at > now {
		at = now
	}
	if at < floor {
		at = floor
	}
	if at < 0 {
		at = 0
	}
	return at
}

func (mh *matchHandler) handleReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if msg.GetUserId() != state.PlayerID {
		logger.Warn("handleReset: Reset from %s ignored.", msg.GetUserId())
		return
	}

	logger.Info("handleReset: User %s restarted practice %s.", msg.GetUserId(), state.Match.ID())
	events := state.Match.Reset()
	state.Delivered = false
	state.FinishedTicks = 0
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// dispatchEvents sends engine events to the player and settles a finished match.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
		if ev.Kind == app.EventMatchWon {
			mh.deliverResult(ctx, state, logger)
		}
	}
	if phase := state.Match.Phase(); phase != state.LastPhase {
		state.LastPhase = phase
		mh.updateLabel(state, dispatcher, logger)
	}
}

// broadcastEvent encodes an engine event and sends it to the player.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	bytes, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	if state.Presence == nil {
		return
	}
	if err := dispatcher.BroadcastMessage(OpEvent, bytes, []runtime.Presence{state.Presence}, nil, true); err != nil {
		logger.Warn("Failed to send event %v: %v", ev.Kind, err)
	}
}

// broadcastFrame sends the render snapshot unreliably; a lost frame is replaced on the next tick.
func (mh *matchHandler) broadcastFrame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Presence == nil {
		return
	}
	bytes, err := encodeStruct(frameFields(state.Match.Frame(), state.Match.CallScore()))
	if err != nil {
		logger.Error("Failed to marshal frame: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpFrame, bytes, []runtime.Presence{state.Presence}, nil, false)
}

func (mh *matchHandler) deliverResult(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Delivered {
		return
	}
	state.Delivered = true

	result, receipt, err := mh.svc.FinishMatch(state.Match, state.PlayerID)
	if err != nil {
		logger.Error("MatchLoop: Failed to finish practice %s: %v", state.Match.ID(), err)
		if result.MatchID == "" {
			return
		}
	}
	logger.Info("MatchLoop: Practice %s won by %s (%d-%d sets, %d points).", result.MatchID, result.Winner, result.PlayerSets, result.OpponentSets, result.PointsPlayed)

	if mh.results == nil || state.PlayerID == "" {
		return
	}
	if err := mh.results.DeliverResult(ctx, state.PlayerID, result, receipt); err != nil {
		logger.Error("MatchLoop: Failed to deliver result: %v", err)
	}
}

// sendError sends an error message to the player.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	if state.Presence == nil {
		logger.Warn("Cannot send error to %s: Presence not found", state.PlayerID)
		return
	}
	bytes, err := encodeError(code, message)
	if err != nil {
		logger.Error("Failed to marshal error: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{state.Presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state.Match.Phase(), state.isOpen())
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
