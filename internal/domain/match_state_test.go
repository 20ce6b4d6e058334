package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func newState(t *testing.T, format MatchFormat) *MatchState {
	t.Helper()
	m, err := NewMatchState(format)
	if err != nil {
		t.Fatalf("NewMatchState(%+v) error: %v", format, err)
	}
	return m
}

// takeGame scores four straight points for side and returns the last result.
func takeGame(m *MatchState, side Side) ScoreResult {
	var res ScoreResult
	for i := 0; i < 4; i++ {
		res = m.ScorePoint(side)
	}
	return res
}

func TestMatchFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  MatchFormat
		wantErr error
	}{
		{name: "casual", format: CasualFormat},
		{name: "standard", format: StandardFormat},
		{name: "best of five", format: MatchFormat{GamesPerSet: 6, BestOf: 5}},
		{name: "zero games", format: MatchFormat{GamesPerSet: 0, BestOf: 3}, wantErr: ErrInvalidGamesPerSet},
		{name: "negative games", format: MatchFormat{GamesPerSet: -2, BestOf: 3}, wantErr: ErrInvalidGamesPerSet},
		{name: "zero sets", format: MatchFormat{GamesPerSet: 6, BestOf: 0}, wantErr: ErrInvalidBestOf},
		{name: "even sets", format: MatchFormat{GamesPerSet: 6, BestOf: 4}, wantErr: ErrInvalidBestOf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if _, err := NewMatchState(tt.format); !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewMatchState() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetsNeeded(t *testing.T) {
	tests := []struct {
		bestOf int
		want   int
	}{
		{bestOf: 1, want: 1},
		{bestOf: 3, want: 2},
		{bestOf: 5, want: 3},
	}
	for _, tt := range tests {
		if got := (MatchFormat{GamesPerSet: 6, BestOf: tt.bestOf}).SetsNeeded(); got != tt.want {
			t.Fatalf("SetsNeeded(best of %d) = %d, want %d", tt.bestOf, got, tt.want)
		}
	}
}

func TestScorePoint_StraightGames(t *testing.T) {
	tests := []struct {
		name     string
		loserPts int
	}{
		{name: "4-0", loserPts: 0},
		{name: "4-1", loserPts: 1},
		{name: "4-2", loserPts: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newState(t, StandardFormat)
			for i := 0; i < tt.loserPts; i++ {
				m.ScorePoint(SideOpponent)
			}
			for i := 0; i < 3; i++ {
				if res := m.ScorePoint(SidePlayer); res.Tier != TierPoint {
					t.Fatalf("point %d tier = %v, want point", i+1, res.Tier)
				}
			}
			res := m.ScorePoint(SidePlayer)
			if res.Tier != TierGame || res.Winner != SidePlayer {
				t.Fatalf("fourth point = %+v, want game for player", res)
			}
			if m.Games(SidePlayer) != 1 || m.Points(SidePlayer) != 0 || m.Points(SideOpponent) != 0 {
				t.Fatalf("after game: games=%d points=%d-%d", m.Games(SidePlayer), m.Points(SidePlayer), m.Points(SideOpponent))
			}
		})
	}
}

func TestScorePoint_ThreeAllEntersDeuce(t *testing.T) {
	m := newState(t, StandardFormat)
	for i := 0; i < 3; i++ {
		m.ScorePoint(SidePlayer)
	}
	for i := 0; i < 2; i++ {
		m.ScorePoint(SideOpponent)
	}
	if m.IsDeuce() {
		t.Fatalf("deuce at 3-2")
	}
	res := m.ScorePoint(SideOpponent)
	if res.Tier != TierPoint {
		t.Fatalf("3-3 point tier = %v, want point", res.Tier)
	}
	if !m.IsDeuce() || m.Advantage() != SideNone {
		t.Fatalf("IsDeuce=%t advantage=%v, want deuce with no advantage", m.IsDeuce(), m.Advantage())
	}
	if m.CallScore() != "deuce" {
		t.Fatalf("CallScore() = %q, want deuce", m.CallScore())
	}
}

func TestScorePoint_DeuceSequence(t *testing.T) {
	m := newState(t, StandardFormat)
	for i := 0; i < 3; i++ {
		m.ScorePoint(SidePlayer)
		m.ScorePoint(SideOpponent)
	}

	steps := []struct {
		winner    Side
		tier      Tier
		advantage Side
		deuce     bool
	}{
		{winner: SidePlayer, tier: TierPoint, advantage: SidePlayer, deuce: true},
		{winner: SideOpponent, tier: TierPoint, advantage: SideNone, deuce: true},
		{winner: SidePlayer, tier: TierPoint, advantage: SidePlayer, deuce: true},
		{winner: SidePlayer, tier: TierGame, advantage: SideNone, deuce: false},
	}
	for i, step := range steps {
		res := m.ScorePoint(step.winner)
		if res.Tier != step.tier {
			t.Fatalf("step %d tier = %v, want %v", i, res.Tier, step.tier)
		}
		if m.Advantage() != step.advantage || m.IsDeuce() != step.deuce {
			t.Fatalf("step %d advantage=%v deuce=%t, want %v %t", i, m.Advantage(), m.IsDeuce(), step.advantage, step.deuce)
		}
	}

	if m.Games(SidePlayer) != 1 || m.Games(SideOpponent) != 0 {
		t.Fatalf("games = %d-%d, want 1-0", m.Games(SidePlayer), m.Games(SideOpponent))
	}
	if m.Points(SidePlayer) != 0 || m.Points(SideOpponent) != 0 {
		t.Fatalf("points = %d-%d, want 0-0", m.Points(SidePlayer), m.Points(SideOpponent))
	}
}

func TestScorePoint_SetNeedsTwoGameLead(t *testing.T) {
	tests := []struct {
		name  string
		games []Side
		final SetScore
	}{
		{
			name:  "3-1 clinches",
			games: []Side{SidePlayer, SideOpponent, SidePlayer, SidePlayer},
			final: SetScore{Player: 3, Opponent: 1},
		},
		{
			name:  "3-2 continues then 4-2 clinches",
			games: []Side{SidePlayer, SideOpponent, SidePlayer, SideOpponent, SidePlayer, SidePlayer},
			final: SetScore{Player: 4, Opponent: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newState(t, MatchFormat{GamesPerSet: 3, BestOf: 3})
			for i, side := range tt.games {
				res := takeGame(m, side)
				last := i == len(tt.games)-1
				if !last && res.Tier != TierGame {
					t.Fatalf("game %d tier = %v, want game", i+1, res.Tier)
				}
				if last && (res.Tier != TierSet || res.Winner != SidePlayer) {
					t.Fatalf("final game = %+v, want set for player", res)
				}
			}
			if got := m.CompletedSets(); !reflect.DeepEqual(got, []SetScore{tt.final}) {
				t.Fatalf("CompletedSets() = %+v, want %+v", got, tt.final)
			}
			if m.Games(SidePlayer) != 0 || m.Games(SideOpponent) != 0 || m.Sets(SidePlayer) != 1 {
				t.Fatalf("after set: games=%d-%d sets=%d", m.Games(SidePlayer), m.Games(SideOpponent), m.Sets(SidePlayer))
			}
			if m.SetIndex() != 1 {
				t.Fatalf("SetIndex() = %d, want 1", m.SetIndex())
			}
		})
	}
}

func TestScorePoint_MatchWinIsTerminal(t *testing.T) {
	// One game per set still needs a two-game lead, so each set here is 2-0.
	m := newState(t, MatchFormat{GamesPerSet: 1, BestOf: 3})

	takeGame(m, SideOpponent)
	if res := takeGame(m, SideOpponent); res.Tier != TierSet {
		t.Fatalf("first set tier = %v, want set", res.Tier)
	}
	takeGame(m, SidePlayer)
	if res := takeGame(m, SidePlayer); res.Tier != TierSet {
		t.Fatalf("second set tier = %v, want set", res.Tier)
	}
	if res := takeGame(m, SidePlayer); res.Tier != TierGame {
		t.Fatalf("1-0 in deciding set tier = %v, want game", res.Tier)
	}
	res := takeGame(m, SidePlayer)
	if res.Tier != TierMatch || res.Winner != SidePlayer {
		t.Fatalf("third set = %+v, want match for player", res)
	}
	if !m.Over() || m.Winner() != SidePlayer {
		t.Fatalf("Over=%t Winner=%v", m.Over(), m.Winner())
	}

	before := m.Snapshot()
	if res := m.ScorePoint(SideOpponent); res.Tier != TierNone {
		t.Fatalf("point after match = %v, want none", res.Tier)
	}
	if after := m.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed after match over: %+v -> %+v", before, after)
	}
}

func TestScorePoint_RejectsUnknownSide(t *testing.T) {
	m := newState(t, CasualFormat)
	for _, side := range []Side{SideNone, Side(7), Side(-1)} {
		if res := m.ScorePoint(side); res.Tier != TierNone {
			t.Fatalf("ScorePoint(%d) tier = %v, want none", side, res.Tier)
		}
	}
	if m.Points(SidePlayer) != 0 || m.Points(SideOpponent) != 0 {
		t.Fatalf("points changed on invalid side")
	}
}

func TestScorePoint_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 50; run++ {
		m := newState(t, MatchFormat{GamesPerSet: 3, BestOf: 5})
		for i := 0; i < 2000 && !m.Over(); i++ {
			side := SidePlayer
			if rng.Intn(2) == 0 {
				side = SideOpponent
			}
			m.ScorePoint(side)

			p, o := m.Points(SidePlayer), m.Points(SideOpponent)
			if p < 0 || o < 0 || p > 3 || o > 3 {
				t.Fatalf("run %d: points out of range %d-%d", run, p, o)
			}
			if m.IsDeuce() != (p == 3 && o == 3) {
				t.Fatalf("run %d: IsDeuce=%t with points %d-%d", run, m.IsDeuce(), p, o)
			}
			if !m.IsDeuce() && m.Advantage() != SideNone {
				t.Fatalf("run %d: advantage %v outside deuce", run, m.Advantage())
			}
		}
		if !m.Over() {
			t.Fatalf("run %d: match did not finish", run)
		}
		for _, set := range m.CompletedSets() {
			hi, lo := set.Player, set.Opponent
			if lo > hi {
				hi, lo = lo, hi
			}
			if hi < 3 || hi-lo < 2 {
				t.Fatalf("run %d: set %+v decided without threshold and lead", run, set)
			}
		}
		if m.Sets(m.Winner()) != 3 {
			t.Fatalf("run %d: winner has %d sets, want 3", run, m.Sets(m.Winner()))
		}
	}
}

func TestReset_IsIdempotent(t *testing.T) {
	fresh := newState(t, StandardFormat)
	want := fresh.Snapshot()

	m := newState(t, StandardFormat)
	takeGame(m, SidePlayer)
	m.ScorePoint(SideOpponent)
	m.ScorePoint(SideOpponent)
	m.Reset()
	if got := m.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Reset() snapshot = %+v, want %+v", got, want)
	}
	m.Reset()
	if got := m.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("second Reset() snapshot = %+v, want %+v", got, want)
	}
	if m.Format() != StandardFormat {
		t.Fatalf("Reset() changed format to %+v", m.Format())
	}
}

func TestCallScore(t *testing.T) {
	tests := []struct {
		name   string
		points []Side
		want   string
	}{
		{name: "start", want: "love-all"},
		{name: "15-love", points: []Side{SidePlayer}, want: "15-love"},
		{name: "30-15", points: []Side{SidePlayer, SidePlayer, SideOpponent}, want: "30-15"},
		{name: "40-30", points: []Side{SidePlayer, SidePlayer, SidePlayer, SideOpponent, SideOpponent}, want: "40-30"},
		{
			name:   "advantage opponent",
			points: []Side{SidePlayer, SidePlayer, SidePlayer, SideOpponent, SideOpponent, SideOpponent, SideOpponent},
			want:   "advantage opponent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newState(t, StandardFormat)
			for _, side := range tt.points {
				m.ScorePoint(side)
			}
			if got := m.CallScore(); got != tt.want {
				t.Fatalf("CallScore() = %q, want %q", got, tt.want)
			}
		})
	}
}
