package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGamesPerSet = errors.New("games per set must be positive")
	ErrInvalidBestOf      = errors.New("best-of must be a positive odd number")
)

// MatchFormat configures how many games win a set and how many sets are played.
type MatchFormat struct {
	GamesPerSet int
	// BestOf is the maximum number of sets (1, 3, 5, ...).
	BestOf int
}

// CasualFormat is the short variant used by the mini-game.
var CasualFormat = MatchFormat{GamesPerSet: 3, BestOf: 1}

// StandardFormat mirrors a regular best-of-three match.
var StandardFormat = MatchFormat{GamesPerSet: 6, BestOf: 3}

// Validate rejects formats that would never terminate or are ambiguous.
func (f MatchFormat) Validate() error {
	if f.GamesPerSet <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidGamesPerSet, f.GamesPerSet)
	}
	if f.BestOf <= 0 || f.BestOf%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBestOf, f.BestOf)
	}
	return nil
}

// SetsNeeded returns the number of sets that clinches the match.
func (f MatchFormat) SetsNeeded() int {
	return f.BestOf/2 + 1
}

// MatchState is the scoreboard of a single match. It is mutated only by ScorePoint and Reset.
//
// Sets are decided purely by reaching GamesPerSet with a two-game lead; there is
// no tiebreak game at GamesPerSet-all.
type MatchState struct {
	format MatchFormat

	points    [3]int // indexed by Side
	games     [3]int
	sets      [3]int
	deuce     bool
	advantage Side

	completed []SetScore
	over      bool
	winner    Side
}

// NewMatchState validates the format and returns a zeroed scoreboard.
func NewMatchState(format MatchFormat) (*MatchState, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &MatchState{format: format}, nil
}

// Format returns the configured match format.
func (m *MatchState) Format() MatchFormat { return m.format }

func (m *MatchState) Points(s Side) int {
	if !s.Valid() {
		return 0
	}
	return m.points[s]
}

func (m *MatchState) Games(s Side) int {
	if !s.Valid() {
		return 0
	}
	return m.games[s]
}

func (m *MatchState) Sets(s Side) int {
	if !s.Valid() {
		return 0
	}
	return m.sets[s]
}

// SetIndex is the zero-based index of the set in progress.
func (m *MatchState) SetIndex() int { return len(m.completed) }

// IsDeuce reports whether both sides have three points in the current game.
func (m *MatchState) IsDeuce() bool { return m.deuce }

// Advantage returns the side holding advantage, or SideNone. Only meaningful during deuce.
func (m *MatchState) Advantage() Side { return m.advantage }

// Over reports whether the match has been decided.
func (m *MatchState) Over() bool { return m.over }

// Winner returns the match winner, or SideNone while the match is in progress.
func (m *MatchState) Winner() Side { return m.winner }

// CompletedSets returns the game score of every finished set in order.
func (m *MatchState) CompletedSets() []SetScore {
	return append([]SetScore(nil), m.completed...)
}

// Snapshot copies the scoreboard.
func (m *MatchState) Snapshot() Snapshot {
	return Snapshot{
		PlayerPoints:   m.points[SidePlayer],
		OpponentPoints: m.points[SideOpponent],
		PlayerGames:    m.games[SidePlayer],
		OpponentGames:  m.games[SideOpponent],
		PlayerSets:     m.sets[SidePlayer],
		OpponentSets:   m.sets[SideOpponent],
		SetIndex:       m.SetIndex(),
		Deuce:          m.deuce,
		Advantage:      m.advantage,
		Over:           m.over,
		Winner:         m.winner,
		Completed:      m.CompletedSets(),
	}
}

// Reset returns the scoreboard to the zero state for the same format.
func (m *MatchState) Reset() {
	*m = MatchState{format: m.format}
}

// ScorePoint credits a point to winner and reports the highest tier it decided.
// Points for an invalid side or after the match is over are ignored.
func (m *MatchState) ScorePoint(winner Side) ScoreResult {
	if !winner.Valid() || m.over {
		return ScoreResult{Tier: TierNone}
	}

	if m.deuce {
		switch m.advantage {
		case SideNone:
			m.advantage = winner
			return ScoreResult{Tier: TierPoint, Winner: winner}
		case winner:
			return m.winGame(winner)
		default:
			m.advantage = SideNone
			return ScoreResult{Tier: TierPoint, Winner: winner}
		}
	}

	m.points[winner]++
	if m.points[SidePlayer] == 3 && m.points[SideOpponent] == 3 {
		m.deuce = true
		return ScoreResult{Tier: TierPoint, Winner: winner}
	}
	if m.points[winner] >= 4 {
		return m.winGame(winner)
	}
	return ScoreResult{Tier: TierPoint, Winner: winner}
}

func (m *MatchState) winGame(winner Side) ScoreResult {
	m.games[winner]++
	m.points = [3]int{}
	m.deuce = false
	m.advantage = SideNone

	loser := winner.Other()
	if m.games[winner] < m.format.GamesPerSet || m.games[winner]-m.games[loser] < 2 {
		return ScoreResult{Tier: TierGame, Winner: winner}
	}

	m.completed = append(m.completed, SetScore{
		Player:   m.games[SidePlayer],
		Opponent: m.games[SideOpponent],
	})
	m.sets[winner]++
	m.games = [3]int{}

	if m.sets[winner] >= m.format.SetsNeeded() {
		m.over = true
		m.winner = winner
		return ScoreResult{Tier: TierMatch, Winner: winner}
	}
	return ScoreResult{Tier: TierSet, Winner: winner}
}

var pointCalls = [...]string{"love", "15", "30", "40"}

// CallScore renders the in-game score the way an umpire calls it, from the player's perspective.
func (m *MatchState) CallScore() string {
	if m.over {
		return "game, set and match " + m.winner.String()
	}
	if m.deuce {
		if m.advantage == SideNone {
			return "deuce"
		}
		return "advantage " + m.advantage.String()
	}
	p, o := m.points[SidePlayer], m.points[SideOpponent]
	if p == o {
		return pointCalls[p] + "-all"
	}
	return pointCalls[p] + "-" + pointCalls[o]
}
