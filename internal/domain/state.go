package domain

// Side identifies one of the two participants in a match.
type Side int

const (
	// SideNone is the zero value; it never wins a point.
	SideNone Side = iota
	// SidePlayer is the human at the bottom of the screen.
	SidePlayer
	// SideOpponent is the AI at the top of the screen.
	SideOpponent
)

// Valid reports whether s is one of the two playing sides.
func (s Side) Valid() bool {
	return s == SidePlayer || s == SideOpponent
}

// Other returns the opposing side. SideNone maps to itself.
func (s Side) Other() Side {
	switch s {
	case SidePlayer:
		return SideOpponent
	case SideOpponent:
		return SidePlayer
	default:
		return SideNone
	}
}

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// Tier is the highest scoring level reached by a single point.
type Tier int

const (
	// TierNone means the point was rejected (invalid winner or match already over).
	TierNone Tier = iota
	TierPoint
	TierGame
	TierSet
	TierMatch
)

func (t Tier) String() string {
	switch t {
	case TierPoint:
		return "point"
	case TierGame:
		return "game"
	case TierSet:
		return "set"
	case TierMatch:
		return "match"
	default:
		return "none"
	}
}

// ScoreResult is returned by MatchState.ScorePoint.
type ScoreResult struct {
	Tier   Tier
	Winner Side
}

// SetScore is the final game count of a completed set.
type SetScore struct {
	Player   int
	Opponent int
}

// Snapshot is a value copy of the scoreboard, safe to hand to presentation.
type Snapshot struct {
	PlayerPoints   int
	OpponentPoints int
	PlayerGames    int
	OpponentGames  int
	PlayerSets     int
	OpponentSets   int
	SetIndex       int
	Deuce          bool
	Advantage      Side
	Over           bool
	Winner         Side
	Completed      []SetScore
}

// Rand is the random source consumed by target selection. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}
