package bot

import (
	"errors"
	"fmt"
	"math"

	"github.com/Buster-Games/buster-games/internal/domain"
)

var (
	ErrUnknownLevel      = errors.New("unknown bot level")
	ErrInvalidDifficulty = errors.New("difficulty must be within [0,1]")
)

// NewPolicy creates an opponent policy for the given preset.
func NewPolicy(level Level, rng domain.Rand) (*Policy, error) {
	switch level {
	case LevelEasy, LevelMedium, LevelHard:
		return newPolicy(level.Difficulty(), DefaultTuning, rng), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
}

// NewPolicyWithDifficulty creates a policy from a raw difficulty value.
func NewPolicyWithDifficulty(difficulty float64, rng domain.Rand) (*Policy, error) {
	if math.IsNaN(difficulty) || difficulty < 0 || difficulty > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidDifficulty, difficulty)
	}
	return newPolicy(difficulty, DefaultTuning, rng), nil
}
