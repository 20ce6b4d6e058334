package bot

import (
	"fmt"
	"strings"
)

// Level is a named difficulty preset.
type Level int

const (
	LevelEasy Level = iota + 1
	LevelMedium
	LevelHard
)

func (l Level) String() string {
	switch l {
	case LevelEasy:
		return "easy"
	case LevelMedium:
		return "medium"
	case LevelHard:
		return "hard"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Difficulty maps the preset onto the continuous [0,1] scale.
func (l Level) Difficulty() float64 {
	switch l {
	case LevelEasy:
		return 0.2
	case LevelMedium:
		return 0.5
	case LevelHard:
		return 0.85
	default:
		return 0
	}
}

// ParseLevel accepts the names used in config files and RPC payloads.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return LevelEasy, nil
	case "medium", "":
		return LevelMedium, nil
	case "hard":
		return LevelHard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
