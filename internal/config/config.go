package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

var ErrInvalidConfig = errors.New("invalid game config")

// Env keys read by ApplyEnv. Nakama passes them through runtime.RUNTIME_CTX_ENV,
// the simulator reads them from .env and the process environment.
const (
	EnvGamesPerSet   = "tennis_games_per_set"
	EnvBestOf        = "tennis_best_of"
	EnvLevel         = "tennis_level"
	EnvDifficulty    = "tennis_difficulty"
	EnvReceiptSecret = "tennis_receipt_secret"
)

type CourtConfig struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	NetY   float64 `json:"net_y"`
}

type TimingConfig struct {
	ServeDelayMs  int `json:"serve_delay_ms"`
	WindowOpenMs  int `json:"window_open_ms"`
	WindowCloseMs int `json:"window_close_ms"`
	PointPauseMs  int `json:"point_pause_ms"`
	SwingMs       int `json:"swing_ms"`
	// Banding is off unless both fractions are set.
	BandExtreme *float64 `json:"band_extreme,omitempty"`
	BandEdge    *float64 `json:"band_edge,omitempty"`
}

type GameConfig struct {
	GamesPerSet int    `json:"games_per_set"`
	BestOf      int    `json:"best_of"`
	Level       string `json:"level"`
	// Difficulty overrides the level preset when set.
	Difficulty    *float64     `json:"difficulty,omitempty"`
	Court         *CourtConfig `json:"court,omitempty"`
	Timing        TimingConfig `json:"timing"`
	PlayerSpeed   float64      `json:"player_speed"`
	TickRate      int          `json:"tick_rate"`
	ReceiptIssuer string       `json:"receipt_issuer"`
	// ReceiptSecret only comes from the environment.
	ReceiptSecret string `json:"-"`
}

// Default is the casual variant: first to 3 games, single set.
func Default() *GameConfig {
	return &GameConfig{
		GamesPerSet: 3,
		BestOf:      1,
		Level:       "medium",
		Timing: TimingConfig{
			ServeDelayMs:  1000,
			WindowOpenMs:  200,
			WindowCloseMs: 800,
			PointPauseMs:  1500,
			SwingMs:       300,
		},
		PlayerSpeed:   260,
		TickRate:      30,
		ReceiptIssuer: "tennis",
	}
}

var levels = map[string]bool{"easy": true, "medium": true, "hard": true}

// Validate rejects configurations that would produce a degenerate match.
func (c *GameConfig) Validate() error {
	if c.GamesPerSet <= 0 {
		return fmt.Errorf("%w: games_per_set must be positive, got %d", ErrInvalidConfig, c.GamesPerSet)
	}
	if c.BestOf <= 0 || c.BestOf%2 == 0 {
		return fmt.Errorf("%w: best_of must be a positive odd number, got %d", ErrInvalidConfig, c.BestOf)
	}
	if !levels[strings.ToLower(c.Level)] {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidConfig, c.Level)
	}
	if c.Difficulty != nil && (*c.Difficulty < 0 || *c.Difficulty > 1) {
		return fmt.Errorf("%w: difficulty must be within [0,1], got %v", ErrInvalidConfig, *c.Difficulty)
	}
	t := c.Timing
	if t.WindowOpenMs < 0 || t.WindowCloseMs <= t.WindowOpenMs {
		return fmt.Errorf("%w: window must close after it opens (%d/%d ms)", ErrInvalidConfig, t.WindowOpenMs, t.WindowCloseMs)
	}
	if t.ServeDelayMs < 0 || t.PointPauseMs < 0 || t.SwingMs < 0 {
		return fmt.Errorf("%w: timing delays must not be negative", ErrInvalidConfig)
	}
	if (t.BandExtreme == nil) != (t.BandEdge == nil) {
		return fmt.Errorf("%w: band_extreme and band_edge must be set together", ErrInvalidConfig)
	}
	if c.PlayerSpeed <= 0 {
		return fmt.Errorf("%w: player_speed must be positive", ErrInvalidConfig)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides fields from env. Unknown keys are ignored.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	if v, ok := env[EnvGamesPerSet]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvGamesPerSet, err)
		}
		c.GamesPerSet = n
	}
	if v, ok := env[EnvBestOf]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvBestOf, err)
		}
		c.BestOf = n
	}
	if v, ok := env[EnvLevel]; ok && v != "" {
		c.Level = v
	}
	if v, ok := env[EnvDifficulty]; ok && v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvDifficulty, err)
		}
		c.Difficulty = &d
	}
	if v, ok := env[EnvReceiptSecret]; ok {
		c.ReceiptSecret = v
	}
	return nil
}

// Parse decodes data on top of Default, so omitted fields keep their defaults.
func Parse(data []byte) (*GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, nil
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		if err := c.Validate(); err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns a copy of the loaded configuration, or Default when nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	c := *cfg
	return &c
}
