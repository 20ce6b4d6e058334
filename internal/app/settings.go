package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Buster-Games/buster-games/internal/bot"
	"github.com/Buster-Games/buster-games/internal/config"
	"github.com/Buster-Games/buster-games/internal/domain"
)

var ErrInvalidSettings = errors.New("invalid match settings")

// Settings configures one match.
type Settings struct {
	Format     domain.MatchFormat
	Court      domain.Court
	Difficulty float64
	// Level names the opponent shown to the player. Difficulty sets its strength.
	Level  bot.Level
	Flight domain.FlightParams

	ServeDelay       time.Duration // AI serve delay after entering serving
	WindowOpenDelay  time.Duration
	WindowCloseDelay time.Duration
	PointPause       time.Duration
	SwingDuration    time.Duration

	PlayerSpeed float64
	TargetInset float64
	HomeInset   float64

	// Bands enables early/late shot banding. Nil keeps the binary gate.
	Bands *domain.TimingBands
	// FirstServer serves the first point; SideNone means the player.
	FirstServer domain.Side
}

func DefaultSettings() Settings {
	return Settings{
		Format:           domain.CasualFormat,
		Court:            domain.DefaultCourt,
		Difficulty:       bot.LevelMedium.Difficulty(),
		Level:            bot.LevelMedium,
		Flight:           domain.DefaultFlightParams,
		ServeDelay:       DefaultServeDelay,
		WindowOpenDelay:  DefaultWindowOpenDelay,
		WindowCloseDelay: DefaultWindowCloseDelay,
		PointPause:       DefaultPointPause,
		SwingDuration:    DefaultSwingDuration,
		PlayerSpeed:      DefaultPlayerSpeed,
		TargetInset:      DefaultTargetInset,
		HomeInset:        DefaultHomeInset,
		FirstServer:      domain.SidePlayer,
	}
}

func (s Settings) Validate() error {
	if err := s.Format.Validate(); err != nil {
		return err
	}
	if err := s.Court.Validate(); err != nil {
		return err
	}
	if math.IsNaN(s.Difficulty) || s.Difficulty < 0 || s.Difficulty > 1 {
		return fmt.Errorf("%w: %v", bot.ErrInvalidDifficulty, s.Difficulty)
	}
	if s.WindowOpenDelay < 0 || s.WindowCloseDelay <= s.WindowOpenDelay {
		return fmt.Errorf("%w: window open %v must precede close %v", ErrInvalidSettings, s.WindowOpenDelay, s.WindowCloseDelay)
	}
	if s.ServeDelay < 0 || s.PointPause < 0 || s.SwingDuration < 0 {
		return fmt.Errorf("%w: negative delay", ErrInvalidSettings)
	}
	if s.PlayerSpeed <= 0 {
		return fmt.Errorf("%w: player speed must be positive", ErrInvalidSettings)
	}
	if s.TargetInset < 0 || s.HomeInset < 0 {
		return fmt.Errorf("%w: negative inset", ErrInvalidSettings)
	}
	if s.Flight.MinDuration <= 0 || s.Flight.MaxDuration < s.Flight.MinDuration {
		return fmt.Errorf("%w: flight duration range [%v,%v]", ErrInvalidSettings, s.Flight.MinDuration, s.Flight.MaxDuration)
	}
	if s.Bands != nil {
		if err := s.Bands.Validate(); err != nil {
			return err
		}
	}
	if s.FirstServer != domain.SideNone && !s.FirstServer.Valid() {
		return fmt.Errorf("%w: first server %d", ErrInvalidSettings, s.FirstServer)
	}
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// SettingsFromConfig maps a loaded GameConfig onto match settings.
func SettingsFromConfig(c *config.GameConfig) (Settings, error) {
	s := DefaultSettings()
	if c == nil {
		return s, nil
	}
	s.Format = domain.MatchFormat{GamesPerSet: c.GamesPerSet, BestOf: c.BestOf}

	level, err := bot.ParseLevel(c.Level)
	if err != nil {
		return Settings{}, err
	}
	s.Level = level
	s.Difficulty = level.Difficulty()
	if c.Difficulty != nil {
		s.Difficulty = *c.Difficulty
	}

	if c.Court != nil {
		s.Court = domain.Court{
			Left:   c.Court.Left,
			Right:  c.Court.Right,
			Top:    c.Court.Top,
			Bottom: c.Court.Bottom,
			NetY:   c.Court.NetY,
		}
	}

	t := c.Timing
	s.ServeDelay = ms(t.ServeDelayMs)
	s.WindowOpenDelay = ms(t.WindowOpenMs)
	s.WindowCloseDelay = ms(t.WindowCloseMs)
	s.PointPause = ms(t.PointPauseMs)
	s.SwingDuration = ms(t.SwingMs)
	if t.BandExtreme != nil && t.BandEdge != nil {
		s.Bands = &domain.TimingBands{Extreme: *t.BandExtreme, Edge: *t.BandEdge}
	}
	if c.PlayerSpeed > 0 {
		s.PlayerSpeed = c.PlayerSpeed
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
