package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Buster-Games/buster-games/internal/bot"
	"github.com/Buster-Games/buster-games/internal/config"
)

var ErrMatchNotOver = errors.New("match not over")

// Service contains tennis use-cases: creating practice matches from config and
// signing their results.
type Service struct {
	mu       sync.Mutex
	rng      *rand.Rand
	base     Settings
	receipts *ReceiptService
}

// NewService constructs a Service with provided rng or a time-seeded default.
// Each match gets its own rng seeded from this one.
func NewService(rng *rand.Rand, base Settings, receipts *ReceiptService) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, base: base, receipts: receipts}
}

// NewServiceFromConfig builds settings and the receipt signer from cfg.
func NewServiceFromConfig(cfg *config.GameConfig, rng *rand.Rand) (*Service, error) {
	settings, err := SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(rng, settings, NewReceiptService(cfg.ReceiptSecret, cfg.ReceiptIssuer)), nil
}

func (s *Service) BaseSettings() Settings { return s.base }

func (s *Service) Receipts() *ReceiptService { return s.receipts }

// StartPractice creates a match against the opponent preset named by level.
// An empty level keeps the configured opponent.
func (s *Service) StartPractice(level string, opts ...Option) (*Match, bot.Identity, error) {
	settings := s.base
	identity := bot.IdentityFor(settings.Level)
	if level != "" {
		lvl, err := bot.ParseLevel(level)
		if err != nil {
			return nil, bot.Identity{}, err
		}
		settings.Difficulty = lvl.Difficulty()
		settings.Level = lvl
		identity = bot.IdentityFor(lvl)
	}
	m, err := NewMatch(settings, s.matchRand(), opts...)
	if err != nil {
		return nil, bot.Identity{}, err
	}
	return m, identity, nil
}

// FinishMatch returns the final result and, when signing is configured, its receipt.
func (s *Service) FinishMatch(m *Match, userID string) (MatchResult, string, error) {
	result, ok := m.Result()
	if !ok {
		return MatchResult{}, "", ErrMatchNotOver
	}
	if !s.receipts.Enabled() {
		return result, "", nil
	}
	receipt, err := s.receipts.Sign(userID, result)
	if err != nil {
		return result, "", err
	}
	return result, receipt, nil
}

func (s *Service) matchRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}
