package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Buster-Games/buster-games/internal/ports"
)

// StartingLevel is the opponent level every new player is offered first.
const StartingLevel = "easy"

// Result captures non-fatal onboarding outcomes.
type Result struct {
	Profile ports.PlayerProfile
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
}

// Service handles post-auth onboarding for new players.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service.
// accounts must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser gives a newly created account a generated court name.
// Profile updates are best-effort: a failure is reported in Result, not as an error,
// so a new player can still start a practice match.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return Result{}, fmt.Errorf("userID is required")
	}

	result := Result{Profile: ports.PlayerProfile{
		DisplayName:   s.generateFriendlyName(),
		StartingLevel: StartingLevel,
	}}
	if err := s.accounts.SetPlayerProfile(ctx, userID, result.Profile); err != nil {
		result.ProfileUpdateErr = err
	}
	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Swift", "Steady", "Brave", "Clever", "Nimble", "Calm", "Mighty", "Sly", "Lucky", "Wild"}
	nouns := []string{"Lob", "Volley", "Smash", "Slice", "Rally", "Drop", "Ace", "Spin", "Racket", "Baseline"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
