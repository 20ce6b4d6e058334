package bot

import (
	"math"
	"time"

	"github.com/Buster-Games/buster-games/internal/domain"
)

// Policy decides the AI opponent's shots. Higher difficulty reaches more balls,
// reacts sooner, hits harder and aims closer to the lines.
type Policy struct {
	difficulty float64
	tuning     Tuning
	rng        domain.Rand
}

func newPolicy(difficulty float64, tuning Tuning, rng domain.Rand) *Policy {
	return &Policy{difficulty: difficulty, tuning: tuning, rng: rng}
}

// WithTuning returns a copy of p using t.
func (p *Policy) WithTuning(t Tuning) *Policy {
	return newPolicy(p.difficulty, t, p.rng)
}

func (p *Policy) Difficulty() float64 { return p.difficulty }

func (p *Policy) Tuning() Tuning { return p.tuning }

// ReachProbability is the chance of getting to a ball that lands distance away.
func (p *Policy) ReachProbability(distance float64) float64 {
	base := 1.0
	if p.tuning.MaxReachDistance > 0 {
		base = 1 - distance/p.tuning.MaxReachDistance
	}
	base = math.Max(p.tuning.MinReach, math.Min(1, base))
	return base + (1-base)*p.difficulty*p.tuning.ReachBias
}

// TargetInset is how far inside the lines returns are aimed.
func (p *Policy) TargetInset() float64 {
	return lerp(p.tuning.InsetEasy, p.tuning.InsetHard, p.difficulty)
}

// DecideReturn draws against the reach probability for a ball landing at
// landing while the opponent stands at position. On a reach the return is aimed
// uniformly inside the player's half. The bool is false when the ball is not
// reached; the outcome is then an unreached fault.
func (p *Policy) DecideReturn(landing, position domain.Vec2, court domain.Court) (domain.ShotOutcome, bool) {
	reach := p.ReachProbability(landing.Dist(position))
	if p.rng.Float64() >= reach {
		return domain.ShotOutcome{Kind: domain.ShotUnreached, Hitter: domain.SideOpponent}, false
	}
	target := court.TargetRect(domain.SidePlayer, p.TargetInset()).RandomPoint(p.rng)
	return domain.ShotOutcome{Kind: domain.ShotReturn, Hitter: domain.SideOpponent, Target: target}, true
}

// Serve picks a target inside the player's service box.
func (p *Policy) Serve(court domain.Court) domain.ShotOutcome {
	target := court.ServiceBox(domain.SidePlayer, p.TargetInset()/2).RandomPoint(p.rng)
	return domain.ShotOutcome{Kind: domain.ShotReturn, Hitter: domain.SideOpponent, Target: target}
}

// Windup is the reaction delay before the opponent commits to a shot.
func (p *Policy) Windup() time.Duration {
	easy := float64(p.tuning.WindupEasy)
	hard := float64(p.tuning.WindupHard)
	return time.Duration(lerp(easy, hard, p.difficulty))
}

// Pace is the flight speed multiplier applied to the opponent's shots.
func (p *Policy) Pace() float64 {
	return 1 + p.tuning.PaceBoost*p.difficulty
}

// MoveSpeed is how fast the opponent chases the ball, in units per second.
func (p *Policy) MoveSpeed() float64 {
	return lerp(p.tuning.MoveSpeedEasy, p.tuning.MoveSpeedHard, p.difficulty)
}
