package sim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/domain"
)

// RunnerConfig tunes a batch of simulated matches.
type RunnerConfig struct {
	Seed     int64
	Accuracy float64
	Parallel int // concurrent matches, 0 means GOMAXPROCS
	Step     time.Duration
	MaxClock time.Duration
	Options  []app.Option // applied to every match
}

// Runner plays many independent matches concurrently.
type Runner struct {
	settings app.Settings
	cfg      RunnerConfig
	logger   zerolog.Logger
}

func NewRunner(settings app.Settings, cfg RunnerConfig, logger zerolog.Logger) (*Runner, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = runtime.GOMAXPROCS(0)
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.MaxClock <= 0 {
		cfg.MaxClock = DefaultMaxMatchClock
	}
	return &Runner{settings: settings, cfg: cfg, logger: logger}, nil
}

// Run plays n matches. Match i uses seed Seed+i, so a batch is reproducible
// regardless of scheduling. The first failure cancels the rest.
func (r *Runner) Run(ctx context.Context, n int) ([]Result, error) {
	results := make([]Result, n)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			seed := r.cfg.Seed + int64(i)
			res, err := r.playOne(gCtx, i, seed)
			if err != nil {
				r.logger.Error().Err(err).Int("match", i).Int64("seed", seed).Msg("simulated match failed")
				return err
			}
			results[i] = res
			r.logger.Debug().
				Str("match_id", res.MatchID).
				Int64("seed", seed).
				Str("winner", res.Winner.String()).
				Int("points", res.PointsPlayed).
				Int("longest_rally", res.LongestRally).
				Dur("clock", res.Clock).
				Msg("simulated match finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) playOne(ctx context.Context, i int, seed int64) (Result, error) {
	opts := append([]app.Option{app.WithID(fmt.Sprintf("sim-%d", i))}, r.cfg.Options...)
	m, err := app.NewMatch(r.settings, rand.New(rand.NewSource(seed)), opts...)
	if err != nil {
		return Result{}, err
	}
	player := NewAutoplayer(r.cfg.Accuracy, rand.New(rand.NewSource(^seed)))
	player.step = r.cfg.Step
	player.maxClock = r.cfg.MaxClock

	res, err := player.Play(ctx, m)
	if err != nil {
		return Result{}, err
	}
	res.Seed = seed
	return res, nil
}

// Summary aggregates a batch of results.
type Summary struct {
	Matches         int
	PlayerWins      int
	OpponentWins    int
	WinRate         float64 // player wins / matches
	AvgPoints       float64
	AvgLongestRally float64
	LongestRally    int
	AvgClock        time.Duration
}

func Summarize(results []Result) Summary {
	s := Summary{Matches: len(results)}
	if s.Matches == 0 {
		return s
	}
	var points, rallies int
	var clock time.Duration
	for _, r := range results {
		if r.Winner == domain.SidePlayer {
			s.PlayerWins++
		} else {
			s.OpponentWins++
		}
		points += r.PointsPlayed
		rallies += r.LongestRally
		clock += r.Clock
		if r.LongestRally > s.LongestRally {
			s.LongestRally = r.LongestRally
		}
	}
	n := float64(s.Matches)
	s.WinRate = float64(s.PlayerWins) / n
	s.AvgPoints = float64(points) / n
	s.AvgLongestRally = float64(rallies) / n
	s.AvgClock = clock / time.Duration(s.Matches)
	return s
}

// Log writes the summary as one structured line.
func (s Summary) Log(logger zerolog.Logger) {
	logger.Info().
		Int("matches", s.Matches).
		Int("player_wins", s.PlayerWins).
		Int("opponent_wins", s.OpponentWins).
		Float64("win_rate", s.WinRate).
		Float64("avg_points", s.AvgPoints).
		Float64("avg_longest_rally", s.AvgLongestRally).
		Int("longest_rally", s.LongestRally).
		Dur("avg_clock", s.AvgClock).
		Msg("simulation summary")
}
