// Command tennis-sim plays batches of headless matches between the bot
// opponent and a scripted player and logs the aggregate outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/bot"
	"github.com/Buster-Games/buster-games/internal/config"
	"github.com/Buster-Games/buster-games/internal/logger"
	"github.com/Buster-Games/buster-games/internal/sim"
)

type flags struct {
	Matches    int
	Seed       int64
	Accuracy   float64
	Parallel   int
	Level      string
	ConfigPath string
	EnvPath    string
	Timeout    time.Duration
}

type logOptions struct {
	fx.Out

	Level  string `name:"log_level"`
	Pretty bool   `name:"log_pretty"`
}

func parseFlags() (flags, logOptions) {
	f := flags{}
	l := logOptions{}
	flag.IntVar(&f.Matches, "n", 100, "matches to play")
	flag.Int64Var(&f.Seed, "seed", time.Now().UnixNano(), "base seed; match i uses seed+i")
	flag.Float64Var(&f.Accuracy, "accuracy", 0.75, "probability the scripted player swings inside a window")
	flag.IntVar(&f.Parallel, "parallel", 0, "concurrent matches (0 = GOMAXPROCS)")
	flag.StringVar(&f.Level, "level", "", "opponent level: easy, medium or hard (default from config)")
	flag.StringVar(&f.ConfigPath, "config", "", "game config JSON")
	flag.StringVar(&f.EnvPath, "env", ".env", "dotenv file merged under the process environment")
	flag.DurationVar(&f.Timeout, "timeout", 5*time.Minute, "wall clock limit for the batch")
	flag.StringVar(&l.Level, "log-level", "info", "log level")
	flag.BoolVar(&l.Pretty, "pretty", false, "human readable logs")
	flag.Parse()
	return f, l
}

// loadConfig reads the optional JSON config and applies env overrides.
func loadConfig(f flags, log zerolog.Logger) (*config.GameConfig, error) {
	if f.ConfigPath != "" {
		if err := config.LoadGameConfig(f.ConfigPath); err != nil {
			return nil, err
		}
	}
	cfg := config.GetGameConfig()

	env, err := config.ReadEnv(f.EnvPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	if f.Level != "" {
		cfg.Level = f.Level
		cfg.Difficulty = nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Int("games_per_set", cfg.GamesPerSet).
		Int("best_of", cfg.BestOf).
		Str("level", cfg.Level).
		Msg("configuration loaded")
	return cfg, nil
}

func newRunner(f flags, cfg *config.GameConfig, log zerolog.Logger) (*sim.Runner, error) {
	settings, err := app.SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return sim.NewRunner(settings, sim.RunnerConfig{
		Seed:     f.Seed,
		Accuracy: f.Accuracy,
		Parallel: f.Parallel,
	}, log)
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, f flags, runner *sim.Runner, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), f.Timeout)
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				start := time.Now()
				results, err := runner.Run(ctx, f.Matches)
				if err != nil {
					log.Error().Err(err).Msg("simulation failed")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				sim.Summarize(results).Log(log.With().Int64("seed", f.Seed).Dur("elapsed", time.Since(start)).Logger())
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

func main() {
	f, l := parseFlags()
	if _, err := bot.ParseLevel(f.Level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fx.New(
		fx.NopLogger,
		fx.Supply(f),
		fx.Provide(func() logOptions { return l }),
		logger.Module,
		fx.Provide(loadConfig, newRunner),
		fx.Invoke(run),
	).Run()
}
