package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"os"
	"time"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/bot"
	"github.com/Buster-Games/buster-games/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// loadConfig reads data/game_config.json when present and applies runtime env overrides.
func loadConfig(ctx context.Context, logger runtime.Logger) (*config.GameConfig, error) {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Warn("InitModule: No game config at %s, using defaults.", gameConfigPath)
	}
	cfg := config.GetGameConfig()

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitModule wires RPCs, hooks and the match handler for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	cfg, err := loadConfig(ctx, logger)
	if err != nil {
		logger.Error("InitModule: Invalid game config: %v", err)
		return err
	}

	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities, using built-in roster: %v", err)
	}
	bot.ProvisionBots(ctx, nk, logger)

	svc, err := app.NewServiceFromConfig(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		logger.Error("InitModule: Failed to build match service: %v", err)
		return err
	}
	if !svc.Receipts().Enabled() {
		logger.Warn("InitModule: %s is not set, match results will be unsigned.", config.EnvReceiptSecret)
	}

	if err := RegisterRPCs(initializer, svc.BaseSettings().Level); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	handler := newMatchHandler(svc, NewNakamaResultAdapter(nk), cfg.TickRate)
	if err := initializer.RegisterMatch(MatchNameTennis, handler.NewMatch); err != nil {
		return err
	}

	settings := svc.BaseSettings()
	logger.Info("Tennis Go module loaded (games_per_set=%d, best_of=%d, difficulty=%.2f, tick_rate=%d).",
		settings.Format.GamesPerSet, settings.Format.BestOf, settings.Difficulty, handler.tickRate)
	return nil
}
