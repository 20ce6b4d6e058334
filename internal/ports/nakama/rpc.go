package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Buster-Games/buster-games/internal/bot"

	"github.com/heroiclabs/nakama-common/runtime"
)

// PracticeMatchRequest is the optional payload of the practice_match RPC.
type PracticeMatchRequest struct {
	Level string `json:"level"`
}

// PracticeMatchResponse is returned to clients after the match is created.
type PracticeMatchResponse struct {
	MatchID  string `json:"match_id"`
	Level    string `json:"level"`
	Opponent string `json:"opponent"`
}

var (
	errNoUser       = runtime.NewError("authentication required", 16)
	errBadPayload   = runtime.NewError("invalid payload", 3)
	errUnknownLevel = runtime.NewError("unknown opponent level", 3)
	errCreateFailed = runtime.NewError("failed to create match", 13)
)

type rpcFunc func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)

// RegisterRPCs registers Nakama RPC endpoints. defaultLevel names the opponent
// of matches created without a level.
func RegisterRPCs(initializer runtime.Initializer, defaultLevel bot.Level) error {
	return initializer.RegisterRpc(RpcPracticeMatch, rpcPracticeMatch(defaultLevel))
}

// rpcPracticeMatch creates a single-player match reserved for the caller.
//
// Payload: {"level":"easy"|"medium"|"hard"}, optional. Without a level the
// starting level stored at onboarding is used, then the configured default.
// Returns: PracticeMatchResponse as JSON.
func rpcPracticeMatch(defaultLevel bot.Level) rpcFunc {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		return practiceMatch(ctx, logger, nk, payload, defaultLevel)
	}
}

func practiceMatch(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, payload string, defaultLevel bot.Level) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errNoUser
	}

	request := PracticeMatchRequest{}
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Warn("RpcPracticeMatch [User:%s]: Invalid payload: %v", userID, err)
			return "", errBadPayload
		}
	}

	level := strings.ToLower(strings.TrimSpace(request.Level))
	if level == "" {
		level = startingLevel(ctx, logger, nk, userID)
	}
	identity := bot.IdentityFor(defaultLevel)
	if level != "" {
		lvl, err := bot.ParseLevel(level)
		if err != nil {
			if errors.Is(err, bot.ErrUnknownLevel) {
				return "", errUnknownLevel
			}
			return "", errBadPayload
		}
		identity = bot.IdentityFor(lvl)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameTennis, map[string]interface{}{
		ParamUserID: userID,
		ParamLevel:  level,
	})
	if err != nil {
		logger.Error("RpcPracticeMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", errCreateFailed
	}

	logger.Info("RpcPracticeMatch [User:%s]: Created practice %s (level=%q)", userID, matchID, level)
	b, err := json.Marshal(PracticeMatchResponse{MatchID: matchID, Level: level, Opponent: identity.DisplayName})
	if err != nil {
		return "", errCreateFailed
	}
	return string(b), nil
}

// startingLevel reads the level stored at onboarding. Lookup failures fall back
// to the configured default.
func startingLevel(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string) string {
	account, err := nk.AccountGetId(ctx, userID)
	if err != nil {
		logger.Warn("RpcPracticeMatch [User:%s]: Could not read account: %v", userID, err)
		return ""
	}
	raw := account.GetUser().GetMetadata()
	if raw == "" {
		return ""
	}
	var metadata struct {
		StartingLevel string `json:"starting_level"`
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		logger.Warn("RpcPracticeMatch [User:%s]: Invalid account metadata: %v", userID, err)
		return ""
	}
	level := strings.ToLower(metadata.StartingLevel)
	if _, err := bot.ParseLevel(level); err != nil {
		return ""
	}
	return level
}
