package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Identity is the public face of an AI opponent.
type Identity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

// ID is the Nakama user id once provisioned, otherwise the device id, so an
// unprovisioned bot still has a stable handle.
func (i Identity) ID() string {
	switch {
	case i.UserID != "":
		return i.UserID
	case i.DeviceID != "":
		return i.DeviceID
	default:
		return "bot-" + i.Username
	}
}

// Level parses the identity's difficulty name.
func (i Identity) Level() (Level, error) {
	return ParseLevel(i.Difficulty)
}

var defaultIdentities = []Identity{
	{DeviceID: "tennis-bot-easy", Username: "rookie_rally", DisplayName: "Rookie Rally", Difficulty: "easy", AvatarIndex: 0},
	{DeviceID: "tennis-bot-medium", Username: "club_carla", DisplayName: "Club Carla", Difficulty: "medium", AvatarIndex: 1},
	{DeviceID: "tennis-bot-hard", Username: "ace_anders", DisplayName: "Ace Anders", Difficulty: "hard", AvatarIndex: 2},
}

var (
	identityMu    sync.RWMutex
	identities    = append([]Identity(nil), defaultIdentities...)
	identityByID  = map[string]Identity{}
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities replaces the built-in roster with the profiles in path.
// Only the first call reads the file.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var loaded []Identity
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		for _, id := range loaded {
			if _, err := id.Level(); err != nil {
				loadErr = fmt.Errorf("bot %q: %w", id.Username, err)
				return
			}
		}
		identityMu.Lock()
		identities = loaded
		identityByID = map[string]Identity{}
		for _, id := range loaded {
			if id.UserID != "" {
				identityByID[id.UserID] = id
			}
		}
		identityMu.Unlock()
	})
	return loadErr
}

// IdentityFor returns the first roster entry at level, or a generated one.
func IdentityFor(level Level) Identity {
	identityMu.RLock()
	defer identityMu.RUnlock()
	for _, id := range identities {
		if l, err := id.Level(); err == nil && l == level {
			return id
		}
	}
	return Identity{
		UserID:      fmt.Sprintf("bot-%s", level),
		Username:    fmt.Sprintf("bot_%s", level),
		DisplayName: fmt.Sprintf("AI Player (%s)", level),
		Difficulty:  level.String(),
	}
}

// IsBot reports whether userID belongs to a provisioned opponent.
func IsBot(userID string) bool {
	identityMu.RLock()
	defer identityMu.RUnlock()
	_, ok := identityByID[userID]
	return ok
}

// ProvisionBots ensures every roster entry has a Nakama account flagged with is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identityMu.Lock()
		defer identityMu.Unlock()
		for i := range identities {
			identity := &identities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			identityByID[userID] = *identity
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
}
