package nakama

import (
	"context"
	"fmt"

	"github.com/Buster-Games/buster-games/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// accountUpdater is the subset of runtime.NakamaModule the account adapter needs.
type accountUpdater interface {
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk accountUpdater
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// SetPlayerProfile writes the display name and stores the starting level in
// account metadata. The username is left untouched.
func (a *NakamaAccountAdapter) SetPlayerProfile(ctx context.Context, userID string, profile ports.PlayerProfile) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	metadata := map[string]interface{}{
		"game":           MatchNameTennis,
		"starting_level": profile.StartingLevel,
	}
	if err := a.nk.AccountUpdateId(ctx, userID, "", metadata, profile.DisplayName, "", "", "", ""); err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", userID, err)
	}
	return nil
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
