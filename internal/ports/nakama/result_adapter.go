package nakama

import (
	"context"
	"fmt"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// notifier is the subset of runtime.NakamaModule the result adapter needs.
type notifier interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

// NakamaResultAdapter implements ports.ResultPort with a Nakama notification to the player.
type NakamaResultAdapter struct {
	nk notifier
}

// NewNakamaResultAdapter creates a new result adapter.
func NewNakamaResultAdapter(nk runtime.NakamaModule) *NakamaResultAdapter {
	return &NakamaResultAdapter{nk: nk}
}

// DeliverResult sends the result as a non-persistent notification. Campaign
// progress is stored by the client, so nothing is written server side.
func (a *NakamaResultAdapter) DeliverResult(ctx context.Context, userID string, result app.MatchResult, receipt string) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	sets := make([]interface{}, len(result.Sets))
	for i, set := range result.Sets {
		sets[i] = map[string]interface{}{"player": set.Player, "opponent": set.Opponent}
	}
	content := map[string]interface{}{
		"match_id":      result.MatchID,
		"winner":        result.Winner.String(),
		"player_won":    result.PlayerWon(),
		"player_sets":   result.PlayerSets,
		"opponent_sets": result.OpponentSets,
		"sets":          sets,
		"points_played": result.PointsPlayed,
		"longest_rally": result.LongestRally,
		"difficulty":    result.Difficulty,
	}
	if receipt != "" {
		content["receipt"] = receipt
	}

	subject := "Match lost"
	if result.PlayerWon() {
		subject = "Match won"
	}
	if err := a.nk.NotificationSend(ctx, userID, subject, content, NotificationCodeMatchResult, "", false); err != nil {
		return fmt.Errorf("failed to send result to user %s: %w", userID, err)
	}
	return nil
}

var _ ports.ResultPort = (*NakamaResultAdapter)(nil)
