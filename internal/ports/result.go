package ports

import (
	"context"

	"github.com/Buster-Games/buster-games/internal/app"
)

// ResultPort hands a finished match to the campaign layer.
type ResultPort interface {
	// DeliverResult passes the final result for userID along with its signed
	// receipt. receipt is empty when signing is not configured.
	DeliverResult(ctx context.Context, userID string, result app.MatchResult, receipt string) error
}
