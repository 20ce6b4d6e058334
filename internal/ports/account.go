package ports

import "context"

// PlayerProfile is what a new player starts with on the court.
type PlayerProfile struct {
	DisplayName string
	// StartingLevel is the opponent level offered first, e.g. "easy".
	StartingLevel string
}

// AccountPort stores player profiles on the account backend.
type AccountPort interface {
	// SetPlayerProfile replaces the display name and tennis metadata of userID.
	SetPlayerProfile(ctx context.Context, userID string, profile PlayerProfile) error
}
