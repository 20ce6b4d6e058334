package nakama

import (
	"context"
	"errors"
	"testing"

	"github.com/Buster-Games/buster-games/internal/ports"
)

type accountUpdate struct {
	userID      string
	username    string
	metadata    map[string]interface{}
	displayName string
}

type mockAccounts struct {
	err     error
	updates []accountUpdate
}

func (m *mockAccounts) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	m.updates = append(m.updates, accountUpdate{userID: userID, username: username, metadata: metadata, displayName: displayName})
	return m.err
}

func TestAccountAdapterSetsProfile(t *testing.T) {
	nk := &mockAccounts{}
	adapter := &NakamaAccountAdapter{nk: nk}

	err := adapter.SetPlayerProfile(context.Background(), "user-1", ports.PlayerProfile{DisplayName: "SwiftLob1234", StartingLevel: "easy"})
	if err != nil {
		t.Fatalf("SetPlayerProfile() error = %v", err)
	}
	if len(nk.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(nk.updates))
	}
	u := nk.updates[0]
	if u.userID != "user-1" || u.displayName != "SwiftLob1234" {
		t.Fatalf("update = %+v", u)
	}
	if u.username != "" {
		t.Fatalf("username = %q, want it left unchanged", u.username)
	}
	if u.metadata["starting_level"] != "easy" || u.metadata["game"] != MatchNameTennis {
		t.Fatalf("metadata = %v", u.metadata)
	}
}

func TestAccountAdapterErrors(t *testing.T) {
	backendErr := errors.New("db down")
	adapter := &NakamaAccountAdapter{nk: &mockAccounts{err: backendErr}}

	if err := adapter.SetPlayerProfile(context.Background(), "", ports.PlayerProfile{}); err == nil {
		t.Fatal("expected error for empty user")
	}
	err := adapter.SetPlayerProfile(context.Background(), "user-1", ports.PlayerProfile{DisplayName: "x"})
	if !errors.Is(err, backendErr) {
		t.Fatalf("SetPlayerProfile() error = %v, want wrapped %v", err, backendErr)
	}
}
