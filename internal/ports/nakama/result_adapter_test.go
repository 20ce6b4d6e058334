package nakama

import (
	"context"
	"errors"
	"testing"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/domain"
)

type notification struct {
	userID     string
	subject    string
	content    map[string]interface{}
	code       int
	persistent bool
}

type mockNotifier struct {
	sent []notification
	err  error
}

func (m *mockNotifier) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	m.sent = append(m.sent, notification{userID: userID, subject: subject, content: content, code: code, persistent: persistent})
	return m.err
}

func TestDeliverResultSendsNotification(t *testing.T) {
	nk := &mockNotifier{}
	adapter := &NakamaResultAdapter{nk: nk}
	result := app.MatchResult{
		MatchID:      "match-1",
		Winner:       domain.SidePlayer,
		PlayerSets:   1,
		Sets:         []domain.SetScore{{Player: 3, Opponent: 1}},
		PointsPlayed: 20,
		Difficulty:   0.5,
	}

	if err := adapter.DeliverResult(context.Background(), "user-1", result, "signed"); err != nil {
		t.Fatalf("DeliverResult() error: %v", err)
	}
	if len(nk.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(nk.sent))
	}
	n := nk.sent[0]
	if n.userID != "user-1" || n.code != NotificationCodeMatchResult || n.persistent {
		t.Fatalf("notification = %+v", n)
	}
	if n.subject != "Match won" {
		t.Fatalf("subject = %q, want Match won", n.subject)
	}
	if n.content["receipt"] != "signed" || n.content["match_id"] != "match-1" || n.content["player_won"] != true {
		t.Fatalf("content = %v", n.content)
	}
}

func TestDeliverResultOmitsEmptyReceipt(t *testing.T) {
	nk := &mockNotifier{}
	adapter := &NakamaResultAdapter{nk: nk}
	if err := adapter.DeliverResult(context.Background(), "user-1", app.MatchResult{MatchID: "m", Winner: domain.SideOpponent}, ""); err != nil {
		t.Fatalf("DeliverResult() error: %v", err)
	}
	if _, ok := nk.sent[0].content["receipt"]; ok {
		t.Fatal("content carries an empty receipt")
	}
	if nk.sent[0].subject != "Match lost" {
		t.Fatalf("subject = %q, want Match lost", nk.sent[0].subject)
	}
}

func TestDeliverResultErrors(t *testing.T) {
	adapter := &NakamaResultAdapter{nk: &mockNotifier{}}
	if err := adapter.DeliverResult(context.Background(), "", app.MatchResult{}, ""); err == nil {
		t.Fatal("expected error for empty user")
	}

	sendErr := errors.New("offline")
	adapter = &NakamaResultAdapter{nk: &mockNotifier{err: sendErr}}
	if err := adapter.DeliverResult(context.Background(), "user-1", app.MatchResult{}, ""); !errors.Is(err, sendErr) {
		t.Fatalf("DeliverResult() = %v, want wrapped send error", err)
	}
}
