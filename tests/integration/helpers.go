//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string
	data    chan *rtapi.MatchData
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())

	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	socket := client.NewSocket()
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}

	tc := &TestClient{
		Client:  client,
		Session: session,
		Socket:  socket,
		UserID:  session.UserId,
		data:    make(chan *rtapi.MatchData, 256),
	}
	// Frames arrive every tick; drop them when the buffer is full rather than block the socket.
	socket.OnMatchData = func(data *rtapi.MatchData) {
		select {
		case tc.data <- data:
		default:
		}
	}
	return tc
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

// StartPractice calls the practice_match RPC and joins the returned match.
func (tc *TestClient) StartPractice(t *testing.T, level string) string {
	payload, _ := json.Marshal(map[string]string{"level": level})
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "practice_match", string(payload))
	if err != nil {
		t.Fatalf("RPC practice_match failed: %v", err)
	}

	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil || resp.MatchID == "" {
		t.Fatalf("RPC practice_match returned %q: %v", rpc.Payload, err)
	}

	if _, err := tc.Socket.JoinMatch(context.Background(), nil, resp.MatchID, nil); err != nil {
		t.Fatalf("Failed to join match %s: %v", resp.MatchID, err)
	}
	return resp.MatchID
}

// WaitForMatchState returns the first message with opCode that also passes accept.
func (tc *TestClient) WaitForMatchState(t *testing.T, opCode int64, timeout time.Duration, accept func(*rtapi.MatchData) bool) *rtapi.MatchData {
	deadline := time.After(timeout)
	for {
		select {
		case data := <-tc.data:
			if data.OpCode == opCode && (accept == nil || accept(data)) {
				return data
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for OpCode %d", opCode)
			return nil
		}
	}
}
