package hub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMatchesFilter(t *testing.T) {
	summary := models.ValidationSummary{GameID: "NYA202404050", Kind: models.KindBatting}

	tests := []struct {
		name   string
		filter models.SubscriptionFilter
		want   bool
	}{
		{"empty filter matches everything", models.SubscriptionFilter{}, true},
		{"game matches", models.SubscriptionFilter{GameIDs: []string{"BOS202404010", "NYA202404050"}}, true},
		{"game doesn't match", models.SubscriptionFilter{GameIDs: []string{"BOS202404010"}}, false},
		{"kind matches", models.SubscriptionFilter{Kinds: []string{"batting"}}, true},
		{"kind doesn't match", models.SubscriptionFilter{Kinds: []string{"pitching"}}, false},
		{"both match", models.SubscriptionFilter{GameIDs: []string{"NYA202404050"}, Kinds: []string{"batting"}}, true},
		{"one doesn't match", models.SubscriptionFilter{GameIDs: []string{"NYA202404050"}, Kinds: []string{"pitching"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesFilter(tt.filter, summary); got != tt.want {
				t.Errorf("MatchesFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(log.New(io.Discard))
	go h.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(ctx, w, r)
	}))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		cancel()
		server.Close()
		t.Fatalf("dial: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		cancel()
		server.Close()
	})

	deadline := time.Now().Add(2 * time.Second)
	for h.GetClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return h, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.ServerMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestHub_BroadcastsSummaries(t *testing.T) {
	h, conn := startHub(t)

	h.BroadcastSummary(models.ValidationSummary{GameID: "NYA202404050", Kind: models.KindBatting, Accuracy: 97.5})

	msg := readMessage(t, conn)
	if msg.Type != models.MessageTypeValidation {
		t.Errorf("Type = %s, want validation", msg.Type)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok || payload["game_id"] != "NYA202404050" || payload["accuracy"] != 97.5 {
		t.Errorf("Payload = %v", msg.Payload)
	}

	metrics := h.GetMetrics()
	if metrics["total_connections"] != int64(1) {
		t.Errorf("total_connections = %v, want 1", metrics["total_connections"])
	}
}

func TestHub_SubscriptionFilter(t *testing.T) {
	h, conn := startHub(t)

	if err := conn.WriteJSON(models.ClientMessage{
		Type:    models.MessageTypeSubscribe,
		Payload: json.RawMessage(`{"game_ids":["BOS202404010"]}`),
	}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	// messages are handled in order, so the heartbeat reply means the filter is set
	if err := conn.WriteJSON(models.ClientMessage{Type: models.MessageTypeHeartbeat}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != models.MessageTypeHeartbeat {
		t.Fatalf("Type = %s, want heartbeat", msg.Type)
	}

	h.BroadcastSummary(models.ValidationSummary{GameID: "NYA202404050", Kind: models.KindBatting})
	h.BroadcastSummary(models.ValidationSummary{GameID: "BOS202404010", Kind: models.KindPitching})

	msg := readMessage(t, conn)
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["game_id"] != "BOS202404010" {
		t.Errorf("received %v, want only BOS202404010", payload)
	}
}

func TestHub_UnknownMessageType(t *testing.T) {
	_, conn := startHub(t)

	if err := conn.WriteJSON(models.ClientMessage{Type: "bogus"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != models.MessageTypeError {
		t.Errorf("Type = %s, want error", msg.Type)
	}
}

func TestHub_RegisterAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(log.New(io.Discard))

	finished := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(finished)
	}()
	cancel()
	<-finished

	c := newClient("late", nil, h)
	h.Register(c)

	if c.TrySend(models.ServerMessage{}) {
		t.Error("TrySend() succeeded on a client registered after shutdown")
	}
	h.Unregister(c) // must not block
}
