package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/config"
)

// dialLive connects a WebSocket client to the test server's live endpoint
// and waits until the hub has registered it.
func dialLive(t *testing.T, srv *Server, router http.Handler) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing live endpoint: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestLiveFeed_PunchReachesClient(t *testing.T) {
	srv, router := newTestServer(t, config.API{})
	conn := dialLive(t, srv, router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.startLiveFeeds(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decoding broadcast: %v", err)
	}
	if msg.Type != "punch" {
		t.Errorf("message type = %q, want punch", msg.Type)
	}
	payload, ok := msg.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload = %T, want object", msg.Payload)
	}
	if payload["device_ip"] != "10.0.0.1" {
		t.Errorf("device_ip = %v, want 10.0.0.1", payload["device_ip"])
	}
	if payload["seq"] != float64(1) {
		t.Errorf("seq = %v, want 1", payload["seq"])
	}
}

func TestHub_BroadcastToClient(t *testing.T) {
	srv, router := newTestServer(t, config.API{})
	conn := dialLive(t, srv, router)

	srv.Hub().BroadcastPunch(map[string]string{"device_ip": "10.0.0.9"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if !strings.Contains(string(data), "10.0.0.9") {
		t.Errorf("broadcast missing payload:\n%s", data)
	}
}
