package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", n, h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_PublishReachesClients(t *testing.T) {
	h := NewHub(nil, "", logger.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitForClients(t, h, 1)

	h.Publish(context.Background(), models.WSMessage{Type: models.EventMessagesCleared, Payload: []string{}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var got models.WSMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Invalid event JSON: %v", err)
	}
	if got.Type != models.EventMessagesCleared {
		t.Errorf("Expected %q, got %q", models.EventMessagesCleared, got.Type)
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	h := NewHub(nil, "", logger.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    bool
	}{
		{"no origin header", "http://localhost:5173", "", true},
		{"matching origin", "http://localhost:5173", "http://localhost:5173", true},
		{"other origin", "http://localhost:5173", "http://evil.test", false},
		{"wildcard", "*", "http://anything.test", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if got := checkOrigin(tc.allowed)(req); got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestHub_RunWithoutRedisStopsOnCancel(t *testing.T) {
	h := NewHub(nil, "", logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
