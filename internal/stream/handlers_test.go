package stream

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func dialTestApp(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}

	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = ln.Close()
	})

	wsURL := "ws://" + ln.Addr().String() + "/stream/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil))

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/session-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

func TestStreamHandlersDeliverMapEvents(t *testing.T) {
	hub := NewHub(nil)
	conn := dialTestApp(t, hub, "session-1")
	defer conn.Close()

	hub.BroadcastEvent("session-1", map[string]any{"type": "marker", "workout_id": "123"})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var evt map[string]any
	if err := json.Unmarshal(msg, &evt); err != nil || evt["type"] != "marker" {
		t.Fatalf("unexpected event: %s", msg)
	}
}

func TestStreamHandlersDisconnectedClient(t *testing.T) {
	hub := NewHub(nil)
	conn := dialTestApp(t, hub, "session-2")

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	conn.Close()

	// broadcast after disconnect must not block or panic
	hub.Broadcast("session-2", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
