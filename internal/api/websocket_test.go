package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sentinel/internal/game"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func newHubServer(t *testing.T, origins []string) (*WebSocketHub, string) {
	t.Helper()
	hub := NewWebSocketHub(origins)
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		hub.Stop()
		ts.Close()
	})
	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *WebSocketHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testSnapshot() *game.GameSnapshot {
	return &game.GameSnapshot{
		TickNumber: 7,
		Seed:       1,
		Enemies:    []game.EnemySnapshot{{ID: "drone-1", Kind: "drone", State: "patrol", Active: true}},
		ByState:    map[string]int{"patrol": 1},
	}
}

func TestWebSocketJSONFrames(t *testing.T) {
	hub, url := newHubServer(t, []string{"*"})
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	hub.Broadcast(Envelope{Event: "sim:state", Data: testSnapshot()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Errorf("Expected text frame, got %d", msgType)
	}

	var env struct {
		Event string            `json:"event"`
		Data  game.GameSnapshot `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Event != "sim:state" {
		t.Errorf("Expected event sim:state, got %q", env.Event)
	}
	if env.Data.TickNumber != 7 || len(env.Data.Enemies) != 1 {
		t.Errorf("Expected tick 7 with one enemy, got tick %d with %d", env.Data.TickNumber, len(env.Data.Enemies))
	}
}

func TestWebSocketMsgpackFrames(t *testing.T) {
	hub, url := newHubServer(t, []string{"*"})
	conn := dial(t, url+"?codec=msgpack")
	waitForClients(t, hub, 1)

	hub.Broadcast(Envelope{Event: "sim:state", Data: testSnapshot()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("Expected binary frame, got %d", msgType)
	}

	var env struct {
		Event string            `msgpack:"event"`
		Data  game.GameSnapshot `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(data, &env); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Event != "sim:state" {
		t.Errorf("Expected event sim:state, got %q", env.Event)
	}
	if len(env.Data.Enemies) != 1 || env.Data.Enemies[0].State != "patrol" {
		t.Errorf("Expected one patrolling enemy, got %+v", env.Data.Enemies)
	}
}

func TestWebSocketMixedCodecs(t *testing.T) {
	hub, url := newHubServer(t, []string{"*"})
	jsonConn := dial(t, url)
	packConn := dial(t, url+"?codec=msgpack")
	waitForClients(t, hub, 2)

	hub.Broadcast(Envelope{Event: "sim:state", Data: testSnapshot()})

	for name, conn := range map[string]*websocket.Conn{"json": jsonConn, "msgpack": packConn} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Errorf("%s client: read failed: %v", name, err)
		}
	}
}

func TestWebSocketOriginRejected(t *testing.T) {
	_, url := newHubServer(t, []string{"http://localhost:*"})

	header := http.Header{}
	header.Set("Origin", "http://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("Expected dial to fail for a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}
}

func TestWebSocketDisconnectUnregisters(t *testing.T) {
	hub, url := newHubServer(t, []string{"*"})
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
	if n := hub.limiter.Count("127.0.0.1"); n != 0 {
		t.Errorf("Expected per-IP slot released, got %d", n)
	}
}

func TestBroadcastLoop(t *testing.T) {
	hub, url := newHubServer(t, []string{"*"})
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	hub.StartBroadcastLoop(testSnapshot, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("Expected a pushed snapshot, got %v", err)
	}
}

func TestCodecEncode(t *testing.T) {
	env := Envelope{Event: "sim:state", Data: map[string]int{"tick": 1}}

	mt, b, err := CodecJSON.Encode(env)
	if err != nil || mt != websocket.TextMessage || !strings.Contains(string(b), `"sim:state"`) {
		t.Errorf("JSON encode: type %d, err %v, body %s", mt, err, b)
	}
	mt, _, err = CodecMsgpack.Encode(env)
	if err != nil || mt != websocket.BinaryMessage {
		t.Errorf("msgpack encode: type %d, err %v", mt, err)
	}
}
