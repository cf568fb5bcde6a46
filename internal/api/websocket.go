package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"sentinel/internal/game"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	writeWait      = 2 * time.Second
	clientSendSize = 8
)

// Codec selects the frame encoding a client receives.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// Envelope wraps every pushed message.
type Envelope struct {
	Event string      `json:"event" msgpack:"event"`
	Data  interface{} `json:"data" msgpack:"data"`
}

// Encode renders env for codec and returns the WebSocket message type to use.
func (c Codec) Encode(env Envelope) (int, []byte, error) {
	if c == CodecMsgpack {
		b, err := msgpack.Marshal(env)
		return websocket.BinaryMessage, b, err
	}
	b, err := json.Marshal(env)
	return websocket.TextMessage, b, err
}

// wsClient is one connection with its outbound queue.
type wsClient struct {
	conn  *websocket.Conn
	ip    string
	codec Codec
	send  chan []byte
}

// WebSocketHub fans snapshots out to every connected client.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	upgrader websocket.Upgrader
	limiter  *ConnLimiter
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWebSocketHub creates a hub that accepts browser origins from origins.
func NewWebSocketHub(origins []string) *WebSocketHub {
	h := &WebSocketHub{
		clients:  make(map[*wsClient]struct{}),
		limiter:  NewConnLimiter(MaxWSConnectionsPerIP),
		stopChan: make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if originAllowed(origins, origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes env once per codec and queues it on every client.
// Clients whose queue is full miss the frame.
func (h *WebSocketHub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	frames := make(map[Codec][]byte, 2)
	for c := range h.clients {
		frame, ok := frames[c.codec]
		if !ok {
			_, b, err := c.codec.Encode(env)
			if err != nil {
				log.Printf("⚠️ Encode %s frame: %v", c.codec, err)
				return
			}
			frames[c.codec] = b
			frame = b
		}
		select {
		case c.send <- frame:
		default:
		}
	}
}

// StartBroadcastLoop pushes the latest snapshot every interval until Stop.
func (h *WebSocketHub) StartBroadcastLoop(source func() *game.GameSnapshot, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
				if h.ClientCount() == 0 {
					continue
				}
				h.Broadcast(Envelope{Event: "sim:state", Data: source()})
			}
		}
	}()
}

// Stop ends the broadcast loop and closes every connection.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
		h.mu.Lock()
		for c := range h.clients {
			c.conn.Close()
		}
		h.mu.Unlock()
	})
}

// HandleWebSocket upgrades the request. ?codec=msgpack selects binary frames.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	codec := CodecJSON
	if Codec(r.URL.Query().Get("codec")) == CodecMsgpack {
		codec = CodecMsgpack
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.limiter.Release(ip)
		return
	}

	c := &wsClient{conn: conn, ip: ip, codec: codec, send: make(chan []byte, clientSendSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("📱 Client connected from %s using %s (%d total)", ip, codec, count)
	UpdateWSConnections(count)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump is the only goroutine writing to c.conn.
func (h *WebSocketHub) writePump(c *wsClient) {
	msgType := websocket.TextMessage
	if c.codec == CodecMsgpack {
		msgType = websocket.BinaryMessage
	}
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(msgType, frame); err != nil {
			c.conn.Close()
			continue
		}
		IncrementWSMessages(string(c.codec))
	}
}

// readPump drains client frames until the connection drops, then unregisters.
func (h *WebSocketHub) readPump(c *wsClient) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	h.limiter.Release(c.ip)
	count := len(h.clients)
	close(c.send)
	h.mu.Unlock()

	c.conn.Close()
	log.Printf("📱 Client disconnected (%d remaining)", count)
	UpdateWSConnections(count)
}
