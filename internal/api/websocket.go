package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zkfleet/zkfleet-core/internal/infrastructure/logging"
)

// WebSocket constants.
const (
	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256

	// wsWriteTimeout bounds a single frame write to a slow client.
	wsWriteTimeout = 10 * time.Second
)

// WSMessage is the envelope for messages sent to WebSocket clients.
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Payload   any    `json:"payload,omitempty"`
}

// Hub manages WebSocket connections and fans live punches out to them.
// Every connected client receives every punch; there is one event stream.
type Hub struct {
	logger  *logging.Logger
	clients map[*wsClient]struct{}
	mu      sync.RWMutex
}

// wsClient is one connected WebSocket client.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// The API listens on a closed attendance network.
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// register adds a client to the hub.
func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// unregister removes a client. Only the goroutine that removes the client
// from the map closes the send channel, preventing double-close panics
// during shutdown.
func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastPunch sends one live punch to every connected client. A client
// whose send buffer is full is dropped; a stalled dashboard must never stall
// the capture loop.
func (h *Hub) BroadcastPunch(payload any) {
	msg := WSMessage{
		Type:      "punch",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding punch broadcast", "error", err)
		return
	}

	// Sends happen under the read lock so they cannot race the shutdown
	// path closing the channels under the write lock. Dropped clients are
	// unregistered afterwards; unregister needs the write lock itself.
	h.mu.RLock()
	var dropped []*wsClient
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dropped {
		h.unregister(client)
	}
}

// handleLive upgrades the connection and streams live punches to it.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}
	s.hub.register(client)

	go client.writeLoop()
	client.readLoop(s.hub)
}

// writeLoop pumps the send channel out to the connection. Exits when the
// channel closes (unregister or hub shutdown).
func (c *wsClient) writeLoop() {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// readLoop discards inbound frames; the stream is one-way. It exists to
// notice the client going away.
func (c *wsClient) readLoop(hub *Hub) {
	defer hub.unregister(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
