package live

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/zvue/pkg/compile"
)

// MessageType is the type of a message sent to clients.
type MessageType string

const (
	MessageHello MessageType = "hello"
	MessagePatch MessageType = "patch"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type   MessageType    `json:"type"`
	Client string         `json:"client,omitempty"`
	Patch  *compile.Patch `json:"patch,omitempty"`
}

// client is one connection. Writes are serialized per connection.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages WebSocket connections for patch delivery.
type Hub struct {
	clients  map[string]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// onConnect and onDisconnect observe client churn.
	onConnect    func()
	onDisconnect func()
}

// NewHub creates a new hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection, greets the client with its ID and
// keeps it registered until it disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	hello, _ := json.Marshal(Message{Type: MessageHello, Client: c.id})

	// Register and greet under the client lock so the hello is always the
	// first message, even if a broadcast races with the handshake.
	c.mu.Lock()
	h.add(c)
	err = conn.WriteMessage(websocket.TextMessage, hello)
	c.mu.Unlock()
	defer h.remove(c)
	if err != nil {
		return
	}

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Debug("live client connected", "client", c.id)
	if h.onConnect != nil {
		h.onConnect()
	}
}

// remove unregisters c. It is safe to call more than once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	c.conn.Close()
	if !ok {
		return
	}

	h.logger.Debug("live client disconnected", "client", c.id)
	if h.onDisconnect != nil {
		h.onDisconnect()
	}
}

// Broadcast sends a patch to all connected clients.
func (h *Hub) Broadcast(p compile.Patch) {
	h.broadcast(Message{Type: MessagePatch, Patch: &p})
}

// broadcast sends a message to all connected clients. Clients that fail to
// receive it are dropped.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode live message", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.logger.Debug("drop live client", "client", c.id, "error", err)
			h.remove(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}
