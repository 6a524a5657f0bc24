package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Skotchmaster/marketplace/internal/logging"
)

const writeWait = 5 * time.Second

type Message struct {
	Type   string      `json:"type"`
	Online []uuid.UUID `json:"online"`
}

type client struct {
	conn   *websocket.Conn
	userID uuid.UUID
	mu     sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub holds the websocket clients that receive online-status updates.
type Hub struct {
	tracker  Tracker
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(tracker Tracker) *Hub {
	return &Hub{
		tracker: tracker,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) Tracker() Tracker {
	return h.tracker
}

// Serve upgrades the request and blocks until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	ctx := r.Context()
	l := logging.FromContext(ctx).With("component", "presence.hub", "user_id", userID)

	c := &client{conn: conn, userID: userID}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if err := h.tracker.Touch(ctx, userID); err != nil {
		l.Warn("presence_touch_error", "error", err)
	}
	h.broadcast(context.WithoutCancel(ctx))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		if err := h.tracker.Touch(ctx, userID); err != nil {
			l.Warn("presence_touch_error", "error", err)
		}
	}

	h.remove(c)
	h.broadcast(context.WithoutCancel(ctx))
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *Hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends the current online list to every connected client.
func (h *Hub) Broadcast(ctx context.Context) error {
	online, err := h.tracker.Online(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Message{Type: "presence", Online: online})
	if err != nil {
		return err
	}
	for _, c := range h.snapshot() {
		if err := c.write(data); err != nil {
			h.remove(c)
		}
	}
	return nil
}

func (h *Hub) broadcast(ctx context.Context) {
	if err := h.Broadcast(ctx); err != nil {
		logging.FromContext(ctx).Warn("presence_broadcast_error", "error", err)
	}
}
