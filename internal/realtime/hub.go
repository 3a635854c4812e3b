// Package realtime fans messages out to websocket clients joined to named groups.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 64
)

// Hub tracks group membership. Delivery is fire-and-forget: there is no replay
// for clients that join later.
type Hub struct {
	mu       sync.RWMutex
	groups   map[string]map[*Client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. An empty allowedOrigins accepts any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		groups: make(map[string]map[*Client]struct{}),
		logger: logger.With("component", "realtime"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Join adds c to its group.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	members, ok := h.groups[c.group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[c.group] = members
	}
	members[c] = struct{}{}
	total := len(members)
	h.mu.Unlock()

	h.logger.Info("client joined", "client_id", c.id, "group", c.group, "members", total)
}

// Leave removes c from its group and closes its send queue. Leaving twice is a no-op.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	total := len(h.groups[c.group])
	h.mu.Unlock()

	if removed {
		h.logger.Info("client left", "client_id", c.id, "group", c.group, "members", total)
	}
}

func (h *Hub) removeLocked(c *Client) bool {
	members, ok := h.groups[c.group]
	if !ok {
		return false
	}
	if _, ok := members[c]; !ok {
		return false
	}
	delete(members, c)
	close(c.send)
	if len(members) == 0 {
		delete(h.groups, c.group)
	}
	return true
}

// Publish queues payload for every member of group and returns how many
// clients accepted it. Clients whose queue is full are disconnected.
func (h *Hub) Publish(group string, payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for c := range h.groups[group] {
		select {
		case c.send <- payload:
			delivered++
		default:
			h.logger.Warn("client send buffer full, disconnecting", "client_id", c.id, "group", group)
			h.removeLocked(c)
		}
	}
	return delivered
}

// Members returns the number of clients joined to group.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// ServeWS upgrades the request and joins the connection to group until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, group string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		id:    uuid.NewString(),
		group: group,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		hub:   h,
	}
	h.Join(c)

	go c.writePump()
	go c.readPump()
}
