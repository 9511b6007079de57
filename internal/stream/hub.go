package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 8
)

// Message is the envelope written to every websocket client.
type Message struct {
	Type      string           `json:"type"`
	Timestamp string           `json:"timestamp"`
	Data      models.TwinState `json:"data"`
}

// Client is one connected websocket consumer.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	hub  *Hub
}

// Hub fans twin states out to websocket clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger
	last       []byte
	upgrader   websocket.Upgrader
	done       chan struct{}
}

// NewHub creates a hub. Origins are checked by checkOrigin; nil accepts all.
func NewHub(logger *slog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 10),
		unregister: make(chan *Client, 10),
		logger:     logger,
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Run broadcasts every state received on updates until ctx is done or
// updates is closed. It must run in its own goroutine.
func (h *Hub) Run(ctx context.Context, updates <-chan models.TwinState) {
	h.logger.Info("websocket hub started")
	defer func() {
		h.closeAll()
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			if h.last != nil {
				h.deliver(c, h.last)
			}
			h.logger.Debug("websocket client connected", "client", c.ID, "total", len(h.clients))
		case c := <-h.unregister:
			h.drop(c)
		case state, ok := <-updates:
			if !ok {
				return
			}
			payload, err := encode(state)
			if err != nil {
				h.logger.Error("encode websocket message", "err", err)
				continue
			}
			h.last = payload
			for c := range h.clients {
				h.deliver(c, payload)
			}
		}
	}
}

// deliver drops clients whose buffer is full.
func (h *Hub) deliver(c *Client, payload []byte) {
	select {
	case c.Send <- payload:
	default:
		h.logger.Warn("websocket client too slow, disconnecting", "client", c.ID)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	h.logger.Debug("websocket client disconnected", "client", c.ID, "remaining", len(h.clients))
}

func (h *Hub) closeAll() {
	for c := range h.clients {
		h.drop(c)
	}
}

func encode(state models.TwinState) ([]byte, error) {
	return json.Marshal(Message{
		Type:      "twin_state",
		Timestamp: state.UpdatedAt.Format(time.RFC3339),
		Data:      state,
	})
}

// ServeHTTP upgrades the request and attaches a new client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		hub:  h,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump discards client messages and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "client", c.ID, "err", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
