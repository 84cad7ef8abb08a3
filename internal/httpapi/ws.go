package httpapi

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/metrics"
)

// Hub fans detection lifecycle events out to connected dashboard clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(m *metrics.Metrics, logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*wsClient]bool),
		metrics: m,
		logger:  logger.With().Str("component", "ws").Logger(),
	}
}

// Broadcast sends one event to every connected client. Slow clients miss the
// event rather than block the caller.
func (h *Hub) Broadcast(event string, data any) {
	envelope, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
		"ts":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) {
	client := &wsClient{conn: conn, send: make(chan []byte, 64), hub: h}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.WSClients.Set(float64(count))
	h.logger.Info().Int("total", count).Msg("ws client connected")

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.WSClients.Set(float64(count))
	h.logger.Info().Int("total", count).Msg("ws client disconnected")
}

// wsClient is a single websocket peer.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			// Coalesce queued events into a single frame.
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// The dashboard never sends data; drain until the peer goes away.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
