package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"graphexplorer/domain/events"
	"graphexplorer/pkg/observability"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// eventMessage is the wire envelope for one pushed domain event
type eventMessage struct {
	Type        string             `json:"type"`
	AggregateID string             `json:"aggregate_id"`
	Timestamp   time.Time          `json:"timestamp"`
	Event       events.DomainEvent `json:"event"`
}

// Hub pushes domain events to connected clients over WebSocket. It
// implements ports.EventPublisher; a slow client that cannot keep up
// with the event stream is dropped rather than backing up the engine.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *observability.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an event hub
func NewHub(logger *zap.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The REST layer's CORS policy governs browser access; the
			// upgrade itself accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		metrics: metrics,
		clients: make(map[*client]struct{}),
	}
}

// Publish implements ports.EventPublisher by broadcasting the event to
// every connected client
func (h *Hub) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(eventMessage{
		Type:        event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		Timestamp:   event.GetTimestamp(),
		Event:       event,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	var dropped []*client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			dropped = append(dropped, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range dropped {
		h.logger.Warn("Dropping slow event stream client")
		h.remove(c)
	}
	return nil
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClientConnected()
	}
	h.logger.Debug("Event stream client connected", zap.String("remoteAddr", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
		c.conn.Close()
		if h.metrics != nil {
			h.metrics.WSClientDisconnected()
		}
	}
}

// readPump discards inbound frames; the stream is one-way. It exists to
// process control frames and to notice disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	if present {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if !present {
		return
	}
	close(c.send)
	c.conn.Close()
	if h.metrics != nil {
		h.metrics.WSClientDisconnected()
	}
}
