package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/baccarat-tracker/internal/metrics"
	"github.com/yourusername/baccarat-tracker/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 4
)

// EventConnected is the first message a feed client receives
const EventConnected = "connected"

// Hub fans tracker updates out to websocket clients
type Hub struct {
	tracker  Tracker
	upgrader websocket.Upgrader
	logger   *logrus.Entry

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan service.Update
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// NewHub creates a hub for tracker
func NewHub(tracker Tracker, logger *logrus.Entry) *Hub {
	return &Hub{
		tracker: tracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:  logger.WithField("subsystem", "ws"),
		clients: make(map[*client]struct{}),
	}
}

// Start subscribes to the tracker and broadcasts until ctx is cancelled
func (h *Hub) Start(ctx context.Context) {
	updates, unsubscribe := h.tracker.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case u, ok := <-updates:
				if !ok {
					return
				}
				h.broadcast(u)
			case <-ctx.Done():
				h.closeAll()
				return
			}
		}
	}()
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers a feed client
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	c := &client{conn: conn, send: make(chan service.Update, clientSendSize)}
	shoe, dealer := h.tracker.Counters()
	c.send <- service.Update{
		Event:         EventConnected,
		Size:          len(h.tracker.Records()),
		CurrentShoe:   shoe,
		CurrentDealer: dealer,
		Analysis:      h.tracker.Analysis(),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateWebsocketClients(count)
	h.logger.WithField("clients", count).Info("Feed client connected")

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) broadcast(u service.Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- u:
		default:
			h.logger.Warn("Feed client too slow, dropping update")
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateWebsocketClients(count)
	h.logger.WithField("clients", count).Info("Feed client disconnected")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	metrics.UpdateWebsocketClients(0)
}

// readPump discards client messages and detects disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
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
		_ = c.conn.Close()
	}()

	for {
		select {
		case u, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(u); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
