// Package ws pushes ledger and transaction events to connected clients.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"subsidy-wallet-service/internal/core/domain"
	"subsidy-wallet-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// EventSnapshot carries a fresh ledger snapshot after every mutation.
	EventSnapshot = "ledger.snapshot"
	// EventPhase carries a transaction phase transition.
	EventPhase = "transaction.phase"

	writeTimeout = 5 * time.Second
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type        string                 `json:"type"`
	Snapshot    *domain.LedgerSnapshot `json:"snapshot,omitempty"`
	Transaction *domain.Transaction    `json:"transaction,omitempty"`
	Timestamp   string                 `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub implements ports.Notifier over a set of websocket clients.
type Hub struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades an HTTP request to a websocket and registers the client.
// Session auth has already run by the time the request reaches here.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(count))
	h.log.Debug().Int("clients", count).Msg("websocket client connected")

	go h.readLoop(conn)
}

// PublishSnapshot broadcasts a ledger snapshot to all clients.
func (h *Hub) PublishSnapshot(snapshot domain.LedgerSnapshot) {
	h.broadcast(Event{
		Type:      EventSnapshot,
		Snapshot:  &snapshot,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// PublishPhase broadcasts a transaction phase transition to all clients.
func (h *Hub) PublishPhase(tx domain.Transaction) {
	h.broadcast(Event{
		Type:        EventPhase,
		Transaction: &tx,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
	metrics.WebsocketClients.Set(0)
}

// readLoop drains client frames; clients never send payloads we act on,
// reading only detects disconnects.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *Hub) broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("marshal websocket event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_ = conn.Close()
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(count))
	h.log.Debug().Int("clients", count).Msg("websocket client disconnected")
}
