package control

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxMeterConnectionsTotal bounds total open meter sockets.
	MaxMeterConnectionsTotal = 200

	// MaxMeterConnectionsPerIP bounds meter sockets from one address.
	MaxMeterConnectionsPerIP = 5
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("meter socket rejected from origin: %s", origin)
		recordConnectionRejected("origin")
		return false
	},
}

type meterClient struct {
	conn *websocket.Conn
	ip   string
}

// MeterHub fans periodic Mixer.ActiveLayers snapshots out to connected
// WebSocket clients, e.g. a live level meter in an admin dashboard.
type MeterHub struct {
	clients    map[*websocket.Conn]*meterClient
	broadcast  chan []byte
	register   chan *meterClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	limiter *WebSocketRateLimiter
}

// NewMeterHub creates an idle hub; call Run to start its event loop.
func NewMeterHub() *MeterHub {
	return &MeterHub{
		clients:    make(map[*websocket.Conn]*meterClient),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *meterClient),
		unregister: make(chan *websocket.Conn),
		limiter:    NewWebSocketRateLimiter(MaxMeterConnectionsPerIP),
	}
}

// Run processes register/unregister/broadcast events until ctx-free
// shutdown via process exit. Intended to run in its own goroutine.
func (h *MeterHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.limiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast pushes a JSON-encoded event to every connected client.
// Drops the message on a full channel rather than blocking the caller.
func (h *MeterHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount returns the number of currently connected meter clients.
func (h *MeterHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartMeterLoop polls mixer's active layer count at the given interval
// and broadcasts it to every connected client.
func (h *MeterHub) StartMeterLoop(m MixerAPI, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}
			n := m.ActiveLayers()
			UpdateActiveLayers(n)
			h.Broadcast("mixer:meter", map[string]interface{}{
				"activeLayers": n,
				"layerCount":   m.LayerCount(),
			})
		}
	}()
}

// HandleWebSocket upgrades r to a WebSocket meter connection, applying
// total and per-IP connection limits before the upgrade.
func (h *MeterHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	total := len(h.clients)
	h.mu.RUnlock()
	if total >= MaxMeterConnectionsTotal {
		recordConnectionRejected("ws_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Allow(ip) {
		recordConnectionRejected("ws_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.limiter.Release(ip)
		return
	}

	client := &meterClient{conn: conn, ip: ip}
	h.register <- client

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}
