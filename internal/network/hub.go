package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/events"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/platform/logger"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/platform/metrics"
)

// Hub maintains the set of active spectator connections and broadcasts
// simulation events to them. Spectating is read-only: the simulation is
// driven through the HTTP API, never through the socket.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run processes register/unregister/broadcast traffic. Call in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket hub stopped.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("Spectator connected.")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(-1)
			h.logger.Info("Spectator disconnected.")
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage()
				default:
					// Slow consumer: drop it rather than stall the session.
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a raw message for every connected spectator.
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// StartEventPoller forwards new session events to all spectators. It polls
// the event log rather than coupling the engine to the hub.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(100 * time.Millisecond)
		defer pollInterval.Stop()

		lastSent := 0
		for {
			select {
			case <-ctx.Done():
				h.logger.Info("Hub event poller stopped.")
				return
			case <-pollInterval.C:
				all := eventLog.Replay()
				if len(all) <= lastSent {
					continue
				}
				for _, event := range all[lastSent:] {
					payload, err := json.Marshal(event)
					if err != nil {
						h.logger.Error("Failed to marshal event for broadcast: " + err.Error())
						continue
					}
					h.Broadcast(payload)
				}
				lastSent = len(all)
			}
		}
	}()
}

// upgrader is shared by every spectator connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The classroom front-end is served from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}
