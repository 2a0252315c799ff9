package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub fans broker events out to connected websocket clients. Each client
// subscribes to the tables it wants; an event for a table is pushed to every
// client subscribed to it.
type Hub struct {
	logger *zap.Logger
	broker *Broker

	Register   chan *Client
	Unregister chan *Client

	mu        sync.RWMutex
	clients   map[*Client]bool
	tableSubs map[string]map[*Client]bool
}

// NewHub creates a hub attached to the broker.
func NewHub(broker *Broker, logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		broker:     broker,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		tableSubs:  make(map[string]map[*Client]bool),
	}
}

// Run processes client registration and broker events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	sub := h.broker.Subscribe(TableAll).OnEvent(h.broadcast)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("websocket client connected", zap.String("client_id", client.ID))

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for _, subscribers := range h.tableSubs {
					delete(subscribers, client)
				}
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected", zap.String("client_id", client.ID))
		}
	}
}

// SubscribeTable adds a client to a table's subscriber list.
func (h *Hub) SubscribeTable(table string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tableSubs[table] == nil {
		h.tableSubs[table] = make(map[*Client]bool)
	}
	h.tableSubs[table][client] = true
}

// UnsubscribeTable removes a client from a table's subscriber list.
func (h *Hub) UnsubscribeTable(table string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subscribers, ok := h.tableSubs[table]; ok {
		delete(subscribers, client)
	}
}

// broadcast pushes one event to every client subscribed to its table.
func (h *Hub) broadcast(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal realtime event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.tableSubs[ev.Table] {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer: drop it rather than stall the stream.
			delete(h.clients, client)
			for _, subscribers := range h.tableSubs {
				delete(subscribers, client)
			}
			close(client.Send)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
	h.tableSubs = make(map[string]map[*Client]bool)
}
