package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"meterbill/backend/services/tariff-service/internal/models"
)

// EventCalculationCreated is sent for every stored calculation.
const EventCalculationCreated = "calculation.created"

// Event is the frame pushed to subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks feed subscribers and fans out events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Add registers a subscriber.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Remove unregisters a subscriber.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg on every subscriber without blocking.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.Send(msg)
	}
}

// PublishCalculation announces a stored calculation.
func (h *Hub) PublishCalculation(calc models.Calculation) {
	data, err := json.Marshal(Event{Type: EventCalculationCreated, Data: calc})
	if err != nil {
		h.logger.Warn("failed to encode feed event", zap.Error(err))
		return
	}
	h.Broadcast(data)
}

// Run closes all subscribers once ctx is done.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.Close()
	}
}
