// Package hub fans validation summaries out to connected WebSocket clients.
package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

const summaryQueueSize = 256

// Hub owns the subscriber set. Membership changes and fan-out all happen
// on the Run goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	summaries chan models.ValidationSummary
	joins     chan *Client
	leaves    chan *Client
	done      chan struct{}

	logger *log.Logger

	connections atomic.Int64
	fanouts     atomic.Int64
	dropped     atomic.Int64
}

// NewHub creates a hub; call Run to start it
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		summaries: make(chan models.ValidationSummary, summaryQueueSize),
		joins:     make(chan *Client),
		leaves:    make(chan *Client),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Run serves joins, leaves and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.joins:
			h.add(c)
		case c := <-h.leaves:
			h.remove(c)
		case s := <-h.summaries:
			h.fanOut(s)
		}
	}
}

// Register adds a client. After Run has returned the client is closed instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.joins <- c:
	case <-h.done:
		c.closeOutbox()
	}
}

// Unregister removes a client; safe to call after Run has returned
func (h *Hub) Unregister(c *Client) {
	select {
	case h.leaves <- c:
	case <-h.done:
	}
}

// BroadcastSummary queues a summary without blocking the caller
func (h *Hub) BroadcastSummary(summary models.ValidationSummary) {
	select {
	case h.summaries <- summary:
	default:
		h.dropped.Add(1)
		h.logger.Warn("summary queue full, dropping", "game_id", summary.GameID, "kind", summary.Kind)
	}
}

// GetMetrics returns hub counters for /metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"active_clients":    h.GetClientCount(),
		"total_connections": h.connections.Load(),
		"total_messages":    h.fanouts.Load(),
		"dropped_summaries": h.dropped.Load(),
		"queue_capacity":    cap(h.summaries),
		"queue_usage":       len(h.summaries),
	}
}

// GetClientCount returns the number of connected subscribers
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.connections.Add(1)
	h.logger.Debug("subscriber connected", "client", c.ID, "total", n)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.closeOutbox()
		h.logger.Debug("subscriber disconnected", "client", c.ID, "total", n)
	}
}

// fanOut delivers to every matching subscriber. A subscriber whose queue
// is full is disconnected.
func (h *Hub) fanOut(summary models.ValidationSummary) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if MatchesFilter(c.Filter(), summary) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	msg := models.ServerMessage{Type: models.MessageTypeValidation, Payload: summary, Timestamp: time.Now()}

	delivered := false
	for _, c := range targets {
		if c.TrySend(msg) {
			delivered = true
			continue
		}
		h.logger.Warn("subscriber too slow, disconnecting", "client", c.ID)
		h.remove(c)
	}
	if delivered {
		h.fanouts.Add(1)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Info("hub stopping", "clients", len(h.clients))
	for c := range h.clients {
		c.closeOutbox()
		delete(h.clients, c)
	}
}
