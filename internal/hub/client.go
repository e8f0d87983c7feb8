package hub

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingEvery    = idleTimeout * 9 / 10

	maxCommandSize = 512
	queueSize      = 64
)

// Client is one subscriber to the validation feed
type Client struct {
	ID          string
	conn        *websocket.Conn
	hub         *Hub
	connectedAt time.Time

	// outbox is closed exactly once, under mu
	mu     sync.Mutex
	outbox chan models.ServerMessage
	closed bool

	filter    atomic.Pointer[models.SubscriptionFilter]
	delivered atomic.Int64
	received  atomic.Int64
}

func newClient(id string, conn *websocket.Conn, h *Hub) *Client {
	c := &Client{
		ID:          id,
		conn:        conn,
		hub:         h,
		connectedAt: time.Now(),
		outbox:      make(chan models.ServerMessage, queueSize),
	}
	c.filter.Store(&models.SubscriptionFilter{})
	return c
}

// TrySend queues msg without blocking. It reports false when the queue is
// full or the client has been dropped.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.outbox <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeOutbox() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.outbox)
	}
}

// Filter returns the subscriber's current filter
func (c *Client) Filter() models.SubscriptionFilter {
	return *c.filter.Load()
}

// Stats snapshots the subscriber's counters
func (c *Client) Stats() models.SubscriberStats {
	return models.SubscriberStats{
		SubscriberID:  c.ID,
		ConnectedAt:   c.connectedAt,
		Delivered:     c.delivered.Load(),
		Received:      c.received.Load(),
		QueueDepth:    len(c.outbox),
		QueueCapacity: cap(c.outbox),
	}
}

// MatchesFilter reports whether a summary passes a filter
func MatchesFilter(filter models.SubscriptionFilter, summary models.ValidationSummary) bool {
	if len(filter.GameIDs) > 0 && !contains(filter.GameIDs, summary.GameID) {
		return false
	}
	if len(filter.Kinds) > 0 && !contains(filter.Kinds, string(summary.Kind)) {
		return false
	}
	return true
}

// readLoop handles subscriber commands until the connection drops or ctx ends
func (c *Client) readLoop(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer func() {
		stop()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxCommandSize)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		var cmd models.ClientMessage
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("subscriber closed unexpectedly", "client", c.ID, "err", err)
			}
			return
		}
		c.received.Add(1)

		if reply, ok := c.handle(cmd); ok {
			c.TrySend(reply)
		}
	}
}

// writeLoop drains the outbox and keeps the connection alive with pings
func (c *Client) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, nil)
			return

		case msg, ok := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.hub.logger.Debug("write to subscriber failed", "client", c.ID, "err", err)
				return
			}
			c.delivered.Add(1)

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle applies a command and returns the reply to send, if any
func (c *Client) handle(cmd models.ClientMessage) (models.ServerMessage, bool) {
	switch cmd.Type {
	case models.MessageTypeSubscribe:
		var filter models.SubscriptionFilter
		if len(cmd.Payload) > 0 {
			if err := json.Unmarshal(cmd.Payload, &filter); err != nil {
				return feedError("invalid_filter", "subscribe payload must be {game_ids, kinds}"), true
			}
		}
		c.filter.Store(&filter)
		c.hub.logger.Debug("subscriber filter set", "client", c.ID, "games", filter.GameIDs, "kinds", filter.Kinds)
		return models.ServerMessage{}, false

	case models.MessageTypeUnsubscribe:
		c.filter.Store(&models.SubscriptionFilter{})
		return models.ServerMessage{}, false

	case models.MessageTypeHeartbeat:
		return models.ServerMessage{Type: models.MessageTypeHeartbeat, Payload: c.Stats(), Timestamp: time.Now()}, true

	default:
		return feedError("unknown_message_type", "unknown message type: "+cmd.Type), true
	}
}

func feedError(code, message string) models.ServerMessage {
	return models.ServerMessage{
		Type:      models.MessageTypeError,
		Payload:   models.FeedError{Code: code, Message: message},
		Timestamp: time.Now(),
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
