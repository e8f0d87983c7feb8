package models

import (
	"encoding/json"
	"time"
)

// Live feed message types
const (
	MessageTypeValidation  = "validation"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage is a command sent by a feed subscriber. Payload is decoded
// according to Type.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is pushed to feed subscribers
type ServerMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SubscriptionFilter narrows which validation summaries a subscriber receives.
// Empty fields accept everything.
type SubscriptionFilter struct {
	GameIDs []string `json:"game_ids,omitempty"`
	Kinds   []string `json:"kinds,omitempty"`
}

// SubscriberStats is returned in reply to a heartbeat
type SubscriberStats struct {
	SubscriberID  string    `json:"subscriber_id"`
	ConnectedAt   time.Time `json:"connected_at"`
	Delivered     int64     `json:"delivered"`
	Received      int64     `json:"received"`
	QueueDepth    int       `json:"queue_depth"`
	QueueCapacity int       `json:"queue_capacity"`
}

// FeedError tells a subscriber its last command was rejected
type FeedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
