package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// DefaultStream carries requests to validate finished games
const DefaultStream = "games.final.baseball_mlb"

// StreamConsumer reads game requests from a Redis stream consumer group
type StreamConsumer struct {
	redis      *redis.Client
	consumerID string
	groupName  string
	batchSize  int64
	blockTime  time.Duration
	logger     *log.Logger
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(redisClient *redis.Client, consumerID, groupName string, logger *log.Logger) *StreamConsumer {
	return &StreamConsumer{
		redis:      redisClient,
		consumerID: consumerID,
		groupName:  groupName,
		batchSize:  10,
		blockTime:  5 * time.Second,
		logger:     logger,
	}
}

// Message represents a consumed stream message
type Message struct {
	ID        string
	Request   models.GameRequest
	StreamKey string
}

// ConsumeStream reads requests until ctx is cancelled. Both channels are
// closed when the reader goroutine exits.
func (c *StreamConsumer) ConsumeStream(ctx context.Context, streamKey string) (<-chan Message, <-chan error) {
	messageCh := make(chan Message, c.batchSize)
	errorCh := make(chan error, 1)

	go func() {
		defer close(messageCh)
		defer close(errorCh)

		if err := c.createConsumerGroup(ctx, streamKey); err != nil {
			errorCh <- fmt.Errorf("failed to create consumer group: %w", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			messages, err := c.readMessages(ctx, streamKey)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case errorCh <- fmt.Errorf("error reading messages: %w", err):
				default:
				}
				// back off so a dead connection does not spin
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			for _, msg := range messages {
				select {
				case messageCh <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return messageCh, errorCh
}

// readMessages reads a batch of messages from the stream
func (c *StreamConsumer) readMessages(ctx context.Context, streamKey string) ([]Message, error) {
	streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupName,
		Consumer: c.consumerID,
		Streams:  []string{streamKey, ">"},
		Count:    c.batchSize,
		Block:    c.blockTime,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var messages []Message
	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			req, err := DecodeRequest(xmsg.Values)
			if err != nil {
				c.logger.Warn("dropping malformed request", "id", xmsg.ID, "err", err)
				// ack anyway so it is not redelivered forever
				if err := c.ackMessage(ctx, streamKey, xmsg.ID); err != nil {
					c.logger.Error("ack failed", "id", xmsg.ID, "err", err)
				}
				continue
			}

			messages = append(messages, Message{
				ID:        xmsg.ID,
				Request:   req,
				StreamKey: streamKey,
			})
		}
	}

	return messages, nil
}

// DecodeRequest reads a GameRequest from stream fields. Producers may send
// either flat game_id/url fields or a JSON "data" field.
func DecodeRequest(values map[string]interface{}) (models.GameRequest, error) {
	var req models.GameRequest

	if data, ok := values["data"].(string); ok && data != "" {
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			return req, fmt.Errorf("unmarshaling data: %w", err)
		}
	}
	if v, ok := values["game_id"].(string); ok && v != "" {
		req.GameID = v
	}
	if v, ok := values["url"].(string); ok && v != "" {
		req.URL = v
	}

	if strings.TrimSpace(req.URL) == "" {
		return req, errors.New("request has no url")
	}
	return req, nil
}

// AckMessage acknowledges a message has been processed
func (c *StreamConsumer) AckMessage(ctx context.Context, streamKey, messageID string) error {
	return c.ackMessage(ctx, streamKey, messageID)
}

func (c *StreamConsumer) ackMessage(ctx context.Context, streamKey, messageID string) error {
	return c.redis.XAck(ctx, streamKey, c.groupName, messageID).Err()
}

// createConsumerGroup creates the consumer group if it doesn't exist
func (c *StreamConsumer) createConsumerGroup(ctx context.Context, streamKey string) error {
	err := c.redis.XGroupCreateMkStream(ctx, streamKey, c.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
