package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// DefaultStream receives one entry per validation report
const DefaultStream = "games.validation.baseball_mlb"

// StreamPublisher publishes validation summaries to a Redis stream
type StreamPublisher struct {
	client    *redis.Client
	streamKey string
	maxLen    int64
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client, streamKey string) *StreamPublisher {
	if streamKey == "" {
		streamKey = DefaultStream
	}
	return &StreamPublisher{
		client:    client,
		streamKey: streamKey,
		maxLen:    10000,
	}
}

// StreamKey returns the stream this publisher writes to
func (p *StreamPublisher) StreamKey() string {
	return p.streamKey
}

// PublishReport publishes the summary of a validation report
func (p *StreamPublisher) PublishReport(ctx context.Context, gameID string, report *models.ValidationReport) error {
	data, err := json.Marshal(report.Summary(gameID))
	if err != nil {
		return fmt.Errorf("marshaling validation summary: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		MaxLen: p.maxLen,
		Approx: true,
		Values: Values(gameID, report, data),
	}).Err()
}

// Values builds the stream entry fields
func Values(gameID string, report *models.ValidationReport, data []byte) map[string]interface{} {
	return map[string]interface{}{
		"game_id":  gameID,
		"kind":     string(report.Kind),
		"accuracy": strconv.FormatFloat(report.Accuracy, 'f', 2, 64),
		"data":     string(data),
	}
}
