package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// TTL constants
const (
	DefaultPageTTL = 24 * time.Hour
	ReportTTL      = 6 * time.Hour
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// RedisCache stores fetched pages and validation reports in Redis
type RedisCache struct {
	client  *redis.Client
	pageTTL time.Duration
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(client *redis.Client, pageTTL time.Duration) *RedisCache {
	if pageTTL <= 0 {
		pageTTL = DefaultPageTTL
	}
	return &RedisCache{
		client:  client,
		pageTTL: pageTTL,
	}
}

// PageKey is the cache key for a page URL
func PageKey(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return "page:" + hex.EncodeToString(sum[:])
}

// ReportKey is the cache key for a game's report of one kind
func ReportKey(gameID string, kind models.StatKind) string {
	return fmt.Sprintf("game:%s:validation:%s", gameID, kind)
}

// GetPage retrieves cached page HTML
func (c *RedisCache) GetPage(ctx context.Context, pageURL string) (string, error) {
	html, err := c.client.Get(ctx, PageKey(pageURL)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", fmt.Errorf("reading page: %w", err)
	}
	return html, nil
}

// WritePage stores page HTML
func (c *RedisCache) WritePage(ctx context.Context, pageURL, html string) error {
	return c.client.Set(ctx, PageKey(pageURL), html, c.pageTTL).Err()
}

// WriteReport stores a validation report
func (c *RedisCache) WriteReport(ctx context.Context, gameID string, report *models.ValidationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	return c.client.Set(ctx, ReportKey(gameID, report.Kind), data, ReportTTL).Err()
}

// GetReport retrieves a cached validation report
func (c *RedisCache) GetReport(ctx context.Context, gameID string, kind models.StatKind) (*models.ValidationReport, error) {
	data, err := c.client.Get(ctx, ReportKey(gameID, kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var report models.ValidationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}

	return &report, nil
}
