package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultClaimTTL is how long a processed request suppresses repeats
const DefaultClaimTTL = 30 * time.Minute

// Deduplicator suppresses repeated processing requests for the same game,
// e.g. when several producers announce the same final
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduplicator creates a deduplicator; ttl <= 0 uses DefaultClaimTTL
func NewDeduplicator(client *redis.Client, ttl time.Duration) *Deduplicator {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &Deduplicator{client: client, ttl: ttl}
}

// ClaimKey is the key marking a game as recently processed
func ClaimKey(key string) string {
	return "game:" + key + ":claimed"
}

// Claim reports true when no request for key was claimed within the TTL.
// The claim is taken atomically, so only one of several concurrent callers wins.
func (d *Deduplicator) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, ClaimKey(key), time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so a failed request can be retried
func (d *Deduplicator) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, ClaimKey(key)).Err()
}
