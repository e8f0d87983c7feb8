//go:build integration

package cache

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

func getTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_URL")
	if addr == "" {
		addr = "localhost:6380"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_TEST_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisCache_Pages(t *testing.T) {
	ctx := context.Background()
	c := NewRedisCache(getTestRedisClient(t), 0)

	if _, err := c.GetPage(ctx, "https://example.com/a.shtml"); !errors.Is(err, ErrMiss) {
		t.Fatalf("GetPage() error = %v, want ErrMiss", err)
	}
	if err := c.WritePage(ctx, "https://example.com/a.shtml", "<html></html>"); err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	html, err := c.GetPage(ctx, "https://example.com/a.shtml")
	if err != nil || html != "<html></html>" {
		t.Errorf("GetPage() = %q, %v", html, err)
	}
}

func TestRedisCache_Reports(t *testing.T) {
	ctx := context.Background()
	c := NewRedisCache(getTestRedisClient(t), 0)

	report := &models.ValidationReport{Kind: models.KindBatting, Accuracy: 97.5, PlayersCompared: 18}
	if err := c.WriteReport(ctx, "g1", report); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	got, err := c.GetReport(ctx, "g1", models.KindBatting)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if got.Accuracy != 97.5 || got.PlayersCompared != 18 {
		t.Errorf("GetReport() = %+v", got)
	}

	if _, err := c.GetReport(ctx, "g1", models.KindPitching); !errors.Is(err, ErrMiss) {
		t.Errorf("GetReport(pitching) error = %v, want ErrMiss", err)
	}
}

func TestDeduplicator_Claim(t *testing.T) {
	ctx := context.Background()
	d := NewDeduplicator(getTestRedisClient(t), 0)

	first, err := d.Claim(ctx, "NYA202404050")
	if err != nil || !first {
		t.Fatalf("first Claim() = %v, %v, want true", first, err)
	}
	second, err := d.Claim(ctx, "NYA202404050")
	if err != nil || second {
		t.Fatalf("second Claim() = %v, %v, want false", second, err)
	}

	if err := d.Release(ctx, "NYA202404050"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	again, err := d.Claim(ctx, "NYA202404050")
	if err != nil || !again {
		t.Errorf("Claim() after Release = %v, %v, want true", again, err)
	}
}
