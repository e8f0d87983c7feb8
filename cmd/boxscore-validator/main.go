package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/cache"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/config"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/hub"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/logging"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/processor"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/providers/bbref"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/retry"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/store"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

func main() {
	pageURL := flag.String("url", "", "process a single box score page, print the result as JSON and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// one-shot output goes to stdout, so logs go to stderr in both modes
	logger := logging.New(cfg.Log.Level, os.Stderr)

	if *pageURL != "" {
		err = runOnce(cfg, logger, *pageURL)
	} else {
		err = serve(cfg, logger)
	}
	if err != nil {
		logger.Error("exiting", "err", err)
		os.Exit(1)
	}
}

// services holds the optional backends built from config
type services struct {
	redis *redis.Client
	cache *cache.RedisCache
	store *store.Store
}

func (s *services) Close(logger *log.Logger) {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn("closing redis", "err", err)
		}
	}
}

func connect(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services, error) {
	svc := &services{}

	if cfg.Redis.Enabled() {
		svc.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := svc.redis.Ping(ctx).Err(); err != nil {
			svc.Close(logger)
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		svc.cache = cache.NewRedisCache(svc.redis, cfg.Provider.PageCacheTTL)
		logger.Info("connected to redis", "addr", cfg.Redis.URL)
	}

	if cfg.Store.Enabled() {
		s, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			svc.Close(logger)
			return nil, fmt.Errorf("opening store: %w", err)
		}
		svc.store = s
		logger.Info("opened store", "driver", cfg.Store.Driver)
	}

	return svc, nil
}

func newFetcher(cfg *config.Config, svc *services, logger *log.Logger) *bbref.Client {
	policy := retry.NewRetryPolicy(cfg.Provider.MaxAttempts, time.Second)

	var pages bbref.PageCache
	if svc.cache != nil {
		pages = svc.cache
	}
	client := bbref.New(cfg.Provider.BaseURL, cfg.Provider.Timeout, policy, pages, logger)
	client.SetRateLimit(cfg.Provider.RequestsPerMinute)
	return client
}

// runOnce fetches and validates one page without touching streams or clients
func runOnce(cfg *config.Config, logger *log.Logger, pageURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	var opts []processor.Option
	if svc.store != nil {
		opts = append(opts, processor.WithStore(svc.store))
	}
	proc := processor.NewProcessor(newFetcher(cfg, svc, logger), logger, opts...)

	result, err := proc.ProcessRequest(ctx, pageRequest(pageURL))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func serve(cfg *config.Config, logger *log.Logger) error {
	logger.Info("starting boxscore-validator", "addr", cfg.Server.Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	wsHub := hub.NewHub(logger.WithPrefix("hub"))
	go wsHub.Run(ctx)

	opts := []processor.Option{processor.WithBroadcaster(wsHub)}
	if svc.store != nil {
		opts = append(opts, processor.WithStore(svc.store))
	}
	if svc.cache != nil {
		opts = append(opts, processor.WithCache(svc.cache))
	}
	if svc.redis != nil {
		opts = append(opts, processor.WithPublisher(publisher.NewStreamPublisher(svc.redis, cfg.Stream.ValidationStream)))
		if cfg.Stream.DedupTTL > 0 {
			opts = append(opts, processor.WithDeduplicator(cache.NewDeduplicator(svc.redis, cfg.Stream.DedupTTL)))
		}
	}
	proc := processor.NewProcessor(newFetcher(cfg, svc, logger), logger, opts...)

	if svc.redis != nil {
		streamConsumer := consumer.NewStreamConsumer(svc.redis, cfg.Stream.ConsumerID, cfg.Stream.ConsumerGroup, logger)
		go proc.Start(ctx, streamConsumer, cfg.Stream.RequestStream)
	} else {
		logger.Warn("redis disabled: not consuming game requests")
	}

	handler := newHandler(ctx, proc, svc, wsHub, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go reportMetrics(ctx, proc, wsHub, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal", "signal", sig.String())
	case err := <-errChan:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newHandler passes only configured backends so disabled ones stay nil interfaces
func newHandler(ctx context.Context, proc *processor.Processor, svc *services, wsHub *hub.Hub, logger *log.Logger) *handlers.Handler {
	var (
		gameStore   contracts.GameStore
		reportCache contracts.ReportCache
	)
	if svc.store != nil {
		gameStore = svc.store
	}
	if svc.cache != nil {
		reportCache = svc.cache
	}
	return handlers.NewHandler(ctx, proc, gameStore, reportCache, wsHub, logger)
}

func pageRequest(pageURL string) models.GameRequest {
	return models.GameRequest{GameID: bbref.GameIDFromURL(pageURL), URL: pageURL}
}

// reportMetrics periodically logs processing and hub metrics
func reportMetrics(ctx context.Context, proc *processor.Processor, wsHub *hub.Hub, logger *log.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := proc.GetMetrics()
			logger.Info("metrics",
				"processed", m.Processed,
				"failed", m.Failed,
				"skipped", m.Skipped,
				"events", m.Events,
				"dropped_rows", m.DroppedRows,
				"clients", wsHub.GetClientCount(),
			)
		}
	}
}
