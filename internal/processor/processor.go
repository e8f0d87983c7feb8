package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/pipeline"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// MessageSource delivers game requests and accepts acknowledgements
type MessageSource interface {
	ConsumeStream(ctx context.Context, streamKey string) (<-chan consumer.Message, <-chan error)
	AckMessage(ctx context.Context, streamKey, messageID string) error
}

// Metrics are cumulative processing counters
type Metrics struct {
	Processed         int64 `json:"processed"`
	Failed            int64 `json:"failed"`
	Skipped           int64 `json:"skipped"`
	Events            int64 `json:"events"`
	DroppedRows       int64 `json:"dropped_rows"`
	PitchCountsZeroed int64 `json:"pitch_counts_zeroed"`
}

// Processor runs games through the pipeline and hands the results to the
// storage and notification layers. Every collaborator except the fetcher
// is optional.
type Processor struct {
	fetcher     contracts.GameFetcher
	store       contracts.GameStore
	cache       contracts.ReportCache
	publisher   contracts.ReportPublisher
	broadcaster contracts.Broadcaster
	dedup       contracts.Deduplicator
	logger      *log.Logger

	metrics Metrics
	mu      sync.Mutex
}

// Option configures a Processor
type Option func(*Processor)

// WithStore persists results
func WithStore(s contracts.GameStore) Option {
	return func(p *Processor) { p.store = s }
}

// WithCache caches reports
func WithCache(c contracts.ReportCache) Option {
	return func(p *Processor) { p.cache = c }
}

// WithPublisher publishes report summaries to a stream
func WithPublisher(pub contracts.ReportPublisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithBroadcaster pushes report summaries to live clients
func WithBroadcaster(b contracts.Broadcaster) Option {
	return func(p *Processor) { p.broadcaster = b }
}

// WithDeduplicator skips stream requests for games processed recently
func WithDeduplicator(d contracts.Deduplicator) Option {
	return func(p *Processor) { p.dedup = d }
}

// NewProcessor creates a new processor
func NewProcessor(fetcher contracts.GameFetcher, logger *log.Logger, opts ...Option) *Processor {
	p := &Processor{
		fetcher: fetcher,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start consumes requests from streamKey until ctx is cancelled. Every
// message is acknowledged, failed or not, so bad pages are not retried forever.
func (p *Processor) Start(ctx context.Context, source MessageSource, streamKey string) {
	p.logger.Info("started processing stream", "stream", streamKey)

	messageCh, errorCh := source.ConsumeStream(ctx, streamKey)

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			p.logger.Error("stream error", "stream", streamKey, "err", err)

		case msg, ok := <-messageCh:
			if !ok {
				return
			}

			p.handleMessage(ctx, msg)

			if err := source.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				p.logger.Error("ack failed", "id", msg.ID, "err", err)
			}
		}
	}
}

// handleMessage processes one stream request unless another request for the
// same game already claimed it. A failed request releases its claim.
func (p *Processor) handleMessage(ctx context.Context, msg consumer.Message) {
	key := msg.Request.GameID
	if key == "" {
		key = msg.Request.URL
	}

	if p.dedup != nil {
		claimed, err := p.dedup.Claim(ctx, key)
		if err != nil {
			// process anyway; a duplicate run only rewrites the same rows
			p.logger.Warn("dedup unavailable", "key", key, "err", err)
		} else if !claimed {
			p.incrementSkipped()
			p.logger.Debug("skipping duplicate request", "id", msg.ID, "key", key)
			return
		}
	}

	if _, err := p.ProcessRequest(ctx, msg.Request); err != nil {
		p.logger.Error("processing failed", "id", msg.ID, "url", msg.Request.URL, "err", err)
		if p.dedup != nil {
			if err := p.dedup.Release(ctx, key); err != nil {
				p.logger.Warn("releasing claim failed", "key", key, "err", err)
			}
		}
	}
}

// ProcessRequest fetches the requested page and processes it
func (p *Processor) ProcessRequest(ctx context.Context, req models.GameRequest) (models.GameResult, error) {
	if p.fetcher == nil {
		p.incrementFailed()
		return models.GameResult{}, errors.New("no fetcher configured")
	}

	input, err := p.fetcher.FetchGame(ctx, req.URL)
	if err != nil {
		p.incrementFailed()
		return models.GameResult{}, fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	if req.GameID != "" {
		input.GameID = req.GameID
	}

	return p.Process(ctx, input)
}

// Process runs the pipeline on already-extracted tables, then persists,
// caches, publishes and broadcasts the reports. Only a storage failure is
// returned as an error; notification failures are logged.
func (p *Processor) Process(ctx context.Context, input models.GameInput) (models.GameResult, error) {
	result := pipeline.ProcessGame(input)
	logger := p.logger.With("game_id", result.GameID)

	if result.Stats.Dropped > 0 {
		logger.Warn("dropped unclassifiable plays", "dropped", result.Stats.Dropped, "rows", result.Stats.Rows)
	}
	logger.Info("game processed",
		"events", len(result.Events),
		"batting_accuracy", result.BattingReport.Accuracy,
		"pitching_accuracy", result.PitchingReport.Accuracy,
	)

	if p.store != nil {
		if err := p.store.SaveGame(ctx, result); err != nil {
			p.incrementFailed()
			return result, fmt.Errorf("saving game %s: %w", result.GameID, err)
		}
	}

	for _, report := range []*models.ValidationReport{result.BattingReport, result.PitchingReport} {
		p.distribute(ctx, logger, result.GameID, report)
	}

	p.record(result)
	return result, nil
}

// distribute sends one report to the cache, stream and live clients
func (p *Processor) distribute(ctx context.Context, logger *log.Logger, gameID string, report *models.ValidationReport) {
	if p.cache != nil {
		if err := p.cache.WriteReport(ctx, gameID, report); err != nil {
			logger.Warn("caching report failed", "kind", report.Kind, "err", err)
		}
	}
	if p.publisher != nil {
		if err := p.publisher.PublishReport(ctx, gameID, report); err != nil {
			logger.Warn("publishing report failed", "kind", report.Kind, "err", err)
		}
	}
	if p.broadcaster != nil {
		p.broadcaster.BroadcastSummary(report.Summary(gameID))
	}
}

func (p *Processor) record(result models.GameResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics.Processed++
	p.metrics.Events += int64(len(result.Events))
	p.metrics.DroppedRows += int64(result.Stats.Dropped)
	p.metrics.PitchCountsZeroed += int64(result.Stats.PitchCountsZeroed)
}

func (p *Processor) incrementFailed() {
	p.mu.Lock()
	p.metrics.Failed++
	p.mu.Unlock()
}

func (p *Processor) incrementSkipped() {
	p.mu.Lock()
	p.metrics.Skipped++
	p.mu.Unlock()
}

// GetMetrics returns current processing metrics
func (p *Processor) GetMetrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}
