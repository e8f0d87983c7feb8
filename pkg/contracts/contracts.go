// Package contracts defines the seams between the service layers so the
// processor and HTTP handlers can run against fakes in tests.
package contracts

import (
	"context"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// GameFetcher downloads and extracts the raw tables for one game page
type GameFetcher interface {
	FetchGame(ctx context.Context, url string) (models.GameInput, error)
}

// GameStore persists processed games
type GameStore interface {
	SaveGame(ctx context.Context, result models.GameResult) error
	GetEvents(ctx context.Context, gameID string) ([]models.Event, error)
	GetReport(ctx context.Context, gameID string, kind models.StatKind) (*models.ValidationReport, error)
}

// ReportCache holds recently computed validation reports
type ReportCache interface {
	WriteReport(ctx context.Context, gameID string, report *models.ValidationReport) error
	GetReport(ctx context.Context, gameID string, kind models.StatKind) (*models.ValidationReport, error)
}

// ReportPublisher announces new validation reports downstream
type ReportPublisher interface {
	PublishReport(ctx context.Context, gameID string, report *models.ValidationReport) error
}

// Broadcaster pushes validation summaries to live clients
type Broadcaster interface {
	BroadcastSummary(summary models.ValidationSummary)
}

// Deduplicator lets only the first of several identical requests through
type Deduplicator interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
