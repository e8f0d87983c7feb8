// Package store persists materialized events and validation reports.
// PostgreSQL is used in production; SQLite serves local runs and tests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrNotFound is returned when a game has no stored rows
var ErrNotFound = errors.New("not found")

// Store wraps a database handle for the configured driver
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates tables if they don't exist
func Open(driver, dsn string) (*Store, error) {
	connStr := dsn
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dsn == "" || dsn == ":memory:" {
			connStr = "file::memory:?cache=shared"
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// one connection keeps every query on the same in-memory database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	timestamp := "TIMESTAMPTZ NOT NULL DEFAULT NOW()"
	if s.driver == DriverSQLite {
		timestamp = "DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}

	schema := `
	CREATE TABLE IF NOT EXISTS game_events (
		event_id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		event_order INTEGER NOT NULL,
		inning INTEGER NOT NULL,
		inning_half TEXT NOT NULL,
		batter_name TEXT NOT NULL,
		batter_id TEXT,
		pitcher_name TEXT NOT NULL,
		pitcher_id TEXT,
		description TEXT NOT NULL,
		pitch_count INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_game_events_order ON game_events(game_id, event_order);

	CREATE TABLE IF NOT EXISTS validation_reports (
		game_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		accuracy DOUBLE PRECISION NOT NULL,
		players_compared INTEGER NOT NULL,
		total_differences INTEGER NOT NULL,
		total_stats INTEGER NOT NULL,
		report TEXT NOT NULL,
		created_at ` + timestamp + `,
		PRIMARY KEY (game_id, kind)
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveGame replaces every stored event and report for the game in one transaction
func (s *Store) SaveGame(ctx context.Context, result models.GameResult) error {
	if result.GameID == "" {
		return errors.New("save game: empty game id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM game_events WHERE game_id = ?`), result.GameID); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM validation_reports WHERE game_id = ?`), result.GameID); err != nil {
		return fmt.Errorf("failed to clear reports: %w", err)
	}

	insertEvent, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO game_events (
			event_id, game_id, event_order, inning, inning_half,
			batter_name, batter_id, pitcher_name, pitcher_id,
			description, pitch_count, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer insertEvent.Close()

	for _, e := range result.Events {
		outcome, err := json.Marshal(e.Outcome)
		if err != nil {
			return fmt.Errorf("marshaling outcome: %w", err)
		}
		_, err = insertEvent.ExecContext(ctx,
			e.EventID, result.GameID, e.EventOrder, e.Inning, e.InningHalf,
			e.BatterName, e.BatterID, e.PitcherName, e.PitcherID,
			e.Description, e.PitchCount, string(outcome),
		)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.EventID, err)
		}
	}

	for _, report := range []*models.ValidationReport{result.BattingReport, result.PitchingReport} {
		if report == nil {
			continue
		}
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO validation_reports (
				game_id, kind, accuracy, players_compared, total_differences, total_stats, report
			) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			result.GameID, string(report.Kind), report.Accuracy, report.PlayersCompared,
			report.TotalDifferences, report.TotalStats, string(data),
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s report: %w", report.Kind, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEvents returns a game's events ordered by event_order
func (s *Store) GetEvents(ctx context.Context, gameID string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT event_id, game_id, event_order, inning, inning_half,
			batter_name, COALESCE(batter_id, ''), pitcher_name, COALESCE(pitcher_id, ''),
			description, pitch_count, outcome
		FROM game_events
		WHERE game_id = ?
		ORDER BY event_order`), gameID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var outcome string
		if err := rows.Scan(
			&e.EventID, &e.GameID, &e.EventOrder, &e.Inning, &e.InningHalf,
			&e.BatterName, &e.BatterID, &e.PitcherName, &e.PitcherID,
			&e.Description, &e.PitchCount, &outcome,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(outcome), &e.Outcome); err != nil {
			return nil, fmt.Errorf("unmarshaling outcome for %s: %w", e.EventID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events, nil
}

// GetReport returns a stored validation report
func (s *Store) GetReport(ctx context.Context, gameID string, kind models.StatKind) (*models.ValidationReport, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT report FROM validation_reports WHERE game_id = ? AND kind = ?`),
		gameID, string(kind),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report models.ValidationReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("unmarshaling report: %w", err)
	}
	return &report, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
