// Package pipeline is the single entry point into the classification and
// reconciliation core. It performs no I/O and never fails: unusable input
// shows up as dropped rows and low-accuracy reports.
package pipeline

import (
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/boxscore"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/events"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/validator"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// ProcessGame materializes events from the play-by-play rows and validates
// them against the official batting and pitching lines
func ProcessGame(input models.GameInput) models.GameResult {
	evts, stats := events.MaterializeGame(input.PlayByPlay, input.GameID)

	batting := boxscore.ParseOfficialRows(input.Batting, models.KindBatting)
	pitching := boxscore.ParseOfficialRows(input.Pitching, models.KindPitching)

	return models.GameResult{
		GameID:         input.GameID,
		Events:         evts,
		BattingReport:  validator.ValidateBatting(batting, evts),
		PitchingReport: validator.ValidatePitching(pitching, evts),
		Stats:          stats,
	}
}

// Report returns the report of the given kind from a result
func Report(result models.GameResult, kind models.StatKind) *models.ValidationReport {
	if kind == models.KindPitching {
		return result.PitchingReport
	}
	return result.BattingReport
}
