// Package events turns raw play-by-play rows into ordered, classified events.
package events

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/classifier"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/names"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

var (
	leadingInt = regexp.MustCompile(`^\s*(\d+)`)
	firstInt   = regexp.MustCompile(`\d+`)
)

// Materialize builds an Event from one play-by-play row. The boolean is false
// when the description could not be classified and the row is dropped.
func Materialize(row models.PlayByPlayRow, gameID string, sequence int) (models.Event, bool) {
	outcome, ok := classifier.Classify(row.Description)
	if !ok {
		return models.Event{}, false
	}

	inning, half := parseInning(row.Inning)

	return models.Event{
		EventID:     uuid.New().String(),
		GameID:      gameID,
		Inning:      inning,
		InningHalf:  half,
		BatterName:  names.Normalize(row.Batter),
		BatterID:    row.BatterID,
		PitcherName: names.Normalize(row.Pitcher),
		PitcherID:   row.PitcherID,
		Description: row.Description,
		Outcome:     outcome,
		PitchCount:  parsePitchCount(row.PitchCount),
		EventOrder:  sequence,
	}, true
}

// MaterializeGame classifies every qualifying row of a game, corrects pitch
// counts and assigns a dense 1-based event order.
func MaterializeGame(rows []models.PlayByPlayRow, gameID string) ([]models.Event, models.MaterializeStats) {
	stats := models.MaterializeStats{Rows: len(rows)}

	kept := FilterRows(rows)
	stats.Filtered = len(rows) - len(kept)

	events := make([]models.Event, 0, len(kept))
	for i, row := range kept {
		event, ok := Materialize(row, gameID, i+1)
		if !ok {
			stats.Dropped++
			continue
		}
		events = append(events, event)
	}

	fixed := FixPitchCounts(events)
	for i := range fixed {
		if fixed[i].PitchCount != events[i].PitchCount {
			stats.PitchCountsZeroed++
		}
	}

	return Reorder(fixed), stats
}

// FilterRows removes rows missing required fields and inning-boundary markers
func FilterRows(rows []models.PlayByPlayRow) []models.PlayByPlayRow {
	kept := make([]models.PlayByPlayRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Inning) == "" ||
			strings.TrimSpace(row.Description) == "" ||
			strings.TrimSpace(row.Pitcher) == "" {
			continue
		}
		if isInningMarker(row.Batter) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// isInningMarker detects "Top of the 3rd" style header rows
func isInningMarker(batter string) bool {
	return strings.Contains(batter, "Top of the") || strings.Contains(batter, "Bottom of the")
}

// parseInning splits "t7" / "b10" into the inning number and half
func parseInning(raw string) (int, string) {
	s := strings.ToLower(strings.TrimSpace(raw))

	half := ""
	switch {
	case strings.HasPrefix(s, "t"):
		half = models.HalfTop
	case strings.HasPrefix(s, "b"):
		half = models.HalfBottom
	}

	inning := 0
	if m := firstInt.FindString(s); m != "" {
		inning, _ = strconv.Atoi(m)
	}
	return inning, half
}

// parsePitchCount reads the leading total of "4,(1-2) CBFX"
func parsePitchCount(raw string) int {
	m := leadingInt.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
