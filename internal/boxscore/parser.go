// Package boxscore converts raw official box-score rows into stat lines.
package boxscore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/names"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// Columns that may hold the player's name, in lookup order
var nameColumns = []string{"Batting", "Pitching", "Player", "Name", "player", "name"}

// detailsColumn holds compact event lists such as "2·HR,2B,SB"
const detailsColumn = "Details"

// Detail codes mapped to stat columns
var detailCodes = map[string]string{
	"2B":  models.Stat2B,
	"3B":  models.Stat3B,
	"HR":  models.StatHR,
	"SB":  models.StatSB,
	"CS":  models.StatCS,
	"GDP": models.StatGDP,
	"SF":  models.StatSF,
	"SH":  models.StatSH,
	"HBP": models.StatHBP,
	"IW":  models.StatIBB,
}

// ParseOfficialRows builds one stat line per player from scraped rows.
// Every cell other than the name is coerced to a number; anything that does
// not parse counts as zero. Rows for the same normalized name are summed.
func ParseOfficialRows(rows []map[string]interface{}, kind models.StatKind) []models.OfficialStatLine {
	lines := make([]models.OfficialStatLine, 0, len(rows))
	index := make(map[string]int)

	for _, row := range rows {
		name := names.Normalize(extractName(row))
		if name == "" || isTeamTotal(name) {
			continue
		}

		stats := make(map[string]float64, len(row))
		for col, v := range row {
			if isNameColumn(col) || col == detailsColumn {
				continue
			}
			stats[col] = parseFloat(v)
		}
		if kind == models.KindBatting {
			applyDetails(stats, extractString(row, detailsColumn))
		}

		if i, ok := index[name]; ok {
			for col, v := range stats {
				lines[i].Stats[col] += v
			}
			continue
		}

		index[name] = len(lines)
		lines = append(lines, models.OfficialStatLine{Name: name, Kind: kind, Stats: stats})
	}

	return lines
}

// applyDetails fills counters from the Details column when the table has
// no dedicated column for them
func applyDetails(stats map[string]float64, details string) {
	if details == "" {
		return
	}

	counts := ParseDetails(details)
	for stat, n := range counts {
		if stats[stat] == 0 {
			stats[stat] = n
		}
	}
}

// ParseDetails expands "2·HR,2B,SB" into {"HR": 2, "2B": 1, "SB": 1}
func ParseDetails(details string) map[string]float64 {
	counts := make(map[string]float64)

	for _, token := range strings.Split(details, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		n := 1.0
		code := token
		if i := strings.IndexAny(token, "·*"); i >= 0 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(token[:i]), 64); err == nil {
				n = v
			}
			code = strings.TrimLeft(token[i:], "·*")
		}

		if stat, ok := detailCodes[strings.ToUpper(strings.TrimSpace(code))]; ok {
			counts[stat] += n
		}
	}

	return counts
}

// isTeamTotal detects summary rows such as "Team Totals"
func isTeamTotal(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "team totals") || lower == "team" || lower == "totals"
}

func isNameColumn(col string) bool {
	for _, c := range nameColumns {
		if col == c {
			return true
		}
	}
	return false
}

// extractName returns the first populated name column
func extractName(row map[string]interface{}) string {
	for _, col := range nameColumns {
		if s := extractString(row, col); s != "" {
			return s
		}
	}
	return ""
}

// extractString safely extracts a string from a map
func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case string:
			return val
		case nil:
			return ""
		default:
			return fmt.Sprint(val)
		}
	}
	return ""
}

// parseFloat parses a float from interface{}, returning 0 for anything unusable
func parseFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return finite(f)
	default:
		return 0
	}
}

// finite maps NaN and ±Inf to 0
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
