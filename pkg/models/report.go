package models

// StatDelta is a single parsed-vs-official mismatch
type StatDelta struct {
	Stat     string  `json:"stat"`
	Official float64 `json:"official"`
	Parsed   float64 `json:"parsed"`
	Delta    float64 `json:"delta"` // parsed - official
}

// PlayerDifference lists every mismatching stat for one player
type PlayerDifference struct {
	Player      string      `json:"player"`
	Differences []string    `json:"differences"` // "H: 2 vs 1 (diff: -1)"
	Deltas      []StatDelta `json:"deltas"`
}

// CategorizedMismatches splits unmatched official names by likely cause
type CategorizedMismatches struct {
	PinchRunners   []string `json:"pinch_runners"`
	NameMismatches []string `json:"name_mismatches"`
	EmptyStats     []string `json:"empty_stats"`
}

// NameMismatches reports players found on only one side of the join
type NameMismatches struct {
	UnmatchedOfficial []string              `json:"unmatched_official"`
	UnmatchedParsed   []string              `json:"unmatched_parsed"`
	Categorized       CategorizedMismatches `json:"categorized"`
}

// ValidationReport is the result of reconciling parsed events against official stats
type ValidationReport struct {
	Kind             StatKind           `json:"kind"`
	Accuracy         float64            `json:"accuracy"` // 0..100
	PlayersCompared  int                `json:"players_compared"`
	TotalDifferences int                `json:"total_differences"`
	TotalStats       int                `json:"total_stats"`
	StatAccuracy     map[string]float64 `json:"stat_accuracy"`
	Differences      []PlayerDifference `json:"differences"`
	NameMismatches   NameMismatches     `json:"name_mismatches"`
}

// ValidationSummary is the compact form published to streams and websocket clients
type ValidationSummary struct {
	GameID           string   `json:"game_id"`
	Kind             StatKind `json:"kind"`
	Accuracy         float64  `json:"accuracy"`
	PlayersCompared  int      `json:"players_compared"`
	TotalDifferences int      `json:"total_differences"`
	TotalStats       int      `json:"total_stats"`
}

// Summary returns the compact form of the report
func (r *ValidationReport) Summary(gameID string) ValidationSummary {
	return ValidationSummary{
		GameID:           gameID,
		Kind:             r.Kind,
		Accuracy:         r.Accuracy,
		PlayersCompared:  r.PlayersCompared,
		TotalDifferences: r.TotalDifferences,
		TotalStats:       r.TotalStats,
	}
}
