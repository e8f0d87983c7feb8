package models

// GameInput is everything the scraper collected for one game
type GameInput struct {
	GameID     string                   `json:"game_id"`
	SourceURL  string                   `json:"source_url,omitempty"`
	Batting    []map[string]interface{} `json:"batting"`  // raw official batting rows
	Pitching   []map[string]interface{} `json:"pitching"` // raw official pitching rows
	PlayByPlay []PlayByPlayRow          `json:"play_by_play"`
}

// MaterializeStats counts what happened to play-by-play rows
type MaterializeStats struct {
	Rows              int `json:"rows"`
	Filtered          int `json:"filtered"` // removed before classification
	Dropped           int `json:"dropped"`  // unclassifiable descriptions
	PitchCountsZeroed int `json:"pitch_counts_zeroed"`
}

// GameResult is the output of processing one game
type GameResult struct {
	GameID         string            `json:"game_id"`
	Events         []Event           `json:"events"`
	BattingReport  *ValidationReport `json:"batting_report"`
	PitchingReport *ValidationReport `json:"pitching_report"`
	Stats          MaterializeStats  `json:"stats"`
}

// GameRequest asks the service to fetch and process a game page
type GameRequest struct {
	GameID string `json:"game_id"`
	URL    string `json:"url"`
}
