package models

// Inning halves
const (
	HalfTop    = "top"
	HalfBottom = "bottom"
)

// PlayByPlayRow is one raw row of a play-by-play table as scraped
type PlayByPlayRow struct {
	Inning        string `json:"inning"`                    // "t1", "b9"
	Score         string `json:"score,omitempty"`           // "0-0"
	Outs          string `json:"outs,omitempty"`            // outs before the play
	RunnersOnBase string `json:"runners_on_base,omitempty"` // "1-3"
	PitchCount    string `json:"pitch_count"`               // "4,(1-2) CBFX"
	RunsOuts      string `json:"runs_outs,omitempty"`       // "R/O" column
	AtBatTeam     string `json:"at_bat_team,omitempty"`
	Batter        string `json:"batter"`
	BatterID      string `json:"batter_id,omitempty"`
	Pitcher       string `json:"pitcher"`
	PitcherID     string `json:"pitcher_id,omitempty"`
	Description   string `json:"description"`
}

// Event is a classified play-by-play row belonging to a single game
type Event struct {
	EventID     string `json:"event_id"`
	GameID      string `json:"game_id"`
	Inning      int    `json:"inning"`
	InningHalf  string `json:"inning_half"` // "top", "bottom" or ""
	BatterName  string `json:"batter_name"`
	BatterID    string `json:"batter_id,omitempty"`
	PitcherName string `json:"pitcher_name"`
	PitcherID   string `json:"pitcher_id,omitempty"`
	Description string `json:"description"`
	Outcome
	PitchCount int `json:"pitch_count"`
	EventOrder int `json:"event_order"` // 1-based, dense within a game
}
