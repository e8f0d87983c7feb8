package models

// StatKind selects the batting or pitching side of a box score
type StatKind string

const (
	KindBatting  StatKind = "batting"
	KindPitching StatKind = "pitching"
)

// ParseStatKind converts a string into a StatKind
func ParseStatKind(s string) (StatKind, bool) {
	switch StatKind(s) {
	case KindBatting:
		return KindBatting, true
	case KindPitching:
		return KindPitching, true
	default:
		return "", false
	}
}

// Stat column names shared by official rows and parsed aggregates
const (
	StatPA  = "PA"
	StatAB  = "AB"
	StatH   = "H"
	StatR   = "R"
	StatBB  = "BB"
	StatSO  = "SO"
	StatHR  = "HR"
	Stat2B  = "2B"
	Stat3B  = "3B"
	StatSB  = "SB"
	StatCS  = "CS"
	StatHBP = "HBP"
	StatGDP = "GDP"
	StatSF  = "SF"
	StatSH  = "SH"
	StatIBB = "IBB"
	StatBF  = "BF"
	StatIP  = "IP"
	StatER  = "ER"
	StatPit = "Pit"
)

// OfficialStatLine is one player's published line for a game
type OfficialStatLine struct {
	Name  string             `json:"name"` // normalized
	Kind  StatKind           `json:"kind"`
	Stats map[string]float64 `json:"stats"`
}

// Get returns a counter, zero when absent
func (l OfficialStatLine) Get(stat string) float64 {
	return l.Stats[stat]
}
