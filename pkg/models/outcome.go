package models

// HitType identifies the kind of base hit on a play
type HitType string

const (
	HitNone    HitType = ""
	HitSingle  HitType = "single"
	HitDouble  HitType = "double"
	HitTriple  HitType = "triple"
	HitHomeRun HitType = "home_run"
)

// Bases returns the number of bases the batter reached on the hit
func (h HitType) Bases() int {
	switch h {
	case HitSingle:
		return 1
	case HitDouble:
		return 2
	case HitTriple:
		return 3
	case HitHomeRun:
		return 4
	default:
		return 0
	}
}

// Outcome is the structured result of classifying one play description
type Outcome struct {
	IsPlateAppearance bool    `json:"is_plate_appearance"`
	IsAtBat           bool    `json:"is_at_bat"`
	IsHit             bool    `json:"is_hit"`
	HitType           HitType `json:"hit_type,omitempty"`
	IsWalk            bool    `json:"is_walk"`
	IsStrikeout       bool    `json:"is_strikeout"`
	IsSacrificeFly    bool    `json:"is_sacrifice_fly"`
	IsSacrificeHit    bool    `json:"is_sacrifice_hit"`
	IsOut             bool    `json:"is_out"`
	OutsRecorded      int     `json:"outs_recorded"` // 0, 1 or 2
	BasesReached      int     `json:"bases_reached"` // 0..4
}
