package events

import (
	"sort"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// halfInning groups events that share an inning and half
type halfInning struct {
	inning int
	half   string
}

// FixPitchCounts zeroes the pitch count of a non-plate-appearance event when
// the next event in the same half inning completes a plate appearance for
// the same batter and pitcher, since that row's count already includes the
// pitch. The input is not modified and the result keeps the input order.
// Applying it twice gives the same result as applying it once.
func FixPitchCounts(events []models.Event) []models.Event {
	fixed := make([]models.Event, len(events))
	copy(fixed, events)

	groups := make(map[halfInning][]int)
	for i, e := range fixed {
		key := halfInning{inning: e.Inning, half: e.InningHalf}
		groups[key] = append(groups[key], i)
	}

	for _, idx := range groups {
		for j := 0; j < len(idx)-1; j++ {
			current := &fixed[idx[j]]
			if current.IsPlateAppearance || current.PitchCount == 0 {
				continue
			}

			next := fixed[idx[j+1]]
			if next.IsPlateAppearance &&
				next.BatterName == current.BatterName &&
				next.PitcherName == current.PitcherName {
				current.PitchCount = 0
			}
		}
	}

	return fixed
}

// halfRank orders top before bottom; unknown halves sort first
func halfRank(half string) int {
	switch half {
	case models.HalfTop:
		return 1
	case models.HalfBottom:
		return 2
	default:
		return 0
	}
}

// Reorder sorts events chronologically (inning, half, discovery order) and
// reassigns EventOrder as 1..N.
func Reorder(events []models.Event) []models.Event {
	ordered := make([]models.Event, len(events))
	copy(ordered, events)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Inning != b.Inning {
			return a.Inning < b.Inning
		}
		if halfRank(a.InningHalf) != halfRank(b.InningHalf) {
			return halfRank(a.InningHalf) < halfRank(b.InningHalf)
		}
		return a.EventOrder < b.EventOrder
	})

	for i := range ordered {
		ordered[i].EventOrder = i + 1
	}
	return ordered
}
