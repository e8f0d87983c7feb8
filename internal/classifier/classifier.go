// Package classifier maps free-text play descriptions to structured outcomes.
//
// Classification is an ordered rule table: the description is lowercased,
// baserunning clauses trailing the batter's result are split off, and the
// first matching rule decides the play category. Rule order encodes scoring
// precedence, so a sacrifice fly is never read as a plain fly out.
package classifier

import (
	"strings"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// PlayCategory is the intermediate result of matching a description
type PlayCategory int

const (
	CategoryUnknown PlayCategory = iota
	CategoryRunnerInterference
	CategorySacrificeFly
	CategorySacrificeHit
	CategoryWalk
	CategoryHitByPitch
	CategoryStrikeoutReached
	CategoryStrikeoutDoublePlay
	CategoryBaserunning
	CategoryReachedOnError
	CategoryReachedOnInterference
	CategoryStrikeout
	CategoryDoublePlay
	CategoryBatterInterference
	CategoryOut
	CategoryHomeRun
	CategoryHit
)

var categoryNames = map[PlayCategory]string{
	CategoryUnknown:               "unknown",
	CategoryRunnerInterference:    "runner_interference",
	CategorySacrificeFly:          "sacrifice_fly",
	CategorySacrificeHit:          "sacrifice_hit",
	CategoryWalk:                  "walk",
	CategoryHitByPitch:            "hit_by_pitch",
	CategoryStrikeoutReached:      "strikeout_reached",
	CategoryStrikeoutDoublePlay:   "strikeout_double_play",
	CategoryBaserunning:           "baserunning",
	CategoryReachedOnError:        "reached_on_error",
	CategoryReachedOnInterference: "reached_on_interference",
	CategoryStrikeout:             "strikeout",
	CategoryDoublePlay:            "double_play",
	CategoryBatterInterference:    "batter_interference",
	CategoryOut:                   "out",
	CategoryHomeRun:               "home_run",
	CategoryHit:                   "hit",
}

func (c PlayCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Categorize returns the category of a description and the clause that was
// matched. CategoryUnknown means no rule applied.
func Categorize(description string) (PlayCategory, string) {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return CategoryUnknown, text
	}

	// must run first: these also contain batter-looking substrings
	if runnerInterference.MatchString(text) {
		return CategoryRunnerInterference, text
	}

	text = splitCompound(text)
	for _, r := range rules {
		if r.matches(text) {
			return r.category, text
		}
	}
	return CategoryUnknown, text
}

// Classify returns the outcome for a play description. The boolean is false
// when the description is not interpretable and the row should be dropped.
func Classify(description string) (models.Outcome, bool) {
	category, text := Categorize(description)
	if category == CategoryUnknown {
		return models.Outcome{}, false
	}
	return outcomeFor(category, text), true
}

// outcomeFor builds the outcome for a matched category
func outcomeFor(category PlayCategory, text string) models.Outcome {
	switch category {
	case CategoryRunnerInterference, CategoryBaserunning:
		return models.Outcome{}
	case CategorySacrificeFly:
		return models.Outcome{IsPlateAppearance: true, IsSacrificeFly: true, IsOut: true, OutsRecorded: 1}
	case CategorySacrificeHit:
		return models.Outcome{IsPlateAppearance: true, IsSacrificeHit: true, IsOut: true, OutsRecorded: 1}
	case CategoryWalk:
		return models.Outcome{IsPlateAppearance: true, IsWalk: true}
	case CategoryHitByPitch:
		return models.Outcome{IsPlateAppearance: true}
	case CategoryStrikeoutReached:
		return models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsStrikeout: true}
	case CategoryStrikeoutDoublePlay:
		return models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsStrikeout: true, IsOut: true, OutsRecorded: 2}
	}

	// an at-bat is charged from here on unless a rule says otherwise
	o := models.Outcome{IsPlateAppearance: true, IsAtBat: true}

	switch category {
	case CategoryReachedOnError:
		// errors are not hits but still count as at-bats
	case CategoryReachedOnInterference:
		o.IsAtBat = false
	case CategoryStrikeout:
		o.IsStrikeout = true
		o.IsOut = true
		o.OutsRecorded = 1
	case CategoryDoublePlay:
		o.IsOut = true
		o.OutsRecorded = 2
	case CategoryBatterInterference, CategoryOut:
		o.IsOut = true
		o.OutsRecorded = 1
	case CategoryHomeRun:
		o.IsHit = true
		o.HitType = models.HitHomeRun
		o.BasesReached = models.HitHomeRun.Bases()
	case CategoryHit:
		o.IsHit = true
		o.HitType = hitTypeOf(text)
		o.BasesReached = o.HitType.Bases()
	}
	return o
}

// hitTypeOf picks the first hit keyword in the description
func hitTypeOf(text string) models.HitType {
	if m := baseHit.FindStringSubmatch(text); m != nil {
		switch m[1] {
		case "single":
			return models.HitSingle
		case "double":
			return models.HitDouble
		case "triple":
			return models.HitTriple
		}
	}
	if groundRuleDouble.MatchString(text) {
		return models.HitDouble
	}
	return models.HitSingle
}
