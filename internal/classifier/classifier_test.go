package classifier

import (
	"testing"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        models.Outcome
	}{
		{
			name:        "home run",
			description: "Home Run (Fly Ball); Smith scores",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitHomeRun, BasesReached: 4,
			},
		},
		{
			name:        "single with popfly trajectory",
			description: "Single to RF (Popfly to Short RF)",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitSingle, BasesReached: 1,
			},
		},
		{
			name:        "single with popup trajectory",
			description: "Single to LF (Popup)",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitSingle, BasesReached: 1,
			},
		},
		{
			name:        "popfly out",
			description: "Popfly: SS (Short LF Line)",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsOut: true, OutsRecorded: 1,
			},
		},
		{
			name:        "natural language home run",
			description: "Judge homered to right, Stanton scored",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitHomeRun, BasesReached: 4,
			},
		},
		{
			name:        "strikeout with wild pitch",
			description: "Strikeout Swinging, Wild Pitch",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsStrikeout: true},
		},
		{
			name:        "strikeout with passed ball",
			description: "Strikeout Looking, Passed Ball; Batter to 1B",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsStrikeout: true},
		},
		{
			name:        "strikeout double play",
			description: "Strikeout Swinging, Caught Stealing 2B (C-SS); Double Play",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsStrikeout: true,
				IsOut: true, OutsRecorded: 2,
			},
		},
		{
			name:        "sacrifice fly",
			description: "Flyball: RF (Deep RF); Sacrifice Fly; Jones Scores",
			want:        models.Outcome{IsPlateAppearance: true, IsSacrificeFly: true, IsOut: true, OutsRecorded: 1},
		},
		{
			name:        "sacrifice bunt",
			description: "Sacrifice Bunt: P-1B; Smith to 2B",
			want:        models.Outcome{IsPlateAppearance: true, IsSacrificeHit: true, IsOut: true, OutsRecorded: 1},
		},
		{
			name:        "walk",
			description: "Walk; Smith to 2B",
			want:        models.Outcome{IsPlateAppearance: true, IsWalk: true},
		},
		{
			name:        "intentional walk",
			description: "Intentional Walk",
			want:        models.Outcome{IsPlateAppearance: true, IsWalk: true},
		},
		{
			name:        "hit by pitch",
			description: "Hit By Pitch; Jones to 2B",
			want:        models.Outcome{IsPlateAppearance: true},
		},
		{
			name:        "strikeout",
			description: "Strikeout Looking",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsStrikeout: true,
				IsOut: true, OutsRecorded: 1,
			},
		},
		{
			name:        "reached on error",
			description: "Reached on E6 (Ground Ball); Smith to 3B",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true},
		},
		{
			name:        "reached on catcher interference",
			description: "Reached on Interference by C",
			want:        models.Outcome{IsPlateAppearance: true},
		},
		{
			name:        "grounded into double play",
			description: "Ground Ball Double Play: SS-2B-1B",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsOut: true, OutsRecorded: 2},
		},
		{
			name:        "batter interference",
			description: "Batter Interference; Smith Out at 2B",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsOut: true, OutsRecorded: 1},
		},
		{
			name:        "groundout",
			description: "Groundout: SS-1B",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsOut: true, OutsRecorded: 1},
		},
		{
			name:        "fielder's choice",
			description: "Fielder's Choice SS; Smith out at 2B",
			want:        models.Outcome{IsPlateAppearance: true, IsAtBat: true, IsOut: true, OutsRecorded: 1},
		},
		{
			name:        "single",
			description: "Single to CF (Ground Ball thru SS-2B)",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitSingle, BasesReached: 1,
			},
		},
		{
			name:        "double",
			description: "Double to LF (Line Drive); Smith Scores",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitDouble, BasesReached: 2,
			},
		},
		{
			name:        "ground-rule double",
			description: "Ground-rule Double (Fly Ball to Deep LF Line)",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitDouble, BasesReached: 2,
			},
		},
		{
			name:        "triple",
			description: "Judge tripled down the right-field line",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitTriple, BasesReached: 3,
			},
		},
		{
			name:        "single with trailing pickoff clause",
			description: "Single to RF, Smith picked off 1B",
			want: models.Outcome{
				IsPlateAppearance: true, IsAtBat: true, IsHit: true,
				HitType: models.HitSingle, BasesReached: 1,
			},
		},
		{
			name:        "stolen base only",
			description: "Stolen Base 2B",
			want:        models.Outcome{},
		},
		{
			name:        "wild pitch only",
			description: "Wild Pitch; Smith to 3B",
			want:        models.Outcome{},
		},
		{
			name:        "caught stealing with runner interference",
			description: "Caught Stealing 2B (C-SS); Single to LF looked like it, interference by runner",
			want:        models.Outcome{},
		},
		{
			name:        "leading runner interference",
			description: "Interference by Runner; Groundout: 2B-1B",
			want:        models.Outcome{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.description)
			if !ok {
				t.Fatalf("Classify(%q) returned no match", tt.description)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.description, got, tt.want)
			}
		})
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	for _, desc := range []string{"", "   ", "Top of the 1st, Yankees Batting", "Mound visit"} {
		if got, ok := Classify(desc); ok {
			t.Errorf("Classify(%q) = %+v, want no match", desc, got)
		}
	}
}

func TestCategorize_SacrificeFlyBeatsFlyOut(t *testing.T) {
	desc := "Smith flied out to right, sacrifice fly, Jones scores"

	category, _ := Categorize(desc)
	if category != CategorySacrificeFly {
		t.Fatalf("Categorize(%q) = %s, want %s", desc, category, CategorySacrificeFly)
	}

	got, _ := Classify(desc)
	if !got.IsSacrificeFly || got.IsAtBat {
		t.Errorf("Classify(%q) = %+v, want sacrifice fly without at-bat", desc, got)
	}
}

func TestCategorize_CompoundSplit(t *testing.T) {
	_, clause := Categorize("Walk, Jones Caught Stealing 2B (C-SS)")
	if clause != "walk" {
		t.Errorf("clause = %q, want %q", clause, "walk")
	}

	// a strikeout the batter reaches on keeps its full text
	_, clause = Categorize("Strikeout Swinging, Wild Pitch")
	if clause != "strikeout swinging, wild pitch" {
		t.Errorf("clause = %q, want full description", clause)
	}

	category, clause := Categorize("Strikeout Looking, Jones Caught Stealing 2B (C-SS)")
	if clause != "strikeout looking" || category != CategoryStrikeout {
		t.Errorf("Categorize() = %s %q, want strikeout %q", category, clause, "strikeout looking")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	descriptions := []string{
		"Home Run (Fly Ball); Smith scores",
		"Strikeout Swinging, Wild Pitch",
		"Flyball: RF (Deep RF); Sacrifice Fly; Jones Scores",
		"Groundout: SS-1B",
		"Stolen Base 2B",
	}

	for _, d := range descriptions {
		first, firstOK := Classify(d)
		for i := 0; i < 5; i++ {
			got, ok := Classify(d)
			if got != first || ok != firstOK {
				t.Fatalf("Classify(%q) changed between calls: %+v then %+v", d, first, got)
			}
		}
	}
}

func TestPlayCategory_String(t *testing.T) {
	if got := CategoryHomeRun.String(); got != "home_run" {
		t.Errorf("String() = %s, want home_run", got)
	}
	if got := PlayCategory(99).String(); got != "unknown" {
		t.Errorf("String() = %s, want unknown", got)
	}
}
