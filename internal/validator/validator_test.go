package validator

import (
	"reflect"
	"testing"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

func batting(name string, stats map[string]float64) models.OfficialStatLine {
	return models.OfficialStatLine{Name: name, Kind: models.KindBatting, Stats: stats}
}

func pa(batter, pitcher string, o models.Outcome) models.Event {
	o.IsPlateAppearance = true
	return models.Event{BatterName: batter, PitcherName: pitcher, Outcome: o}
}

var (
	single    = models.Outcome{IsAtBat: true, IsHit: true, HitType: models.HitSingle, BasesReached: 1}
	double    = models.Outcome{IsAtBat: true, IsHit: true, HitType: models.HitDouble, BasesReached: 2}
	homeRun   = models.Outcome{IsAtBat: true, IsHit: true, HitType: models.HitHomeRun, BasesReached: 4}
	walk      = models.Outcome{IsWalk: true}
	strikeout = models.Outcome{IsAtBat: true, IsStrikeout: true, IsOut: true, OutsRecorded: 1}
	groundout = models.Outcome{IsAtBat: true, IsOut: true, OutsRecorded: 1}
)

func TestValidate_RoundTrip(t *testing.T) {
	official := []models.OfficialStatLine{
		batting("Jane Doe", map[string]float64{"PA": 4, "AB": 3, "H": 1, "BB": 1, "SO": 0}),
	}
	events := []models.Event{
		pa("Jane Doe", "P", single),
		pa("Jane Doe", "P", walk),
		pa("Jane Doe", "P", groundout),
		pa("Jane Doe", "P", groundout),
	}

	report := Validate(official, events, models.KindBatting)

	if report.Accuracy != 100.0 {
		t.Errorf("Accuracy = %v, want 100", report.Accuracy)
	}
	if len(report.Differences) != 0 {
		t.Errorf("Differences = %v, want none", report.Differences)
	}
	if report.PlayersCompared != 1 {
		t.Errorf("PlayersCompared = %d, want 1", report.PlayersCompared)
	}
	if report.TotalStats != 9 || report.TotalDifferences != 0 {
		t.Errorf("totals = %d/%d, want 9/0", report.TotalStats, report.TotalDifferences)
	}
}

func TestValidate_ReportsDifferences(t *testing.T) {
	official := []models.OfficialStatLine{
		batting("Aaron Judge", map[string]float64{"PA": 4, "AB": 4, "H": 2, "HR": 1, "2B": 1, "SO": 1}),
	}
	events := []models.Event{
		pa("Aaron Judge", "P", homeRun),
		pa("Aaron Judge", "P", single),
		pa("Aaron Judge", "P", strikeout),
		pa("Aaron Judge", "P", groundout),
	}

	report := ValidateBatting(official, events)

	if len(report.Differences) != 1 {
		t.Fatalf("Differences = %v, want one player", report.Differences)
	}
	diff := report.Differences[0]
	want := []string{"2B: 1 vs 0 (diff: -1)"}
	if !reflect.DeepEqual(diff.Differences, want) {
		t.Errorf("Differences = %v, want %v", diff.Differences, want)
	}
	if diff.Deltas[0].Stat != models.Stat2B || diff.Deltas[0].Delta != -1 {
		t.Errorf("Deltas = %+v", diff.Deltas)
	}
	// 13 official counters, one miss
	if report.TotalStats != 13 || report.TotalDifferences != 1 {
		t.Errorf("totals = %d/%d, want 13/1", report.TotalStats, report.TotalDifferences)
	}
	if report.StatAccuracy[models.Stat2B] != 0 {
		t.Errorf("StatAccuracy[2B] = %v, want 0", report.StatAccuracy[models.Stat2B])
	}
	if report.StatAccuracy[models.StatH] != 100 {
		t.Errorf("StatAccuracy[H] = %v, want 100", report.StatAccuracy[models.StatH])
	}
}

func TestValidate_CategorizesUnmatched(t *testing.T) {
	official := []models.OfficialStatLine{
		batting("Jane Doe", map[string]float64{"PA": 1, "AB": 1, "H": 1}),
		batting("Pinch Runner", map[string]float64{"PA": 0, "AB": 0, "SB": 1}),
		batting("Bench Guy", map[string]float64{"PA": 0, "AB": 0}),
		batting("Misspelled Name", map[string]float64{"PA": 3, "AB": 3}),
	}
	events := []models.Event{
		pa("Jane Doe", "P", single),
		pa("Mispelled Name", "P", groundout),
	}

	report := ValidateBatting(official, events)
	got := report.NameMismatches

	if !reflect.DeepEqual(got.Categorized.PinchRunners, []string{"Pinch Runner"}) {
		t.Errorf("PinchRunners = %v", got.Categorized.PinchRunners)
	}
	if !reflect.DeepEqual(got.Categorized.EmptyStats, []string{"Bench Guy"}) {
		t.Errorf("EmptyStats = %v", got.Categorized.EmptyStats)
	}
	if !reflect.DeepEqual(got.Categorized.NameMismatches, []string{"Misspelled Name"}) {
		t.Errorf("NameMismatches = %v", got.Categorized.NameMismatches)
	}
	if !reflect.DeepEqual(got.UnmatchedOfficial, []string{"Bench Guy", "Misspelled Name", "Pinch Runner"}) {
		t.Errorf("UnmatchedOfficial = %v", got.UnmatchedOfficial)
	}
	if !reflect.DeepEqual(got.UnmatchedParsed, []string{"Mispelled Name"}) {
		t.Errorf("UnmatchedParsed = %v", got.UnmatchedParsed)
	}
	if report.PlayersCompared != 1 || report.Accuracy != 100 {
		t.Errorf("compared=%d accuracy=%v, want 1 and 100", report.PlayersCompared, report.Accuracy)
	}
}

func TestValidate_EmptyOfficialLineWithEvents(t *testing.T) {
	official := []models.OfficialStatLine{
		batting("Jane Doe", map[string]float64{"PA": 1, "AB": 1, "H": 1}),
		batting("John Roe", map[string]float64{"PA": 0, "AB": 0}),
	}
	events := []models.Event{
		pa("Jane Doe", "P", single),
		pa("John Roe", "P", strikeout),
	}

	report := ValidateBatting(official, events)
	got := report.NameMismatches

	if report.PlayersCompared != 1 {
		t.Errorf("PlayersCompared = %d, want 1", report.PlayersCompared)
	}
	if !reflect.DeepEqual(got.UnmatchedParsed, []string{"John Roe"}) {
		t.Errorf("UnmatchedParsed = %v, want [John Roe]", got.UnmatchedParsed)
	}
	if !reflect.DeepEqual(got.UnmatchedOfficial, []string{"John Roe"}) {
		t.Errorf("UnmatchedOfficial = %v, want [John Roe]", got.UnmatchedOfficial)
	}
	if !reflect.DeepEqual(got.Categorized.EmptyStats, []string{"John Roe"}) {
		t.Errorf("EmptyStats = %v, want [John Roe]", got.Categorized.EmptyStats)
	}
}

func TestValidate_EmptyInputs(t *testing.T) {
	official := []models.OfficialStatLine{batting("Jane Doe", map[string]float64{"PA": 1})}
	events := []models.Event{pa("Jane Doe", "P", walk)}

	tests := []struct {
		name     string
		official []models.OfficialStatLine
		events   []models.Event
	}{
		{"no official", nil, events},
		{"no events", official, nil},
		{"neither", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.official, tt.events, models.KindBatting)
			if report.Accuracy != 0 || report.PlayersCompared != 0 {
				t.Errorf("report = %+v, want degenerate", report)
			}
			if report.Differences == nil || report.NameMismatches.UnmatchedOfficial == nil {
				t.Error("degenerate report should carry empty, non-nil slices")
			}
		})
	}
}

func TestValidate_AccuracyBounds(t *testing.T) {
	// parsed far exceeds official: raw formula would go negative
	official := []models.OfficialStatLine{batting("Jane Doe", map[string]float64{"PA": 1, "AB": 1})}
	var events []models.Event
	for i := 0; i < 10; i++ {
		events = append(events, pa("Jane Doe", "P", homeRun))
	}

	report := ValidateBatting(official, events)
	if report.Accuracy < 0 || report.Accuracy > 100 {
		t.Errorf("Accuracy = %v, want within [0, 100]", report.Accuracy)
	}
	if report.Accuracy != 0 {
		t.Errorf("Accuracy = %v, want clamped to 0", report.Accuracy)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		total, diffs, want float64
	}{
		{0, 0, 0},
		{10, 0, 100},
		{10, 5, 50},
		{10, 25, 0},
		{4, 1, 75},
	}

	for _, tt := range tests {
		if got := Accuracy(tt.total, tt.diffs); got != tt.want {
			t.Errorf("Accuracy(%v, %v) = %v, want %v", tt.total, tt.diffs, got, tt.want)
		}
	}
}

func TestValidatePitching(t *testing.T) {
	official := []models.OfficialStatLine{
		{Name: "Gerrit Cole", Kind: models.KindPitching, Stats: map[string]float64{"IP": 1, "BF": 4, "H": 1, "BB": 1, "SO": 1, "HR": 0}},
		{Name: "Mop Up", Kind: models.KindPitching, Stats: map[string]float64{}},
	}
	events := []models.Event{
		pa("A", "Gerrit Cole", single),
		pa("B", "Gerrit Cole", walk),
		pa("C", "Gerrit Cole", strikeout),
		pa("D", "Gerrit Cole", double),
		{BatterName: "A", PitcherName: "Gerrit Cole"}, // stolen base, not a batter faced
	}

	report := ValidatePitching(official, events)

	if report.Kind != models.KindPitching {
		t.Errorf("Kind = %s, want pitching", report.Kind)
	}
	if len(report.Differences) != 1 {
		t.Fatalf("Differences = %v, want one player", report.Differences)
	}
	want := []string{"H: 1 vs 2 (diff: +1)"}
	if !reflect.DeepEqual(report.Differences[0].Differences, want) {
		t.Errorf("Differences = %v, want %v", report.Differences[0].Differences, want)
	}
	if !reflect.DeepEqual(report.NameMismatches.Categorized.EmptyStats, []string{"Mop Up"}) {
		t.Errorf("EmptyStats = %v, want [Mop Up]", report.NameMismatches.Categorized.EmptyStats)
	}
	if len(report.NameMismatches.Categorized.PinchRunners) != 0 {
		t.Errorf("PinchRunners = %v, want none for pitching", report.NameMismatches.Categorized.PinchRunners)
	}
}
