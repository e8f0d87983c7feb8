// Package validator reconciles events parsed from play-by-play text against
// the officially published box-score lines.
package validator

import (
	"math"
	"sort"
	"strconv"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

// Counters that show a batter actually appeared in the game
var battingMeaningful = []string{
	models.StatPA, models.StatAB, models.StatH, models.StatBB, models.StatSO,
	models.StatHR, models.Stat2B, models.Stat3B, models.StatSB, models.StatCS,
	models.StatHBP, models.StatGDP, models.StatSF, models.StatSH,
}

// Counters that show a pitcher actually appeared in the game
var pitchingMeaningful = []string{
	models.StatIP, models.StatBF, models.StatH, models.StatR, models.StatER,
	models.StatBB, models.StatSO, models.StatHR, models.StatPit,
}

// Stats compared for each kind, in report order
var (
	battingCompared  = []string{models.StatPA, models.StatAB, models.StatH, models.StatBB, models.StatSO, models.StatHR, models.Stat2B, models.Stat3B}
	pitchingCompared = []string{models.StatBF, models.StatH, models.StatBB, models.StatSO, models.StatHR}
)

// Validate compares official lines of the given kind against parsed events
func Validate(official []models.OfficialStatLine, events []models.Event, kind models.StatKind) *models.ValidationReport {
	if kind == models.KindPitching {
		return ValidatePitching(official, events)
	}
	return ValidateBatting(official, events)
}

// ValidateBatting aggregates events by batter and compares PA/AB/H/BB/SO/HR/2B/3B
func ValidateBatting(official []models.OfficialStatLine, events []models.Event) *models.ValidationReport {
	return reconcile(official, aggregateBatting(events), models.KindBatting, battingCompared, battingMeaningful, categorizeBatter)
}

// ValidatePitching aggregates events by pitcher and compares BF/H/BB/SO/HR
func ValidatePitching(official []models.OfficialStatLine, events []models.Event) *models.ValidationReport {
	return reconcile(official, aggregatePitching(events), models.KindPitching, pitchingCompared, pitchingMeaningful, categorizePitcher)
}

// aggregateBatting sums outcome flags per batter
func aggregateBatting(events []models.Event) map[string]map[string]float64 {
	totals := make(map[string]map[string]float64)
	for _, e := range events {
		t := counters(totals, e.BatterName)
		addOutcome(t, e.Outcome, models.StatPA)
	}
	return totals
}

// aggregatePitching sums outcome flags per pitcher; plate appearances are batters faced
func aggregatePitching(events []models.Event) map[string]map[string]float64 {
	totals := make(map[string]map[string]float64)
	for _, e := range events {
		t := counters(totals, e.PitcherName)
		addOutcome(t, e.Outcome, models.StatBF)
	}
	return totals
}

func counters(totals map[string]map[string]float64, name string) map[string]float64 {
	t, ok := totals[name]
	if !ok {
		t = make(map[string]float64)
		totals[name] = t
	}
	return t
}

func addOutcome(t map[string]float64, o models.Outcome, paStat string) {
	t[paStat] += b2f(o.IsPlateAppearance)
	t[models.StatAB] += b2f(o.IsAtBat)
	t[models.StatH] += b2f(o.IsHit)
	t[models.StatBB] += b2f(o.IsWalk)
	t[models.StatSO] += b2f(o.IsStrikeout)

	switch o.HitType {
	case models.HitHomeRun:
		t[models.StatHR]++
	case models.HitDouble:
		t[models.Stat2B]++
	case models.HitTriple:
		t[models.Stat3B]++
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// categorizer assigns an unmatched official line to a mismatch bucket
type categorizer func(line models.OfficialStatLine, meaningful []string, c *models.CategorizedMismatches)

// reconcile joins official and parsed totals on normalized name and scores the result
func reconcile(
	official []models.OfficialStatLine,
	parsed map[string]map[string]float64,
	kind models.StatKind,
	compared []string,
	meaningful []string,
	categorize categorizer,
) *models.ValidationReport {
	report := newReport(kind)
	if len(official) == 0 || len(parsed) == 0 {
		return report
	}

	// lines with every counter at zero take no part in the join
	officialByName := make(map[string]models.OfficialStatLine, len(official))
	for _, line := range official {
		if hasAny(line, meaningful) {
			officialByName[line.Name] = line
		}
	}

	// unmatched names on both sides
	for _, line := range official {
		if _, ok := officialByName[line.Name]; ok {
			if _, ok := parsed[line.Name]; ok {
				continue
			}
		}
		report.NameMismatches.UnmatchedOfficial = append(report.NameMismatches.UnmatchedOfficial, line.Name)
		categorize(line, meaningful, &report.NameMismatches.Categorized)
	}
	for name := range parsed {
		if _, ok := officialByName[name]; !ok {
			report.NameMismatches.UnmatchedParsed = append(report.NameMismatches.UnmatchedParsed, name)
		}
	}
	sortMismatches(&report.NameMismatches)

	// inner join of meaningful official lines and parsed totals
	players := make([]string, 0, len(officialByName))
	for name := range officialByName {
		if _, ok := parsed[name]; ok {
			players = append(players, name)
		}
	}
	sort.Strings(players)

	statTotals := make(map[string]float64, len(compared))
	statDiffs := make(map[string]float64, len(compared))
	var totalStats, totalDiffs float64

	for _, name := range players {
		line := officialByName[name]
		got := parsed[name]

		diff := models.PlayerDifference{Player: name}
		for _, stat := range compared {
			want := line.Get(stat)
			delta := got[stat] - want

			statTotals[stat] += want
			statDiffs[stat] += math.Abs(delta)
			totalStats += want
			totalDiffs += math.Abs(delta)

			if delta != 0 {
				diff.Differences = append(diff.Differences, describe(stat, want, got[stat], delta))
				diff.Deltas = append(diff.Deltas, models.StatDelta{Stat: stat, Official: want, Parsed: got[stat], Delta: delta})
			}
		}
		if len(diff.Deltas) > 0 {
			report.Differences = append(report.Differences, diff)
		}
	}

	report.PlayersCompared = len(players)
	report.TotalStats = int(math.Round(totalStats))
	report.TotalDifferences = int(math.Round(totalDiffs))
	report.Accuracy = Accuracy(totalStats, totalDiffs)
	for _, stat := range compared {
		report.StatAccuracy[stat] = Accuracy(statTotals[stat], statDiffs[stat])
	}

	return report
}

// Accuracy is (total - differences) / total * 100, clamped to [0, 100]; 0 when total is 0
func Accuracy(total, differences float64) float64 {
	if total <= 0 {
		return 0
	}
	acc := (total - differences) / total * 100
	return math.Max(0, math.Min(100, acc))
}

// describe formats "H: 2 vs 1 (diff: -1)"
func describe(stat string, official, parsed, delta float64) string {
	sign := "+"
	if delta < 0 {
		sign = "-"
	}
	return stat + ": " + formatNumber(official) + " vs " + formatNumber(parsed) +
		" (diff: " + sign + formatNumber(math.Abs(delta)) + ")"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// hasAny reports whether any of the given counters is nonzero
func hasAny(line models.OfficialStatLine, stats []string) bool {
	for _, stat := range stats {
		if line.Get(stat) != 0 {
			return true
		}
	}
	return false
}

func newReport(kind models.StatKind) *models.ValidationReport {
	return &models.ValidationReport{
		Kind:         kind,
		StatAccuracy: make(map[string]float64),
		Differences:  []models.PlayerDifference{},
		NameMismatches: models.NameMismatches{
			UnmatchedOfficial: []string{},
			UnmatchedParsed:   []string{},
			Categorized: models.CategorizedMismatches{
				PinchRunners:   []string{},
				NameMismatches: []string{},
				EmptyStats:     []string{},
			},
		},
	}
}

func sortMismatches(m *models.NameMismatches) {
	sort.Strings(m.UnmatchedOfficial)
	sort.Strings(m.UnmatchedParsed)
	sort.Strings(m.Categorized.PinchRunners)
	sort.Strings(m.Categorized.NameMismatches)
	sort.Strings(m.Categorized.EmptyStats)
}
