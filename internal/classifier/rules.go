package classifier

import (
	"regexp"
	"strings"
)

// Patterns run against the lowercased, trimmed description.
var (
	runnerInterference = regexp.MustCompile(`caught stealing.*interference by runner|^interference by runner`)

	strikeout  = regexp.MustCompile(`\bstrikeout\b|\bstruck out\b|\bstrikes out\b`)
	wildPitch  = regexp.MustCompile(`\bwild pitch\b|\bpassed ball\b`)
	doublePlay = regexp.MustCompile(`\bdouble play\b|\bgrounded into (?:a )?dp\b|\bgidp\b|\bdp\b`)

	// baserunning clauses that box-score text appends after a comma
	trailingBaserunning = regexp.MustCompile(`caught stealing|\bpickoff\b|\bpicked off\b|\bwild pitch\b|\bpassed ball\b`)

	baserunning = regexp.MustCompile(`caught stealing|\bpickoff\b|\bpicked off\b|\bwild pitch\b|\bpassed ball\b|\bbalk\b|\bstolen base\b|\bstole\b|\bsteals?\b|\bdefensive indifference\b`)

	batterAction = regexp.MustCompile(`strikeout|struck out|\bsingle[ds]?\b|\bdoubled?s?\b|\btripled?s?\b|home run|homered|\bwalk(?:ed|s)?\b|hit by (?:a )?pitch|\bhbp\b|sacrifice|\bsac\b|ground ?out|grounded|flyball|fly ball|flied|fly ?out|lineout|lined|line out|popfly|popped|pop ?out|foul ?out|fouled out|fielder'?s choice|force ?out|reached|double play`)

	sacrificeFly = regexp.MustCompile(`sacrifice fly|\bsac fly\b`)
	sacrificeHit = regexp.MustCompile(`sacrifice bunt|\bsac bunt\b`)

	walk       = regexp.MustCompile(`^(?:intentional )?walk(?:$|[^-\w])|\b(?:intentionally )?walk(?:ed|s)\b`)
	hitByPitch = regexp.MustCompile(`^(?:hit by pitch|hbp)\b|\bwas hit by (?:a )?pitch\b`)

	reachedOnError        = regexp.MustCompile(`reached on (?:an? )?(?:e\d|.*\berror\b)|\bsafe on (?:an? )?error\b`)
	reachedOnInterference = regexp.MustCompile(`reached on (?:\w+'?s? )?interference|\b(?:catcher|fielder)'?s? interference\b`)
	batterInterference    = regexp.MustCompile(`\bbatter'?s? interference\b|\binterference by batter\b`)

	genericOut = regexp.MustCompile(`ground ?out|grounded out|grounds out|flyball:|flied out|fly ?out|flies out|lineout|lined out|line ?out|lines out|popfly|popped out|popped up|pop ?out|popup|pops out|foul ?out|fouled out|fielder'?s choice|force ?out|forced out|\bunassisted\b`)

	// batted-ball trajectory notes such as "(Popfly to Short RF)" on hit lines
	trajectory = regexp.MustCompile(`\([^)]*\)`)

	homeRun = regexp.MustCompile(`home run|homered|\bhomers?\b|inside-the-park`)

	groundRuleDouble = regexp.MustCompile(`ground-rule double`)
	baseHit          = regexp.MustCompile(`\b(single|double|triple)(?:d|s)?\s+(?:to|up|through|down)\b`)
)

// rule pairs a category with the predicate that selects it
type rule struct {
	category PlayCategory
	matches  func(text string) bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{CategorySacrificeFly, sacrificeFly.MatchString},
	{CategorySacrificeHit, sacrificeHit.MatchString},
	{CategoryWalk, walk.MatchString},
	{CategoryHitByPitch, hitByPitch.MatchString},
	{CategoryStrikeoutReached, func(text string) bool {
		return strikeout.MatchString(text) && wildPitch.MatchString(text)
	}},
	{CategoryStrikeoutDoublePlay, func(text string) bool {
		return strikeout.MatchString(text) && doublePlay.MatchString(text)
	}},
	{CategoryBaserunning, func(text string) bool {
		return baserunning.MatchString(text) && !batterAction.MatchString(text)
	}},
	{CategoryReachedOnError, reachedOnError.MatchString},
	{CategoryReachedOnInterference, reachedOnInterference.MatchString},
	{CategoryStrikeout, strikeout.MatchString},
	{CategoryDoublePlay, doublePlay.MatchString},
	{CategoryBatterInterference, batterInterference.MatchString},
	{CategoryOut, func(text string) bool {
		return genericOut.MatchString(trajectory.ReplaceAllString(text, ""))
	}},
	{CategoryHomeRun, homeRun.MatchString},
	{CategoryHit, func(text string) bool {
		return groundRuleDouble.MatchString(text) || baseHit.MatchString(text)
	}},
}

// splitCompound keeps only the batter-facing clause of a description that
// also carries a trailing baserunning clause. A strikeout with a wild pitch,
// passed ball or double play is left whole so its rule sees the full text.
func splitCompound(text string) string {
	if strikeout.MatchString(text) && (wildPitch.MatchString(text) || doublePlay.MatchString(text)) {
		return text
	}
	if !batterAction.MatchString(text) || !trailingBaserunning.MatchString(text) {
		return text
	}
	if i := strings.Index(text, ","); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}
