package validator

import "github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"

// categorizeBatter buckets an official batting line with no parsed events.
// A line with no plate appearances but baserunning activity is a pinch
// runner; a line with every counter at zero never appeared at the plate.
// Anything else is most likely a name that failed to match.
func categorizeBatter(line models.OfficialStatLine, meaningful []string, c *models.CategorizedMismatches) {
	switch {
	case isPinchRunner(line):
		c.PinchRunners = append(c.PinchRunners, line.Name)
	case !hasAny(line, meaningful):
		c.EmptyStats = append(c.EmptyStats, line.Name)
	default:
		c.NameMismatches = append(c.NameMismatches, line.Name)
	}
}

// categorizePitcher buckets an official pitching line with no parsed events
func categorizePitcher(line models.OfficialStatLine, meaningful []string, c *models.CategorizedMismatches) {
	if !hasAny(line, meaningful) {
		c.EmptyStats = append(c.EmptyStats, line.Name)
		return
	}
	c.NameMismatches = append(c.NameMismatches, line.Name)
}

func isPinchRunner(line models.OfficialStatLine) bool {
	if line.Get(models.StatPA) != 0 || line.Get(models.StatAB) != 0 {
		return false
	}
	return line.Get(models.StatSB) != 0 || line.Get(models.StatCS) != 0 || line.Get(models.StatR) != 0
}
