// Package names canonicalizes player names so box-score tables and
// play-by-play rows can be joined on identity.
package names

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ", W (10-2)", ", H (3), BS (1)" at the end of a pitcher cell
	decisionTail = regexp.MustCompile(`(?:,\s*[WLSHB]+\s*\([^)]*\))+$`)

	// one or more position groups such as "3B", "C-1B", "PH-LF"
	positionTail = regexp.MustCompile(`(?:\s+[A-Z0-9]{1,3}(?:-[A-Z0-9]{1,3})*)+$`)

	// generational suffix followed by position groups
	suffixBeforePosition = regexp.MustCompile(`^(.*\S)\s+(Jr\.?|Sr\.?|II|III|IV)((?:\s+[A-Z0-9]{1,3}(?:-[A-Z0-9]{1,3})*)+)$`)

	// generational suffix ending the name
	suffixTail = regexp.MustCompile(`\s(Jr\.?|Sr\.?|II|III|IV)$`)
)

// Normalize returns the canonical form of a player name.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	name := collapseSpace(norm.NFKD.String(raw))

	// every changing pass shortens the name, so this terminates
	for {
		next := stripAnnotations(name)
		if next == name {
			return name
		}
		name = next
	}
}

// stripAnnotations removes one round of decision and position tails
func stripAnnotations(name string) string {
	name = strings.TrimSpace(decisionTail.ReplaceAllString(name, ""))

	if m := suffixBeforePosition.FindStringSubmatch(name); m != nil {
		return m[1] + " " + m[2]
	}
	if suffixTail.MatchString(name) {
		return name
	}

	return strings.TrimSpace(positionTail.ReplaceAllString(name, ""))
}

// collapseSpace turns every whitespace run (NBSP included) into one space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
