package corrections

import (
	"regexp"
	"sort"
	"strings"
)

var (
	approachPhraseRe = regexp.MustCompile(`(?i)(?:ILS|VISUAL|RNAV|VOR|GPS|LOC)\s+(?:APCH|APPROACH|RWY|RY)`)
	actionPhraseRe   = regexp.MustCompile(`(?i)(?:LANDING|DEPARTING|DEPG|LNDG|ARRIVALS?|DEPARTURES?)\s+(?:AND\s+)?(?:RWYS?|RYS?|RY)?`)
)

// Signature digests the approach-type and runway-action phrases of a
// broadcast into a stable key independent of the runway numbers. The
// first three mentions of each class are uppercased, deduplicated, and
// sorted.
func Signature(text string) string {
	var phrases []string

	approach := approachPhraseRe.FindAllString(text, -1)
	if len(approach) > 3 {
		approach = approach[:3]
	}
	phrases = append(phrases, approach...)

	action := actionPhraseRe.FindAllString(text, -1)
	if len(action) > 3 {
		action = action[:3]
	}
	phrases = append(phrases, action...)

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(phrases))
	for _, p := range phrases {
		up := strings.ToUpper(p)
		if _, dup := seen[up]; dup {
			continue
		}
		seen[up] = struct{}{}
		uniq = append(uniq, up)
	}
	sort.Strings(uniq)

	return strings.Join(uniq, " | ")
}

// PatternKey scopes a signature to one airport.
func PatternKey(airportCode, text string) string {
	return airportCode + ":" + Signature(text)
}
