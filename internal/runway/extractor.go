package runway

import (
	"regexp"
	"strings"
)

var runwayTokenRe = regexp.MustCompile(`\b[0-9]{1,2}[LCR]?\b`)

// designatorSet is the working representation during extraction.
// Configurations expose sorted slices; sets keep rule results
// order-independent.
type designatorSet map[string]struct{}

func (s designatorSet) add(d string) {
	if validDesignator(d) {
		s[normalizeDesignator(d)] = struct{}{}
	}
}

func (s designatorSet) sorted() []string {
	return sortedDesignators(s)
}

// harvest pulls every runway-shaped token out of one rule match.
func harvest(matched string, out designatorSet) {
	for _, tok := range runwayTokenRe.FindAllString(matched, -1) {
		out.add(tok)
	}
}

// allowedAt applies a rule's preceding-context restriction at a match
// position.
func allowedAt(text string, start int, notPrecededBy []string) bool {
	prefix := strings.ToUpper(text[:start])
	for _, frag := range notPrecededBy {
		if strings.HasSuffix(prefix, frag) {
			return false
		}
	}
	return true
}

// runRules applies a rule collection and unions the results.
func runRules(text string, rules []rule) designatorSet {
	out := designatorSet{}
	for _, r := range rules {
		for _, loc := range r.re.FindAllStringSubmatchIndex(text, -1) {
			if !allowedAt(text, loc[0], r.notPrecededBy) {
				continue
			}
			if r.captureOnly {
				if loc[2] >= 0 {
					out.add(text[loc[2]:loc[3]])
				}
				continue
			}
			harvest(text[loc[0]:loc[1]], out)
		}
	}
	return out
}

// stripSections removes statements belonging to the opposite
// operation so its designators do not leak into a directed pass.
func stripSections(text string, rules []stripRule) string {
	for _, r := range rules {
		locs := r.re.FindAllStringIndex(text, -1)
		if locs == nil {
			continue
		}
		var b strings.Builder
		b.Grow(len(text))
		pos := 0
		for _, loc := range locs {
			if !allowedAt(text, loc[0], r.notPrecededBy) {
				continue
			}
			b.WriteString(text[pos:loc[0]])
			pos = loc[1]
		}
		b.WriteString(text[pos:])
		text = b.String()
	}
	return text
}

// ExtractArrivals returns the arrival designator set found in
// normalized text. The abbreviated "ILS 22L, DEP 22R" form runs before
// the departure strip because it keys off the DEP that the strip
// removes.
func ExtractArrivals(text string) designatorSet {
	out := designatorSet{}
	for _, loc := range abbreviatedApproachRule.re.FindAllStringSubmatchIndex(text, -1) {
		if loc[2] >= 0 {
			out.add(text[loc[2]:loc[3]])
		}
	}

	arrivalText := stripSections(text, departureStripRules)
	for d := range runRules(arrivalText, arrivalRules) {
		out[d] = struct{}{}
	}
	return out
}

// ExtractDepartures returns the departure designator set found in
// normalized text.
func ExtractDepartures(text string) designatorSet {
	departureText := stripSections(text, arrivalStripRules)
	return runRules(departureText, departureRules)
}

// ExtractCombined returns designators from statements that cover both
// operations or name runways without operation context.
func ExtractCombined(text string) designatorSet {
	return runRules(text, combinedRules)
}
