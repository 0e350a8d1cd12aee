package runway

import (
	"regexp"
	"strings"
)

// The normalizer isolates the operationally relevant span of a
// broadcast and rewrites noisy runway notation into canonical
// "RWY 34L" form. It is deterministic, side-effect free, and passes
// unmatched input through unchanged.

// Start marker: altimeter reading with its spoken form, e.g.
// "A3018 (THREE ZERO ONE EIGHT)". Runway statements follow it.
var altimeterRe = regexp.MustCompile(`A\d{4}\s*\([A-Z\s]+\)`)

// End markers: boilerplate openers that follow the runway section.
var endMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`\bNOTICE\s+TO\s+AIR\w*\b`),
	regexp.MustCompile(`\bNOTAMS?\b\.{0,3}`),
	regexp.MustCompile(`\bREADBACK\s+ALL\s+RWY\b`),
	regexp.MustCompile(`\bADVISE\s+ON\s+INITIAL\b`),
	regexp.MustCompile(`\bPILOTS?\s+(?:ARE\s+)?(?:ADVISED|CAUTIONED)\b`),
	regexp.MustCompile(`\bBIRD\s+ACT(?:IVITY|VTY)\b`),
	regexp.MustCompile(`\.{3}ADVS\s+YOU\s+HAVE\b`),
}

// Advisory text that mentions a runway without stating active use.
var advisoryRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:DEPARTURES?|ARRIVALS?)\s+(?:ARE\s+)?(?:ADVISED|CAUTIONED|WARNED)[^.]*?\.?`),
	regexp.MustCompile(`(?i)(?:OBSTACLES?|HAZARDS?)[^.]{0,50}?FOR\s+RWY?\s+[0-9]{1,2}[LCR]?\s+(?:DEPARTURES?|ARRIVALS?)[^.]*?\.?`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+[^.]{0,50}?(?:AVOID|WARNING)[^.]*?\.?`),
}

// Closure statements, including digit-by-digit callouts.
var closureRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:CLSD|CLOSED)`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]\s+[0-9]\s+(?:LEFT|RIGHT|CENTER|L|R|C)?\s+(?:CLSD|CLOSED)`),
}

// Equipment-status and procedural mentions that name a runway but do
// not describe active operations.
var equipmentRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:GPS|RNAV|ILS|VOR|LOC)\s+[A-Z]+\s+RWY?\s+[0-9]{1,2}[LCR]?\s+(?:DISREGARD|NOT\s+AVAILABLE|UNAVAILABLE)`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:INNER|OUTER|MIDDLE)\s+MARKER\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:REIL|ALS|PAPI|VASI|ILS|LOC|GS|GLIDESLOPE|ALSF|MALSR|MALS|SSALR|SSALS)\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
	regexp.MustCompile(`(?i)RY?\s+[0-9]{1,2}[LCR]?\s*,\s*[0-9]{1,2}[LCR]?\s+(?:REIL|ALS|PAPI|VASI|ILS|LOC|GS|GLIDESLOPE|ALSF|MALSR|MALS|SSALR|SSALS|ERGL)\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?(?:\s*,\s*[0-9]{1,2}[LCR]?)*(?:,?\s+AND\s+[0-9]{1,2}[LCR]?)?\s+(?:INNER|OUTER|MIDDLE)\s+MARKER\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:APCH|APPROACH)\s+END\b`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:DEP|DEPARTURE)\s+END\b`),
	regexp.MustCompile(`(?i)(?:TWY\s+)?[A-Z0-9]+\s+(?:CLSD|CLOSED)\s+(?:OFF|BTN|BETWEEN)\s+(?:RUNWAY|RWY)\s+[0-9]{1,2}[LCR]?`),
	regexp.MustCompile(`(?i)TWY?\s+[A-Z0-9]+\s+(?:CLSD|CLOSED)\s+BTN\s+(?:RUNWAY|RWY)\s*,\s*[0-9]{1,2}[LCR]?\s+AND\s+TWY`),
	regexp.MustCompile(`(?i)(?:PLAN\s+TO\s+EXIT|EXIT)\s+[A-Z0-9]+\s+(?:OR\s+[A-Z0-9]+\s+)?(?:WHEN\s+)?LANDING\s+(?:RUNWAY|RWY)\s+[0-9]{1,2}[LCR]?`),
	regexp.MustCompile(`(?i)RWY?\s+[0-9]{1,2}[LCR]?\s+(?:DEP|DEPARTURE|APCH|APPROACH)\s+END\s+[A-Z0-9\-]+\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
	regexp.MustCompile(`(?i)(?:ERGL|REIL|ALS|PAPI|VASI)\s+RWY?\s+[0-9]{1,2}[LCR]?\s+(?:OTS|OUT\s+OF\s+SERVICE|INOP|U/S)`),
}

var (
	spacedRYRe   = regexp.MustCompile(`(?i)R\s+Y\s+([0-9]{1,2}[LCR]?)`)
	spacedRWYRe  = regexp.MustCompile(`(?i)R\s+W\s+Y\s+([0-9]{1,2}[LCR]?)`)
	spacedRWYSRe = regexp.MustCompile(`(?i)R\s+W\s+Y\s+S\s+([0-9]{1,2}[LCR]?)`)

	digitByDigitRe  = regexp.MustCompile(`(?i)(RUNWAY|RUNWAYS|RWY?S?|RY)\s+([0-9])\s+([0-9])\s*(LEFT|RIGHT|CENTER|L|R|C)?`)
	spelledSuffixRe = regexp.MustCompile(`(?i)(RUNWAY|RUNWAYS|RWY?S?|RY)\s+([0-9]{1,2})\s+(LEFT|RIGHT|CENTER)\b`)

	andRightLeftRe = regexp.MustCompile(`(?i)(?:(RWY?S?|RY)\s+)?([0-9]{1,2})([LCR])?\s+AND\s+(RIGHT|LEFT)\b`)

	runwayWordRe  = regexp.MustCompile(`(?i)RUNWAY`)
	attachedNumRe = regexp.MustCompile(`(?i)(RWY?S?|RY)([0-9]{1,2}[LCR]?)`)
)

var suffixLetters = map[string]string{
	"LEFT":   "L",
	"RIGHT":  "R",
	"CENTER": "C",
	"L":      "L",
	"R":      "R",
	"C":      "C",
}

// Normalize rewrites raw broadcast text into the canonical form the
// extraction rules operate on. Unrecognized input passes through with
// only whitespace collapsed.
func Normalize(raw string) string {
	text := relevantSection(raw)

	// Collapse whitespace
	text = strings.Join(strings.Fields(text), " ")

	for _, re := range advisoryRes {
		text = re.ReplaceAllString(text, "")
	}

	// Repair spaced runway keywords: "R Y 14" -> "RY 14". Longest
	// form first so "R W Y S" is not eaten by "R W Y".
	text = spacedRWYSRe.ReplaceAllString(text, "RWYS $1")
	text = spacedRWYRe.ReplaceAllString(text, "RWY $1")
	text = spacedRYRe.ReplaceAllString(text, "RY $1")

	// "RUNWAY 3 4 LEFT" -> "RUNWAY 34L"
	text = digitByDigitRe.ReplaceAllStringFunc(text, func(m string) string {
		g := digitByDigitRe.FindStringSubmatch(m)
		suffix := ""
		if g[4] != "" {
			suffix = suffixLetters[strings.ToUpper(g[4])]
		}
		return g[1] + " " + g[2] + g[3] + suffix
	})

	// "RUNWAY 16 LEFT" -> "RUNWAY 16L"
	text = spelledSuffixRe.ReplaceAllStringFunc(text, func(m string) string {
		g := spelledSuffixRe.FindStringSubmatch(m)
		return g[1] + " " + g[2] + suffixLetters[strings.ToUpper(g[3])]
	})

	for _, re := range closureRes {
		text = re.ReplaceAllString(text, "")
	}
	for _, re := range equipmentRes {
		text = re.ReplaceAllString(text, "")
	}

	text = expandAndRightLeft(text)

	// Standardize the runway keyword and detach glued numbers
	text = runwayWordRe.ReplaceAllString(text, "RWY")
	text = attachedNumRe.ReplaceAllString(text, "$1 $2")

	// Sentence punctuation interferes with the list separators
	text = strings.ReplaceAll(text, ".", " ")

	return text
}

// relevantSection returns the span between the altimeter reading and
// the earliest trailing boilerplate marker. Missing markers widen the
// span to the corresponding end of the text.
func relevantSection(text string) string {
	upper := strings.ToUpper(text)

	start := altimeterRe.FindStringIndex(upper)

	endPos := len(text)
	for _, re := range endMarkerRes {
		loc := re.FindStringIndex(upper)
		if loc == nil || loc[0] >= endPos {
			continue
		}
		// Only honor end markers that follow the start marker
		if start == nil || loc[0] > start[1] {
			endPos = loc[0]
		}
	}

	if start != nil {
		return text[start[1]:endPos]
	}
	return text[:endPos]
}

// expandAndRightLeft expands elliptical parallel-runway references:
// "RWY 35L AND RIGHT" -> "RWY 35L AND RWY 35R".
func expandAndRightLeft(text string) string {
	return andRightLeftRe.ReplaceAllStringFunc(text, func(m string) string {
		g := andRightLeftRe.FindStringSubmatch(m)
		keyword, num, suffix, direction := g[1], g[2], g[3], strings.ToUpper(g[4])

		newSuffix := "R"
		if direction == "LEFT" {
			newSuffix = "L"
		}

		current := num + suffix
		expanded := num + newSuffix
		if keyword != "" {
			return keyword + " " + current + " AND " + keyword + " " + expanded
		}
		return current + " AND " + expanded
	})
}
