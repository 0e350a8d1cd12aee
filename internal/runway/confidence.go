package runway

import (
	"regexp"
	"strings"
)

// Confidence scoring, recalibrated against human review history.
// Thresholds live here, not in callers: below 0.9 a configuration is
// flagged for review.

// Phrasings the review history shows are always extracted correctly.
var highConfidenceRes = []*regexp.Regexp{
	regexp.MustCompile(`ILS\s+(?:RWYS?|RYS|RY)\s+[0-9]{1,2}[LCR]?\s+(?:APCH|APPROACH)\s+IN\s+USE`),
	regexp.MustCompile(`VISUAL\s+(?:APCH|APPROACH)\s+(?:RWYS?|RYS|RY)\s+[0-9]{1,2}[LCR]?\s+IN\s+USE`),
	regexp.MustCompile(`(?:SIMUL|SIMULTANEOUS)\s+VISUAL\s+APPROACHES\s+(?:RWYS?|RYS|RY)`),
	regexp.MustCompile(`PARL\s+ILS\s+(?:RWYS?|RYS|RY)`),
}

// Phrasings the review history shows frequently produce incomplete
// extractions.
var ambiguousRes = []*regexp.Regexp{
	regexp.MustCompile(`LANDING\s+AND\s+DEPARTING`),
	regexp.MustCompile(`SIMUL.*(?:APCH|APPROACH).*TO\s+(?:RWYS?|RYS|RY)\s*,`),
}

var arrivalKeywords = []string{"LANDING", "APPROACH", "APCH", "ARRIVALS", "ARVNG", "ILS", "VISUAL", "RNAV"}

// "DEP " keeps the trailing space so DEPICTED or similar words do not
// count as a departure mention.
var departureKeywords = []string{"DEPG", "DEP ", "DEPARTURE", "DEPARTING", "TAKEOFF"}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// scoreConfidence rates an extraction in [0,1] from the designator
// sets and the normalized text they came from.
func scoreConfidence(arriving, departing designatorSet, cleaned string) float64 {
	upper := strings.ToUpper(cleaned)

	if len(arriving) == 0 && len(departing) == 0 {
		return 0.0
	}

	confidence := 0.7

	for _, re := range highConfidenceRes {
		if re.MatchString(upper) {
			return 1.0
		}
	}

	hasArrivalKw := containsAny(upper, arrivalKeywords)
	hasDepartureKw := containsAny(upper, departureKeywords)

	if len(arriving) > 0 && len(departing) > 0 {
		if hasArrivalKw && hasDepartureKw {
			return 1.0
		}
		confidence = 0.9
	} else {
		if (len(arriving) > 0 && hasArrivalKw) || (len(departing) > 0 && hasDepartureKw) {
			confidence = 0.8
		} else {
			confidence = 0.6
		}
	}

	for _, re := range ambiguousRes {
		if re.MatchString(upper) {
			if confidence > 0.7 {
				confidence = 0.7
			}
			break
		}
	}

	return confidence
}
