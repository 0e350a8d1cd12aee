package runway

import "strings"

// Some fields publish separate arrival and departure broadcasts
// instead of one advisory. Each half parses into a deliberately
// one-sided configuration; the collector and the status API pair
// halves within a time window and merge them here.

// ClassifySplit identifies split-broadcast halves by their header.
// It runs on the original text because normalization trims the header
// away.
func ClassifySplit(rawText string) SplitKind {
	upper := strings.ToUpper(rawText)
	if strings.Contains(upper, "ARR INFO") || strings.Contains(upper, "ARR ATIS") {
		return ArrivalHalf
	}
	if strings.Contains(upper, "DEP INFO") || strings.Contains(upper, "DEP ATIS") {
		return DepartureHalf
	}
	return Unsplit
}

// MergePair combines an arrival half and a departure half into one
// configuration. Each half's home field wins; designators the opposite
// half found for the other operation are folded in. Merging the same
// pair twice produces an identical configuration.
func MergePair(arr, dep *Configuration, arrSourceID, depSourceID string) *Configuration {
	arriving := designatorSet{}
	departing := designatorSet{}

	for _, d := range arr.ArrivingRunways {
		arriving[d] = struct{}{}
	}
	for _, d := range dep.DepartingRunways {
		departing[d] = struct{}{}
	}
	// Residuals: a half can legitimately mention the other operation
	// ("LANDING AND DEPARTING" inside an arrival half).
	for _, d := range arr.DepartingRunways {
		departing[d] = struct{}{}
	}
	for _, d := range dep.ArrivingRunways {
		arriving[d] = struct{}{}
	}

	confidence := (arr.ConfidenceScore + dep.ConfidenceScore) / 2
	if arr.ConfidenceScore >= 0.9 && dep.ConfidenceScore >= 0.9 {
		confidence = 1.0
	}

	arrLetter := arr.InformationLetter
	if arrLetter == "" {
		arrLetter = "?"
	}
	depLetter := dep.InformationLetter
	if depLetter == "" {
		depLetter = "?"
	}

	timestamp := arr.Timestamp
	if dep.Timestamp.After(timestamp) {
		timestamp = dep.Timestamp
	}

	return &Configuration{
		AirportCode:       arr.AirportCode,
		Timestamp:         timestamp,
		InformationLetter: arrLetter,
		ArrivingRunways:   arriving.sorted(),
		DepartingRunways:  departing.sorted(),
		TrafficFlow:       DetermineTrafficFlow(arriving, departing),
		ConfigurationName: "Merged: ARR " + arrLetter + " + DEP " + depLetter,
		ConfidenceScore:   confidence,
		RawText:           arr.RawText + "\n---\n" + dep.RawText,
		MergedFromPair:    true,
		ComponentConfidence: &ComponentConfidence{
			Arrivals:          arr.ConfidenceScore,
			Departures:        dep.ConfidenceScore,
			ArrivalSourceID:   arrSourceID,
			DepartureSourceID: depSourceID,
		},
	}
}
