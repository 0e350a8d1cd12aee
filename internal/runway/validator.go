package runway

import "strings"

// Validate inspects a parsed configuration for structural anomalies
// and returns the findings. Findings feed automated error reporting;
// they are values, not errors, and an empty slice means the
// configuration looks plausible.
func (p *Parser) Validate(cfg *Configuration) []Issue {
	var issues []Issue

	upper := strings.ToUpper(cfg.RawText)

	// A merged pair carries both headers, so these are independent
	// checks rather than a three-way classification.
	isArrHalf := strings.Contains(upper, "ARR INFO") || strings.Contains(upper, "ARR ATIS")
	isDepHalf := strings.Contains(upper, "DEP INFO") || strings.Contains(upper, "DEP ATIS")
	isSplit := isArrHalf || isDepHalf

	if cfg.ConfidenceScore < 0.9 {
		issues = append(issues, IssueLowConfidence)
	}

	if !isSplit {
		if len(cfg.ArrivingRunways) == 0 {
			issues = append(issues, IssueMissingArrivals)
		}
		if len(cfg.DepartingRunways) == 0 && !p.ArrivalOnly(cfg.AirportCode) {
			issues = append(issues, IssueMissingDepartures)
		}
	} else {
		if isDepHalf && len(cfg.DepartingRunways) == 0 {
			issues = append(issues, IssueMissingDepartures)
		}
		if isArrHalf && len(cfg.ArrivingRunways) == 0 {
			issues = append(issues, IssueMissingArrivals)
		}
	}

	all := map[string]struct{}{}
	for _, d := range cfg.ArrivingRunways {
		all[d] = struct{}{}
	}
	for _, d := range cfg.DepartingRunways {
		all[d] = struct{}{}
	}

	// Both ends of a strip active at once is almost always an
	// extraction error; reported once per configuration.
	if HasReciprocalPair(sortedDesignators(all)) {
		issues = append(issues, IssueReciprocalRunways)
	}

	if len(all) > 6 {
		issues = append(issues, IssueTooManyRunways)
	}

	return issues
}

// HasReciprocalPair reports whether any two designators in the list
// sit at opposite ends of the same strip (headings 180 degrees apart,
// same suffix).
func HasReciprocalPair(designators []string) bool {
	present := make(map[string]struct{}, len(designators))
	for _, d := range designators {
		present[d] = struct{}{}
	}
	for d := range present {
		rec, ok := reciprocalOf(d)
		if !ok {
			continue
		}
		if _, hit := present[rec]; hit {
			return true
		}
	}
	return false
}
