package runway

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Flow represents the overall traffic flow direction derived from the
// active runway headings.
type Flow string

const (
	FlowNorth     Flow = "NORTH"
	FlowSouth     Flow = "SOUTH"
	FlowEast      Flow = "EAST"
	FlowWest      Flow = "WEST"
	FlowNortheast Flow = "NORTHEAST"
	FlowNorthwest Flow = "NORTHWEST"
	FlowSoutheast Flow = "SOUTHEAST"
	FlowSouthwest Flow = "SOUTHWEST"
	FlowMixed     Flow = "MIXED"
	FlowUnknown   Flow = "UNKNOWN"
)

// Issue is a structural anomaly detected in a parsed configuration.
// Issues are findings returned as values, never errors.
type Issue string

const (
	IssueLowConfidence     Issue = "low_confidence"
	IssueMissingArrivals   Issue = "missing_arrivals"
	IssueMissingDepartures Issue = "missing_departures"
	IssueReciprocalRunways Issue = "reciprocal_runways"
	IssueTooManyRunways    Issue = "too_many_runways"
)

// SplitKind classifies a broadcast as a full advisory or one half of a
// split arrival/departure pair.
type SplitKind string

const (
	Unsplit       SplitKind = ""
	ArrivalHalf   SplitKind = "arr"
	DepartureHalf SplitKind = "dep"
)

// ComponentConfidence tracks the per-half scores and sources of a
// configuration merged from a split pair.
type ComponentConfidence struct {
	Arrivals          float64 `json:"arrivals"`
	Departures        float64 `json:"departures"`
	ArrivalSourceID   string  `json:"arr_source_id,omitempty"`
	DepartureSourceID string  `json:"dep_source_id,omitempty"`
}

// Configuration is the parsed runway configuration for one broadcast.
// It is created once per parse and never mutated; a changed broadcast
// produces a new configuration.
type Configuration struct {
	AirportCode         string               `json:"airport_code"`
	Timestamp           time.Time            `json:"timestamp"`
	InformationLetter   string               `json:"information_letter,omitempty"`
	ArrivingRunways     []string             `json:"arriving_runways"`
	DepartingRunways    []string             `json:"departing_runways"`
	TrafficFlow         Flow                 `json:"traffic_flow"`
	ConfigurationName   string               `json:"configuration_name,omitempty"`
	ConfidenceScore     float64              `json:"confidence_score"`
	RawText             string               `json:"raw_text"`
	MergedFromPair      bool                 `json:"merged_from_pair,omitempty"`
	ComponentConfidence *ComponentConfidence `json:"component_confidence,omitempty"`
}

// ApplyCorrection replaces the parsed runway sets with reviewed ones
// and recomputes the derived fields. A human-confirmed configuration
// scores full confidence.
func (c *Configuration) ApplyCorrection(arrivals, departures []string) {
	arriving := designatorSet{}
	departing := designatorSet{}
	for _, d := range arrivals {
		arriving[normalizeDesignator(d)] = struct{}{}
	}
	for _, d := range departures {
		departing[normalizeDesignator(d)] = struct{}{}
	}

	c.ArrivingRunways = arriving.sorted()
	c.DepartingRunways = departing.sorted()
	c.TrafficFlow = DetermineTrafficFlow(arriving, departing)
	c.ConfidenceScore = 1.0
}

var designatorRe = regexp.MustCompile(`^([0-9]{1,2})([LCR])?$`)

// normalizeDesignator strips leading zeros from the numeric part and
// preserves the parallel-runway suffix. Returns the input unchanged if
// it does not look like a designator.
func normalizeDesignator(d string) string {
	m := designatorRe.FindStringSubmatch(d)
	if m == nil {
		return d
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return d
	}
	return strconv.Itoa(n) + m[2]
}

// validDesignator reports whether the numeric part lies in [1,36].
func validDesignator(d string) bool {
	m := designatorRe.FindStringSubmatch(d)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return n >= 1 && n <= 36
}

// designatorParts splits a designator into its numeric heading and
// suffix. ok is false when the designator cannot be parsed.
func designatorParts(d string) (num int, suffix string, ok bool) {
	m := designatorRe.FindStringSubmatch(d)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, m[2], true
}

// sortedDesignators returns the set as a lexicographically sorted
// slice, the stable form stored and served.
func sortedDesignators(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// reciprocalOf returns the designator at the opposite end of the same
// strip (heading 180 degrees away, same suffix).
func reciprocalOf(d string) (string, bool) {
	num, suffix, ok := designatorParts(d)
	if !ok {
		return "", false
	}
	rec := (num + 18) % 36
	if rec == 0 {
		rec = 36
	}
	return strconv.Itoa(rec) + suffix, true
}
