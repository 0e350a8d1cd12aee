package runway

import (
	"sort"
	"strings"
	"time"

	"github.com/yegors/rwy-watch/pkg/logger"
)

// Parser turns broadcast text into runway configurations. It holds
// only immutable tuning data, so one instance is safe for concurrent
// use.
type Parser struct {
	arrivalOnly    map[string]struct{}
	airportConfigs map[string]map[string][]string
	logger         *logger.Logger
}

// NewParser creates a parser. arrivalOnlyAirports lists fields whose
// broadcasts omit departures by practice; airportConfigs maps airport
// code to named flow -> runway set.
func NewParser(arrivalOnlyAirports []string, airportConfigs map[string]map[string][]string, log *logger.Logger) *Parser {
	only := make(map[string]struct{}, len(arrivalOnlyAirports))
	for _, code := range arrivalOnlyAirports {
		only[code] = struct{}{}
	}
	return &Parser{
		arrivalOnly:    only,
		airportConfigs: airportConfigs,
		logger:         log.Named("parser"),
	}
}

// ArrivalOnly reports whether the airport is known to publish
// arrival-only broadcasts.
func (p *Parser) ArrivalOnly(airportCode string) bool {
	_, ok := p.arrivalOnly[airportCode]
	return ok
}

// Parse extracts the runway configuration from one broadcast. It never
// fails: text with no recognizable runway statements yields empty sets
// and a zero confidence score.
func (p *Parser) Parse(airportCode, rawText, infoLetter string) *Configuration {
	timestamp := time.Now().UTC()

	cleaned := Normalize(rawText)
	cleanedUpper := strings.ToUpper(cleaned)

	// Split headers live in the part the normalizer trims, so they are
	// detected on the original text.
	split := ClassifySplit(rawText)

	hasBoth := strings.Contains(cleanedUpper, "LANDING AND DEPARTING") ||
		strings.Contains(cleanedUpper, "LNDG AND DEPG") ||
		strings.Contains(cleanedUpper, "LNDG/DEPG")

	arriving := ExtractArrivals(cleaned)
	departing := ExtractDepartures(cleaned)

	// An explicit landing-and-departing statement overrides whatever
	// the directed passes found; "ILS, RWY 16 IN USE. LANDING AND
	// DEPARTING 16." must assign 16 to both.
	if hasBoth {
		if combined := ExtractCombined(cleaned); len(combined) > 0 {
			arriving = combined
			departing = combined
		}
	}

	switch split {
	case ArrivalHalf:
		// Departures in an arrival half are extraction noise; the real
		// ones arrive in the paired departure broadcast.
		if len(arriving) == 0 {
			if combined := ExtractCombined(cleaned); len(combined) > 0 {
				arriving = combined
			}
		}
		departing = designatorSet{}
	case DepartureHalf:
		arriving = designatorSet{}
	}

	// Combined statements are a last resort reserved for true
	// ambiguity. Filling departures from them when arrivals were found
	// directly duplicates arrival-only advisories.
	if len(arriving) == 0 && len(departing) == 0 && split == Unsplit && !hasBoth {
		combined := ExtractCombined(cleaned)
		arriving = combined
		departing = combined
	}

	flow := DetermineTrafficFlow(arriving, departing)
	configName := p.configurationName(airportCode, arriving, departing)
	confidence := scoreConfidence(arriving, departing, cleaned)

	// A split half that carries exactly its own operation is complete
	// as published.
	switch {
	case split == ArrivalHalf && len(arriving) > 0 && len(departing) == 0:
		confidence = 1.0
	case split == DepartureHalf && len(departing) > 0 && len(arriving) == 0:
		confidence = 1.0
	case split != Unsplit && len(arriving) > 0 && len(departing) > 0:
		confidence = 1.0
	}

	if p.ArrivalOnly(airportCode) && len(arriving) > 0 && len(departing) == 0 {
		confidence = 1.0
	}

	cfg := &Configuration{
		AirportCode:       airportCode,
		Timestamp:         timestamp,
		InformationLetter: infoLetter,
		ArrivingRunways:   arriving.sorted(),
		DepartingRunways:  departing.sorted(),
		TrafficFlow:       flow,
		ConfigurationName: configName,
		ConfidenceScore:   confidence,
		RawText:           rawText,
	}

	p.logger.Debug("parsed broadcast",
		logger.String("airport", airportCode),
		logger.Strings("arriving", cfg.ArrivingRunways),
		logger.Strings("departing", cfg.DepartingRunways),
		logger.String("flow", string(flow)),
		logger.Float64("confidence", confidence))

	return cfg
}

// configurationName resolves the named flow for airports that have
// one; any active runway in a named set selects it.
func (p *Parser) configurationName(airportCode string, arriving, departing designatorSet) string {
	configs, ok := p.airportConfigs[airportCode]
	if !ok {
		return ""
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, rwy := range configs[name] {
			norm := normalizeDesignator(rwy)
			if _, ok := arriving[norm]; ok {
				return titleCase(name) + " Flow"
			}
			if _, ok := departing[norm]; ok {
				return titleCase(name) + " Flow"
			}
		}
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
