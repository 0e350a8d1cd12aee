package runway

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/rwy-watch/internal/config"
	"github.com/yegors/rwy-watch/pkg/logger"
)

func newTestParser() *Parser {
	return NewParser(config.DefaultArrivalOnlyAirports(), config.DefaultAirportConfigs(), logger.Nop())
}

func TestParse_FullAdvisory(t *testing.T) {
	p := newTestParser()

	text := "SEA ATIS INFO C 0053Z. 11010KT 10SM FEW015 BKN250 11/07 A3012 (THREE ZERO ONE TWO) " +
		"ILS APPROACHES IN USE. LANDING RWY 16L 16C AND 16R. DEPARTING RWY 16L 16C AND 16R. " +
		"NOTAMS: RWY 16L CLSD BTN 0600 AND 1400Z DAILY."

	cfg := p.Parse("KSEA", text, "C")

	assert.Equal(t, []string{"16C", "16L", "16R"}, cfg.ArrivingRunways)
	assert.Equal(t, []string{"16C", "16L", "16R"}, cfg.DepartingRunways)
	assert.Equal(t, FlowSouth, cfg.TrafficFlow)
	assert.Equal(t, 1.0, cfg.ConfidenceScore)
	assert.Equal(t, "South Flow", cfg.ConfigurationName)
	assert.Empty(t, p.Validate(cfg))
}

func TestParse_ArrivalHalf(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KXXX", "KXXX ARR INFO P 1253Z. LANDING RWY 9L.", "P")

	assert.Equal(t, []string{"9L"}, cfg.ArrivingRunways)
	assert.Empty(t, cfg.DepartingRunways)
	assert.Equal(t, 1.0, cfg.ConfidenceScore)
	assert.Empty(t, p.Validate(cfg))
}

func TestParse_DepartureHalf(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KDEN", "DEN DEP INFO Q 1253Z. DEPG RWYS 25, 17R.", "Q")

	assert.Empty(t, cfg.ArrivingRunways)
	assert.Equal(t, []string{"17R", "25"}, cfg.DepartingRunways)
	assert.Equal(t, 1.0, cfg.ConfidenceScore)
}

func TestParse_NoRunwayPhrase(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KSEA", "WIND CALM VISIBILITY 10", "")

	assert.Empty(t, cfg.ArrivingRunways)
	assert.Empty(t, cfg.DepartingRunways)
	assert.Equal(t, 0.0, cfg.ConfidenceScore)
	assert.Equal(t, FlowUnknown, cfg.TrafficFlow)

	issues := p.Validate(cfg)
	assert.Contains(t, issues, IssueMissingArrivals)
	assert.Contains(t, issues, IssueMissingDepartures)
	assert.Contains(t, issues, IssueLowConfidence)
}

func TestParse_LandingAndDepartingOverrides(t *testing.T) {
	p := newTestParser()

	// The combined statement must win over the arrival-only match on
	// "ILS, RWY 16 IN USE".
	cfg := p.Parse("KBFI", "ILS, RWY 16 IN USE. LANDING AND DEPARTING RWY 16.", "")

	assert.Equal(t, []string{"16"}, cfg.ArrivingRunways)
	assert.Equal(t, []string{"16"}, cfg.DepartingRunways)
}

func TestParse_CombinedIsLastResort(t *testing.T) {
	p := newTestParser()

	// Arrivals found directly must not be copied into departures.
	cfg := p.Parse("KXXX", "ILS RWY 19R APPROACH IN USE.", "")

	assert.Equal(t, []string{"19R"}, cfg.ArrivingRunways)
	assert.Empty(t, cfg.DepartingRunways)
}

func TestParse_ArrivalOnlyAirportConfidence(t *testing.T) {
	p := newTestParser()

	// KPVD publishes arrival-only advisories; no departures is normal.
	cfg := p.Parse("KPVD", "PVD ATIS A. ILS RWY 23 IN USE.", "A")

	assert.Equal(t, []string{"23"}, cfg.ArrivingRunways)
	assert.Empty(t, cfg.DepartingRunways)
	assert.Equal(t, 1.0, cfg.ConfidenceScore)
	assert.Empty(t, p.Validate(cfg))
}

func TestParse_SplitArrivalClearsDepartureNoise(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KCLE", "CLE ARR INFO B. ILS APPROACH IN USE RWY 24R. DEPG RWY 24L.", "B")

	assert.Equal(t, []string{"24R"}, cfg.ArrivingRunways)
	assert.Empty(t, cfg.DepartingRunways, "departures in an arrival half come from the paired broadcast")
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser()

	text := "ATL ATIS INFO F. A3001 (THREE ZERO ZERO ONE) SIMULTANEOUS APCHS IN USE VIS 26R, ILS 27L, VIS 28. " +
		"DEPG RWYS 26L, 27R. NOTAMS..."

	first := p.Parse("KATL", text, "F")
	for i := 0; i < 10; i++ {
		next := p.Parse("KATL", text, "F")
		assert.Equal(t, first.ArrivingRunways, next.ArrivingRunways)
		assert.Equal(t, first.DepartingRunways, next.DepartingRunways)
		assert.Equal(t, first.TrafficFlow, next.TrafficFlow)
		assert.Equal(t, first.ConfidenceScore, next.ConfidenceScore)
	}
}

func TestParse_DesignatorShape(t *testing.T) {
	p := newTestParser()
	shape := regexp.MustCompile(`^([1-9]|[12][0-9]|3[0-6])[LCR]?$`)

	texts := []string{
		"APPROACH IN USE ILS 22L, ILS 22R. DEPG RWY 22R.",
		"EXPECT VISUAL APCH RWYS 36C 36L 36R. DEPS EXP RWYS 36C 36R.",
		"LNDG/DEPG RWYS 4/8.",
		"ARRIVALS EXPECT ILS RWY 8R, RWY 9, RWY 12. TAKEOFF RWY 8L.",
		"RWY 01L AND 01R IN USE.",
		"ILS RWY 40 IN USE.", // 40 is out of range and must be dropped
	}

	for _, text := range texts {
		cfg := p.Parse("KTST", text, "")
		for _, d := range append(cfg.ArrivingRunways, cfg.DepartingRunways...) {
			assert.Regexp(t, shape, d, "text %q produced designator %q", text, d)
		}
	}
}

func TestParse_LeadingZeroStripped(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KSFO", "SFO ATIS. LANDING RWY 01L AND 01R. DEPG RWY 01L.", "")

	assert.Equal(t, []string{"1L", "1R"}, cfg.ArrivingRunways)
	assert.Equal(t, []string{"1L"}, cfg.DepartingRunways)
	assert.Equal(t, "Northwest Flow", cfg.ConfigurationName)
}

func TestParse_AbbreviatedApproachBeforeDep(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KBOS", "BOS ATIS. ILS RWY 27, DEP 33L.", "")

	require.Contains(t, cfg.ArrivingRunways, "27")
	assert.Contains(t, cfg.DepartingRunways, "33L")
	assert.NotContains(t, cfg.ArrivingRunways, "33L")
}

func TestParse_ClosedRunwayIgnored(t *testing.T) {
	p := newTestParser()

	cfg := p.Parse("KSEA", "A3012 (THREE ZERO ONE TWO) RWY 34L CLOSED. LANDING RWY 16R. DERARTING RWY 16L.", "")

	assert.Equal(t, []string{"16R"}, cfg.ArrivingRunways)
	assert.Equal(t, []string{"16L"}, cfg.DepartingRunways)
	assert.NotContains(t, cfg.ArrivingRunways, "34L")
}
