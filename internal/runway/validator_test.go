package runway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ReciprocalRunways(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:      "KSEA",
		ArrivingRunways:  []string{"16L"},
		DepartingRunways: []string{"34L"},
		ConfidenceScore:  1.0,
		RawText:          "LANDING RWY 16L DEPG RWY 34L",
	}

	issues := p.Validate(cfg)
	assert.Contains(t, issues, IssueReciprocalRunways)
}

func TestValidate_ReciprocalReportedOnce(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:      "KSEA",
		ArrivingRunways:  []string{"16L", "16R"},
		DepartingRunways: []string{"34L", "34R"},
		ConfidenceScore:  1.0,
		RawText:          "x",
	}

	count := 0
	for _, issue := range p.Validate(cfg) {
		if issue == IssueReciprocalRunways {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidate_ReciprocalNeedsSameSuffix(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:      "KSEA",
		ArrivingRunways:  []string{"16L"},
		DepartingRunways: []string{"34R"},
		ConfidenceScore:  1.0,
		RawText:          "x",
	}

	assert.NotContains(t, p.Validate(cfg), IssueReciprocalRunways)
}

func TestHasReciprocalPair(t *testing.T) {
	assert.True(t, HasReciprocalPair([]string{"16L", "34L"}))
	assert.True(t, HasReciprocalPair([]string{"36", "18"}))
	assert.False(t, HasReciprocalPair([]string{"16L", "34R"}), "suffixes must match")
	assert.False(t, HasReciprocalPair([]string{"16L", "16R", "16C"}))
	assert.False(t, HasReciprocalPair(nil))
}

func TestValidate_TooManyRunways(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:      "KORD",
		ArrivingRunways:  []string{"4L", "4R", "9L", "9R"},
		DepartingRunways: []string{"10L", "10C", "10R"},
		ConfidenceScore:  1.0,
		RawText:          "x",
	}

	assert.Contains(t, p.Validate(cfg), IssueTooManyRunways)
}

func TestValidate_SplitHalvesSuppressOppositeGap(t *testing.T) {
	p := newTestParser()

	arrHalf := &Configuration{
		AirportCode:     "KDEN",
		ArrivingRunways: []string{"35L"},
		ConfidenceScore: 1.0,
		RawText:         "DEN ARR INFO A. LANDING RWY 35L.",
	}
	assert.Empty(t, p.Validate(arrHalf))

	depHalf := &Configuration{
		AirportCode:      "KDEN",
		DepartingRunways: []string{"34L"},
		ConfidenceScore:  1.0,
		RawText:          "DEN DEP INFO B. DEPG RWY 34L.",
	}
	assert.Empty(t, p.Validate(depHalf))
}

func TestValidate_SplitHalfMissingOwnOperation(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:     "KDEN",
		ConfidenceScore: 1.0,
		RawText:         "DEN DEP INFO B. NO RUNWAY STATEMENT.",
	}

	issues := p.Validate(cfg)
	assert.Contains(t, issues, IssueMissingDepartures)
	assert.NotContains(t, issues, IssueMissingArrivals)
}

func TestValidate_ArrivalOnlyAirport(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:     "KJFK",
		ArrivingRunways: []string{"22L"},
		ConfidenceScore: 1.0,
		RawText:         "JFK ATIS. ILS RWY 22L APCH IN USE.",
	}

	assert.Empty(t, p.Validate(cfg))
}

func TestValidate_LowConfidence(t *testing.T) {
	p := newTestParser()

	cfg := &Configuration{
		AirportCode:      "KSEA",
		ArrivingRunways:  []string{"16L"},
		DepartingRunways: []string{"16R"},
		ConfidenceScore:  0.6,
		RawText:          "x",
	}

	assert.Contains(t, p.Validate(cfg), IssueLowConfidence)
}
