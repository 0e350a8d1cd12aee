package runway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySplit(t *testing.T) {
	assert.Equal(t, ArrivalHalf, ClassifySplit("DEN ARR INFO A 1853Z..."))
	assert.Equal(t, ArrivalHalf, ClassifySplit("den arr atis a"))
	assert.Equal(t, DepartureHalf, ClassifySplit("DEN DEP INFO B 1853Z..."))
	assert.Equal(t, Unsplit, ClassifySplit("SEA ATIS INFO C 1853Z..."))
}

func mergeFixtures() (*Configuration, *Configuration) {
	base := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)
	arr := &Configuration{
		AirportCode:       "KDEN",
		Timestamp:         base,
		InformationLetter: "A",
		ArrivingRunways:   []string{"35L", "35R"},
		TrafficFlow:       FlowNorth,
		ConfidenceScore:   1.0,
		RawText:           "DEN ARR INFO A. LANDING RWY 35L AND 35R.",
	}
	dep := &Configuration{
		AirportCode:       "KDEN",
		Timestamp:         base.Add(2 * time.Minute),
		InformationLetter: "B",
		DepartingRunways:  []string{"25", "34L"},
		TrafficFlow:       FlowNorthwest,
		ConfidenceScore:   1.0,
		RawText:           "DEN DEP INFO B. DEPG RWYS 25, 34L.",
	}
	return arr, dep
}

func TestMergePair(t *testing.T) {
	arr, dep := mergeFixtures()

	merged := MergePair(arr, dep, "broadcast-1", "broadcast-2")

	assert.Equal(t, "KDEN", merged.AirportCode)
	assert.Equal(t, []string{"35L", "35R"}, merged.ArrivingRunways)
	assert.Equal(t, []string{"25", "34L"}, merged.DepartingRunways)
	assert.Equal(t, 1.0, merged.ConfidenceScore)
	assert.True(t, merged.MergedFromPair)
	assert.Equal(t, "Merged: ARR A + DEP B", merged.ConfigurationName)
	assert.Equal(t, dep.Timestamp, merged.Timestamp, "merged timestamp is the newer half")

	require.NotNil(t, merged.ComponentConfidence)
	assert.Equal(t, 1.0, merged.ComponentConfidence.Arrivals)
	assert.Equal(t, "broadcast-1", merged.ComponentConfidence.ArrivalSourceID)
	assert.Equal(t, "broadcast-2", merged.ComponentConfidence.DepartureSourceID)
}

func TestMergePair_Idempotent(t *testing.T) {
	arr, dep := mergeFixtures()

	first := MergePair(arr, dep, "b1", "b2")
	second := MergePair(arr, dep, "b1", "b2")

	assert.Equal(t, first, second)
}

func TestMergePair_ResidualsFoldedIn(t *testing.T) {
	arr, dep := mergeFixtures()
	// An arrival half can carry a combined statement that names a
	// departure runway.
	arr.DepartingRunways = []string{"35L"}
	dep.ArrivingRunways = []string{"35R"}

	merged := MergePair(arr, dep, "b1", "b2")

	assert.Contains(t, merged.DepartingRunways, "35L")
	assert.Contains(t, merged.ArrivingRunways, "35R")
}

func TestMergePair_ConfidenceAveragedWhenLow(t *testing.T) {
	arr, dep := mergeFixtures()
	arr.ConfidenceScore = 0.6
	dep.ConfidenceScore = 1.0

	merged := MergePair(arr, dep, "b1", "b2")
	assert.InDelta(t, 0.8, merged.ConfidenceScore, 1e-9)
}

func TestMergePair_MissingLetterPlaceholder(t *testing.T) {
	arr, dep := mergeFixtures()
	dep.InformationLetter = ""

	merged := MergePair(arr, dep, "b1", "b2")
	assert.Equal(t, "Merged: ARR A + DEP ?", merged.ConfigurationName)
}
