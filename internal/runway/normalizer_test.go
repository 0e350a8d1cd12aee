package runway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_SectionIsolation(t *testing.T) {
	text := "SEA ATIS INFO C 0053Z. 11010KT 10SM A3012 (THREE ZERO ONE TWO) " +
		"LANDING RWY 16L. NOTAMS: RWY 34R CLSD."

	out := Normalize(text)

	assert.Contains(t, out, "LANDING RWY 16L")
	assert.NotContains(t, out, "34R", "text after the NOTAMS marker must be dropped")
	assert.NotContains(t, out, "11010KT", "header before the altimeter must be dropped")
}

func TestNormalize_NoMarkersPassthrough(t *testing.T) {
	out := Normalize("LANDING   RWY 16L")
	assert.Equal(t, "LANDING RWY 16L", out)
}

func TestNormalize_DigitByDigit(t *testing.T) {
	assert.Contains(t, Normalize("RUNWAY 3 4 LEFT IN USE"), "RWY 34L")
	assert.Contains(t, Normalize("RWY 1 6 RIGHT"), "RWY 16R")
}

func TestNormalize_SpelledSuffix(t *testing.T) {
	assert.Contains(t, Normalize("RUNWAY 16 LEFT"), "RWY 16L")
	assert.Contains(t, Normalize("RUNWAY 27 RIGHT"), "RWY 27R")
}

func TestNormalize_SpacedKeywords(t *testing.T) {
	assert.Contains(t, Normalize("R Y 14 IN USE"), "RY 14")
	assert.Contains(t, Normalize("R W Y 16L"), "RWY 16L")
}

func TestNormalize_AndRightLeft(t *testing.T) {
	out := Normalize("LNDG RWY 35L AND RIGHT")
	assert.Contains(t, out, "RWY 35L AND RWY 35R")

	out = Normalize("RWY 16C AND LEFT")
	assert.Contains(t, out, "RWY 16C AND RWY 16L")
}

func TestNormalize_ClosureRemoved(t *testing.T) {
	out := Normalize("RWY 16L CLOSED. LANDING RWY 34R")
	assert.NotContains(t, out, "16L")
	assert.Contains(t, out, "LANDING RWY 34R")
}

func TestNormalize_EquipmentStatusRemoved(t *testing.T) {
	out := Normalize("RWY 18R PAPI OTS. DEPG RWY 36C")
	assert.NotContains(t, out, "18R")
	assert.Contains(t, out, "DEPG RWY 36C")
}

func TestNormalize_AttachedNumberDetached(t *testing.T) {
	assert.Contains(t, Normalize("RWY17L IN USE"), "RWY 17L")
}

func TestNormalize_PeriodsStripped(t *testing.T) {
	out := Normalize("LANDING RWY 16L. DEPG RWY 16C.")
	assert.False(t, strings.Contains(out, "."))
}
