package runway

import "regexp"

// Extraction rules. Each rule matches one phrasing family observed in
// live broadcasts; the airport callsign noted alongside a rule is the
// field whose broadcasts motivated it. Rules are independent and their
// results are unioned, so ordering within a collection does not matter.
//
// The regexp package cannot express lookaround, so rules that need
// surrounding context carry it explicitly: notPrecededBy lists literal
// fragments that must not end immediately before the match, and
// captureOnly restricts designator harvesting to the first capture
// group instead of scanning the whole match.
type rule struct {
	re            *regexp.Regexp
	notPrecededBy []string
	captureOnly   bool
}

// Common sub-expressions. sep joins designators in a list; it accepts
// commas, AND/OR, or bare whitespace ("RWY 16L 16C AND 16R").
const (
	rwyKw  = `(?:RWYS?|RYS|RY)`
	desig  = `[0-9]{1,2}[LCR]?`
	apchKw = `(?:APCH|APPROACH|APCHS|APPROACHES)`
	apprTy = `(?:ILS|VISUAL|RNAV|VOR|GPS|LOC)`
	sep    = `(?:\s*,\s*|\s+(?:AND|OR)\s+)`
	sepSp  = `(?:\s*,\s*|\s+(?:AND|OR)\s+|\s+)`
	depKw  = `(?:DEPG|DEP|DEPARTURE|DEPARTING|DERARTING|DEPS|DEPARTURES)`
)

var arrivalRules = []rule{
	// "APPROACH IN USE ILS 22L, ILS 22R", RWY keyword optional
	{re: regexp.MustCompile(`(?i)` + apchKw + `\s+(?:IN\s+USE\s+)?` + apprTy + `\s+(?:` + rwyKw + `\s+)?(` + desig + `)(?:\s*,\s*` + apprTy + `\s+(?:` + rwyKw + `\s+)?(` + desig + `))+`)},
	// "ILS 27, ILS 22L APCH" with APCH after the last runway (KBOS)
	{re: regexp.MustCompile(`(?i)(?:EXPECT\s+)?` + apprTy + `\s+(` + desig + `)(?:\s*,\s*` + apprTy + `\s+(` + desig + `))+\s+(?:APCH|APPROACH)`)},
	// "SIMULTANEOUS APCHS IN USE VIS 26R, ILS 27L, VIS 28" (KATL)
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+` + apchKw + `\s+IN\s+USE\s+(?:(?:VIS|VISUAL|ILS|RNAV|VOR|GPS|LOC)\s+(` + desig + `)(?:\s*,\s*)?)+`)},
	// "SIMULTANEOUS APPCHS, ILS RWY 17L, 18R"
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+` + apchKw + `\s*,\s*` + apprTy + `\s+` + rwyKw + `\s+(` + desig + `)(?:\s*,\s*(` + desig + `))+`)},
	// "RNAV Y RWY 10L, SIMUL, ILS, RWY 10R"
	{re: regexp.MustCompile(`(?i)` + apprTy + `\s+(?:[YZ]\s+)?` + rwyKw + `\s+(` + desig + `)(?:\s*,\s*(?:SIMUL|SIMULTANEOUS)?\s*,?\s*` + apprTy + `\s*,?\s*` + rwyKw + `\s+(` + desig + `))+`)},
	// "ILS, RWY 28L, AND, RWY 28R"
	{re: regexp.MustCompile(`(?i)` + apprTy + `\s*,\s*` + rwyKw + `\s+(` + desig + `)(?:\s*,\s*(?:AND\s*,\s*)?` + rwyKw + `\s+(` + desig + `))+`)},
	// "SIMUL VISUAL APCH TO RWYS, 36L, 35C, 35R, 31R"
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)?\s*(?:VISUAL|ILS|RNAV)?\s*` + apchKw + `\s+(?:TO\s+)?` + rwyKw + `\s*,\s*(` + desig + `)(?:\s*,\s*(` + desig + `))*`)},
	// "EXPECT VISUAL APCH RWYS 36C 36L 36R" (KCLT)
	{re: regexp.MustCompile(`(?i)(?:EXPECT\s+)?(?:SIMUL|SIMULTANEOUS)?\s*(?:VISUAL|ILS|RNAV)?\s*` + apchKw + `\s+(?:TO\s+)?` + rwyKw + `\s+(` + desig + `)(?:\s+(` + desig + `))*`)},
	// "ILS, AND VA, RWYS 30 AND 28R" (VA = visual approach)
	{re: regexp.MustCompile(`(?i)(?:ILS|VISUAL|RNAV|VOR|GPS|LOC|VA)\s*,\s*(?:AND\s+)?(?:ILS|VISUAL|RNAV|VOR|GPS|LOC|VA)?\s*,?\s*` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "ILS, RYS 16R AND 16L, APCH IN USE"
	{re: regexp.MustCompile(`(?i)` + apprTy + `\s*,\s*` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*(?:\s*,\s*)?(?:` + apchKw + `|VISUAL\s+APPROACH)`)},
	// "ARRIVALS EXPECT ILS RWY 8R, RWY 9, RWY 12"
	{re: regexp.MustCompile(`(?i)(?:ARRIVALS?)\s+(?:EXPECT\s+)?` + apprTy + `\s+` + rwyKw + `\s+(` + desig + `)(?:\s*,\s*` + rwyKw + `\s+(` + desig + `))*`)},
	// "ARRIVALS EXPECT ILS OR RNAV Y RY 26R, ILS OR RNAV Y RY 26L"
	{re: regexp.MustCompile(`(?i)(?:ARRIVALS?)\s+(?:EXPECT\s+)?(?:` + apprTy + `\s+(?:OR\s+)?` + apprTy + `?\s*(?:[YZ]\s+)?` + rwyKw + `\s+` + desig + `(?:\s*,\s*)?)+`)},
	// "EXPECT ILS APCH RWYS 16R AND 16L" with RYS typo tolerance
	{re: regexp.MustCompile(`(?i)(?:EXPECT\s+)?` + apprTy + `\s+(?:OR\s+)?` + apprTy + `?\s*` + apchKw + `\s+` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "EXPECT VISUAL APPROACH TO RWY X, RWY Y" (KCVG)
	{re: regexp.MustCompile(`(?i)(?:EXPECT\s+)?` + apprTy + `\s+(?:OR\s+)?` + apprTy + `?\s*` + apchKw + `\s+TO\s+` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "APPROACH IN USE RWY 22"
	{re: regexp.MustCompile(`(?i)` + apchKw + `\s+(?:IN\s+USE\s+)?` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "SIMULTANEOUS ARRIVAL AND, DEPARTURE OPERATIONS ARE IN USE, ON RY 22R AND RY 22L"
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+(?:ARRIVAL\s+AND\s*,?\s*DEPARTURE\s+OPERATIONS|DEPENDENT)\s+(?:ARE\s+)?(?:IN\s+USE\s*)?,?\s*(?:ON\s+)?` + rwyKw + `\s+(` + desig + `)(?:\s+(?:AND|OR)\s+` + rwyKw + `\s+(` + desig + `))+`)},
	// "LNDG/DEPG RWYS 4/8"
	{re: regexp.MustCompile(`(?i)(?:LNDG|LANDING)/(?:DEPG|DEPARTING)\s+` + rwyKw + `\s+(` + desig + `)/(` + desig + `)(?:/(` + desig + `))*`)},
	// "LNDG RWYS 35L AND RIGHT", "LNDG AND DEPG RWY X AND RWY Y"
	{re: regexp.MustCompile(`(?i)(?:LNDG|LDG|LAND|ARVNG)\s+(?:AND\s+(?:DEPG|DEPARTING)\s+)?` + rwyKw + `\s+(` + desig + `)(?:` + sepSp + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// Standalone "LANDING RWY 16L 16C AND 16R". "LANDING AND DEPARTING"
	// cannot match here: AND is not a runway keyword.
	{re: regexp.MustCompile(`(?i)LANDING\s+` + rwyKw + `\s+(` + desig + `)(?:` + sepSp + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "RWY 22L, 22R FOR APPROACH"
	{re: regexp.MustCompile(`(?i)` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*\s+(?:FOR\s+)?(?:APCH|APPROACH|LANDING|ARRIVAL)`)},
	// "RNAV AND VISUAL APCHS IN USE" with no designators nearby
	{re: regexp.MustCompile(`(?i)(?:RNAV|ILS|VISUAL)\s+(?:AND\s+)?(?:RNAV|ILS|VISUAL)?\s+(?:APCHS|APPROACHES)\s+IN\s+USE`)},
	// Shortened "RNAV 27", "RNAV Y 27"
	{re: regexp.MustCompile(`(?i)RNAV\s+(?:[YZ]\s+)?(` + desig + `)(?:` + sep + `(?:RNAV\s+)?(?:[YZ]\s+)?(` + desig + `))*`)},
	// "ILS RY 34R RNAV Y RY 35 RNAV Z RY 34L" (KSLC)
	{re: regexp.MustCompile(`(?i)(?:ILS|RNAV|VOR|GPS|LOC)\s+(?:[YZ]\s+)?` + rwyKw + `\s+(` + desig + `)(?:\s+(?:ILS|RNAV|VOR|GPS|LOC)\s+(?:[YZ]\s+)?` + rwyKw + `\s+(` + desig + `))+`)},
	// Named visuals: "FMS BRIDGE RY 28R AND TIPP TOE RY 28L APP IN USE"
	{re: regexp.MustCompile(`(?i)(?:[A-Z]+(?:\s+[A-Z]+)*\s+)?RY\s+(` + desig + `)(?:\s+AND\s+(?:[A-Z]+(?:\s+[A-Z]+)*\s+)?RY\s+(` + desig + `))*\s+APP\s+IN\s+USE`)},
	// "ILS RWY 23 IN USE" (KPVD)
	{re: regexp.MustCompile(`(?i)` + apprTy + `\s+` + rwyKw + `\s+(` + desig + `)\s+IN\s+USE`)},
	// "LAND RY 31" (KLGA)
	{re: regexp.MustCompile(`(?i)LAND\s+` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "EXPECT ILS RWY 23L, 23R" (KRDU)
	{re: regexp.MustCompile(`(?i)(?:EXPECT\s+)?(?:ILS|RNAV|VOR|GPS|LOC)\s+` + rwyKw + `\s+(` + desig + `)(?:(?:\s*,\s*)(` + desig + `))*`)},
	// "ILS RWY 35L AND 35R" (KOKC)
	{re: regexp.MustCompile(`(?i)(?:ILS|RNAV|VOR|GPS|LOC)\s+` + rwyKw + `\s+(` + desig + `)(?:\s+(?:AND|OR)\s+(` + desig + `))+`)},
}

// Abbreviated "ILS 22L, DEP 22R" runs against the text before the
// departure strip because it keys off the trailing DEP. Only the
// capture group is harvested; the consumed DEP fragment is context.
var abbreviatedApproachRule = rule{
	re:          regexp.MustCompile(`(?i)(?:ILS|RNAV|VOR|GPS|LOC)\s+(?:` + rwyKw + `\s+)?(` + desig + `)\s*[,.]\s*DEP`),
	captureOnly: true,
}

// Fragments that mark a departure mention as part of a combined
// landing-and-departing statement rather than a standalone one.
var combinedDepContext = []string{"LNDG/", "LANDING/", "LANDING AND "}

var departureRules = []rule{
	// Shared with arrivals: "SIMULTANEOUS ARRIVAL AND, DEPARTURE OPERATIONS ... ON RY 22R AND RY 22L"
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+(?:ARRIVAL\s+AND\s*,?\s*DEPARTURE\s+OPERATIONS|DEPENDENT)\s+(?:ARE\s+)?(?:IN\s+USE\s*)?,?\s*(?:ON\s+)?` + rwyKw + `\s+(` + desig + `)(?:\s+(?:AND|OR)\s+` + rwyKw + `\s+(` + desig + `))+`)},
	// "SIMUL DEPS IN USE, EXPECT RY 18L, RY 18C"
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+(?:DEPS?|DEPARTURES?)\s+IN\s+USE\s*,?\s*(?:EXPECT\s+)?` + rwyKw + `\s+(` + desig + `)(?:\s*,\s*` + rwyKw + `\s+(` + desig + `))+`)},
	// "SIMUL DEPS IN USE RY 18R 18C 18L" (KMEM)
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+(?:DEPS?|DEPARTURES?)\s+IN\s+USE\s+` + rwyKw + `\s+(` + desig + `)(?:\s+(` + desig + `))+`)},
	// "DEPG RWYS RWY 10L AND 10R" with doubled keyword (KFLL)
	{re: regexp.MustCompile(`(?i)` + depKw + `\s+` + rwyKw + `\s+` + rwyKw + `\s+(` + desig + `)(?:\s+(?:AND|OR)\s+(` + desig + `))*`),
		notPrecededBy: combinedDepContext},
	// "DEPG RWYS, 26L, 27R" or "DEPG RWYS 36C, 36L, 36R"
	{re: regexp.MustCompile(`(?i)` + depKw + `\s+` + rwyKw + `\s*,?\s*(` + desig + `)(?:\s*,\s*(` + desig + `))*`),
		notPrecededBy: combinedDepContext},
	// "DEPG RWYS 1L, 1R", "DERARTING" typo (KSEA), space-separated lists
	{re: regexp.MustCompile(`(?i)` + depKw + `\s+` + rwyKw + `\s+(` + desig + `)(?:` + sepSp + `(?:` + rwyKw + `\s+)?(` + desig + `))*`),
		notPrecededBy: []string{"LNDG/", "LANDING/", "LANDING ", "LNDG ", "LANDING AND "}},
	// "TAKEOFF RWY 33L"
	{re: regexp.MustCompile(`(?i)(?:TAKEOFF|TKOF|TAKE\s+OFF)\s+` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "RWY 22R FOR DEPARTURE"
	{re: regexp.MustCompile(`(?i)` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(` + desig + `))*\s+(?:FOR\s+)?(?:DEPG|DEP|DEPARTURE|TAKEOFF)`)},
	// Shortened "DEP 33L", "DEPG 16R"
	{re: regexp.MustCompile(`(?i)(?:DEPG|DEP)\s+(` + desig + `)(?:` + sep + `(?:DEPG|DEP\s+)?(` + desig + `))*`)},
	// "DEPART RY 31" (KLGA)
	{re: regexp.MustCompile(`(?i)DEPART\s+` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "SIMUL INSTR DEPARTURES IN PROG RWYS 24 AND 25"
	{re: regexp.MustCompile(`(?i)(?:SIMUL\s+)?(?:INSTR\s+)?(?:DEPARTURES?|DEPS?)\s+IN\s+PROG(?:RESS)?\s+` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "FOR BOTH RWYS X AND Y" in departure context
	{re: regexp.MustCompile(`(?i)(?:FOR\s+)?BOTH\s+` + rwyKw + `\s+(` + desig + `)\s+AND\s+(?:` + rwyKw + `\s+)?(` + desig + `)`)},
	// "DEPS EXP RWYS 22L 28R" (KORD)
	{re: regexp.MustCompile(`(?i)(?:DEPS?)\s+(?:EXP(?:ECT)?)\s+` + rwyKw + `\s+(` + desig + `)(?:(?:\s+|\s*,\s*)(` + desig + `))*`)},
}

// combinedRules cover statements that assign runways to both
// operations at once, or name runways with no operation context at
// all. They only run when the directed collections came up empty or an
// explicit landing-and-departing phrase is present.
var combinedRules = []rule{
	// "LNDG/DEPG RWYS 4/8", "LNDG AND DEPG RWY 28L, 28R"
	{re: regexp.MustCompile(`(?i)(?:LNDG|LANDING)\s*(?:/|AND)\s*(?:DEPG|DEP|DEPARTING)\s+` + rwyKw + `\s*(` + desig + `)(?:(?:\s*/\s*|\s*,\s*|\s+(?:AND|OR)\s+)(?:` + rwyKw + `\s*)?(` + desig + `))*`)},
	// "ILS APCH 14R, 14L, 18 IN USE"
	{re: regexp.MustCompile(`(?i)` + apprTy + `\s+` + apchKw + `\s+(` + desig + `)(?:\s*,\s*(` + desig + `))*\s+IN\s+USE`)},
	// "VISUAL APCH 5R, 5L"
	{re: regexp.MustCompile(`(?i)VISUAL\s+` + apchKw + `\s+(` + desig + `)(?:\s*,\s*(` + desig + `))+`)},
	// "LANDING AND DEPARTING 34, 29", single runway form included
	{re: regexp.MustCompile(`(?i)LANDING\s+AND\s+DEPARTING\s+(?:` + rwyKw + `\s+)?(` + desig + `)(?:` + sepSp + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "ARVNG AND DEPG RWY 8 AND RWY 15"
	{re: regexp.MustCompile(`(?i)(?:ARVNG|ARRIVING)\s+AND\s+(?:DEPG|DEP|DEPARTING)\s+` + rwyKw + `\s+(` + desig + `)(?:` + sepSp + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// Generic "RWYS IN USE"
	{re: regexp.MustCompile(`(?i)` + rwyKw + `\s+(?:IN\s+USE\s+)?(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "SIMUL APCHS IN USE TO RWY ..."
	{re: regexp.MustCompile(`(?i)(?:SIMUL|SIMULTANEOUS)\s+(?:APCHS|APPROACHES)\s+(?:IN\s+USE\s*,?\s*)?(?:TO\s+)?` + rwyKw + `\s+(` + desig + `)(?:` + sep + `(?:` + rwyKw + `\s+)?(` + desig + `))*`)},
	// "17L, 17R & 13 IN USE" (KOKC)
	{re: regexp.MustCompile(`(?i)(` + desig + `)(?:\s*[,&]\s*|\s+(?:AND|OR)\s+)(` + desig + `)(?:(?:\s*[,&]\s*|\s+(?:AND|OR)\s+)(` + desig + `))*\s+IN\s+USE`)},
}

// stripRule removes a statement belonging to the opposite operation
// before a directed extraction pass runs.
type stripRule struct {
	re            *regexp.Regexp
	notPrecededBy []string
}

// Arrival keywords that mark a departure mention as combined, so the
// statement must survive the departure strip.
var arrivalLeadins = []string{"LNDG ", "LANDING ", "ARVNG ", "LAND ", "LDG ", "AND "}

var departureStripRules = []stripRule{
	{re: regexp.MustCompile(`(?i)` + depKw + `\s+` + rwyKw + `\s+` + desig + `(?:` + sepSp + rwyKw + `?\s*` + desig + `)*`),
		notPrecededBy: arrivalLeadins},
	{re: regexp.MustCompile(`(?i)(?:TAKEOFF|TKOF|TAKE\s+OFF)\s+` + rwyKw + `\s+` + desig + `(?:\s*,\s*` + rwyKw + `?\s*` + desig + `)*`)},
	{re: regexp.MustCompile(`(?i)(?:DEPG|DEP)\s+` + desig + `(?:\s*,\s*` + desig + `)*(?:\s|\.|$)`),
		notPrecededBy: arrivalLeadins},
}

var arrivalStripRules = []stripRule{
	// "LANDING AND DEPARTING" survives: AND is not a runway keyword,
	// approach keyword, or digit, so these cannot reach into it.
	{re: regexp.MustCompile(`(?i)(?:ARRIVALS?|LANDING|LNDG|LDG|LAND)\s+(?:EXPECT\s+)?(?:VISUAL\s+)?` + apchKw + `?\s*` + rwyKw + `?\s*` + desig + `(?:` + sepSp + `(?:` + rwyKw + `\s+)?` + desig + `)*`)},
	{re: regexp.MustCompile(`(?i)(?:ARVNG|ARRIVING)\s+` + rwyKw + `\s+` + desig + `(?:` + sep + `(?:` + rwyKw + `\s+)?` + desig + `)*`)},
	{re: regexp.MustCompile(`(?i)` + apprTy + `\s+(?:OR\s+` + apprTy + `\s+)?` + apchKw + `\s+(?:IN\s+USE\s+)?` + rwyKw + `\s+` + desig + `(?:` + sep + `(?:` + rwyKw + `\s+)?` + desig + `)*`)},
	{re: regexp.MustCompile(`(?i)` + apchKw + `\s+IN\s+USE\s+` + rwyKw + `\s+` + desig + `(?:` + sep + `(?:` + rwyKw + `\s+)?` + desig + `)*`)},
}
