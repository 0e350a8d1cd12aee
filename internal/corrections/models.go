// Package corrections implements carry-forward of human review
// decisions: when a new parse reproduces a result a reviewer has
// already corrected, the stored correction is applied automatically
// instead of queueing another report.
package corrections

import (
	"context"
	"time"
)

// Correction is an applicable stored correction.
type Correction struct {
	// SourceID identifies where the correction came from, either a
	// reviewed report ("report_<id>") or a learned pattern
	// ("correction_<id>").
	SourceID            string   `json:"source_id"`
	CorrectedArrivals   []string `json:"corrected_arriving"`
	CorrectedDepartures []string `json:"corrected_departing"`
}

// ReviewedCorrection is a human-reviewed error report: the parse that
// was flagged and the sets the reviewer decided were right.
type ReviewedCorrection struct {
	ReportID            int64
	ParsedArrivals      []string
	ParsedDepartures    []string
	CorrectedArrivals   []string
	CorrectedDepartures []string
}

// PatternCorrection is a learned correction keyed by phrase signature
// rather than exact parse output, so it survives wording drift between
// broadcasts.
type PatternCorrection struct {
	ID                 int64
	AirportCode        string
	Pattern            string
	ExpectedArrivals   []string
	ExpectedDepartures []string
	SuccessRate        float64
	TimesApplied       int
}

// ReviewStore provides recent reviewed corrections for an airport.
type ReviewStore interface {
	RecentCorrections(ctx context.Context, airportCode string, since time.Time, limit int) ([]ReviewedCorrection, error)
}

// PatternStore provides learned pattern corrections. IncrementApplied
// must be a single atomic store-side update; parses run concurrently.
type PatternStore interface {
	LookupPattern(ctx context.Context, airportCode, pattern string) (*PatternCorrection, error)
	IncrementApplied(ctx context.Context, id int64) error
}
