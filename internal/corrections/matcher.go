package corrections

import (
	"context"
	"sort"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yegors/rwy-watch/pkg/logger"
)

const (
	reviewLookback     = 24 * time.Hour
	reviewLimit        = 10
	minSuccessRate     = 0.8
	signatureCacheSize = 512
)

// Matcher looks up applicable corrections for a fresh parse. Store
// failures degrade to "no correction": carry-forward is opportunistic
// and must never block or fail parsing.
type Matcher struct {
	reviews  ReviewStore
	patterns PatternStore
	sigCache *lru.Cache[string, string]
	logger   *logger.Logger
}

// NewMatcher creates a matcher over the given stores.
func NewMatcher(reviews ReviewStore, patterns PatternStore, log *logger.Logger) *Matcher {
	cache, _ := lru.New[string, string](signatureCacheSize)
	return &Matcher{
		reviews:  reviews,
		patterns: patterns,
		sigCache: cache,
		logger:   log.Named("corrections"),
	}
}

// Match returns a stored correction applicable to the given parse, or
// nil when none applies. Two methods run in order: exact-parse match
// against reviews from the last day, then phrase-signature match
// against learned patterns (skipped when rawText is empty).
func (m *Matcher) Match(ctx context.Context, airportCode string, arrivals, departures []string, rawText string) *Correction {
	if c := m.matchRecentReview(ctx, airportCode, arrivals, departures); c != nil {
		return c
	}
	if rawText == "" {
		return nil
	}
	return m.matchPattern(ctx, airportCode, rawText)
}

func (m *Matcher) matchRecentReview(ctx context.Context, airportCode string, arrivals, departures []string) *Correction {
	since := time.Now().UTC().Add(-reviewLookback)
	reviewed, err := m.reviews.RecentCorrections(ctx, airportCode, since, reviewLimit)
	if err != nil {
		m.logger.Warn("carry-forward review lookup failed",
			logger.String("airport", airportCode), logger.Error(err))
		return nil
	}

	for _, rc := range reviewed {
		if sameSet(rc.ParsedArrivals, arrivals) && sameSet(rc.ParsedDepartures, departures) {
			m.logger.Debug("carry-forward match on reviewed report",
				logger.String("airport", airportCode),
				logger.Int64("report_id", rc.ReportID))
			return &Correction{
				SourceID:            "report_" + strconv.FormatInt(rc.ReportID, 10),
				CorrectedArrivals:   rc.CorrectedArrivals,
				CorrectedDepartures: rc.CorrectedDepartures,
			}
		}
	}
	return nil
}

func (m *Matcher) matchPattern(ctx context.Context, airportCode, rawText string) *Correction {
	sig, ok := m.sigCache.Get(rawText)
	if !ok {
		sig = Signature(rawText)
		m.sigCache.Add(rawText, sig)
	}
	key := airportCode + ":" + sig

	pc, err := m.patterns.LookupPattern(ctx, airportCode, key)
	if err != nil {
		m.logger.Warn("carry-forward pattern lookup failed",
			logger.String("airport", airportCode), logger.Error(err))
		return nil
	}
	if pc == nil || pc.SuccessRate < minSuccessRate {
		return nil
	}

	if err := m.patterns.IncrementApplied(ctx, pc.ID); err != nil {
		m.logger.Warn("failed to count pattern application",
			logger.Int64("correction_id", pc.ID), logger.Error(err))
	}

	m.logger.Info("applied parsing correction",
		logger.String("airport", airportCode),
		logger.Int64("correction_id", pc.ID))

	return &Correction{
		SourceID:            "correction_" + strconv.FormatInt(pc.ID, 10),
		CorrectedArrivals:   pc.ExpectedArrivals,
		CorrectedDepartures: pc.ExpectedDepartures,
	}
}

// sameSet compares two designator lists as unordered sets.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
