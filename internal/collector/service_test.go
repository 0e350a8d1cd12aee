package collector

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/rwy-watch/internal/config"
	"github.com/yegors/rwy-watch/internal/corrections"
	"github.com/yegors/rwy-watch/internal/runway"
	"github.com/yegors/rwy-watch/internal/storage/sqlite"
	"github.com/yegors/rwy-watch/pkg/logger"
)

type fakeFeed struct {
	entries []FeedEntry
	err     error
	calls   int
}

func (f *fakeFeed) FetchAll(ctx context.Context) ([]FeedEntry, error) {
	f.calls++
	return f.entries, f.err
}

type testHarness struct {
	feed       *fakeFeed
	service    *Service
	broadcasts *sqlite.BroadcastStorage
	configs    *sqlite.ConfigStorage
	reports    *sqlite.ReportStorage
	patterns   *sqlite.PatternStorage
	db         *sql.DB
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Nop()
	broadcasts := sqlite.NewBroadcastStorage(db, log)
	configs := sqlite.NewConfigStorage(db, log)
	reports := sqlite.NewReportStorage(db, log)
	patterns := sqlite.NewPatternStorage(db, log)

	parser := runway.NewParser(config.DefaultArrivalOnlyAirports(), config.DefaultAirportConfigs(), log)
	matcher := corrections.NewMatcher(reports, patterns, log)

	feed := &fakeFeed{}
	svc := NewService(config.Default().Collector, feed, parser, matcher,
		broadcasts, configs, reports, log)

	return &testHarness{
		feed:       feed,
		service:    svc,
		broadcasts: broadcasts,
		configs:    configs,
		reports:    reports,
		patterns:   patterns,
		db:         db,
	}
}

const fullAdvisory = "SEA ATIS INFO C 0053Z. 11010KT 10SM FEW015 BKN250 11/07 A3012 (THREE ZERO ONE TWO) " +
	"ILS APPROACHES IN USE. LANDING RWY 16L 16C AND 16R. DEPARTING RWY 16L 16C AND 16R. " +
	"NOTAMS: RWY 16L CLSD BTN 0600 AND 1400Z DAILY."

func TestRunOnce_StoresAndParses(t *testing.T) {
	h := newHarness(t)
	h.feed.entries = []FeedEntry{{Airport: "KSEA", Type: "combined", DATIS: fullAdvisory}}

	require.NoError(t, h.service.RunOnce(context.Background()))

	cfg, err := h.configs.LatestForAirport("KSEA")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"16C", "16L", "16R"}, cfg.ArrivingRunways)
	assert.Equal(t, []string{"16C", "16L", "16R"}, cfg.DepartingRunways)
	assert.Equal(t, "SOUTH", cfg.TrafficFlow)
	assert.Equal(t, 1.0, cfg.ConfidenceScore)
	assert.Equal(t, "South Flow", cfg.ConfigurationName)

	b, err := h.broadcasts.GetBroadcast(cfg.BroadcastID)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "C", b.InfoLetter)
	assert.True(t, b.IsChanged)

	// No issues on a clean parse, no report.
	pending, err := h.reports.PendingReports(10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunOnce_UnchangedBroadcastNotReparsed(t *testing.T) {
	h := newHarness(t)
	h.feed.entries = []FeedEntry{{Airport: "KSEA", Type: "combined", DATIS: fullAdvisory}}
	ctx := context.Background()

	require.NoError(t, h.service.RunOnce(ctx))
	first, err := h.configs.LatestForAirport("KSEA")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, h.service.RunOnce(ctx))

	// The second snapshot is stored but flagged unchanged and produces
	// no new configuration.
	second, err := h.configs.LatestForAirport("KSEA")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var unchanged int
	require.NoError(t, h.db.QueryRow(
		`SELECT COUNT(*) FROM broadcasts WHERE airport_code = 'KSEA' AND is_changed = FALSE`,
	).Scan(&unchanged))
	assert.Equal(t, 1, unchanged)
}

func TestRunOnce_SuspectParseFilesReport(t *testing.T) {
	h := newHarness(t)
	h.feed.entries = []FeedEntry{{Airport: "KGEG", Type: "combined", DATIS: "GEG ATIS INFO D 0153Z. WIND CALM VIS 10."}}

	require.NoError(t, h.service.RunOnce(context.Background()))

	pending, err := h.reports.PendingReports(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "KGEG", pending[0].AirportCode)
	assert.Equal(t, "computer", pending[0].ReportedBy)
	assert.Contains(t, pending[0].Notes, "missing_arrivals")
	assert.False(t, pending[0].Reviewed)
}

func TestRunOnce_CorrectionCarriesForward(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	text := "GEG ATIS INFO D 0153Z. WIND CALM VIS 10."
	h.feed.entries = []FeedEntry{{Airport: "KGEG", Type: "combined", DATIS: text}}

	// First pass files a report; a human reviews it.
	require.NoError(t, h.service.RunOnce(ctx))
	pending, err := h.reports.PendingReports(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, h.reports.SubmitReview(pending[0].PublicID, []string{"21"}, []string{"21"}, ""))

	// The next changed broadcast with the same failed parse applies the
	// review automatically: corrected config, pre-reviewed report.
	h.feed.entries = []FeedEntry{{Airport: "KGEG", Type: "combined", DATIS: text + " REMARKS UPDATED."}}
	require.NoError(t, h.service.RunOnce(ctx))

	cfg, err := h.configs.LatestForAirport("KGEG")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"21"}, cfg.ArrivingRunways)
	assert.Equal(t, []string{"21"}, cfg.DepartingRunways)
	assert.Equal(t, 1.0, cfg.ConfidenceScore)

	pending, err = h.reports.PendingReports(10)
	require.NoError(t, err)
	assert.Empty(t, pending, "the carried-forward report arrives pre-reviewed")
}

func TestRunOnce_SplitPairMerged(t *testing.T) {
	h := newHarness(t)
	h.feed.entries = []FeedEntry{
		{Airport: "KDEN", Type: "arr", DATIS: "DEN ARR INFO A 1253Z. LANDING RWYS 35L, 35R."},
		{Airport: "KDEN", Type: "dep", DATIS: "DEN DEP INFO B 1253Z. DEPG RWYS 25, 34L."},
	}

	require.NoError(t, h.service.RunOnce(context.Background()))

	merged, err := h.configs.LatestForAirport("KDEN")
	require.NoError(t, err)
	require.NotNil(t, merged)
	assert.True(t, merged.MergedFromPair)
	assert.Equal(t, []string{"35L", "35R"}, merged.ArrivingRunways)
	assert.Equal(t, []string{"25", "34L"}, merged.DepartingRunways)
	assert.Equal(t, 1.0, merged.ConfidenceScore)
	assert.Equal(t, "Merged: ARR A + DEP B", merged.ConfigurationName)
	assert.NotEmpty(t, merged.ComponentConfidence)
}

func TestRunOnce_FeedErrorPropagates(t *testing.T) {
	h := newHarness(t)
	h.feed.err = assert.AnError

	err := h.service.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestExtractInfoLetter(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"SEA ATIS INFO C 0053Z. WIND CALM.", "C"},
		{"BOS ATIS INFORMATION K 1154Z.", "K"},
		{"THIS IS DENVER INTL INFORMATION Q 1253Z.", "Q"},
		{"PDX ATIS R 2153Z. WIND 28010KT.", "R"},
		{"WIND CALM VIS 10.", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractInfoLetter(tc.text), tc.text)
	}
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, contentHash("abc"), contentHash("abc"))
	assert.NotEqual(t, contentHash("abc"), contentHash("abd"))
	assert.Len(t, contentHash("abc"), 32)
}
