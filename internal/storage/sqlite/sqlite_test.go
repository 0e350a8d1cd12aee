package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/rwy-watch/pkg/logger"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func storeBroadcast(t *testing.T, s *BroadcastStorage, airport, text, hash string, at time.Time) int64 {
	t.Helper()
	id, err := s.StoreBroadcast(&BroadcastRecord{
		AirportCode: airport,
		CollectedAt: at,
		InfoLetter:  "A",
		RawText:     text,
		ContentHash: hash,
		IsChanged:   true,
	})
	require.NoError(t, err)
	return id
}

func TestBroadcastStorage_LatestContentHash(t *testing.T) {
	db := testDB(t)
	s := NewBroadcastStorage(db, logger.Nop())

	hash, err := s.LatestContentHash("KSEA")
	require.NoError(t, err)
	assert.Empty(t, hash, "no snapshots yet")

	now := time.Now().UTC().Truncate(time.Second)
	storeBroadcast(t, s, "KSEA", "first", "hash-1", now.Add(-time.Hour))
	storeBroadcast(t, s, "KSEA", "second", "hash-2", now)

	hash, err = s.LatestContentHash("KSEA")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", hash)
}

func TestBroadcastStorage_FindPairedBroadcast(t *testing.T) {
	db := testDB(t)
	s := NewBroadcastStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	depID := storeBroadcast(t, s, "KDEN", "DEN DEP INFO B ...", "h1", now)
	arrNear := storeBroadcast(t, s, "KDEN", "DEN ARR INFO A ...", "h2", now.Add(-5*time.Minute))
	storeBroadcast(t, s, "KDEN", "DEN ARR INFO Z ...", "h3", now.Add(-25*time.Minute))
	storeBroadcast(t, s, "KSEA", "SEA ARR INFO C ...", "h4", now)

	pairID, err := s.FindPairedBroadcast("KDEN", depID, "ARR INFO", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, arrNear, pairID, "closest counterpart within the window wins")

	pairID, err = s.FindPairedBroadcast("KDEN", depID, "ARR INFO", 2*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, pairID, "no counterpart inside a tight window")
}

func TestBroadcastStorage_DeleteOlderThan(t *testing.T) {
	db := testDB(t)
	s := NewBroadcastStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	storeBroadcast(t, s, "KSEA", "old", "h1", now.Add(-48*time.Hour))
	keep := storeBroadcast(t, s, "KSEA", "new", "h2", now)

	deleted, err := s.DeleteOlderThan(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	record, err := s.GetBroadcast(keep)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "new", record.RawText)
}

func TestConfigStorage_UpsertAndLatest(t *testing.T) {
	db := testDB(t)
	bs := NewBroadcastStorage(db, logger.Nop())
	cs := NewConfigStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	bid := storeBroadcast(t, bs, "KSEA", "text", "h1", now)

	_, err := cs.UpsertConfig(&ConfigRecord{
		AirportCode:      "KSEA",
		BroadcastID:      bid,
		ArrivingRunways:  []string{"16L"},
		DepartingRunways: []string{"16C"},
		TrafficFlow:      "SOUTH",
		ConfidenceScore:  0.9,
		CreatedAt:        now,
	})
	require.NoError(t, err)

	// Second upsert for the same broadcast replaces, not duplicates.
	_, err = cs.UpsertConfig(&ConfigRecord{
		AirportCode:      "KSEA",
		BroadcastID:      bid,
		ArrivingRunways:  []string{"16L", "16R"},
		DepartingRunways: []string{"16C"},
		TrafficFlow:      "SOUTH",
		ConfidenceScore:  1.0,
		CreatedAt:        now,
	})
	require.NoError(t, err)

	latest, err := cs.LatestForAirport("KSEA")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, []string{"16L", "16R"}, latest.ArrivingRunways)
	assert.Equal(t, 1.0, latest.ConfidenceScore)

	history, err := cs.History("KSEA", now.Add(-time.Hour), 50)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestConfigStorage_LatestPerAirport(t *testing.T) {
	db := testDB(t)
	bs := NewBroadcastStorage(db, logger.Nop())
	cs := NewConfigStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	for i, airport := range []string{"KSEA", "KSEA", "KLAX"} {
		bid := storeBroadcast(t, bs, airport, "text", "h", now.Add(time.Duration(i)*time.Minute))
		_, err := cs.UpsertConfig(&ConfigRecord{
			AirportCode:      airport,
			BroadcastID:      bid,
			ArrivingRunways:  []string{"16L"},
			DepartingRunways: []string{},
			TrafficFlow:      "SOUTH",
			ConfidenceScore:  float64(i),
			CreatedAt:        now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	latest, err := cs.LatestPerAirport(now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "KLAX", latest[0].AirportCode)
	assert.Equal(t, "KSEA", latest[1].AirportCode)
	assert.Equal(t, 1.0, latest[1].ConfidenceScore, "newer KSEA config wins")
}

func TestConfigStorage_LatestHalvesForAirport(t *testing.T) {
	db := testDB(t)
	bs := NewBroadcastStorage(db, logger.Nop())
	cs := NewConfigStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	arrID := storeBroadcast(t, bs, "KDEN", "arr", "h1", now.Add(-5*time.Minute))
	depID := storeBroadcast(t, bs, "KDEN", "dep", "h2", now)

	for _, rec := range []*ConfigRecord{
		{AirportCode: "KDEN", BroadcastID: arrID, ArrivingRunways: []string{"35L"}, DepartingRunways: []string{}, TrafficFlow: "NORTH", ConfidenceScore: 1.0, SplitKind: "arr", CreatedAt: now.Add(-5 * time.Minute)},
		{AirportCode: "KDEN", BroadcastID: depID, ArrivingRunways: []string{}, DepartingRunways: []string{"34L"}, TrafficFlow: "NORTH", ConfidenceScore: 1.0, SplitKind: "dep", CreatedAt: now},
	} {
		_, err := cs.UpsertConfig(rec)
		require.NoError(t, err)
	}

	halves, err := cs.LatestHalvesForAirport("KDEN", now.Add(-15*time.Minute))
	require.NoError(t, err)
	require.Contains(t, halves, "arr")
	require.Contains(t, halves, "dep")
	assert.Equal(t, []string{"35L"}, halves["arr"].ArrivingRunways)
	assert.Equal(t, []string{"34L"}, halves["dep"].DepartingRunways)
}

func TestReportStorage_CreateAndReview(t *testing.T) {
	db := testDB(t)
	bs := NewBroadcastStorage(db, logger.Nop())
	rs := NewReportStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	bid := storeBroadcast(t, bs, "KSEA", "text", "h1", now)

	inserted, err := rs.CreateReport(&ReportRecord{
		AirportCode:      "KSEA",
		BroadcastID:      bid,
		ParsedArrivals:   []string{"16L"},
		ParsedDepartures: []string{},
		ConfidenceScore:  0.6,
		ReportedBy:       "computer",
		Notes:            "Computer-detected issues: low_confidence",
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Duplicate for the same broadcast is skipped.
	inserted, err = rs.CreateReport(&ReportRecord{
		AirportCode:      "KSEA",
		BroadcastID:      bid,
		ParsedArrivals:   []string{"16L"},
		ParsedDepartures: []string{},
		ConfidenceScore:  0.6,
		ReportedBy:       "computer",
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	pending, err := rs.PendingReports(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	err = rs.SubmitReview(pending[0].PublicID, []string{"16L"}, []string{"16C"}, "reviewed")
	require.NoError(t, err)

	reviewed, err := rs.GetReportByPublicID(pending[0].PublicID)
	require.NoError(t, err)
	require.NotNil(t, reviewed)
	assert.True(t, reviewed.Reviewed)
	assert.Equal(t, []string{"16C"}, reviewed.CorrectedDepartures)
	require.NotNil(t, reviewed.ReviewedAt)

	recent, err := rs.RecentCorrections(context.Background(), "KSEA", now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, []string{"16L"}, recent[0].ParsedArrivals)
	assert.Equal(t, []string{"16C"}, recent[0].CorrectedDepartures)
}

func TestReportStorage_DeleteStaleComputerReports(t *testing.T) {
	db := testDB(t)
	bs := NewBroadcastStorage(db, logger.Nop())
	rs := NewReportStorage(db, logger.Nop())

	now := time.Now().UTC().Truncate(time.Second)
	b1 := storeBroadcast(t, bs, "KSEA", "a", "h1", now)
	b2 := storeBroadcast(t, bs, "KLAX", "b", "h2", now)

	_, err := rs.CreateReport(&ReportRecord{
		AirportCode: "KSEA", BroadcastID: b1,
		ParsedArrivals: []string{}, ParsedDepartures: []string{},
		ReportedBy: "computer",
	})
	require.NoError(t, err)
	_, err = rs.CreateReport(&ReportRecord{
		AirportCode: "KLAX", BroadcastID: b2,
		ParsedArrivals: []string{}, ParsedDepartures: []string{},
		ReportedBy: "user",
	})
	require.NoError(t, err)

	// Everything is younger than the cutoff, nothing goes.
	deleted, err := rs.DeleteStaleComputerReports(now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)

	// With a future cutoff only the computer report goes.
	deleted, err = rs.DeleteStaleComputerReports(now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestPatternStorage_RoundTrip(t *testing.T) {
	db := testDB(t)
	ps := NewPatternStorage(db, logger.Nop())
	ctx := context.Background()

	missing, err := ps.LookupPattern(ctx, "KSEA", "KSEA:LANDING RWY")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = ps.UpsertPattern("KSEA", "KSEA:LANDING RWY", []string{"16L"}, []string{"16C"}, 1)
	require.NoError(t, err)

	pc, err := ps.LookupPattern(ctx, "KSEA", "KSEA:LANDING RWY")
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, []string{"16L"}, pc.ExpectedArrivals)
	assert.Equal(t, 1.0, pc.SuccessRate)
	assert.Equal(t, 0, pc.TimesApplied)

	require.NoError(t, ps.IncrementApplied(ctx, pc.ID))
	require.NoError(t, ps.IncrementApplied(ctx, pc.ID))

	pc, err = ps.LookupPattern(ctx, "KSEA", "KSEA:LANDING RWY")
	require.NoError(t, err)
	assert.Equal(t, 2, pc.TimesApplied)

	// A new review for the same phrasing replaces the expected sets.
	err = ps.UpsertPattern("KSEA", "KSEA:LANDING RWY", []string{"16R"}, []string{"16C"}, 2)
	require.NoError(t, err)

	pc, err = ps.LookupPattern(ctx, "KSEA", "KSEA:LANDING RWY")
	require.NoError(t, err)
	assert.Equal(t, []string{"16R"}, pc.ExpectedArrivals)
}
