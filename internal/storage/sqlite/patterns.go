package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/rwy-watch/internal/corrections"
	"github.com/yegors/rwy-watch/pkg/logger"
)

// PatternStorage handles storage of learned parsing corrections.
// It implements corrections.PatternStore.
type PatternStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewPatternStorage creates a new SQLite pattern correction storage
func NewPatternStorage(db *sql.DB, log *logger.Logger) *PatternStorage {
	storage := &PatternStorage{
		db:     db,
		logger: log.Named("sqlite-patterns"),
	}

	if err := storage.initDB(); err != nil {
		log.Error("Failed to initialize pattern storage", logger.Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *PatternStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS parsing_corrections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airport_code TEXT NOT NULL,
			pattern TEXT NOT NULL,
			correction_type TEXT NOT NULL,
			expected_arriving TEXT NOT NULL,
			expected_departing TEXT NOT NULL,
			success_rate REAL NOT NULL DEFAULT 1.0,
			times_applied INTEGER NOT NULL DEFAULT 0,
			created_from_review_id INTEGER,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (airport_code, pattern)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create parsing_corrections table: %w", err)
	}

	_, err = s.db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_corrections_airport ON parsing_corrections(airport_code)`,
	)
	if err != nil {
		return fmt.Errorf("failed to create correction index: %w", err)
	}

	return nil
}

// LookupPattern returns the correction stored for (airport, pattern),
// or nil when none exists. Implements corrections.PatternStore.
func (s *PatternStorage) LookupPattern(ctx context.Context, airportCode, pattern string) (*corrections.PatternCorrection, error) {
	var pc corrections.PatternCorrection
	var expArr, expDep string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, airport_code, pattern, expected_arriving, expected_departing,
			success_rate, times_applied
		FROM parsing_corrections
		WHERE airport_code = ? AND pattern = ?`,
		airportCode, pattern,
	).Scan(&pc.ID, &pc.AirportCode, &pc.Pattern, &expArr, &expDep, &pc.SuccessRate, &pc.TimesApplied)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query parsing correction: %w", err)
	}

	if pc.ExpectedArrivals, err = unmarshalRunways(expArr); err != nil {
		return nil, err
	}
	if pc.ExpectedDepartures, err = unmarshalRunways(expDep); err != nil {
		return nil, err
	}

	return &pc, nil
}

// IncrementApplied counts one application of a correction. The update
// is a single statement so concurrent parses never lose counts.
// Implements corrections.PatternStore.
func (s *PatternStorage) IncrementApplied(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE parsing_corrections
		SET times_applied = times_applied + 1
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment times_applied: %w", err)
	}
	return nil
}

// UpsertPattern stores a correction learned from a human review,
// resetting the success rate: a fresh review supersedes whatever was
// learned before for the same phrasing.
func (s *PatternStorage) UpsertPattern(airportCode, pattern string, expectedArrivals, expectedDepartures []string, fromReviewID int64) error {
	arr, err := marshalRunways(expectedArrivals)
	if err != nil {
		return err
	}
	dep, err := marshalRunways(expectedDepartures)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO parsing_corrections
		(airport_code, pattern, correction_type, expected_arriving, expected_departing,
		 success_rate, times_applied, created_from_review_id, created_at)
		VALUES (?, ?, 'human_review', ?, ?, 1.0, 0, ?, ?)
		ON CONFLICT (airport_code, pattern) DO UPDATE SET
			expected_arriving = excluded.expected_arriving,
			expected_departing = excluded.expected_departing,
			created_from_review_id = excluded.created_from_review_id,
			success_rate = 1.0`,
		airportCode,
		pattern,
		arr,
		dep,
		fromReviewID,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert parsing correction: %w", err)
	}

	return nil
}
