package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yegors/rwy-watch/internal/corrections"
	"github.com/yegors/rwy-watch/pkg/logger"
)

// ReportStorage handles storage of error reports and their reviews.
// It implements corrections.ReviewStore.
type ReportStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewReportStorage creates a new SQLite error report storage
func NewReportStorage(db *sql.DB, log *logger.Logger) *ReportStorage {
	storage := &ReportStorage{
		db:     db,
		logger: log.Named("sqlite-reports"),
	}

	if err := storage.initDB(); err != nil {
		log.Error("Failed to initialize report storage", logger.Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *ReportStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS error_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			public_id TEXT NOT NULL UNIQUE,
			airport_code TEXT NOT NULL,
			broadcast_id INTEGER NOT NULL,
			paired_broadcast_id INTEGER,
			parsed_arriving_runways TEXT NOT NULL,
			parsed_departing_runways TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			reported_by TEXT NOT NULL,
			notes TEXT,
			reviewed BOOLEAN NOT NULL DEFAULT FALSE,
			reviewed_at TIMESTAMP,
			corrected_arriving_runways TEXT,
			corrected_departing_runways TEXT,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (airport_code, broadcast_id),
			FOREIGN KEY (broadcast_id) REFERENCES broadcasts(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create error_reports table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_reports_airport ON error_reports(airport_code)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_reviewed ON error_reports(reviewed)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_reviewed_at ON error_reports(airport_code, reviewed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON error_reports(created_at)`,
	}

	for _, indexSQL := range indexes {
		if _, err = s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create report index: %w", err)
		}
	}

	return nil
}

// CreateReport files a report. A report already filed for the same
// (airport, broadcast) is left untouched. Returns whether a row was
// inserted.
func (s *ReportStorage) CreateReport(record *ReportRecord) (bool, error) {
	parsedArr, err := marshalRunways(record.ParsedArrivals)
	if err != nil {
		return false, err
	}
	parsedDep, err := marshalRunways(record.ParsedDepartures)
	if err != nil {
		return false, err
	}

	var reviewedAt, correctedArr, correctedDep interface{}
	if record.Reviewed {
		// Carried-forward reports arrive pre-reviewed.
		now := time.Now().UTC()
		if record.ReviewedAt != nil {
			now = *record.ReviewedAt
		}
		reviewedAt = now.Format(time.RFC3339)
		if correctedArr, err = marshalRunways(record.CorrectedArrivals); err != nil {
			return false, err
		}
		if correctedDep, err = marshalRunways(record.CorrectedDepartures); err != nil {
			return false, err
		}
	}

	result, err := s.db.Exec(
		`INSERT INTO error_reports
		(public_id, airport_code, broadcast_id, paired_broadcast_id,
		 parsed_arriving_runways, parsed_departing_runways, confidence_score,
		 reported_by, notes, reviewed, reviewed_at,
		 corrected_arriving_runways, corrected_departing_runways, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (airport_code, broadcast_id) DO NOTHING`,
		uuid.NewString(),
		record.AirportCode,
		record.BroadcastID,
		record.PairedBroadcastID,
		parsedArr,
		parsedDep,
		record.ConfidenceScore,
		record.ReportedBy,
		record.Notes,
		record.Reviewed,
		reviewedAt,
		correctedArr,
		correctedDep,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert error report: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get inserted row count: %w", err)
	}

	return inserted > 0, nil
}

// PendingReports returns unreviewed reports, oldest first.
func (s *ReportStorage) PendingReports(limit int) ([]*ReportRecord, error) {
	rows, err := s.db.Query(
		reportSelect+`
		WHERE reviewed = FALSE
		ORDER BY created_at ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending reports: %w", err)
	}
	defer rows.Close()

	return s.scanReportRows(rows)
}

// GetReportByPublicID returns one report, or nil when unknown.
func (s *ReportStorage) GetReportByPublicID(publicID string) (*ReportRecord, error) {
	rows, err := s.db.Query(reportSelect+` WHERE public_id = ?`, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	defer rows.Close()

	records, err := s.scanReportRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// SubmitReview marks a report reviewed with the corrected sets.
func (s *ReportStorage) SubmitReview(publicID string, correctedArrivals, correctedDepartures []string, notes string) error {
	arr, err := marshalRunways(correctedArrivals)
	if err != nil {
		return err
	}
	dep, err := marshalRunways(correctedDepartures)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(
		`UPDATE error_reports
		SET reviewed = TRUE,
			reviewed_at = ?,
			corrected_arriving_runways = ?,
			corrected_departing_runways = ?,
			notes = CASE WHEN ? = '' THEN notes ELSE ? END
		WHERE public_id = ?`,
		time.Now().UTC().Format(time.RFC3339),
		arr,
		dep,
		notes,
		notes,
		publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to submit review: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated row count: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("report %s not found", publicID)
	}

	return nil
}

// RecentCorrections returns reviewed corrections for an airport since
// the given time, newest review first. Implements
// corrections.ReviewStore.
func (s *ReportStorage) RecentCorrections(ctx context.Context, airportCode string, since time.Time, limit int) ([]corrections.ReviewedCorrection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parsed_arriving_runways, parsed_departing_runways,
			corrected_arriving_runways, corrected_departing_runways
		FROM error_reports
		WHERE airport_code = ?
		  AND reviewed = TRUE
		  AND reviewed_at > ?
		  AND corrected_arriving_runways IS NOT NULL
		ORDER BY reviewed_at DESC
		LIMIT ?`,
		airportCode,
		since.Format(time.RFC3339),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviewed corrections: %w", err)
	}
	defer rows.Close()

	var out []corrections.ReviewedCorrection
	for rows.Next() {
		var rc corrections.ReviewedCorrection
		var parsedArr, parsedDep string
		var corrArr, corrDep sql.NullString

		if err := rows.Scan(&rc.ReportID, &parsedArr, &parsedDep, &corrArr, &corrDep); err != nil {
			return nil, fmt.Errorf("failed to scan reviewed correction: %w", err)
		}

		if rc.ParsedArrivals, err = unmarshalRunways(parsedArr); err != nil {
			return nil, err
		}
		if rc.ParsedDepartures, err = unmarshalRunways(parsedDep); err != nil {
			return nil, err
		}
		if rc.CorrectedArrivals, err = unmarshalRunways(corrArr.String); err != nil {
			return nil, err
		}
		if rc.CorrectedDepartures, err = unmarshalRunways(corrDep.String); err != nil {
			return nil, err
		}

		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviewed corrections: %w", err)
	}

	return out, nil
}

// CountPending returns the number of unreviewed reports.
func (s *ReportStorage) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM error_reports WHERE reviewed = FALSE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending reports: %w", err)
	}
	return count, nil
}

// DeleteStaleComputerReports removes unreviewed computer-filed reports
// older than the cutoff. Reviewed reports and user-filed reports are
// never deleted.
func (s *ReportStorage) DeleteStaleComputerReports(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM error_reports
		WHERE reported_by = 'computer'
		  AND reviewed = FALSE
		  AND created_at < ?`,
		cutoff.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale reports: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted row count: %w", err)
	}

	return deleted, nil
}

const reportSelect = `SELECT id, public_id, airport_code, broadcast_id, paired_broadcast_id,
		parsed_arriving_runways, parsed_departing_runways, confidence_score,
		reported_by, notes, reviewed, reviewed_at,
		corrected_arriving_runways, corrected_departing_runways, created_at
		FROM error_reports`

// scanReportRows scans database rows into ReportRecord structs
func (s *ReportStorage) scanReportRows(rows *sql.Rows) ([]*ReportRecord, error) {
	var records []*ReportRecord
	for rows.Next() {
		var record ReportRecord
		var parsedArr, parsedDep, createdAt string
		var pairedID sql.NullInt64
		var notes, reviewedAt, corrArr, corrDep sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.PublicID,
			&record.AirportCode,
			&record.BroadcastID,
			&pairedID,
			&parsedArr,
			&parsedDep,
			&record.ConfidenceScore,
			&record.ReportedBy,
			&notes,
			&record.Reviewed,
			&reviewedAt,
			&corrArr,
			&corrDep,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan error report: %w", err)
		}

		var err error
		if record.ParsedArrivals, err = unmarshalRunways(parsedArr); err != nil {
			return nil, err
		}
		if record.ParsedDepartures, err = unmarshalRunways(parsedDep); err != nil {
			return nil, err
		}
		if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if record.ReviewedAt, err = nullableTime(reviewedAt); err != nil {
			return nil, err
		}
		if pairedID.Valid {
			record.PairedBroadcastID = &pairedID.Int64
		}
		if notes.Valid {
			record.Notes = notes.String
		}
		if corrArr.Valid {
			if record.CorrectedArrivals, err = unmarshalRunways(corrArr.String); err != nil {
				return nil, err
			}
		}
		if corrDep.Valid {
			if record.CorrectedDepartures, err = unmarshalRunways(corrDep.String); err != nil {
				return nil, err
			}
		}

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate error reports: %w", err)
	}

	return records, nil
}
