package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/rwy-watch/pkg/logger"
)

// BroadcastStorage handles storage of broadcast snapshots
type BroadcastStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewBroadcastStorage creates a new SQLite broadcast storage
func NewBroadcastStorage(db *sql.DB, log *logger.Logger) *BroadcastStorage {
	storage := &BroadcastStorage{
		db:     db,
		logger: log.Named("sqlite-broadcasts"),
	}

	if err := storage.initDB(); err != nil {
		log.Error("Failed to initialize broadcast storage", logger.Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *BroadcastStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS broadcasts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airport_code TEXT NOT NULL,
			collected_at TIMESTAMP NOT NULL,
			information_letter TEXT,
			raw_text TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			is_changed BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create broadcasts table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_broadcasts_airport ON broadcasts(airport_code)`,
		`CREATE INDEX IF NOT EXISTS idx_broadcasts_collected_at ON broadcasts(collected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_broadcasts_airport_collected ON broadcasts(airport_code, collected_at DESC)`,
	}

	for _, indexSQL := range indexes {
		if _, err = s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create broadcast index: %w", err)
		}
	}

	return nil
}

// StoreBroadcast stores a broadcast snapshot
func (s *BroadcastStorage) StoreBroadcast(record *BroadcastRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO broadcasts
		(airport_code, collected_at, information_letter, raw_text, content_hash, is_changed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.AirportCode,
		record.CollectedAt.Format(time.RFC3339),
		record.InfoLetter,
		record.RawText,
		record.ContentHash,
		record.IsChanged,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert broadcast: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// LatestContentHash returns the content hash of the most recent
// snapshot for an airport, or "" when none exists.
func (s *BroadcastStorage) LatestContentHash(airportCode string) (string, error) {
	var hash string
	err := s.db.QueryRow(
		`SELECT content_hash
		FROM broadcasts
		WHERE airport_code = ?
		ORDER BY collected_at DESC, id DESC
		LIMIT 1`,
		airportCode,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest content hash: %w", err)
	}

	return hash, nil
}

// FindPairedBroadcast finds the counterpart half of a split broadcast:
// the snapshot for the same airport whose text carries the opposite
// header, collected within the window around the given broadcast and
// closest to it in time. Returns (0, nil) when no pair exists.
func (s *BroadcastStorage) FindPairedBroadcast(airportCode string, broadcastID int64, counterpartHeader string, window time.Duration) (int64, error) {
	var collectedAt string
	err := s.db.QueryRow(
		`SELECT collected_at FROM broadcasts WHERE id = ?`, broadcastID,
	).Scan(&collectedAt)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query broadcast: %w", err)
	}

	anchor, err := parseTimestamp(collectedAt)
	if err != nil {
		return 0, err
	}

	rows, err := s.db.Query(
		`SELECT id, collected_at
		FROM broadcasts
		WHERE airport_code = ?
		  AND id != ?
		  AND collected_at BETWEEN ? AND ?
		  AND UPPER(raw_text) LIKE ?`,
		airportCode,
		broadcastID,
		anchor.Add(-window).Format(time.RFC3339),
		anchor.Add(window).Format(time.RFC3339),
		"%"+counterpartHeader+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query paired broadcast: %w", err)
	}
	defer rows.Close()

	var bestID int64
	var bestDelta time.Duration
	for rows.Next() {
		var id int64
		var ts string
		if err := rows.Scan(&id, &ts); err != nil {
			return 0, fmt.Errorf("failed to scan paired broadcast: %w", err)
		}
		collected, err := parseTimestamp(ts)
		if err != nil {
			return 0, err
		}
		delta := anchor.Sub(collected)
		if delta < 0 {
			delta = -delta
		}
		if bestID == 0 || delta < bestDelta {
			bestID = id
			bestDelta = delta
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate paired broadcasts: %w", err)
	}

	return bestID, nil
}

// GetBroadcast returns one broadcast by ID
func (s *BroadcastStorage) GetBroadcast(id int64) (*BroadcastRecord, error) {
	var record BroadcastRecord
	var collectedAt string
	var infoLetter sql.NullString

	err := s.db.QueryRow(
		`SELECT id, airport_code, collected_at, information_letter, raw_text, content_hash, is_changed
		FROM broadcasts
		WHERE id = ?`,
		id,
	).Scan(
		&record.ID,
		&record.AirportCode,
		&collectedAt,
		&infoLetter,
		&record.RawText,
		&record.ContentHash,
		&record.IsChanged,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query broadcast: %w", err)
	}

	record.CollectedAt, err = parseTimestamp(collectedAt)
	if err != nil {
		return nil, err
	}
	if infoLetter.Valid {
		record.InfoLetter = infoLetter.String
	}

	return &record, nil
}

// CountRecent returns the number of snapshots collected since the
// given time, for the status endpoint.
func (s *BroadcastStorage) CountRecent(since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM broadcasts WHERE collected_at > ?`,
		since.Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent broadcasts: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes snapshots collected before the cutoff and
// returns the number deleted.
func (s *BroadcastStorage) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM broadcasts WHERE collected_at < ?`,
		cutoff.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old broadcasts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted row count: %w", err)
	}

	return deleted, nil
}
