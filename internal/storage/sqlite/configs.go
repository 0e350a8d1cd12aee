package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/rwy-watch/pkg/logger"
)

// ConfigStorage handles storage of parsed runway configurations
type ConfigStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewConfigStorage creates a new SQLite runway configuration storage
func NewConfigStorage(db *sql.DB, log *logger.Logger) *ConfigStorage {
	storage := &ConfigStorage{
		db:     db,
		logger: log.Named("sqlite-configs"),
	}

	if err := storage.initDB(); err != nil {
		log.Error("Failed to initialize config storage", logger.Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *ConfigStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runway_configs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airport_code TEXT NOT NULL,
			broadcast_id INTEGER NOT NULL,
			arriving_runways TEXT NOT NULL,
			departing_runways TEXT NOT NULL,
			traffic_flow TEXT NOT NULL,
			configuration_name TEXT,
			confidence_score REAL NOT NULL,
			split_kind TEXT NOT NULL DEFAULT '',
			merged_from_pair BOOLEAN NOT NULL DEFAULT FALSE,
			component_confidence TEXT,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (airport_code, broadcast_id),
			FOREIGN KEY (broadcast_id) REFERENCES broadcasts(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runway_configs table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_configs_airport ON runway_configs(airport_code)`,
		`CREATE INDEX IF NOT EXISTS idx_configs_created_at ON runway_configs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_configs_airport_created ON runway_configs(airport_code, created_at DESC)`,
	}

	for _, indexSQL := range indexes {
		if _, err = s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create config index: %w", err)
		}
	}

	return nil
}

// UpsertConfig stores a configuration, replacing any earlier one for
// the same (airport, broadcast). Merged pairs re-use the arrival
// half's broadcast ID, so re-merging an unchanged pair overwrites in
// place instead of duplicating.
func (s *ConfigStorage) UpsertConfig(record *ConfigRecord) (int64, error) {
	arriving, err := marshalRunways(record.ArrivingRunways)
	if err != nil {
		return 0, err
	}
	departing, err := marshalRunways(record.DepartingRunways)
	if err != nil {
		return 0, err
	}

	result, err := s.db.Exec(
		`INSERT INTO runway_configs
		(airport_code, broadcast_id, arriving_runways, departing_runways,
		 traffic_flow, configuration_name, confidence_score, split_kind,
		 merged_from_pair, component_confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (airport_code, broadcast_id) DO UPDATE SET
			arriving_runways = excluded.arriving_runways,
			departing_runways = excluded.departing_runways,
			traffic_flow = excluded.traffic_flow,
			configuration_name = excluded.configuration_name,
			confidence_score = excluded.confidence_score,
			split_kind = excluded.split_kind,
			merged_from_pair = excluded.merged_from_pair,
			component_confidence = excluded.component_confidence,
			created_at = excluded.created_at`,
		record.AirportCode,
		record.BroadcastID,
		arriving,
		departing,
		record.TrafficFlow,
		record.ConfigurationName,
		record.ConfidenceScore,
		record.SplitKind,
		record.MergedFromPair,
		record.ComponentConfidence,
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert runway config: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// LatestForAirport returns the most recent configuration for an
// airport, or nil when none exists. A merged configuration outranks a
// split half stored in the same second (split_kind '' sorts first).
func (s *ConfigStorage) LatestForAirport(airportCode string) (*ConfigRecord, error) {
	rows, err := s.db.Query(
		configSelect+`
		WHERE airport_code = ?
		ORDER BY created_at DESC, split_kind ASC, id DESC
		LIMIT 1`,
		airportCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest config: %w", err)
	}
	defer rows.Close()

	records, err := s.scanConfigRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// LatestHalvesForAirport returns the most recent configuration of each
// split kind for an airport since the cutoff, keyed by split_kind.
// Current-status pairing works off this map.
func (s *ConfigStorage) LatestHalvesForAirport(airportCode string, since time.Time) (map[string]*ConfigRecord, error) {
	rows, err := s.db.Query(
		configSelect+`
		WHERE airport_code = ?
		  AND created_at > ?
		ORDER BY created_at DESC, id DESC`,
		airportCode,
		since.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query config halves: %w", err)
	}
	defer rows.Close()

	records, err := s.scanConfigRows(rows)
	if err != nil {
		return nil, err
	}

	out := map[string]*ConfigRecord{}
	for _, record := range records {
		if _, seen := out[record.SplitKind]; !seen {
			out[record.SplitKind] = record
		}
	}
	return out, nil
}

// LatestPerAirport returns the most recent configuration for every
// airport with one since the cutoff.
func (s *ConfigStorage) LatestPerAirport(since time.Time) ([]*ConfigRecord, error) {
	rows, err := s.db.Query(
		configSelect+`
		WHERE created_at > ?
		ORDER BY airport_code ASC, created_at DESC, split_kind ASC, id DESC`,
		since.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest configs: %w", err)
	}
	defer rows.Close()

	records, err := s.scanConfigRows(rows)
	if err != nil {
		return nil, err
	}

	var out []*ConfigRecord
	seen := map[string]struct{}{}
	for _, record := range records {
		if _, dup := seen[record.AirportCode]; dup {
			continue
		}
		seen[record.AirportCode] = struct{}{}
		out = append(out, record)
	}
	return out, nil
}

// History returns an airport's configurations since the cutoff, newest
// first.
func (s *ConfigStorage) History(airportCode string, since time.Time, limit int) ([]*ConfigRecord, error) {
	rows, err := s.db.Query(
		configSelect+`
		WHERE airport_code = ?
		  AND created_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		airportCode,
		since.Format(time.RFC3339),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query config history: %w", err)
	}
	defer rows.Close()

	return s.scanConfigRows(rows)
}

const configSelect = `SELECT id, airport_code, broadcast_id, arriving_runways, departing_runways,
		traffic_flow, configuration_name, confidence_score, split_kind,
		merged_from_pair, component_confidence, created_at
		FROM runway_configs`

// scanConfigRows scans database rows into ConfigRecord structs
func (s *ConfigStorage) scanConfigRows(rows *sql.Rows) ([]*ConfigRecord, error) {
	var records []*ConfigRecord
	for rows.Next() {
		var record ConfigRecord
		var arriving, departing, createdAt string
		var configName, componentConf sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.AirportCode,
			&record.BroadcastID,
			&arriving,
			&departing,
			&record.TrafficFlow,
			&configName,
			&record.ConfidenceScore,
			&record.SplitKind,
			&record.MergedFromPair,
			&componentConf,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan runway config: %w", err)
		}

		var err error
		record.ArrivingRunways, err = unmarshalRunways(arriving)
		if err != nil {
			return nil, err
		}
		record.DepartingRunways, err = unmarshalRunways(departing)
		if err != nil {
			return nil, err
		}
		record.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		if configName.Valid {
			record.ConfigurationName = configName.String
		}
		if componentConf.Valid {
			record.ComponentConfidence = componentConf.String
		}

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runway configs: %w", err)
	}

	return records, nil
}
