package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// BroadcastRecord is one captured broadcast snapshot. Every poll
// stores a snapshot for the historical record; IsChanged marks the
// ones whose content differs from the previous snapshot.
type BroadcastRecord struct {
	ID          int64     `json:"id"`
	AirportCode string    `json:"airport_code"`
	CollectedAt time.Time `json:"collected_at"`
	InfoLetter  string    `json:"information_letter,omitempty"`
	RawText     string    `json:"raw_text"`
	ContentHash string    `json:"content_hash"`
	IsChanged   bool      `json:"is_changed"`
}

// ConfigRecord is a stored runway configuration tied to the broadcast
// it was parsed from.
type ConfigRecord struct {
	ID                  int64     `json:"id"`
	AirportCode         string    `json:"airport_code"`
	BroadcastID         int64     `json:"broadcast_id"`
	ArrivingRunways     []string  `json:"arriving_runways"`
	DepartingRunways    []string  `json:"departing_runways"`
	TrafficFlow         string    `json:"traffic_flow"`
	ConfigurationName   string    `json:"configuration_name,omitempty"`
	ConfidenceScore     float64   `json:"confidence_score"`
	SplitKind           string    `json:"split_kind,omitempty"`
	MergedFromPair      bool      `json:"merged_from_pair"`
	ComponentConfidence string    `json:"component_confidence,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// ReportRecord is an error report over a parsed configuration,
// created by the validator or filed by a user, and later resolved by a
// human review or a carried-forward correction.
type ReportRecord struct {
	ID                  int64      `json:"id"`
	PublicID            string     `json:"public_id"`
	AirportCode         string     `json:"airport_code"`
	BroadcastID         int64      `json:"broadcast_id"`
	PairedBroadcastID   *int64     `json:"paired_broadcast_id,omitempty"`
	ParsedArrivals      []string   `json:"parsed_arriving_runways"`
	ParsedDepartures    []string   `json:"parsed_departing_runways"`
	ConfidenceScore     float64    `json:"confidence_score"`
	ReportedBy          string     `json:"reported_by"`
	Notes               string     `json:"notes,omitempty"`
	Reviewed            bool       `json:"reviewed"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	CorrectedArrivals   []string   `json:"corrected_arriving_runways,omitempty"`
	CorrectedDepartures []string   `json:"corrected_departing_runways,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Designator lists live in TEXT columns as JSON arrays.
func marshalRunways(runways []string) (string, error) {
	if runways == nil {
		runways = []string{}
	}
	data, err := json.Marshal(runways)
	if err != nil {
		return "", fmt.Errorf("failed to marshal runway list: %w", err)
	}
	return string(data), nil
}

func unmarshalRunways(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var runways []string
	if err := json.Unmarshal([]byte(data), &runways); err != nil {
		return nil, fmt.Errorf("failed to unmarshal runway list: %w", err)
	}
	return runways, nil
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}

func nullableTime(t sql.NullString) (*time.Time, error) {
	if !t.Valid || t.String == "" {
		return nil, nil
	}
	parsed, err := parseTimestamp(t.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
