package api

import (
	"encoding/json"
	"time"

	"github.com/yegors/rwy-watch/internal/runway"
	"github.com/yegors/rwy-watch/internal/storage/sqlite"
)

// ConfigResponse is the wire form of a runway configuration.
type ConfigResponse struct {
	AirportCode         string                      `json:"airport_code"`
	InformationLetter   string                      `json:"information_letter,omitempty"`
	ArrivingRunways     []string                    `json:"arriving_runways"`
	DepartingRunways    []string                    `json:"departing_runways"`
	TrafficFlow         string                      `json:"traffic_flow"`
	ConfigurationName   string                      `json:"configuration_name,omitempty"`
	ConfidenceScore     float64                     `json:"confidence_score"`
	MergedFromPair      bool                        `json:"merged_from_pair,omitempty"`
	ComponentConfidence *runway.ComponentConfidence `json:"component_confidence,omitempty"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// ReviewResponse is one pending error report awaiting human review.
type ReviewResponse struct {
	ID               string    `json:"id"`
	AirportCode      string    `json:"airport_code"`
	BroadcastText    string    `json:"broadcast_text,omitempty"`
	ParsedArrivals   []string  `json:"parsed_arriving"`
	ParsedDepartures []string  `json:"parsed_departing"`
	ConfidenceScore  float64   `json:"confidence_score"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReviewRequest carries a human review of a flagged parse.
type ReviewRequest struct {
	CorrectedArrivals   []string `json:"corrected_arriving"`
	CorrectedDepartures []string `json:"corrected_departing"`
	Notes               string   `json:"notes"`
}

// StatusResponse reports service health details.
type StatusResponse struct {
	Status              string     `json:"status"`
	UptimeSeconds       int64      `json:"uptime_seconds"`
	LastCollection      *time.Time `json:"last_collection,omitempty"`
	LastCollectionError string     `json:"last_collection_error,omitempty"`
	BroadcastsLastHour  int        `json:"broadcasts_last_hour"`
	PendingReviews      int        `json:"pending_reviews"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// configResponseFrom maps a stored row onto its wire form.
func configResponseFrom(rec *sqlite.ConfigRecord) *ConfigResponse {
	resp := &ConfigResponse{
		AirportCode:       rec.AirportCode,
		ArrivingRunways:   rec.ArrivingRunways,
		DepartingRunways:  rec.DepartingRunways,
		TrafficFlow:       rec.TrafficFlow,
		ConfigurationName: rec.ConfigurationName,
		ConfidenceScore:   rec.ConfidenceScore,
		MergedFromPair:    rec.MergedFromPair,
		UpdatedAt:         rec.CreatedAt,
	}
	if rec.ComponentConfidence != "" {
		var cc runway.ComponentConfidence
		if err := json.Unmarshal([]byte(rec.ComponentConfidence), &cc); err == nil {
			resp.ComponentConfidence = &cc
		}
	}
	return resp
}

// configResponseFromParsed maps an in-memory configuration (a read-time
// split merge) onto its wire form.
func configResponseFromParsed(cfg *runway.Configuration) *ConfigResponse {
	return &ConfigResponse{
		AirportCode:         cfg.AirportCode,
		InformationLetter:   cfg.InformationLetter,
		ArrivingRunways:     cfg.ArrivingRunways,
		DepartingRunways:    cfg.DepartingRunways,
		TrafficFlow:         string(cfg.TrafficFlow),
		ConfigurationName:   cfg.ConfigurationName,
		ConfidenceScore:     cfg.ConfidenceScore,
		MergedFromPair:      cfg.MergedFromPair,
		ComponentConfidence: cfg.ComponentConfidence,
		UpdatedAt:           cfg.Timestamp,
	}
}
