package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/rwy-watch/internal/corrections"
	"github.com/yegors/rwy-watch/internal/runway"
	"github.com/yegors/rwy-watch/internal/storage/sqlite"
	"github.com/yegors/rwy-watch/pkg/logger"
)

const (
	// latestWindow bounds how stale a configuration may be and still
	// count as current.
	latestWindow = 6 * time.Hour

	historyDefaultHours = 24
	historyMaxHours     = 168
	historyLimit        = 500
	pendingReviewLimit  = 50
)

var airportCodeRe = regexp.MustCompile(`^[A-Z0-9]{3,4}$`)

// CollectorStatus exposes the outcome of the most recent collection
// pass.
type CollectorStatus interface {
	Status() (time.Time, error)
}

// Handler contains the API request handlers
type Handler struct {
	configs    *sqlite.ConfigStorage
	broadcasts *sqlite.BroadcastStorage
	reports    *sqlite.ReportStorage
	patterns   *sqlite.PatternStorage
	collector  CollectorStatus
	pairWindow time.Duration
	started    time.Time
	logger     *logger.Logger
}

// NewHandler creates a new API handler. pairWindow bounds read-time
// merging of split arrival/departure halves.
func NewHandler(
	configs *sqlite.ConfigStorage,
	broadcasts *sqlite.BroadcastStorage,
	reports *sqlite.ReportStorage,
	patterns *sqlite.PatternStorage,
	collector CollectorStatus,
	pairWindow time.Duration,
	log *logger.Logger,
) *Handler {
	return &Handler{
		configs:    configs,
		broadcasts: broadcasts,
		reports:    reports,
		patterns:   patterns,
		collector:  collector,
		pairWindow: pairWindow,
		started:    time.Now().UTC(),
		logger:     log.Named("api-handler"),
	}
}

// GetAllRunwayConfigs returns the current configuration of every
// airport seen recently.
func (h *Handler) GetAllRunwayConfigs(w http.ResponseWriter, r *http.Request) {
	records, err := h.configs.LatestPerAirport(time.Now().UTC().Add(-latestWindow))
	if err != nil {
		h.logger.Error("failed to load runway configs", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load runway configurations")
		return
	}

	out := make([]*ConfigResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, h.currentView(rec))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetRunwayConfigByAirport returns one airport's current configuration.
func (h *Handler) GetRunwayConfigByAirport(w http.ResponseWriter, r *http.Request) {
	code, ok := h.airportParam(w, r)
	if !ok {
		return
	}

	rec, err := h.configs.LatestForAirport(code)
	if err != nil {
		h.logger.Error("failed to load runway config",
			logger.String("airport", code), logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load runway configuration")
		return
	}
	if rec == nil || time.Since(rec.CreatedAt) > latestWindow {
		h.respondError(w, http.StatusNotFound, "no current configuration for "+code)
		return
	}

	h.respondJSON(w, http.StatusOK, h.currentView(rec))
}

// GetRunwayConfigHistory returns an airport's configuration history.
func (h *Handler) GetRunwayConfigHistory(w http.ResponseWriter, r *http.Request) {
	code, ok := h.airportParam(w, r)
	if !ok {
		return
	}

	hours := historyDefaultHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > historyMaxHours {
			h.respondError(w, http.StatusBadRequest, "hours must be between 1 and 168")
			return
		}
		hours = parsed
	}

	records, err := h.configs.History(code, time.Now().UTC().Add(-time.Duration(hours)*time.Hour), historyLimit)
	if err != nil {
		h.logger.Error("failed to load config history",
			logger.String("airport", code), logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load configuration history")
		return
	}

	out := make([]*ConfigResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, configResponseFrom(rec))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetPendingReviews returns flagged parses awaiting human review,
// oldest first.
func (h *Handler) GetPendingReviews(w http.ResponseWriter, r *http.Request) {
	records, err := h.reports.PendingReports(pendingReviewLimit)
	if err != nil {
		h.logger.Error("failed to load pending reviews", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load pending reviews")
		return
	}

	out := make([]*ReviewResponse, 0, len(records))
	for _, rec := range records {
		resp := &ReviewResponse{
			ID:               rec.PublicID,
			AirportCode:      rec.AirportCode,
			ParsedArrivals:   rec.ParsedArrivals,
			ParsedDepartures: rec.ParsedDepartures,
			ConfidenceScore:  rec.ConfidenceScore,
			Notes:            rec.Notes,
			CreatedAt:        rec.CreatedAt,
		}
		if b, err := h.broadcasts.GetBroadcast(rec.BroadcastID); err == nil && b != nil {
			resp.BroadcastText = b.RawText
		}
		out = append(out, resp)
	}
	h.respondJSON(w, http.StatusOK, out)
}

// SubmitReview records a human review of a flagged parse. When the
// reviewed sets differ from what the parser extracted, the phrasing is
// learned so equivalent future broadcasts parse correctly without
// another review.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	correctedArr, ok := normalizeRunwayList(req.CorrectedArrivals)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid arriving runway designator")
		return
	}
	correctedDep, ok := normalizeRunwayList(req.CorrectedDepartures)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid departing runway designator")
		return
	}
	// A configuration with both ends of a strip active cannot be
	// right; rejecting it here keeps carry-forward from learning it.
	if runway.HasReciprocalPair(append(append([]string{}, correctedArr...), correctedDep...)) {
		h.respondError(w, http.StatusBadRequest, "corrected runways contain reciprocal pairs")
		return
	}

	report, err := h.reports.GetReportByPublicID(publicID)
	if err != nil {
		h.logger.Error("failed to load report", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		h.respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if report.Reviewed {
		h.respondError(w, http.StatusConflict, "report already reviewed")
		return
	}

	if err := h.reports.SubmitReview(publicID, correctedArr, correctedDep, req.Notes); err != nil {
		h.logger.Error("failed to submit review", logger.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to submit review")
		return
	}

	// Learn the phrasing only from actual corrections; a review that
	// confirms the parse teaches nothing new.
	isCorrection := !sameDesignators(report.ParsedArrivals, correctedArr) ||
		!sameDesignators(report.ParsedDepartures, correctedDep)
	if isCorrection {
		h.learnPattern(report, correctedArr, correctedDep)
	}

	h.logger.Info("review submitted",
		logger.String("report_id", publicID),
		logger.String("airport", report.AirportCode),
		logger.Bool("correction", isCorrection))

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "reviewed",
		"correction": isCorrection,
	})
}

// GetHealth handles the health check endpoint
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus reports collection and review backlog details.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := &StatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	if h.collector != nil {
		lastRun, lastErr := h.collector.Status()
		if !lastRun.IsZero() {
			resp.LastCollection = &lastRun
		}
		if lastErr != nil {
			resp.Status = "degraded"
			resp.LastCollectionError = lastErr.Error()
		}
	}

	if count, err := h.broadcasts.CountRecent(time.Now().UTC().Add(-time.Hour)); err == nil {
		resp.BroadcastsLastHour = count
	}
	if count, err := h.reports.CountPending(); err == nil {
		resp.PendingReviews = count
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// currentView presents a stored row as the airport's current status.
// A split half whose counterpart is available inside the pair window
// is merged at read time.
func (h *Handler) currentView(rec *sqlite.ConfigRecord) *ConfigResponse {
	if rec.SplitKind == "" {
		return configResponseFrom(rec)
	}

	halves, err := h.configs.LatestHalvesForAirport(rec.AirportCode, time.Now().UTC().Add(-h.pairWindow))
	if err != nil {
		h.logger.Warn("failed to load split halves",
			logger.String("airport", rec.AirportCode), logger.Error(err))
		return configResponseFrom(rec)
	}
	arrRec := halves[string(runway.ArrivalHalf)]
	depRec := halves[string(runway.DepartureHalf)]
	if arrRec == nil || depRec == nil {
		return configResponseFrom(rec)
	}

	merged := runway.MergePair(
		h.configurationFromRecord(arrRec),
		h.configurationFromRecord(depRec),
		"broadcast_"+strconv.FormatInt(arrRec.BroadcastID, 10),
		"broadcast_"+strconv.FormatInt(depRec.BroadcastID, 10))
	return configResponseFromParsed(merged)
}

func (h *Handler) configurationFromRecord(rec *sqlite.ConfigRecord) *runway.Configuration {
	cfg := &runway.Configuration{
		AirportCode:       rec.AirportCode,
		Timestamp:         rec.CreatedAt,
		ArrivingRunways:   rec.ArrivingRunways,
		DepartingRunways:  rec.DepartingRunways,
		TrafficFlow:       runway.Flow(rec.TrafficFlow),
		ConfigurationName: rec.ConfigurationName,
		ConfidenceScore:   rec.ConfidenceScore,
	}
	if b, err := h.broadcasts.GetBroadcast(rec.BroadcastID); err == nil && b != nil {
		cfg.InformationLetter = b.InfoLetter
		cfg.RawText = b.RawText
	}
	return cfg
}

// learnPattern stores the phrase signature of the misparsed broadcast
// with the reviewed sets.
func (h *Handler) learnPattern(report *sqlite.ReportRecord, correctedArr, correctedDep []string) {
	b, err := h.broadcasts.GetBroadcast(report.BroadcastID)
	if err != nil || b == nil {
		h.logger.Warn("cannot learn pattern without broadcast text",
			logger.Int64("broadcast_id", report.BroadcastID), logger.Error(err))
		return
	}

	key := corrections.PatternKey(report.AirportCode, b.RawText)
	if err := h.patterns.UpsertPattern(report.AirportCode, key, correctedArr, correctedDep, report.ID); err != nil {
		h.logger.Error("failed to store parsing correction",
			logger.String("airport", report.AirportCode), logger.Error(err))
		return
	}

	h.logger.Info("learned parsing correction",
		logger.String("airport", report.AirportCode),
		logger.Int64("from_review", report.ID))
}

func (h *Handler) airportParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := strings.ToUpper(chi.URLParam(r, "airport"))
	if !airportCodeRe.MatchString(code) {
		h.respondError(w, http.StatusBadRequest, "invalid airport code")
		return "", false
	}
	return code, true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", logger.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, errorResponse{Error: msg})
}

var reviewDesignatorRe = regexp.MustCompile(`^(0?[1-9]|[12][0-9]|3[0-6])[LCR]?$`)

// normalizeRunwayList uppercases, trims, deduplicates, and sorts a
// reviewed designator list. ok is false when any entry is not a
// runway designator.
func normalizeRunwayList(in []string) ([]string, bool) {
	seen := map[string]struct{}{}
	for _, d := range in {
		d = strings.ToUpper(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if !reviewDesignatorRe.MatchString(d) {
			return nil, false
		}
		seen[strings.TrimPrefix(d, "0")] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, true
}

// sameDesignators compares two designator lists as unordered sets.
func sameDesignators(a, b []string) bool {
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
