package collector

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yegors/rwy-watch/internal/config"
	"github.com/yegors/rwy-watch/internal/corrections"
	"github.com/yegors/rwy-watch/internal/runway"
	"github.com/yegors/rwy-watch/internal/storage/sqlite"
	"github.com/yegors/rwy-watch/pkg/logger"
)

const hashCacheSize = 2048

// Service polls the broadcast feed, stores snapshots, parses changed
// broadcasts into runway configurations, files error reports for
// suspect parses, and merges split arrival/departure pairs.
type Service struct {
	feed       Feed
	parser     *runway.Parser
	matcher    *corrections.Matcher
	broadcasts *sqlite.BroadcastStorage
	configs    *sqlite.ConfigStorage
	reports    *sqlite.ReportStorage
	logger     *logger.Logger

	interval     time.Duration
	parallelism  int
	retention    time.Duration
	staleReports time.Duration
	pairWindow   time.Duration

	// hashCache avoids a DB round-trip per airport per poll; keys are
	// airport|type so split halves don't evict each other.
	hashCache *lru.Cache[string, string]

	mu      sync.Mutex
	lastRun time.Time
	lastErr error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// snapshot is one stored broadcast awaiting parsing.
type snapshot struct {
	entry       FeedEntry
	broadcastID int64
	infoLetter  string
}

// parsedSnapshot pairs a snapshot with its parse result.
type parsedSnapshot struct {
	snap  *snapshot
	cfg   *runway.Configuration
	split runway.SplitKind
}

// NewService creates a collection service over the given feed, parser,
// and storage layers.
func NewService(
	cfg config.CollectorConfig,
	feed Feed,
	parser *runway.Parser,
	matcher *corrections.Matcher,
	broadcasts *sqlite.BroadcastStorage,
	configs *sqlite.ConfigStorage,
	reports *sqlite.ReportStorage,
	log *logger.Logger,
) *Service {
	cache, _ := lru.New[string, string](hashCacheSize)
	return &Service{
		feed:         feed,
		parser:       parser,
		matcher:      matcher,
		broadcasts:   broadcasts,
		configs:      configs,
		reports:      reports,
		logger:       log.Named("collector"),
		interval:     time.Duration(cfg.IntervalSeconds) * time.Second,
		parallelism:  cfg.ParseParallelism,
		retention:    time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		staleReports: time.Duration(cfg.StaleReportHours) * time.Hour,
		pairWindow:   time.Duration(cfg.PairWindowMinutes) * time.Minute,
		hashCache:    cache,
	}
}

// Start begins periodic collection. The first pass runs immediately.
func (s *Service) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("collector started", logger.Duration("interval", s.interval))
}

// Stop halts collection and waits for an in-flight pass to finish.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("collector stopped")
}

// Status returns the time and outcome of the most recent pass.
func (s *Service) Status() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Service) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

func (s *Service) collect(ctx context.Context) {
	start := time.Now()
	err := s.RunOnce(ctx)

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("collection pass failed", logger.Error(err))
		return
	}

	s.cleanup()
	s.logger.Info("collection pass complete", logger.Duration("elapsed", time.Since(start)))
}

// RunOnce performs a single collection pass: fetch, store, parse
// changed broadcasts, persist configurations.
func (s *Service) RunOnce(ctx context.Context) error {
	entries, err := s.feed.FetchAll(ctx)
	if err != nil {
		return err
	}

	changed := s.storeSnapshots(entries)
	if len(changed) == 0 {
		s.logger.Debug("no changed broadcasts", logger.Int("entries", len(entries)))
		return nil
	}
	s.logger.Info("parsing changed broadcasts",
		logger.Int("changed", len(changed)), logger.Int("entries", len(entries)))

	for _, p := range s.parseSnapshots(ctx, changed) {
		if err := s.processParse(ctx, p); err != nil {
			s.logger.Error("failed to process parse",
				logger.String("airport", p.cfg.AirportCode), logger.Error(err))
		}
	}

	return nil
}

// storeSnapshots stores every fetched broadcast and returns the ones
// whose content changed since the previous poll.
func (s *Service) storeSnapshots(entries []FeedEntry) []*snapshot {
	now := time.Now().UTC()
	var changed []*snapshot

	for _, entry := range entries {
		if entry.Airport == "" || entry.DATIS == "" {
			continue
		}

		hash := contentHash(entry.DATIS)
		key := entry.Airport + "|" + entry.Type

		prev, ok := s.hashCache.Get(key)
		if !ok {
			var err error
			if prev, err = s.broadcasts.LatestContentHash(entry.Airport); err != nil {
				s.logger.Warn("failed to load previous content hash",
					logger.String("airport", entry.Airport), logger.Error(err))
			}
		}
		isChanged := hash != prev
		s.hashCache.Add(key, hash)

		letter := extractInfoLetter(entry.DATIS)
		id, err := s.broadcasts.StoreBroadcast(&sqlite.BroadcastRecord{
			AirportCode: entry.Airport,
			CollectedAt: now,
			InfoLetter:  letter,
			RawText:     entry.DATIS,
			ContentHash: hash,
			IsChanged:   isChanged,
		})
		if err != nil {
			s.logger.Error("failed to store broadcast",
				logger.String("airport", entry.Airport), logger.Error(err))
			continue
		}

		if isChanged {
			changed = append(changed, &snapshot{
				entry:       entry,
				broadcastID: id,
				infoLetter:  letter,
			})
		}
	}

	return changed
}

// parseSnapshots parses the changed broadcasts with bounded
// parallelism. Parsing is pure, so results go into a pre-sized slice.
func (s *Service) parseSnapshots(ctx context.Context, snaps []*snapshot) []*parsedSnapshot {
	parsed := make([]*parsedSnapshot, len(snaps))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, snap := range snaps {
		i, snap := i, snap
		g.Go(func() error {
			parsed[i] = &parsedSnapshot{
				snap:  snap,
				cfg:   s.parser.Parse(snap.entry.Airport, snap.entry.DATIS, snap.infoLetter),
				split: runway.ClassifySplit(snap.entry.DATIS),
			}
			return nil
		})
	}
	g.Wait()

	return parsed
}

// processParse validates one parse, files an error report when suspect
// (auto-reviewed when a stored correction applies), persists the
// configuration, and attempts a split-pair merge.
func (s *Service) processParse(ctx context.Context, p *parsedSnapshot) error {
	cfg := p.cfg

	issues := s.parser.Validate(cfg)
	var correction *corrections.Correction
	if len(issues) > 0 {
		correction = s.matcher.Match(ctx, cfg.AirportCode,
			cfg.ArrivingRunways, cfg.DepartingRunways, cfg.RawText)
		s.fileReport(p, issues, correction)
	}
	if correction != nil {
		cfg.ApplyCorrection(correction.CorrectedArrivals, correction.CorrectedDepartures)
	}

	if _, err := s.configs.UpsertConfig(configRecordFrom(cfg, p.snap.broadcastID, p.split)); err != nil {
		return err
	}

	if p.split != runway.Unsplit {
		s.mergeSplitPair(p)
	}
	return nil
}

// fileReport creates an error report for a suspect parse. The parsed
// sets are recorded as extracted; when a stored correction matched, the
// report arrives pre-reviewed so no human has to look at it twice.
func (s *Service) fileReport(p *parsedSnapshot, issues []runway.Issue, correction *corrections.Correction) {
	record := &sqlite.ReportRecord{
		AirportCode:      p.cfg.AirportCode,
		BroadcastID:      p.snap.broadcastID,
		ParsedArrivals:   p.cfg.ArrivingRunways,
		ParsedDepartures: p.cfg.DepartingRunways,
		ConfidenceScore:  p.cfg.ConfidenceScore,
		ReportedBy:       "computer",
		Notes:            "Computer-detected issues: " + joinIssues(issues),
	}

	if p.split != runway.Unsplit {
		header := "ARR INFO"
		if p.split == runway.ArrivalHalf {
			header = "DEP INFO"
		}
		pairedID, err := s.broadcasts.FindPairedBroadcast(
			p.cfg.AirportCode, p.snap.broadcastID, header, s.pairWindow)
		if err != nil {
			s.logger.Warn("failed to find paired broadcast",
				logger.String("airport", p.cfg.AirportCode), logger.Error(err))
		} else if pairedID != 0 {
			record.PairedBroadcastID = &pairedID
		}
	}

	if correction != nil {
		record.Reviewed = true
		record.CorrectedArrivals = correction.CorrectedArrivals
		record.CorrectedDepartures = correction.CorrectedDepartures
		record.Notes += "; auto-reviewed from " + correction.SourceID
	}

	inserted, err := s.reports.CreateReport(record)
	if err != nil {
		s.logger.Error("failed to create error report",
			logger.String("airport", p.cfg.AirportCode), logger.Error(err))
		return
	}
	if inserted {
		s.logger.Info("filed error report",
			logger.String("airport", p.cfg.AirportCode),
			logger.String("issues", joinIssues(issues)),
			logger.Bool("auto_reviewed", correction != nil))
	}
}

// mergeSplitPair merges the latest arrival and departure halves of an
// airport when both fall inside the pair window. Both sides are read
// back from storage so re-merging an unchanged pair is a no-op
// overwrite. The merged row re-uses the arrival half's broadcast ID
// and replaces that half's config row; a later departure-only change
// therefore finds its arrival side in the merged row.
func (s *Service) mergeSplitPair(p *parsedSnapshot) {
	airport := p.cfg.AirportCode
	since := time.Now().UTC().Add(-s.pairWindow)

	halves, err := s.configs.LatestHalvesForAirport(airport, since)
	if err != nil {
		s.logger.Warn("failed to load split halves",
			logger.String("airport", airport), logger.Error(err))
		return
	}

	arrRec := halves[string(runway.ArrivalHalf)]
	mergedAsArr := false
	if arrRec == nil {
		// The previous merge replaced the arrival half's config row, so
		// a departure-only change finds its arrival side there.
		if full := halves[string(runway.Unsplit)]; full != nil && full.MergedFromPair {
			arrRec = full
			mergedAsArr = true
		}
	}
	depRec := halves[string(runway.DepartureHalf)]
	if arrRec == nil || depRec == nil {
		return
	}

	arrCfg, err := s.configurationFromRecord(arrRec)
	if err != nil {
		s.logger.Warn("failed to load arrival half", logger.Error(err))
		return
	}
	if mergedAsArr {
		// The merged row's departures belong to the superseded
		// departure half and must not fold into the new merge.
		arrCfg.DepartingRunways = nil
	}
	depCfg, err := s.configurationFromRecord(depRec)
	if err != nil {
		s.logger.Warn("failed to load departure half", logger.Error(err))
		return
	}

	merged := runway.MergePair(arrCfg, depCfg,
		"broadcast_"+strconv.FormatInt(arrRec.BroadcastID, 10),
		"broadcast_"+strconv.FormatInt(depRec.BroadcastID, 10))

	if _, err := s.configs.UpsertConfig(configRecordFrom(merged, arrRec.BroadcastID, runway.Unsplit)); err != nil {
		s.logger.Error("failed to store merged configuration",
			logger.String("airport", airport), logger.Error(err))
		return
	}

	s.logger.Info("merged split broadcast pair",
		logger.String("airport", airport),
		logger.Strings("arriving", merged.ArrivingRunways),
		logger.Strings("departing", merged.DepartingRunways))
}

// configurationFromRecord rebuilds a parsed configuration from its
// stored row plus the backing broadcast.
func (s *Service) configurationFromRecord(rec *sqlite.ConfigRecord) (*runway.Configuration, error) {
	b, err := s.broadcasts.GetBroadcast(rec.BroadcastID)
	if err != nil {
		return nil, err
	}

	cfg := &runway.Configuration{
		AirportCode:       rec.AirportCode,
		Timestamp:         rec.CreatedAt,
		ArrivingRunways:   rec.ArrivingRunways,
		DepartingRunways:  rec.DepartingRunways,
		TrafficFlow:       runway.Flow(rec.TrafficFlow),
		ConfigurationName: rec.ConfigurationName,
		ConfidenceScore:   rec.ConfidenceScore,
		MergedFromPair:    rec.MergedFromPair,
	}
	if b != nil {
		cfg.InformationLetter = b.InfoLetter
		cfg.RawText = b.RawText
	}
	return cfg, nil
}

// cleanup enforces retention: old snapshots go after the retention
// period, unreviewed computer-filed reports after a couple of hours
// (the next changed broadcast files a fresh one if the problem
// persists).
func (s *Service) cleanup() {
	now := time.Now().UTC()

	deleted, err := s.broadcasts.DeleteOlderThan(now.Add(-s.retention))
	if err != nil {
		s.logger.Error("failed to delete old broadcasts", logger.Error(err))
	} else if deleted > 0 {
		s.logger.Info("deleted old broadcasts", logger.Int64("count", deleted))
	}

	deleted, err = s.reports.DeleteStaleComputerReports(now.Add(-s.staleReports))
	if err != nil {
		s.logger.Error("failed to delete stale reports", logger.Error(err))
	} else if deleted > 0 {
		s.logger.Info("deleted stale computer reports", logger.Int64("count", deleted))
	}
}

// configRecordFrom maps a parsed configuration onto its storage row.
func configRecordFrom(cfg *runway.Configuration, broadcastID int64, split runway.SplitKind) *sqlite.ConfigRecord {
	rec := &sqlite.ConfigRecord{
		AirportCode:       cfg.AirportCode,
		BroadcastID:       broadcastID,
		ArrivingRunways:   cfg.ArrivingRunways,
		DepartingRunways:  cfg.DepartingRunways,
		TrafficFlow:       string(cfg.TrafficFlow),
		ConfigurationName: cfg.ConfigurationName,
		ConfidenceScore:   cfg.ConfidenceScore,
		SplitKind:         string(split),
		MergedFromPair:    cfg.MergedFromPair,
		CreatedAt:         cfg.Timestamp,
	}
	if cfg.ComponentConfidence != nil {
		if b, err := json.Marshal(cfg.ComponentConfidence); err == nil {
			rec.ComponentConfidence = string(b)
		}
	}
	return rec
}

func contentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func joinIssues(issues []runway.Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = string(issue)
	}
	return strings.Join(parts, ", ")
}

// Broadcast headers are free-form enough that the information letter
// shows up in a few shapes; the first pattern that hits wins.
var infoLetterRes = []*regexp.Regexp{
	regexp.MustCompile(`ATIS\s+(?:INFO|INFORMATION)\s+([A-Z])\b`),
	regexp.MustCompile(`(?:ARR|DEP)\s+(?:INFO|ATIS)\s+([A-Z])\b`),
	regexp.MustCompile(`INFORMATION\s+([A-Z])\s`),
	regexp.MustCompile(`ATIS\s+([A-Z])\s+\d{4}`),
	regexp.MustCompile(`^[A-Z]{3,4}\s+ATIS\s+([A-Z])\s`),
}

func extractInfoLetter(text string) string {
	upper := strings.ToUpper(text)
	for _, re := range infoLetterRes {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[1]
		}
	}
	return ""
}
