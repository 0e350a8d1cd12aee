package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/rwy-watch/internal/collector"
	"github.com/yegors/rwy-watch/internal/config"
	"github.com/yegors/rwy-watch/internal/corrections"
	"github.com/yegors/rwy-watch/internal/runway"
	"github.com/yegors/rwy-watch/internal/storage/sqlite"
	"github.com/yegors/rwy-watch/pkg/logger"
)

// app wires the shared services used by the serve and collect commands.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *sql.DB

	broadcasts *sqlite.BroadcastStorage
	configs    *sqlite.ConfigStorage
	reports    *sqlite.ReportStorage
	patterns   *sqlite.PatternStorage

	parser    *runway.Parser
	collector *collector.Service
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	broadcasts := sqlite.NewBroadcastStorage(db, log)
	configs := sqlite.NewConfigStorage(db, log)
	reports := sqlite.NewReportStorage(db, log)
	patterns := sqlite.NewPatternStorage(db, log)

	parser := runway.NewParser(cfg.Parser.ArrivalOnlyAirports, cfg.Parser.AirportConfigs, log)
	matcher := corrections.NewMatcher(reports, patterns, log)

	feed := collector.NewClient(cfg.Collector.FeedURL,
		time.Duration(cfg.Collector.RequestTimeoutSeconds)*time.Second, log)
	svc := collector.NewService(cfg.Collector, feed, parser, matcher,
		broadcasts, configs, reports, log)

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		broadcasts: broadcasts,
		configs:    configs,
		reports:    reports,
		patterns:   patterns,
		parser:     parser,
		collector:  svc,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error("failed to close database", logger.Error(err))
	}
	_ = a.log.Sync()
}
