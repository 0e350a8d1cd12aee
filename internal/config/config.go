package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
	Collector CollectorConfig `toml:"collector"`
	Parser    ParserConfig    `toml:"parser"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// StorageConfig represents the SQLite storage configuration
type StorageConfig struct {
	Path string `toml:"path"`
}

// CollectorConfig represents the broadcast collection configuration
type CollectorConfig struct {
	FeedURL               string `toml:"feed_url"`
	IntervalSeconds       int    `toml:"interval_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	ParseParallelism      int    `toml:"parse_parallelism"`
	RetentionDays         int    `toml:"retention_days"`
	StaleReportHours      int    `toml:"stale_report_hours"`
	// PairWindowMinutes bounds split-broadcast pairing when building
	// error reports for a half that is missing its counterpart.
	PairWindowMinutes int `toml:"pair_window_minutes"`
}

// ParserConfig represents the extraction engine configuration
type ParserConfig struct {
	// ArrivalOnlyAirports lists airports that publish arrival-only
	// broadcasts; absent departures are expected there, not a gap.
	ArrivalOnlyAirports []string `toml:"arrival_only_airports"`
	// StatusPairWindowMinutes bounds split-pair merging for current
	// status queries.
	StatusPairWindowMinutes int `toml:"status_pair_window_minutes"`
	// AirportConfigs maps airport code -> flow name -> runway set for
	// named configurations (e.g. KSEA "south" = 16L/16C/16R).
	AirportConfigs map[string]map[string][]string `toml:"airport_configs"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			CORSAllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Storage: StorageConfig{
			Path: "rwy-watch.db",
		},
		Collector: CollectorConfig{
			FeedURL:               "https://datis.clowd.io/api/all",
			IntervalSeconds:       300,
			RequestTimeoutSeconds: 30,
			ParseParallelism:      8,
			RetentionDays:         90,
			StaleReportHours:      2,
			PairWindowMinutes:     30,
		},
		Parser: ParserConfig{
			ArrivalOnlyAirports:     DefaultArrivalOnlyAirports(),
			StatusPairWindowMinutes: 15,
			AirportConfigs:          DefaultAirportConfigs(),
		},
	}
}

// DefaultArrivalOnlyAirports returns airports known to publish
// arrival-only broadcasts, compiled from human review history.
func DefaultArrivalOnlyAirports() []string {
	return []string{
		"KADW", "KALB", "KRSW", "KPVD", "KOAK", "KPDX", "KDAL",
		"KCMH", "KAUS", "KFLL", "KIND", "KTPA", "KTUL", "KBWI",
		"KJFK", "KBOS", "KORD",
		"KGSO", "KLIT", "KMCI",
		"KCHS", "KMDW", "KPHL", "KPIT", "KPBI", "KIAH",
		"KHOU", "KRDU",
		"KMIA", "KSNA", "KSLC",
		"KOKC", "KSDF", "KSMF",
	}
}

// DefaultAirportConfigs returns the built-in named flow configurations.
func DefaultAirportConfigs() map[string]map[string][]string {
	return map[string]map[string][]string{
		"KSEA": {
			"south": {"16L", "16C", "16R"},
			"north": {"34L", "34C", "34R"},
		},
		"KSFO": {
			"west":      {"28L", "28R"},
			"east":      {"10L", "10R"},
			"southeast": {"19L", "19R"},
			"northwest": {"1L", "1R"},
		},
		"KLAX": {
			"west": {"24L", "24R", "25L", "25R"},
			"east": {"6L", "6R", "7L", "7R"},
		},
	}
}

// Load reads a TOML configuration file, applying defaults for any
// missing sections. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Collector.IntervalSeconds <= 0 {
		return fmt.Errorf("invalid collector interval: %d", c.Collector.IntervalSeconds)
	}
	if c.Collector.ParseParallelism <= 0 {
		return fmt.Errorf("invalid parse parallelism: %d", c.Collector.ParseParallelism)
	}
	if c.Parser.StatusPairWindowMinutes <= 0 {
		return fmt.Errorf("invalid status pair window: %d", c.Parser.StatusPairWindowMinutes)
	}
	return nil
}
