// Package config loads the YAML configuration for the sync pipeline.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobsync pipeline.
type Config struct {
	SyncInterval     time.Duration
	ConnectorTimeout time.Duration
	Database         string
	WageData         string
	Matcher          MatcherConfig
	Sources          SourcesConfig
	Notification     NotificationConfig
}

// MatcherConfig tunes the target employer matcher.
type MatcherConfig struct {
	MinRatio      float64  // minimum length ratio for a fuzzy match, 0 means default
	MinLength     int      // minimum candidate length for a fuzzy match, 0 means default
	ExtraSuffixes []string // legal suffixes stripped in addition to the builtin list
}

// SourcesConfig enables and parameterizes each connector.
type SourcesConfig struct {
	Arbeitnow    ArbeitnowConfig
	Greenhouse   GreenhouseConfig
	JSearch      JSearchConfig
	MetaCareers  MetaCareersConfig
	Universities UniversitiesConfig
}

// ArbeitnowConfig controls the Arbeitnow connector.
type ArbeitnowConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GreenhouseConfig controls the Greenhouse boards connector.
type GreenhouseConfig struct {
	Boards    []BoardConfig
	PageDelay time.Duration // gap between board requests
}

// BoardConfig pairs a Greenhouse board token with its employer name.
type BoardConfig struct {
	Token   string `yaml:"token"`
	Company string `yaml:"company"`
}

// JSearchConfig controls the JSearch connector. An empty APIKey disables the
// source at runtime (reported as skipped).
type JSearchConfig struct {
	APIKey    string
	Queries   []string
	PageDelay time.Duration
}

// MetaCareersConfig controls the Meta careers connector.
type MetaCareersConfig struct {
	Enabled bool `yaml:"enabled"`
}

// UniversitiesConfig controls the university page scraper.
type UniversitiesConfig struct {
	Pages     []UniversityPageConfig
	PageDelay time.Duration
}

// UniversityPageConfig names one university career page.
type UniversityPageConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultSyncInterval     = 60 * time.Second
	defaultConnectorTimeout = 2 * time.Minute
	defaultPageDelay        = time.Second
	defaultDatabase         = "jobsync.db"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	SyncInterval     string             `yaml:"sync_interval"`
	ConnectorTimeout string             `yaml:"connector_timeout"`
	Database         string             `yaml:"database"`
	WageData         string             `yaml:"wage_data"`
	Matcher          rawMatcherConfig   `yaml:"matcher"`
	Sources          rawSourcesConfig   `yaml:"sources"`
	Notification     NotificationConfig `yaml:"notification"`
}

type rawMatcherConfig struct {
	MinRatio      float64  `yaml:"min_ratio"`
	MinLength     int      `yaml:"min_length"`
	ExtraSuffixes []string `yaml:"extra_suffixes"`
}

type rawSourcesConfig struct {
	Arbeitnow    ArbeitnowConfig       `yaml:"arbeitnow"`
	Greenhouse   rawGreenhouseConfig   `yaml:"greenhouse"`
	JSearch      rawJSearchConfig      `yaml:"jsearch"`
	MetaCareers  MetaCareersConfig     `yaml:"metacareers"`
	Universities rawUniversitiesConfig `yaml:"universities"`
}

type rawGreenhouseConfig struct {
	Boards    []BoardConfig `yaml:"boards"`
	PageDelay string        `yaml:"page_delay"`
}

type rawJSearchConfig struct {
	APIKey    string   `yaml:"api_key"`
	Queries   []string `yaml:"queries"`
	PageDelay string   `yaml:"page_delay"`
}

type rawUniversitiesConfig struct {
	Pages     []UniversityPageConfig `yaml:"pages"`
	PageDelay string                 `yaml:"page_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variable references in the file are expanded
// before parsing, so secrets like the JSearch key stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := defaultSyncInterval
	if raw.SyncInterval != "" {
		interval, err = time.ParseDuration(raw.SyncInterval)
		if err != nil {
			return nil, fmt.Errorf("parse sync_interval %q: %w", raw.SyncInterval, err)
		}
	}

	timeout := defaultConnectorTimeout
	if raw.ConnectorTimeout != "" {
		timeout, err = time.ParseDuration(raw.ConnectorTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse connector_timeout %q: %w", raw.ConnectorTimeout, err)
		}
	}

	ghDelay, err := parseDelay("sources.greenhouse.page_delay", raw.Sources.Greenhouse.PageDelay)
	if err != nil {
		return nil, err
	}
	jsDelay, err := parseDelay("sources.jsearch.page_delay", raw.Sources.JSearch.PageDelay)
	if err != nil {
		return nil, err
	}
	uniDelay, err := parseDelay("sources.universities.page_delay", raw.Sources.Universities.PageDelay)
	if err != nil {
		return nil, err
	}

	database := raw.Database
	if database == "" {
		database = defaultDatabase
	}

	cfg := &Config{
		SyncInterval:     interval,
		ConnectorTimeout: timeout,
		Database:         database,
		WageData:         raw.WageData,
		Matcher: MatcherConfig{
			MinRatio:      raw.Matcher.MinRatio,
			MinLength:     raw.Matcher.MinLength,
			ExtraSuffixes: raw.Matcher.ExtraSuffixes,
		},
		Sources: SourcesConfig{
			Arbeitnow: raw.Sources.Arbeitnow,
			Greenhouse: GreenhouseConfig{
				Boards:    raw.Sources.Greenhouse.Boards,
				PageDelay: ghDelay,
			},
			JSearch: JSearchConfig{
				APIKey:    raw.Sources.JSearch.APIKey,
				Queries:   raw.Sources.JSearch.Queries,
				PageDelay: jsDelay,
			},
			MetaCareers: raw.Sources.MetaCareers,
			Universities: UniversitiesConfig{
				Pages:     raw.Sources.Universities.Pages,
				PageDelay: uniDelay,
			},
		},
		Notification: raw.Notification,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDelay(field, value string) (time.Duration, error) {
	if value == "" {
		return defaultPageDelay, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	if cfg.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive, got %v", cfg.SyncInterval)
	}
	if cfg.ConnectorTimeout <= 0 {
		return fmt.Errorf("connector_timeout must be positive, got %v", cfg.ConnectorTimeout)
	}

	if cfg.Matcher.MinRatio < 0 || cfg.Matcher.MinRatio > 1 {
		return fmt.Errorf("matcher.min_ratio must be between 0 and 1, got %v", cfg.Matcher.MinRatio)
	}
	if cfg.Matcher.MinLength < 0 {
		return fmt.Errorf("matcher.min_length must not be negative, got %d", cfg.Matcher.MinLength)
	}

	for i, b := range cfg.Sources.Greenhouse.Boards {
		if b.Token == "" {
			return fmt.Errorf("sources.greenhouse.boards[%d].token is required", i)
		}
		if b.Company == "" {
			return fmt.Errorf("sources.greenhouse.boards[%d].company is required", i)
		}
	}
	for i, p := range cfg.Sources.Universities.Pages {
		if p.Name == "" {
			return fmt.Errorf("sources.universities.pages[%d].name is required", i)
		}
		if p.URL == "" {
			return fmt.Errorf("sources.universities.pages[%d].url is required", i)
		}
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}
