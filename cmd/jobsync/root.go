package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/aggregator"
	"github.com/sponsorboard/jobsync/internal/config"
	"github.com/sponsorboard/jobsync/internal/connector"
	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
	"github.com/sponsorboard/jobsync/internal/notifier"
	"github.com/sponsorboard/jobsync/internal/ratelimit"
	"github.com/sponsorboard/jobsync/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsync",
	Short: "Aggregate job postings from many sources into one store",
	Long:  "jobsync pulls postings for your target employers from job boards, ATS APIs, and career pages, dedupes them, and keeps a local SQLite store in sync.",
	// Default to `start` so that `jobsync` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSYNC_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSYNC_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSYNC_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func matcherOptions(cfg *config.Config) identity.Options {
	suffixes := identity.DefaultSuffixes
	if len(cfg.Matcher.ExtraSuffixes) > 0 {
		suffixes = append(append([]string{}, identity.DefaultSuffixes...), cfg.Matcher.ExtraSuffixes...)
	}
	return identity.Options{
		MinRatio:  cfg.Matcher.MinRatio,
		MinLength: cfg.Matcher.MinLength,
		Suffixes:  suffixes,
	}
}

// buildConnectors assembles one connector per enabled source.
func buildConnectors(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.Connector {
	var connectors []model.Connector

	if cfg.Sources.Arbeitnow.Enabled {
		connectors = append(connectors, connector.NewArbeitnowConnector(httpClient))
	}
	if len(cfg.Sources.Greenhouse.Boards) > 0 {
		boards := make([]connector.GreenhouseBoard, 0, len(cfg.Sources.Greenhouse.Boards))
		for _, b := range cfg.Sources.Greenhouse.Boards {
			boards = append(boards, connector.GreenhouseBoard{Token: b.Token, Company: b.Company})
		}
		limiter := ratelimit.NewHostLimiter(cfg.Sources.Greenhouse.PageDelay, 1)
		connectors = append(connectors, connector.NewGreenhouseConnector(boards, httpClient, limiter, logger))
	}
	if len(cfg.Sources.JSearch.Queries) > 0 {
		limiter := ratelimit.NewHostLimiter(cfg.Sources.JSearch.PageDelay, 1)
		connectors = append(connectors, connector.NewJSearchConnector(cfg.Sources.JSearch.APIKey, cfg.Sources.JSearch.Queries, httpClient, limiter, logger))
	}
	if cfg.Sources.MetaCareers.Enabled {
		connectors = append(connectors, connector.NewMetaCareersConnector(httpClient))
	}
	if len(cfg.Sources.Universities.Pages) > 0 {
		pages := make([]connector.UniversityPage, 0, len(cfg.Sources.Universities.Pages))
		for _, p := range cfg.Sources.Universities.Pages {
			pages = append(pages, connector.UniversityPage{Name: p.Name, URL: p.URL})
		}
		limiter := ratelimit.NewHostLimiter(cfg.Sources.Universities.PageDelay, 1)
		connectors = append(connectors, connector.NewUniversityConnector(pages, httpClient, limiter, logger))
	}

	for _, c := range connectors {
		logger.Info("registered source", "source", c.Name())
	}
	return connectors
}

// buildAggregator wires store, connectors, and notifier into an aggregator.
func buildAggregator(cfg *config.Config, sqlStore *store.SQLiteStore, logger *slog.Logger) *aggregator.Aggregator {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	connectors := buildConnectors(cfg, httpClient, logger)
	n := setupNotifier(cfg, httpClient, logger)
	return aggregator.New(connectors, sqlStore, sqlStore, n, matcherOptions(cfg), cfg.ConnectorTimeout, logger)
}
