package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/model"
	"github.com/sponsorboard/jobsync/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync pass and exit",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	agg := buildAggregator(cfg, sqlStore, logger)

	report, err := agg.Sync(cmd.Context())
	if err != nil {
		logger.Error("sync failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Sync %s in %s\n", report.Status, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	for _, sr := range report.Sources {
		line := fmt.Sprintf("  %-12s %d postings", sr.Source, sr.Count)
		if sr.Skipped {
			line = fmt.Sprintf("  %-12s skipped (no credential)", sr.Source)
		} else if sr.Err != nil {
			line += fmt.Sprintf(" (error: %v)", sr.Err)
		}
		fmt.Println(line)
	}
	if report.Status != model.StatusSkipped {
		fmt.Printf("Unique: %d, inserted: %d, updated: %d\n", report.Unique, report.Inserted, report.Updated)
	}
	return nil
}
