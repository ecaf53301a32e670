package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/model"
	"github.com/sponsorboard/jobsync/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-source posting counts and the last sync time",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	status, err := agg.Status()
	if err != nil {
		logger.Error("failed to read status", "error", err)
		os.Exit(1)
	}

	sources := make([]string, 0, len(status.PerSource))
	for source := range status.PerSource {
		sources = append(sources, string(source))
	}
	sort.Strings(sources)

	fmt.Printf("%-14s %s\n", "Source", "Postings")
	for _, source := range sources {
		fmt.Printf("%-14s %d\n", source, status.PerSource[model.Source(source)])
	}
	fmt.Printf("\nTotal: %d postings\n", status.Total)
	if status.LastSyncedAt != nil {
		fmt.Printf("Last synced: %s\n", status.LastSyncedAt.Local().Format(time.RFC1123))
	} else {
		fmt.Println("Last synced: never")
	}
	return nil
}
