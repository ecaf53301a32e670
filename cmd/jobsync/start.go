package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/sponsorboard/jobsync/internal/scheduler"
	"github.com/sponsorboard/jobsync/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync daemon",
	Long:  "Run an immediate sync pass, then one per interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.SyncInterval.String(),
		"database", cfg.Database,
		"connector_timeout", cfg.ConnectorTimeout.String(),
	)

	// One daemon per database. Two concurrent daemons would race each
	// other's upserts.
	lock := flock.New(cfg.Database + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("failed to acquire lock", "error", err)
		os.Exit(1)
	}
	if !locked {
		logger.Error("another jobsync instance is already running", "lock", cfg.Database+".lock")
		os.Exit(1)
	}
	defer lock.Unlock()

	sqlStore, err := store.NewSQLiteStore(cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	agg := buildAggregator(cfg, sqlStore, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(agg, cfg.SyncInterval, logger)
	sched.Start()

	<-ctx.Done()
	sched.Stop()

	logger.Info("goodbye")
	return nil
}
