// Package notifier delivers sync pass summaries.
package notifier

import (
	"log/slog"

	"github.com/sponsorboard/jobsync/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes sync pass summaries to the given logger as structured
// messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each sync report via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the pass outcome and one line per source. Returns nil (stdout
// logging does not fail).
func (n *LogNotifier) Notify(report model.SyncReport) error {
	n.logger.Info("sync report",
		"status", report.Status,
		"unique", report.Unique,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"elapsed", report.FinishedAt.Sub(report.StartedAt),
	)
	for _, sr := range report.Sources {
		args := []any{"source", sr.Source, "count", sr.Count}
		if sr.Skipped {
			args = append(args, "skipped", true)
		}
		if sr.Err != nil {
			args = append(args, "error", sr.Err)
		}
		n.logger.Info("source report", args...)
	}
	return nil
}
