// Package aggregator owns the full sync pipeline: resolve targets, fan out
// to every source connector, dedupe across sources, and upsert the result.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sponsorboard/jobsync/internal/dedupe"
	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
)

// ErrSyncInFlight is returned when a sync pass is requested while another
// pass is still running. Only one pass runs at a time.
var ErrSyncInFlight = errors.New("sync pass already in flight")

// DefaultConnectorTimeout bounds a single connector's Fetch call.
const DefaultConnectorTimeout = 2 * time.Minute

// Aggregator coordinates one sync pass across all configured connectors.
type Aggregator struct {
	connectors  []model.Connector
	store       model.PostingStore
	directory   model.Directory
	notifier    model.Notifier
	matcherOpts identity.Options
	timeout     time.Duration
	logger      *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// New creates an aggregator wired with all its dependencies. A zero timeout
// falls back to DefaultConnectorTimeout.
func New(
	connectors []model.Connector,
	store model.PostingStore,
	directory model.Directory,
	notifier model.Notifier,
	matcherOpts identity.Options,
	timeout time.Duration,
	logger *slog.Logger,
) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultConnectorTimeout
	}
	return &Aggregator{
		connectors:  connectors,
		store:       store,
		directory:   directory,
		notifier:    notifier,
		matcherOpts: matcherOpts,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
	}
}

type fetchResult struct {
	postings []model.Posting
	err      error
}

// Sync runs one full pass: resolve the target employer set, fetch from every
// connector concurrently, dedupe, and upsert. A connector failure degrades
// the pass to completed_with_errors instead of aborting it; only a store or
// directory failure aborts. Returns ErrSyncInFlight if a pass is already
// running.
func (a *Aggregator) Sync(ctx context.Context) (model.SyncReport, error) {
	if !a.mu.TryLock() {
		return model.SyncReport{}, ErrSyncInFlight
	}
	defer a.mu.Unlock()

	report := model.SyncReport{StartedAt: a.now().UTC()}

	names, err := a.directory.CompanyNames()
	if err != nil {
		return report, fmt.Errorf("syncing: resolving target employers: %w", err)
	}
	targets := identity.NewTargetSet(names, a.matcherOpts)

	if targets.Len() == 0 {
		report.Status = model.StatusSkipped
		report.FinishedAt = a.now().UTC()
		a.logger.Info("sync skipped, no target employers configured")
		a.notify(report)
		return report, nil
	}

	results := make([]fetchResult, len(a.connectors))
	var g errgroup.Group
	for i, conn := range a.connectors {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			postings, err := conn.Fetch(cctx, targets)
			results[i] = fetchResult{postings: postings, err: err}
			return nil
		})
	}
	g.Wait()

	var all []model.Posting
	failed := false
	for i, conn := range a.connectors {
		res := results[i]
		sr := model.SourceReport{Source: conn.Name(), Count: len(res.postings)}
		switch {
		case errors.Is(res.err, model.ErrNoCredential):
			sr.Skipped = true
			a.logger.Info("source skipped, credential not configured", "source", conn.Name())
		case res.err != nil:
			sr.Err = res.err
			failed = true
			a.logger.Warn("source fetch failed",
				"source", conn.Name(),
				"partial", len(res.postings),
				"error", res.err,
			)
		}
		report.Sources = append(report.Sources, sr)
		all = append(all, res.postings...)
	}

	// Fan-out completion order is nondeterministic, so fix the order before
	// last-write-wins dedup.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Source != all[j].Source {
			return all[i].Source < all[j].Source
		}
		return all[i].ExternalID < all[j].ExternalID
	})

	unique := dedupe.ByCompositeID(all)
	report.Unique = len(unique)

	for _, p := range unique {
		inserted, err := a.store.UpsertPosting(p)
		if err != nil {
			return report, fmt.Errorf("syncing: upserting %s: %w", p.ID, err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	report.Status = model.StatusCompleted
	if failed {
		report.Status = model.StatusCompletedWithErrors
	}
	report.FinishedAt = a.now().UTC()

	a.logger.Info("sync pass finished",
		"status", report.Status,
		"unique", report.Unique,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"elapsed", report.FinishedAt.Sub(report.StartedAt),
	)

	a.notify(report)
	return report, nil
}

// notify delivers the pass summary. Notification failures never fail the
// pass itself.
func (a *Aggregator) notify(report model.SyncReport) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(report); err != nil {
		a.logger.Warn("notifying sync report failed", "error", err)
	}
}

// Status recomputes per-source posting counts and the last sync time from
// the store.
func (a *Aggregator) Status() (model.StoreStatus, error) {
	status := model.StoreStatus{PerSource: make(map[model.Source]int)}
	for _, conn := range a.connectors {
		count, err := a.store.CountBySource(conn.Name())
		if err != nil {
			return model.StoreStatus{}, fmt.Errorf("counting %s postings: %w", conn.Name(), err)
		}
		status.PerSource[conn.Name()] = count
		status.Total += count
	}

	last, ok, err := a.store.MostRecentIngestedAt()
	if err != nil {
		return model.StoreStatus{}, fmt.Errorf("reading last sync time: %w", err)
	}
	if ok {
		status.LastSyncedAt = &last
	}
	return status, nil
}
