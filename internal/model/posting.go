package model

import (
	"context"
	"time"

	"github.com/sponsorboard/jobsync/internal/identity"
)

// Source identifies which connector produced a posting.
type Source string

const (
	SourceArbeitnow  Source = "arbeitnow"
	SourceGreenhouse Source = "greenhouse"
	SourceJSearch    Source = "jsearch"
	SourceMeta       Source = "metacareers"
	SourceUniversity Source = "university"
)

// MaxDescriptionLen caps posting descriptions before storage.
const MaxDescriptionLen = 5000

// Posting is the canonical job record the pipeline produces, one shape
// regardless of which source supplied it.
type Posting struct {
	ID                   string    // "{source}_{external_id}", the upsert key
	Source               Source    // connector that produced this posting
	ExternalID           string    // source-native identifier, unique within a source
	Title                string    // job title
	OrganizationName     string    // employer name as the source reported it
	LocationText         string    // free-text location from the source
	DerivedRegion        string    // two-letter US state code, "Remote", or "Various"
	Description          string    // capped at MaxDescriptionLen
	ApplyURL             string    // direct apply link
	EmploymentType       string    // defaults to "Full-time" when the source omits it
	PostedAt             time.Time // defaults to ingestion time when the source omits it
	CompensationEstimate float64   // annual USD, 0 when unknown
	Requirements         []string  // extracted requirement phrases, capped
	IngestedAt           time.Time // timestamp of the sync pass that wrote this record
}

// CompositeID builds the store key for a source and external identifier.
func CompositeID(source Source, externalID string) string {
	return string(source) + "_" + externalID
}

// SyncStatus is the terminal state of one sync pass.
type SyncStatus string

const (
	// StatusCompleted means every source contributed without a transport error.
	StatusCompleted SyncStatus = "completed"
	// StatusCompletedWithErrors means the pass finished but at least one
	// source failed or truncated its results.
	StatusCompletedWithErrors SyncStatus = "completed_with_errors"
	// StatusSkipped means the target employer set was empty and no source
	// was contacted.
	StatusSkipped SyncStatus = "skipped"
)

// SourceReport describes one source's contribution to a pass.
type SourceReport struct {
	Source  Source
	Count   int   // postings that survived the matcher gate and normalization
	Skipped bool  // credential absent, no call attempted
	Err     error // transport error; Count may still be non-zero (partial results)
}

// SyncReport is the aggregate outcome of one pass, rebuilt each run.
type SyncReport struct {
	Status     SyncStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []SourceReport
	Unique     int // postings after cross-source dedup
	Inserted   int
	Updated    int
}

// StoreStatus summarizes what the store currently holds, recomputed from
// stored postings rather than cached.
type StoreStatus struct {
	PerSource    map[Source]int
	Total        int
	LastSyncedAt *time.Time
}

// Connector fetches raw postings from one external source and normalizes
// the ones belonging to a target employer into canonical Postings.
// Implementations return partial results alongside a non-nil error when a
// mid-sequence request fails, and ErrNoCredential (with no outbound call)
// when a required credential is absent.
type Connector interface {
	Name() Source
	Fetch(ctx context.Context, targets *identity.TargetSet) ([]Posting, error)
}

// PostingStore persists canonical postings keyed by composite id.
type PostingStore interface {
	UpsertPosting(p Posting) (inserted bool, err error)
	CountBySource(source Source) (int, error)
	MostRecentIngestedAt() (time.Time, bool, error)
}

// Directory supplies the current set of target employer names.
type Directory interface {
	CompanyNames() ([]string, error)
}

// Notifier reports the outcome of a sync pass.
type Notifier interface {
	Notify(report SyncReport) error
}
