package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
)

const arbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"

// arbeitnowJob represents a single job in the Arbeitnow job board response.
type arbeitnowJob struct {
	Slug        string   `json:"slug"`
	CompanyName string   `json:"company_name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url"`
	JobTypes    []string `json:"job_types"`
	Location    string   `json:"location"`
	CreatedAt   int64    `json:"created_at"`
}

// arbeitnowResponse is the top-level Arbeitnow API response.
type arbeitnowResponse struct {
	Data []arbeitnowJob `json:"data"`
}

// ArbeitnowConnector fetches postings from the public Arbeitnow job board
// API. Single unauthenticated GET, no pagination.
type ArbeitnowConnector struct {
	client *http.Client
	now    func() time.Time
}

// NewArbeitnowConnector creates a connector for the Arbeitnow job board.
func NewArbeitnowConnector(client *http.Client) *ArbeitnowConnector {
	return &ArbeitnowConnector{
		client: client,
		now:    time.Now,
	}
}

func (c *ArbeitnowConnector) Name() model.Source {
	return model.SourceArbeitnow
}

// Fetch retrieves all current Arbeitnow postings and normalizes the ones
// belonging to a target employer.
func (c *ArbeitnowConnector) Fetch(ctx context.Context, targets *identity.TargetSet) ([]model.Posting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arbeitnowURL, nil)
	if err != nil {
		return nil, fmt.Errorf("arbeitnow fetch: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arbeitnow fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("arbeitnow fetch: unexpected status %d", resp.StatusCode),
		}
	}

	var anResp arbeitnowResponse
	if err := json.NewDecoder(resp.Body).Decode(&anResp); err != nil {
		return nil, fmt.Errorf("arbeitnow decode: %w", err)
	}

	now := c.now().UTC()
	var postings []model.Posting
	for _, raw := range anResp.Data {
		if p, ok := normalizeArbeitnow(raw, targets, now); ok {
			postings = append(postings, p)
		}
	}
	return postings, nil
}

// normalizeArbeitnow maps one raw Arbeitnow record to the canonical Posting
// shape, gated by the target employer matcher. Returns false for records
// that are filtered out or malformed.
func normalizeArbeitnow(raw arbeitnowJob, targets *identity.TargetSet, now time.Time) (model.Posting, bool) {
	if raw.Slug == "" {
		return model.Posting{}, false
	}
	if !targets.Contains(raw.CompanyName) {
		return model.Posting{}, false
	}

	location := raw.Location
	if location == "" && raw.Remote {
		location = "Remote"
	}

	postedAt := now
	if raw.CreatedAt > 0 {
		postedAt = time.Unix(raw.CreatedAt, 0).UTC()
	}

	employment := "Full-time"
	if len(raw.JobTypes) > 0 && raw.JobTypes[0] != "" {
		employment = raw.JobTypes[0]
	}

	description := extractText(raw.Description)
	return model.Posting{
		ID:               model.CompositeID(model.SourceArbeitnow, raw.Slug),
		Source:           model.SourceArbeitnow,
		ExternalID:       raw.Slug,
		Title:            raw.Title,
		OrganizationName: raw.CompanyName,
		LocationText:     location,
		DerivedRegion:    deriveRegion(location),
		Description:      capDescription(description),
		ApplyURL:         raw.URL,
		EmploymentType:   employment,
		PostedAt:         postedAt,
		Requirements:     extractRequirements(description),
		IngestedAt:       now,
	}, true
}
