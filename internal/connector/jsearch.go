package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
	"github.com/sponsorboard/jobsync/internal/ratelimit"
)

const (
	jsearchBaseURL = "https://jsearch.p.rapidapi.com"
	jsearchHost    = "jsearch.p.rapidapi.com"
)

// jsearchJob represents a single job in the JSearch API response.
type jsearchJob struct {
	JobID                string  `json:"job_id"`
	EmployerName         string  `json:"employer_name"`
	JobTitle             string  `json:"job_title"`
	JobCity              string  `json:"job_city"`
	JobState             string  `json:"job_state"`
	JobApplyLink         string  `json:"job_apply_link"`
	JobDescription       string  `json:"job_description"`
	JobEmploymentType    string  `json:"job_employment_type"`
	JobIsRemote          bool    `json:"job_is_remote"`
	JobPostedAtTimestamp int64   `json:"job_posted_at_timestamp"`
	JobMinSalary         float64 `json:"job_min_salary"`
	JobMaxSalary         float64 `json:"job_max_salary"`
}

// jsearchResponse is the top-level JSearch API response.
type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// JSearchConnector fetches postings from the JSearch aggregator behind a
// RapidAPI key. The source is optional: with no key configured, Fetch
// short-circuits to ErrNoCredential without any outbound call, which the
// orchestrator reports as "skipped" rather than "fetched zero".
type JSearchConnector struct {
	apiKey  string
	queries []string
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewJSearchConnector creates a connector that issues one search per query
// string (typically "<employer> software engineer").
func NewJSearchConnector(apiKey string, queries []string, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *JSearchConnector {
	return &JSearchConnector{
		apiKey:  apiKey,
		queries: queries,
		client:  client,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *JSearchConnector) Name() model.Source {
	return model.SourceJSearch
}

// Fetch runs every configured query and normalizes the postings belonging
// to a target employer. A failed query truncates its own results only.
func (c *JSearchConnector) Fetch(ctx context.Context, targets *identity.TargetSet) ([]model.Posting, error) {
	if c.apiKey == "" {
		return nil, model.ErrNoCredential
	}

	now := c.now().UTC()

	var postings []model.Posting
	var lastErr error
	for _, query := range c.queries {
		if err := c.limiter.Wait(ctx, jsearchHost); err != nil {
			return postings, err
		}

		jobs, err := c.search(ctx, query)
		if err != nil {
			c.logger.Warn("jsearch query failed", "query", query, "error", err)
			lastErr = err
			continue
		}

		for _, raw := range jobs {
			if p, ok := normalizeJSearch(raw, targets, now); ok {
				postings = append(postings, p)
			}
		}
	}

	return postings, lastErr
}

func (c *JSearchConnector) search(ctx context.Context, query string) ([]jsearchJob, error) {
	u, _ := url.Parse(jsearchBaseURL + "/search")
	q := u.Query()
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("num_pages", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w", query, err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", jsearchHost)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch fetch for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("jsearch fetch for %q: unexpected status %d", query, resp.StatusCode),
		}
	}

	var jsResp jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&jsResp); err != nil {
		return nil, fmt.Errorf("jsearch decode for %q: %w", query, err)
	}
	return jsResp.Data, nil
}

// normalizeJSearch maps one raw JSearch record to the canonical Posting
// shape, gated by the target employer matcher. Salary bounds, when both are
// present, become a midpoint compensation estimate.
func normalizeJSearch(raw jsearchJob, targets *identity.TargetSet, now time.Time) (model.Posting, bool) {
	if raw.JobID == "" {
		return model.Posting{}, false
	}
	if !targets.Contains(raw.EmployerName) {
		return model.Posting{}, false
	}

	location := raw.JobCity
	if raw.JobState != "" {
		if location != "" {
			location += ", "
		}
		location += raw.JobState
	}
	if location == "" && raw.JobIsRemote {
		location = "Remote"
	}

	postedAt := now
	if raw.JobPostedAtTimestamp > 0 {
		postedAt = time.Unix(raw.JobPostedAtTimestamp, 0).UTC()
	}

	employment := "Full-time"
	if raw.JobEmploymentType != "" {
		employment = raw.JobEmploymentType
	}

	var compensation float64
	if raw.JobMinSalary > 0 && raw.JobMaxSalary > 0 {
		compensation = (raw.JobMinSalary + raw.JobMaxSalary) / 2
	}

	description := extractText(raw.JobDescription)
	return model.Posting{
		ID:                   model.CompositeID(model.SourceJSearch, raw.JobID),
		Source:               model.SourceJSearch,
		ExternalID:           raw.JobID,
		Title:                raw.JobTitle,
		OrganizationName:     raw.EmployerName,
		LocationText:         location,
		DerivedRegion:        deriveRegion(location),
		Description:          capDescription(description),
		ApplyURL:             raw.JobApplyLink,
		EmploymentType:       employment,
		PostedAt:             postedAt,
		CompensationEstimate: compensation,
		Requirements:         extractRequirements(description),
		IngestedAt:           now,
	}, true
}
