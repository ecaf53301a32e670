package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
	"github.com/sponsorboard/jobsync/internal/ratelimit"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseBoard pairs a public board token with the employer name the
// board belongs to. The boards API does not echo a company name per job, so
// the pairing is configuration.
type GreenhouseBoard struct {
	Token   string
	Company string
}

// greenhouseJob represents a single job in the Greenhouse boards API
// response (with content=true).
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	Content     string             `json:"content"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseConnector fetches postings from the Greenhouse public boards
// API, one request per configured board. A failed board truncates that
// board's contribution; the remaining boards still run.
type GreenhouseConnector struct {
	boards  []GreenhouseBoard
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewGreenhouseConnector creates a connector over the given boards. The
// limiter spaces consecutive board requests.
func NewGreenhouseConnector(boards []GreenhouseBoard, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *GreenhouseConnector {
	return &GreenhouseConnector{
		boards:  boards,
		client:  client,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *GreenhouseConnector) Name() model.Source {
	return model.SourceGreenhouse
}

// Fetch walks every configured board and normalizes the postings belonging
// to a target employer. On a board failure the postings gathered so far are
// returned alongside the error.
func (c *GreenhouseConnector) Fetch(ctx context.Context, targets *identity.TargetSet) ([]model.Posting, error) {
	now := c.now().UTC()

	var postings []model.Posting
	var lastErr error
	for _, board := range c.boards {
		if err := c.limiter.Wait(ctx, "boards-api.greenhouse.io"); err != nil {
			return postings, err
		}

		jobs, err := c.fetchBoard(ctx, board.Token)
		if err != nil {
			c.logger.Warn("greenhouse board fetch failed",
				"board", board.Token,
				"error", err,
			)
			lastErr = err
			continue
		}

		for _, raw := range jobs {
			if p, ok := normalizeGreenhouse(raw, board.Company, targets, now); ok {
				postings = append(postings, p)
			}
		}
	}

	return postings, lastErr
}

func (c *GreenhouseConnector) fetchBoard(ctx context.Context, token string) ([]greenhouseJob, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", token, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", token, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", token, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse decode for %s: %w", token, err)
	}
	return ghResp.Jobs, nil
}

// normalizeGreenhouse maps one raw Greenhouse job to the canonical Posting
// shape, gated by the target employer matcher.
func normalizeGreenhouse(raw greenhouseJob, company string, targets *identity.TargetSet, now time.Time) (model.Posting, bool) {
	if raw.ID == 0 {
		return model.Posting{}, false
	}
	if !targets.Contains(company) {
		return model.Posting{}, false
	}

	postedAt := now
	if raw.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.UpdatedAt); err == nil {
			postedAt = t.UTC()
		}
	}

	externalID := strconv.FormatInt(raw.ID, 10)
	description := extractText(raw.Content)
	return model.Posting{
		ID:               model.CompositeID(model.SourceGreenhouse, externalID),
		Source:           model.SourceGreenhouse,
		ExternalID:       externalID,
		Title:            raw.Title,
		OrganizationName: company,
		LocationText:     raw.Location.Name,
		DerivedRegion:    deriveRegion(raw.Location.Name),
		Description:      capDescription(description),
		ApplyURL:         raw.AbsoluteURL,
		EmploymentType:   "Full-time",
		PostedAt:         postedAt,
		Requirements:     extractRequirements(description),
		IngestedAt:       now,
	}, true
}
