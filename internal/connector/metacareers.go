package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
)

const (
	metaGraphQLURL   = "https://www.metacareers.com/graphql"
	metaOrganization = "Meta"
)

const metaSearchQuery = `
query CareersSearchQuery($input: CareersSearchInput!) {
  careers_search(input: $input) {
    results {
      id
      title
      location_names
      canonical_url
    }
  }
}`

// metaSearchRequest is the GraphQL-over-HTTP request envelope.
type metaSearchRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// metaResult represents a single result in the careers_search response.
type metaResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	LocationNames []string `json:"location_names"`
	CanonicalURL  string   `json:"canonical_url"`
}

// metaSearchResponse is the top-level GraphQL response.
type metaSearchResponse struct {
	Data struct {
		CareersSearch struct {
			Results []metaResult `json:"results"`
		} `json:"careers_search"`
	} `json:"data"`
}

// MetaCareersConnector fetches postings from the Meta careers GraphQL
// endpoint. One POST per pass; the organization is fixed, so the matcher
// gate decides whether Meta is in scope at all.
type MetaCareersConnector struct {
	client *http.Client
	now    func() time.Time
}

// NewMetaCareersConnector creates a connector for Meta careers.
func NewMetaCareersConnector(client *http.Client) *MetaCareersConnector {
	return &MetaCareersConnector{
		client: client,
		now:    time.Now,
	}
}

func (c *MetaCareersConnector) Name() model.Source {
	return model.SourceMeta
}

// Fetch runs the careers search query and normalizes the results. When Meta
// is not in the target set, the call is skipped entirely.
func (c *MetaCareersConnector) Fetch(ctx context.Context, targets *identity.TargetSet) ([]model.Posting, error) {
	if !targets.Contains(metaOrganization) {
		return nil, nil
	}

	body := metaSearchRequest{
		Query: metaSearchQuery,
		Variables: map[string]any{
			"input": map[string]any{
				"q":         "software",
				"locations": []string{"United States"},
				"page":      1,
			},
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("metacareers marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, metaGraphQLURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("metacareers request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metacareers fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("metacareers fetch: unexpected status %d", resp.StatusCode),
		}
	}

	var metaResp metaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&metaResp); err != nil {
		return nil, fmt.Errorf("metacareers decode: %w", err)
	}

	now := c.now().UTC()
	var postings []model.Posting
	for _, raw := range metaResp.Data.CareersSearch.Results {
		if p, ok := normalizeMeta(raw, now); ok {
			postings = append(postings, p)
		}
	}
	return postings, nil
}

// normalizeMeta maps one careers_search result to the canonical Posting
// shape. The matcher gate already ran in Fetch, once for the whole source.
func normalizeMeta(raw metaResult, now time.Time) (model.Posting, bool) {
	if raw.ID == "" {
		return model.Posting{}, false
	}

	location := strings.Join(raw.LocationNames, "; ")
	return model.Posting{
		ID:               model.CompositeID(model.SourceMeta, raw.ID),
		Source:           model.SourceMeta,
		ExternalID:       raw.ID,
		Title:            raw.Title,
		OrganizationName: metaOrganization,
		LocationText:     location,
		DerivedRegion:    deriveRegion(location),
		ApplyURL:         raw.CanonicalURL,
		EmploymentType:   "Full-time",
		PostedAt:         now,
		IngestedAt:       now,
	}, true
}
