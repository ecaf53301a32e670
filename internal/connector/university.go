package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sponsorboard/jobsync/internal/identity"
	"github.com/sponsorboard/jobsync/internal/model"
	"github.com/sponsorboard/jobsync/internal/ratelimit"
)

// UniversityPage names one university career page to scrape.
type UniversityPage struct {
	Name string
	URL  string
}

const universityMaxPerPage = 20

var universitySkipKeywords = []string{
	"student", "part-time", "temporary", "adjunct", "hourly", "intern",
	"view all", "apply now",
}

var universityIncludeKeywords = []string{
	"professor", "researcher", "scientist", "engineer", "analyst",
	"developer", "faculty", "postdoc", "staff", "coordinator",
	"manager", "director", "specialist", "technician",
}

// UniversityConnector scrapes job links off university career pages. These
// pages share no API and no markup convention, so extraction is a loose
// heuristic over job-looking anchors; each page yields at most
// universityMaxPerPage postings.
type UniversityConnector struct {
	pages   []UniversityPage
	client  *http.Client
	limiter *ratelimit.HostLimiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewUniversityConnector creates a connector over the given career pages.
func NewUniversityConnector(pages []UniversityPage, client *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) *UniversityConnector {
	return &UniversityConnector{
		pages:   pages,
		client:  client,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *UniversityConnector) Name() model.Source {
	return model.SourceUniversity
}

// Fetch scrapes every configured page, keeping universities that are target
// employers. A page failure truncates that page's contribution only.
func (c *UniversityConnector) Fetch(ctx context.Context, targets *identity.TargetSet) ([]model.Posting, error) {
	now := c.now().UTC()

	var postings []model.Posting
	var lastErr error
	for _, page := range c.pages {
		if !targets.Contains(page.Name) {
			continue
		}
		if err := c.limiter.WaitURL(ctx, page.URL); err != nil {
			return postings, err
		}

		found, err := c.scrapePage(ctx, page, now)
		if err != nil {
			c.logger.Warn("university page scrape failed",
				"university", page.Name,
				"error", err,
			)
			lastErr = err
			continue
		}
		postings = append(postings, found...)
	}

	return postings, lastErr
}

func (c *UniversityConnector) scrapePage(ctx context.Context, page UniversityPage, now time.Time) ([]model.Posting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("university request for %s: %w", page.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("university fetch for %s: %w", page.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("university fetch for %s: unexpected status %d", page.Name, resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("university parse for %s: %w", page.Name, err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("university base url for %s: %w", page.Name, err)
	}

	var postings []model.Posting
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !looksLikeJobLink(href) {
			return true
		}

		title := strings.Join(strings.Fields(sel.Text()), " ")
		if !acceptableUniversityTitle(title) {
			return true
		}

		applyURL := resolveURL(base, href)
		postings = append(postings, model.Posting{
			ID:               model.CompositeID(model.SourceUniversity, applyURL),
			Source:           model.SourceUniversity,
			ExternalID:       applyURL,
			Title:            title,
			OrganizationName: page.Name,
			DerivedRegion:    RegionVarious,
			ApplyURL:         applyURL,
			EmploymentType:   "Full-time",
			PostedAt:         now,
			IngestedAt:       now,
		})
		return len(postings) < universityMaxPerPage
	})

	return postings, nil
}

// looksLikeJobLink reports whether an href points at something job-shaped.
func looksLikeJobLink(href string) bool {
	h := strings.ToLower(href)
	return strings.Contains(h, "job") ||
		strings.Contains(h, "position") ||
		strings.Contains(h, "faculty") ||
		strings.Contains(h, "staff") ||
		strings.Contains(h, "career")
}

// acceptableUniversityTitle filters anchor text down to plausible full-time
// position titles.
func acceptableUniversityTitle(title string) bool {
	if len(title) < 5 || len(title) > 150 {
		return false
	}
	lower := strings.ToLower(title)
	for _, kw := range universitySkipKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range universityIncludeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// resolveURL makes href absolute against the page URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}
