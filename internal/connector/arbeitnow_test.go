package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sponsorboard/jobsync/internal/model"
)

func TestArbeitnowFetch_FiltersToTargets(t *testing.T) {
	payload := `{
		"data": [
			{
				"slug": "backend-engineer-stripe-berlin-42",
				"company_name": "Stripe",
				"title": "Backend Engineer",
				"description": "<p>Build payment APIs. Requires 5+ years experience with Go.</p>",
				"remote": false,
				"url": "https://www.arbeitnow.com/jobs/backend-engineer-stripe-berlin-42",
				"job_types": ["full_time"],
				"location": "Berlin",
				"created_at": 1767225600
			},
			{
				"slug": "barista-coffeehouse-1",
				"company_name": "Coffeehouse",
				"title": "Barista",
				"description": "Make coffee",
				"remote": false,
				"url": "https://www.arbeitnow.com/jobs/barista-coffeehouse-1",
				"job_types": [],
				"location": "Munich",
				"created_at": 0
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	conn := NewArbeitnowConnector(rewriteClient(srv))
	conn.now = fixedNow

	postings, err := conn.Fetch(context.Background(), targetSet("Stripe"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.ID != "arbeitnow_backend-engineer-stripe-berlin-42" {
		t.Errorf("unexpected id %q", p.ID)
	}
	if p.Source != model.SourceArbeitnow {
		t.Errorf("unexpected source %q", p.Source)
	}
	if p.OrganizationName != "Stripe" {
		t.Errorf("unexpected organization %q", p.OrganizationName)
	}
	if p.EmploymentType != "full_time" {
		t.Errorf("unexpected employment type %q", p.EmploymentType)
	}
	if want := time.Unix(1767225600, 0).UTC(); !p.PostedAt.Equal(want) {
		t.Errorf("expected posted at %v, got %v", want, p.PostedAt)
	}
	if p.Description == "" || p.Description[0] == '<' {
		t.Errorf("expected stripped description, got %q", p.Description)
	}
	if len(p.Requirements) == 0 {
		t.Error("expected requirements extracted from description")
	}
}

func TestArbeitnowFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	conn := NewArbeitnowConnector(rewriteClient(srv))

	_, err := conn.Fetch(context.Background(), targetSet("Stripe"))
	if err == nil {
		t.Fatal("expected error")
	}
	httpErr, ok := err.(*model.HTTPError)
	if !ok {
		t.Fatalf("expected *model.HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter != 30*time.Second {
		t.Errorf("expected retry after 30s, got %v", httpErr.RetryAfter)
	}
}

func TestNormalizeArbeitnow_Defaults(t *testing.T) {
	now := fixedNow()
	raw := arbeitnowJob{
		Slug:        "remote-role-7",
		CompanyName: "Stripe",
		Title:       "Engineer",
		Remote:      true,
	}

	p, ok := normalizeArbeitnow(raw, targetSet("Stripe"), now)
	if !ok {
		t.Fatal("expected posting to be kept")
	}
	if p.LocationText != "Remote" {
		t.Errorf("expected Remote location, got %q", p.LocationText)
	}
	if p.DerivedRegion != RegionRemote {
		t.Errorf("expected Remote region, got %q", p.DerivedRegion)
	}
	if !p.PostedAt.Equal(now) {
		t.Errorf("expected posted at fallback %v, got %v", now, p.PostedAt)
	}
	if p.EmploymentType != "Full-time" {
		t.Errorf("expected Full-time default, got %q", p.EmploymentType)
	}

	if _, ok := normalizeArbeitnow(arbeitnowJob{CompanyName: "Stripe"}, targetSet("Stripe"), now); ok {
		t.Error("expected empty slug to be dropped")
	}
}
