package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sponsorboard/jobsync/internal/model"
)

func TestGreenhouseFetch_NormalizesBoardJobs(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 42,
				"title": "Software Engineer",
				"location": {"name": "New York, NY"},
				"content": "<p>Work on payments. Requires a bachelor degree.</p>",
				"absolute_url": "https://boards.greenhouse.io/stripe/jobs/42",
				"updated_at": "2026-02-13T10:00:00Z"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	boards := []GreenhouseBoard{{Token: "stripe", Company: "Stripe, Inc."}}
	conn := NewGreenhouseConnector(boards, rewriteClient(srv), noDelayLimiter(), discardLogger())
	conn.now = fixedNow

	postings, err := conn.Fetch(context.Background(), targetSet("stripe"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.ID != "greenhouse_42" {
		t.Errorf("expected id greenhouse_42, got %q", p.ID)
	}
	if p.ExternalID != "42" {
		t.Errorf("expected external id 42, got %q", p.ExternalID)
	}
	if p.OrganizationName != "Stripe, Inc." {
		t.Errorf("unexpected organization %q", p.OrganizationName)
	}
	if p.DerivedRegion != "NY" {
		t.Errorf("expected region NY, got %q", p.DerivedRegion)
	}
	if want := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC); !p.PostedAt.Equal(want) {
		t.Errorf("expected posted at %v, got %v", want, p.PostedAt)
	}
	if strings.Contains(p.Description, "<p>") {
		t.Errorf("expected stripped description, got %q", p.Description)
	}
}

func TestGreenhouseFetch_PartialBoardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/broken/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs": [{"id": 7, "title": "Engineer", "location": {"name": "Remote"}, "absolute_url": "https://example.com/7", "updated_at": ""}]}`))
	}))
	defer srv.Close()

	boards := []GreenhouseBoard{
		{Token: "broken", Company: "Acme"},
		{Token: "stripe", Company: "Stripe"},
	}
	conn := NewGreenhouseConnector(boards, rewriteClient(srv), noDelayLimiter(), discardLogger())
	conn.now = fixedNow

	postings, err := conn.Fetch(context.Background(), targetSet("Acme", "Stripe"))
	if err == nil {
		t.Fatal("expected error from broken board")
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting from healthy board, got %d", len(postings))
	}
	if postings[0].OrganizationName != "Stripe" {
		t.Errorf("unexpected organization %q", postings[0].OrganizationName)
	}
}

func TestNormalizeGreenhouse_Gates(t *testing.T) {
	now := fixedNow()
	raw := greenhouseJob{ID: 9, Title: "Engineer"}

	if _, ok := normalizeGreenhouse(raw, "Acme", targetSet("Stripe"), now); ok {
		t.Error("expected non-target company to be dropped")
	}
	if _, ok := normalizeGreenhouse(greenhouseJob{}, "Stripe", targetSet("Stripe"), now); ok {
		t.Error("expected zero id to be dropped")
	}

	p, ok := normalizeGreenhouse(raw, "Stripe", targetSet("Stripe"), now)
	if !ok {
		t.Fatal("expected posting to be kept")
	}
	if p.Source != model.SourceGreenhouse {
		t.Errorf("unexpected source %q", p.Source)
	}
	if !p.PostedAt.Equal(now) {
		t.Errorf("expected posted at fallback %v, got %v", now, p.PostedAt)
	}
}
