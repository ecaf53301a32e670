package connector

import (
	"strings"
	"testing"

	"github.com/sponsorboard/jobsync/internal/model"
)

func TestDeriveRegion(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"Austin, TX", "TX"},
		{"New York, NY", "NY"},
		{"Remote", RegionRemote},
		{"Remote, US", RegionRemote},
		{"Somewhere", RegionVarious},
		{"", RegionVarious},
		{"Berlin, Germany", RegionVarious},
		{"San Francisco, CA; Seattle, WA", "CA"},
	}
	for _, tt := range tests {
		if got := deriveRegion(tt.location); got != tt.want {
			t.Errorf("deriveRegion(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestExtractRequirements(t *testing.T) {
	desc := "We are hiring. Candidates must have a bachelor degree in CS. " +
		"5+ years experience with distributed systems. " +
		"Proficient in Go, Rust, and SQL."

	reqs := extractRequirements(desc)
	if len(reqs) == 0 {
		t.Fatal("expected requirements to be extracted")
	}
	for _, r := range reqs {
		if strings.TrimSpace(r) == "" {
			t.Error("extracted an empty requirement")
		}
	}
}

func TestExtractRequirements_Cap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("3+ years experience with systems. ")
	}

	reqs := extractRequirements(b.String())
	if len(reqs) > maxRequirements {
		t.Errorf("expected at most %d requirements, got %d", maxRequirements, len(reqs))
	}
}

func TestCapDescription(t *testing.T) {
	long := strings.Repeat("a", model.MaxDescriptionLen+100)
	if got := capDescription(long); len(got) != model.MaxDescriptionLen {
		t.Errorf("expected description capped at %d, got %d", model.MaxDescriptionLen, len(got))
	}
	if got := capDescription("short"); got != "short" {
		t.Errorf("expected short description unchanged, got %q", got)
	}
}

func TestExtractText(t *testing.T) {
	in := "&lt;p&gt;Hello &amp; welcome&lt;/p&gt;"
	if got := extractText(in); got != "Hello & welcome" {
		t.Errorf("extractText(%q) = %q", in, got)
	}

	in = "<div>Multiple   spaces\n\nand tags</div>"
	if got := extractText(in); got != "Multiple spaces and tags" {
		t.Errorf("extractText(%q) = %q", in, got)
	}
}
