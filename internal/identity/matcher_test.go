package identity

import "testing"

func newSet(names ...string) *TargetSet {
	return NewTargetSet(names, Options{})
}

func TestContains_ExactAndSuffixInsensitive(t *testing.T) {
	set := newSet("Google LLC", "stripe", "Amazon.com Services LLC")

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"member matches itself", "Google LLC", true},
		{"suffix-insensitive", "Google", true},
		{"raw-cased member", "STRIPE", true},
		{"suffixed probe against bare target", "Stripe, Inc.", true},
		{"unknown employer", "Initech", false},
		{"empty name", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := set.Contains(tc.in); got != tc.want {
				t.Errorf("Contains(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestContains_EveryMemberMatches(t *testing.T) {
	names := []string{"Google LLC", "Stripe, Inc.", "Meta Platforms", "Shopify"}
	set := newSet(names...)
	for _, name := range names {
		if !set.Contains(name) {
			t.Errorf("Contains(%q) = false for a set member", name)
		}
	}
}

func TestContains_FuzzyContainment(t *testing.T) {
	set := newSet("Google")

	// "googler" (7) contains "google" (6): ratio 6/7 ≈ 0.86 — match.
	if !set.Contains("Googler") {
		t.Error("Contains(Googler) = false, want true (containment within ratio)")
	}
	// "goo" (3) vs "google" (6): ratio 0.5 — below the 0.7 floor.
	if set.Contains("Goo") {
		t.Error("Contains(Goo) = true, want false (length-4 floor / ratio)")
	}
}

func TestContains_ShortCandidatesSkipped(t *testing.T) {
	// "co" is below the length floor: it must not fuzzy-match everything.
	set := newSet("co")
	if set.Contains("Costco Wholesale") {
		t.Error("short candidate matched via containment, want no match")
	}
	// Exact raw match still works for a short member.
	if !set.Contains("co") {
		t.Error("Contains(co) = false for exact member")
	}
}

func TestContains_TunableThresholds(t *testing.T) {
	strict := NewTargetSet([]string{"Google"}, Options{MinRatio: 0.95})
	if strict.Contains("Googler") {
		t.Error("strict ratio still matched, want no match at 0.95")
	}

	loose := NewTargetSet([]string{"Google"}, Options{MinRatio: 0.4})
	if !loose.Contains("Goo") {
		t.Error("loose ratio did not match, want match at 0.4")
	}
}

func TestLen_CountsSeededNames(t *testing.T) {
	set := newSet("Google LLC", "", "  ", "Stripe")
	if got := set.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 (blank names ignored)", got)
	}
}
