package connector

import (
	"regexp"
	"strings"

	"github.com/sponsorboard/jobsync/internal/model"
)

// RegionRemote and RegionVarious are the fallback region tags when no US
// state code is found in a location string.
const (
	RegionRemote  = "Remote"
	RegionVarious = "Various"
)

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
}

// deriveRegion extracts a best-effort region token from a free-text location
// string: a whole-token two-letter US state code, else "Remote" when a
// remote-work keyword appears, else "Various". Not authoritative geocoding.
func deriveRegion(location string) string {
	tokens := strings.FieldsFunc(strings.ToUpper(location), func(r rune) bool {
		return r < 'A' || r > 'Z'
	})
	for _, token := range tokens {
		if _, ok := usStates[token]; ok {
			return token
		}
	}

	if strings.Contains(strings.ToLower(location), "remote") {
		return RegionRemote
	}
	return RegionVarious
}

const (
	maxPerPattern   = 3
	maxRequirements = 10
)

var requirementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:require|requirement|must have|need).*?(?:degree|bachelor|master|phd)`),
	regexp.MustCompile(`(?i)\d+\+?\s*years?.*?experience`),
	regexp.MustCompile(`(?i)(?:proficient in|experience with|knowledge of)\s+[\w\s,]+`),
}

// extractRequirements pulls requirement-looking phrases out of a free-text
// description: at most three matches per pattern, ten total, in first-seen
// order.
func extractRequirements(description string) []string {
	if description == "" {
		return nil
	}

	var requirements []string
	for _, pattern := range requirementPatterns {
		matches := pattern.FindAllString(description, maxPerPattern)
		requirements = append(requirements, matches...)
	}

	if len(requirements) > maxRequirements {
		requirements = requirements[:maxRequirements]
	}
	return requirements
}

// capDescription truncates a description to the canonical maximum length.
func capDescription(description string) string {
	if len(description) > model.MaxDescriptionLen {
		return description[:model.MaxDescriptionLen]
	}
	return description
}
