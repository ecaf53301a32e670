// Package dedupe collapses postings gathered from multiple sources into one
// record per composite identifier.
package dedupe

import (
	"github.com/sponsorboard/jobsync/internal/model"
)

// ByCompositeID collapses duplicate postings, keeping the last occurrence of
// each composite id. Input order decides the winner, so callers that need a
// deterministic result sort first.
func ByCompositeID(postings []model.Posting) []model.Posting {
	if len(postings) == 0 {
		return nil
	}

	index := make(map[string]int, len(postings))
	unique := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		if i, seen := index[p.ID]; seen {
			unique[i] = p
			continue
		}
		index[p.ID] = len(unique)
		unique = append(unique, p)
	}
	return unique
}
