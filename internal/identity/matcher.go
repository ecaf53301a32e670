package identity

import "strings"

// Matching thresholds arrived at empirically: the length floor stops short
// tokens like "co" from matching everything, the ratio stops a long
// candidate from matching on a trivial prefix. Missing a real target
// employer is the worse failure mode, so the defaults stay permissive.
const (
	DefaultMinRatio  = 0.7
	DefaultMinLength = 4
)

// Options tunes target-employer matching.
type Options struct {
	MinRatio  float64  // minimum min(len)/max(len) for a fuzzy containment match
	MinLength int      // fuzzy matching skips candidates shorter than this
	Suffixes  []string // suffix list for Normalize, defaults to DefaultSuffixes
}

func (o Options) withDefaults() Options {
	if o.MinRatio <= 0 {
		o.MinRatio = DefaultMinRatio
	}
	if o.MinLength <= 0 {
		o.MinLength = DefaultMinLength
	}
	if len(o.Suffixes) == 0 {
		o.Suffixes = DefaultSuffixes
	}
	return o
}

// TargetSet is an immutable snapshot of the target employer names, captured
// once per sync pass. Both the raw (lowercased, trimmed) and normalized form
// of every name are precomputed so Contains never re-normalizes the set.
type TargetSet struct {
	exact      map[string]struct{}
	candidates []string
	size       int
	opts       Options
}

// NewTargetSet builds a snapshot from the given employer names.
func NewTargetSet(names []string, opts Options) *TargetSet {
	t := &TargetSet{
		exact: make(map[string]struct{}, len(names)*2),
		opts:  opts.withDefaults(),
	}

	for _, name := range names {
		raw := strings.ToLower(strings.TrimSpace(name))
		if raw == "" {
			continue
		}
		t.size++
		t.add(raw)
		if norm := NormalizeWith(raw, t.opts.Suffixes); norm != "" {
			t.add(norm)
		}
	}

	return t
}

func (t *TargetSet) add(key string) {
	if _, ok := t.exact[key]; ok {
		return
	}
	t.exact[key] = struct{}{}
	t.candidates = append(t.candidates, key)
}

// Len reports how many non-empty employer names seeded the snapshot.
func (t *TargetSet) Len() int {
	return t.size
}

// Contains reports whether rawName belongs to the target employer set.
// Checks short-circuit in order: exact normalized match, exact raw match,
// then fuzzy containment against every stored candidate.
func (t *TargetSet) Contains(rawName string) bool {
	raw := strings.ToLower(strings.TrimSpace(rawName))
	if raw == "" {
		return false
	}

	norm := NormalizeWith(raw, t.opts.Suffixes)
	if norm != "" {
		if _, ok := t.exact[norm]; ok {
			return true
		}
	}
	if _, ok := t.exact[raw]; ok {
		return true
	}

	probe := norm
	if probe == "" {
		probe = raw
	}
	for _, candidate := range t.candidates {
		if t.fuzzyMatch(probe, candidate) {
			return true
		}
	}
	return false
}

// fuzzyMatch declares a match when one string contains the other and their
// lengths are within the configured ratio.
func (t *TargetSet) fuzzyMatch(name, candidate string) bool {
	if len(candidate) < t.opts.MinLength {
		return false
	}

	shorter, longer := name, candidate
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 || !strings.Contains(longer, shorter) {
		return false
	}
	return float64(len(shorter))/float64(len(longer)) >= t.opts.MinRatio
}
