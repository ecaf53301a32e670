package identity

import "strings"

// DefaultSuffixes is the ordered list of legal and generic business-descriptor
// suffixes stripped by Normalize. Only the first trailing match is removed,
// once per call. The list was tuned against observed employer names; override
// it via Options.Suffixes when a deployment needs different trimming.
var DefaultSuffixes = []string{
	"incorporated",
	"inc",
	"llc",
	"corporation",
	"corp",
	"limited",
	"ltd",
	"company",
	"co",
	"llp",
	"technologies",
	"technology",
	"platforms",
	"platform",
	"services",
	"service",
}

var punctReplacer = strings.NewReplacer(",", " ", ".", " ", "-", " ")

// Normalize canonicalizes a free-text organization name into a comparable
// key using the default suffix list. Pure and total: empty input yields
// empty output.
func Normalize(name string) string {
	return NormalizeWith(name, DefaultSuffixes)
}

// NormalizeWith lowercases, trims, strips punctuation, removes at most one
// trailing suffix from the given ordered list, and collapses internal
// whitespace. A name consisting solely of a suffix word is left intact.
func NormalizeWith(name string, suffixes []string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = punctReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	for _, suffix := range suffixes {
		if strings.HasSuffix(s, " "+suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, " "+suffix))
			break
		}
	}

	return s
}
