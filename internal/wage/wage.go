// Package wage estimates prevailing wage levels from OFLC survey data.
// It is a standalone lookup utility and takes no part in the sync pipeline.
package wage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// hoursPerYear converts the survey's hourly rates to annual salaries.
const hoursPerYear = 2080

// DefaultLevel is returned when no salary or wage data is available to
// decide.
const DefaultLevel = 2

// Levels holds the four annual prevailing wage levels for one occupation in
// one state.
type Levels struct {
	Level1 float64
	Level2 float64
	Level3 float64
	Level4 float64
}

func (l Levels) level(n int) float64 {
	switch n {
	case 1:
		return l.Level1
	case 2:
		return l.Level2
	case 3:
		return l.Level3
	default:
		return l.Level4
	}
}

// techSOCCodes maps common tech job titles to SOC occupation codes, used
// when the survey titles themselves don't match.
var techSOCCodes = map[string]string{
	"software engineer":      "15-1252",
	"software developer":     "15-1252",
	"web developer":          "15-1254",
	"data scientist":         "15-2051",
	"data analyst":           "15-2051",
	"database administrator": "15-1242",
	"network engineer":       "15-1244",
	"systems administrator":  "15-1244",
	"devops":                 "15-1244",
	"product manager":        "11-2021",
	"project manager":        "11-9199",
}

// fallbackRanges are generic tech salary ranges by level, used when the
// survey has no data for a title.
var fallbackRanges = map[int][2]float64{
	1: {60000, 90000},
	2: {90000, 130000},
	3: {130000, 180000},
	4: {180000, 250000},
}

// Estimator predicts wage levels from a loaded wage table.
type Estimator struct {
	wages     map[string]map[string]Levels // state -> soc -> levels
	socTitles map[string]string            // soc -> occupation title
}

// LoadWageFile reads a wage table CSV from disk.
func LoadWageFile(path string) (*Estimator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wage table: %w", err)
	}
	defer f.Close()
	return LoadWageTable(f)
}

// LoadWageTable parses a wage table CSV with columns
// state,soc,title,level1,level2,level3,level4 where the levels are hourly
// rates. A header row is detected and skipped. Rows with unparsable rates
// are dropped.
func LoadWageTable(r io.Reader) (*Estimator, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	e := &Estimator{
		wages:     make(map[string]map[string]Levels),
		socTitles: make(map[string]string),
	}

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading wage table: %w", err)
		}

		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "state") {
				continue
			}
		}

		state := strings.ToUpper(strings.TrimSpace(record[0]))
		soc := strings.TrimSpace(record[1])
		title := strings.TrimSpace(record[2])
		if state == "" || soc == "" {
			continue
		}

		var hourly [4]float64
		ok := true
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[3+i]), 64)
			if err != nil {
				ok = false
				break
			}
			hourly[i] = v
		}
		if !ok {
			continue
		}

		if _, exists := e.wages[state]; !exists {
			e.wages[state] = make(map[string]Levels)
		}
		e.wages[state][soc] = Levels{
			Level1: hourly[0] * hoursPerYear,
			Level2: hourly[1] * hoursPerYear,
			Level3: hourly[2] * hoursPerYear,
			Level4: hourly[3] * hoursPerYear,
		}
		if title != "" {
			e.socTitles[soc] = title
		}
	}

	return e, nil
}

// socByTitle resolves a free-text job title to a SOC code: exact survey
// title match, then word overlap in both directions, then the tech title
// fallback table. Empty string when nothing matches.
func (e *Estimator) socByTitle(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return ""
	}

	for soc, t := range e.socTitles {
		if strings.ToLower(t) == lower {
			return soc
		}
	}

	for soc, t := range e.socTitles {
		if wordsOverlap(lower, strings.ToLower(t)) && wordsOverlap(strings.ToLower(t), lower) {
			return soc
		}
	}

	for key, soc := range techSOCCodes {
		if strings.Contains(lower, key) {
			return soc
		}
	}
	return ""
}

// wordsOverlap reports whether any word of a longer than 3 characters
// appears in b.
func wordsOverlap(a, b string) bool {
	for _, word := range strings.Fields(a) {
		if len(word) > 3 && strings.Contains(b, word) {
			return true
		}
	}
	return false
}

// levelsFor returns the wage levels for a title and state, falling back to
// the national ("US") table when the state has no entry.
func (e *Estimator) levelsFor(title, state string) (Levels, bool) {
	soc := e.socByTitle(title)
	if soc == "" {
		return Levels{}, false
	}

	state = strings.ToUpper(strings.TrimSpace(state))
	if levels, ok := e.wages[state][soc]; ok {
		return levels, true
	}
	levels, ok := e.wages["US"][soc]
	return levels, ok
}

// PredictLevel maps a salary to a wage level (1-4) for the given title and
// state. Without a salary it returns DefaultLevel; without survey data it
// falls back to generic tech salary bands.
func (e *Estimator) PredictLevel(title, state string, salary float64) int {
	if salary <= 0 {
		return DefaultLevel
	}

	levels, ok := e.levelsFor(title, state)
	if !ok {
		switch {
		case salary < 80000:
			return 1
		case salary < 120000:
			return 2
		case salary < 160000:
			return 3
		default:
			return 4
		}
	}

	switch {
	case salary < levels.Level2:
		return 1
	case salary < levels.Level3:
		return 2
	case salary < levels.Level4:
		return 3
	default:
		return 4
	}
}

// SuggestedRange returns a salary range for the given title, state, and
// level: the survey wage plus or minus ten percent, or a generic band when
// no survey data matches. Levels outside 1-4 use the level 2 band.
func (e *Estimator) SuggestedRange(title, state string, level int) (float64, float64) {
	levels, ok := e.levelsFor(title, state)
	if !ok {
		r, exists := fallbackRanges[level]
		if !exists {
			r = fallbackRanges[DefaultLevel]
		}
		return r[0], r[1]
	}

	if level < 1 || level > 4 {
		level = DefaultLevel
	}
	wage := levels.level(level)
	return wage * 0.9, wage * 1.1
}
