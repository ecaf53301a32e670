package wage

import (
	"strings"
	"testing"
)

const sampleTable = `state,soc,title,level1,level2,level3,level4
CA,15-1252,Software Developers,40.00,50.00,60.00,75.00
US,15-1252,Software Developers,35.00,45.00,55.00,65.00
US,15-2051,Data Scientists,38.00,48.00,58.00,70.00
`

func loadSample(t *testing.T) *Estimator {
	t.Helper()
	e, err := LoadWageTable(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("loading wage table: %v", err)
	}
	return e
}

func TestLoadWageTable_AnnualizesHourlyRates(t *testing.T) {
	e := loadSample(t)

	levels, ok := e.levelsFor("Software Developers", "CA")
	if !ok {
		t.Fatal("expected CA software developer levels")
	}
	if levels.Level1 != 40.00*hoursPerYear {
		t.Errorf("expected level1 %v, got %v", 40.00*hoursPerYear, levels.Level1)
	}
	if levels.Level4 != 75.00*hoursPerYear {
		t.Errorf("expected level4 %v, got %v", 75.00*hoursPerYear, levels.Level4)
	}
}

func TestLoadWageTable_SkipsBadRows(t *testing.T) {
	table := "state,soc,title,level1,level2,level3,level4\n" +
		"CA,15-1252,Software Developers,not-a-number,50,60,75\n" +
		"WA,15-1252,Software Developers,30,40,50,60\n"
	e, err := LoadWageTable(strings.NewReader(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.wages["CA"]; ok {
		t.Error("expected unparsable CA row to be dropped")
	}
	if _, ok := e.wages["WA"]; !ok {
		t.Error("expected valid WA row to be kept")
	}
}

func TestSOCByTitle(t *testing.T) {
	e := loadSample(t)

	tests := []struct {
		title string
		want  string
	}{
		{"Software Developers", "15-1252"},       // exact survey title
		{"Senior Software Developer", "15-1252"}, // word overlap
		{"DevOps Engineer", "15-1244"},           // tech fallback table
		{"Zookeeper", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := e.socByTitle(tt.title); got != tt.want {
			t.Errorf("socByTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestPredictLevel_WithSurveyData(t *testing.T) {
	e := loadSample(t)

	// CA level thresholds: L2=104000, L3=124800, L4=156000 annually.
	tests := []struct {
		salary float64
		want   int
	}{
		{90000, 1},
		{110000, 2},
		{130000, 3},
		{200000, 4},
	}
	for _, tt := range tests {
		if got := e.PredictLevel("Software Developers", "CA", tt.salary); got != tt.want {
			t.Errorf("PredictLevel(salary=%v) = %d, want %d", tt.salary, got, tt.want)
		}
	}
}

func TestPredictLevel_FallbackBands(t *testing.T) {
	e := loadSample(t)

	tests := []struct {
		salary float64
		want   int
	}{
		{70000, 1},
		{100000, 2},
		{150000, 3},
		{170000, 4},
	}
	for _, tt := range tests {
		if got := e.PredictLevel("Zookeeper", "CA", tt.salary); got != tt.want {
			t.Errorf("PredictLevel(unknown title, salary=%v) = %d, want %d", tt.salary, got, tt.want)
		}
	}
}

func TestPredictLevel_NoSalaryDefaults(t *testing.T) {
	e := loadSample(t)
	if got := e.PredictLevel("Software Developers", "CA", 0); got != DefaultLevel {
		t.Errorf("expected default level %d without a salary, got %d", DefaultLevel, got)
	}
}

func TestPredictLevel_NationalFallbackForUnknownState(t *testing.T) {
	e := loadSample(t)

	// MT has no rows; the US table (L2=93600) should apply.
	if got := e.PredictLevel("Software Developers", "MT", 90000); got != 1 {
		t.Errorf("expected level 1 against national table, got %d", got)
	}
}

func TestSuggestedRange(t *testing.T) {
	e := loadSample(t)

	// CA level 2 = 104000 annually.
	lo, hi := e.SuggestedRange("Software Developers", "CA", 2)
	if lo != 104000*0.9 || hi != 104000*1.1 {
		t.Errorf("expected 10%% band around 104000, got %v-%v", lo, hi)
	}

	lo, hi = e.SuggestedRange("Zookeeper", "CA", 3)
	if lo != 130000 || hi != 180000 {
		t.Errorf("expected generic level 3 band, got %v-%v", lo, hi)
	}

	lo, hi = e.SuggestedRange("Zookeeper", "CA", 9)
	if lo != 90000 || hi != 130000 {
		t.Errorf("expected default band for out-of-range level, got %v-%v", lo, hi)
	}
}
