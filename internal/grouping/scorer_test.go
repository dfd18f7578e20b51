package grouping

import (
	"math"
	"testing"

	"newsengine/internal/core"
)

func TestEffectivenessScore(t *testing.T) {
	// Rate at target with no singletons: 100 plus the diversity bonus.
	m := core.BatchMetrics{
		ArticlesProcessed: 100,
		EventsCreated:     30,
		EventCreationRate: 0.30,
	}
	got := effectivenessScore(m)
	want := 100.0 // 100 + min(15, 30/100*50=15) clamped to 100
	if got != want {
		t.Errorf("effectivenessScore = %v, want %v", got, want)
	}

	// Half the target rate scales linearly.
	m = core.BatchMetrics{
		ArticlesProcessed: 100,
		EventsCreated:     15,
		EventCreationRate: 0.15,
	}
	got = effectivenessScore(m)
	want = 50 + math.Min(15, 15.0/100*50) // 57.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("effectivenessScore at half target = %v, want %v", got, want)
	}

	// Singletons are penalized.
	m.SingletonEvents = 15
	if got := effectivenessScore(m); math.Abs(got-(want-25)) > 1e-9 {
		t.Errorf("all-singleton penalty: got %v, want %v", got, want-25)
	}
}

func TestEfficiencyScore(t *testing.T) {
	tests := []struct {
		name     string
		timeMS   int64
		articles int
		want     float64
	}{
		{"no data is neutral", 0, 0, 50},
		{"at target", 100 * 50, 50, 100},
		{"under target", 40 * 50, 50, 100},
		{"fifty percent over", 150 * 50, 50, 75},
		{"double target", 200 * 50, 50, 50},
		{"triple target", 300 * 50, 50, 30},
		{"far over floors at ten", 5000 * 50, 50, 10},
	}
	for _, tt := range tests {
		m := core.BatchMetrics{ProcessingTimeMS: tt.timeMS, ArticlesProcessed: tt.articles}
		if got := efficiencyScore(m); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: efficiencyScore = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCoverageScore(t *testing.T) {
	tests := []struct {
		pct  float64
		want float64
	}{
		{60, 100},
		{80, 100},
		{0, 0},
		{20.1, 70 * 20.1 / 40.2}, // below the knee, scaled to 0-70
	}
	for _, tt := range tests {
		m := core.BatchMetrics{CoveragePercentage: tt.pct}
		if got := coverageScore(m); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("coverageScore(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
	// The knee itself maps to 70.
	m := core.BatchMetrics{CoveragePercentage: 60 * 0.67}
	if got := coverageScore(m); math.Abs(got-70) > 1e-9 {
		t.Errorf("coverageScore at knee = %v, want 70", got)
	}
}

func TestPrecisionScore(t *testing.T) {
	tests := []struct {
		avg  float64
		want float64
	}{
		{2.0, 100},
		{3.0, 100},
		{4.0, 100},
		{1.75, 80},  // 60 + (1.75-1.5)/0.5*40
		{1.0, 40},   // max(20, 1.0*40)
		{0.2, 20},   // floor
		{5.0, 85},   // 100 - 1/2*30
		{6.0, 70},
		{8.0, 50},   // max(10, 70 - 2*10)
		{14.0, 10},  // floor
	}
	for _, tt := range tests {
		m := core.BatchMetrics{AvgArticlesPerEvent: tt.avg}
		if got := precisionScore(m, nil); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("precisionScore(avg=%v) = %v, want %v", tt.avg, got, tt.want)
		}
	}
}

func TestPrecisionScoreManualBlend(t *testing.T) {
	m := core.BatchMetrics{AvgArticlesPerEvent: 3.0}
	rating := 0.5
	got := precisionScore(m, &rating)
	want := 100*0.7 + 50*0.3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("blended precision = %v, want %v", got, want)
	}
}

func TestOverallScoreWeighting(t *testing.T) {
	s := NewScorer()
	m := core.BatchMetrics{
		ArticlesProcessed:   100,
		EventsCreated:       30,
		ProcessingTimeMS:    100 * 100,
		EventCreationRate:   0.30,
		CoveragePercentage:  60,
		AvgArticlesPerEvent: 3.0,
	}
	scores, trend := s.Score(m, nil)
	if scores.Overall != 100 {
		t.Errorf("perfect batch overall = %v, want 100", scores.Overall)
	}
	if trend != "initial" {
		t.Errorf("first batch trend = %q, want initial", trend)
	}
}

func TestTrendClassification(t *testing.T) {
	prev := 70.0
	tests := []struct {
		current float64
		want    core.ScoreTrend
	}{
		{71.9, core.TrendStable},
		{68.1, core.TrendStable},
		{72.0, core.TrendImproving},
		{68.0, core.TrendDeclining},
	}
	for _, tt := range tests {
		if got := trend(tt.current, &prev); got != tt.want {
			t.Errorf("trend(%v vs %v) = %q, want %q", tt.current, prev, got, tt.want)
		}
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{95, "A+"}, {85, "A"}, {75, "B"}, {65, "C"}, {55, "D"}, {30, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.overall); got != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}
