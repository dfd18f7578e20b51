package grouping

import (
	"testing"

	"newsengine/internal/core"
)

func TestWorstComponent(t *testing.T) {
	tests := []struct {
		name   string
		scores core.PerformanceScores
		want   string
	}{
		{"effectiveness lowest",
			core.PerformanceScores{Effectiveness: 20, Efficiency: 80, Coverage: 70, Precision: 90}, "effectiveness"},
		{"efficiency lowest",
			core.PerformanceScores{Effectiveness: 60, Efficiency: 10, Coverage: 70, Precision: 90}, "efficiency"},
		{"coverage lowest",
			core.PerformanceScores{Effectiveness: 60, Efficiency: 80, Coverage: 30, Precision: 90}, "coverage"},
		{"precision lowest",
			core.PerformanceScores{Effectiveness: 60, Efficiency: 80, Coverage: 70, Precision: 15}, "precision"},
		{"ties go to the earlier component",
			core.PerformanceScores{Effectiveness: 40, Efficiency: 40, Coverage: 40, Precision: 40}, "effectiveness"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			component, worst := worstComponent(tt.scores)
			if component != tt.want {
				t.Errorf("worst = %q (%v), want %q", component, worst, tt.want)
			}
		})
	}
}

func TestApplyParameter(t *testing.T) {
	cfg := core.DefaultGroupingConfig()
	if err := applyParameter(&cfg, "min_shared_entities", "3"); err != nil {
		t.Fatalf("int parameter: %v", err)
	}
	if cfg.MinSharedEntities != 3 {
		t.Errorf("MinSharedEntities = %d, want 3", cfg.MinSharedEntities)
	}

	if err := applyParameter(&cfg, "entity_overlap_threshold", "0.350"); err != nil {
		t.Fatalf("float parameter: %v", err)
	}
	if cfg.EntityOverlapThreshold != 0.350 {
		t.Errorf("EntityOverlapThreshold = %v, want 0.35", cfg.EntityOverlapThreshold)
	}

	if err := applyParameter(&cfg, "allow_same_outlet", "true"); err != nil {
		t.Fatalf("bool parameter: %v", err)
	}
	if !cfg.AllowSameOutlet {
		t.Error("AllowSameOutlet should be true")
	}

	if err := applyParameter(&cfg, "min_shared_entities", "lots"); err == nil {
		t.Error("unparsable value should error")
	}
	if err := applyParameter(&cfg, "cluster_vibes", "11"); err == nil {
		t.Error("unknown parameter should error")
	}
}

func TestParameterValueRoundTrips(t *testing.T) {
	cfg := core.DefaultGroupingConfig()
	tests := []struct {
		param string
		want  string
	}{
		{"min_shared_entities", "2"},
		{"entity_overlap_threshold", "0.250"},
		{"max_time_diff_hours", "48"},
		{"allow_same_outlet", "false"},
		{"entity_noise_threshold", "0.200"},
	}
	for _, tt := range tests {
		if got := parameterValue(cfg, tt.param); got != tt.want {
			t.Errorf("parameterValue(%s) = %q, want %q", tt.param, got, tt.want)
		}
	}
}

func tuningManager() *Manager {
	return &Manager{config: core.DefaultGroupingConfig()}
}

func TestSuggestAdjustmentsEffectiveness(t *testing.T) {
	m := tuningManager()

	// Healthy event rate: nothing to relax.
	if out := m.suggestAdjustments("effectiveness", core.BatchMetrics{EventCreationRate: 0.20}); len(out) != 0 {
		t.Fatalf("expected no suggestions, got %v", out)
	}

	out := m.suggestAdjustments("effectiveness", core.BatchMetrics{EventCreationRate: 0.05})
	if got := out["min_shared_entities"]; got != intChange(2, 1) {
		t.Errorf("min_shared_entities = %+v", got)
	}
	if got := out["entity_overlap_threshold"]; got != floatChange(0.250, 0.200) {
		t.Errorf("entity_overlap_threshold = %+v", got)
	}
	if got := out["max_time_diff_hours"]; got != intChange(48, 60) {
		t.Errorf("max_time_diff_hours = %+v", got)
	}
}

func TestSuggestAdjustmentsEfficiency(t *testing.T) {
	out := tuningManager().suggestAdjustments("efficiency", core.BatchMetrics{})
	if got := out["max_entity_length"]; got != intChange(50, 30) {
		t.Errorf("max_entity_length = %+v", got)
	}
	if got := out["entity_noise_threshold"]; got != floatChange(0.200, 0.300) {
		t.Errorf("entity_noise_threshold = %+v", got)
	}
}

func TestSuggestAdjustmentsCoverage(t *testing.T) {
	out := tuningManager().suggestAdjustments("coverage", core.BatchMetrics{})
	if got := out["min_shared_entities"]; got != intChange(2, 1) {
		t.Errorf("min_shared_entities = %+v", got)
	}
	if got := out["entity_overlap_threshold"]; got != floatChange(0.250, 0.220) {
		t.Errorf("entity_overlap_threshold = %+v", got)
	}
}

func TestSuggestAdjustmentsPrecision(t *testing.T) {
	m := tuningManager()

	// Fragmented events borrow the coverage relaxation.
	low := m.suggestAdjustments("precision", core.BatchMetrics{AvgArticlesPerEvent: 1.5})
	if got := low["min_shared_entities"]; got != intChange(2, 1) {
		t.Errorf("fragmented: min_shared_entities = %+v", got)
	}

	high := m.suggestAdjustments("precision", core.BatchMetrics{AvgArticlesPerEvent: 5.0})
	if got := high["min_shared_entities"]; got != intChange(2, 3) {
		t.Errorf("bloated: min_shared_entities = %+v", got)
	}
	if got := high["entity_overlap_threshold"]; got != floatChange(0.250, 0.300) {
		t.Errorf("bloated: entity_overlap_threshold = %+v", got)
	}

	if out := m.suggestAdjustments("precision", core.BatchMetrics{AvgArticlesPerEvent: 3.0}); len(out) != 0 {
		t.Errorf("healthy precision: expected no suggestions, got %v", out)
	}
}

func TestSuggestAdjustmentsRespectsFloors(t *testing.T) {
	m := tuningManager()
	m.config.MinSharedEntities = 1
	m.config.EntityOverlapThreshold = 0.150

	out := m.suggestAdjustments("coverage", core.BatchMetrics{})
	if _, ok := out["min_shared_entities"]; ok {
		t.Error("min_shared_entities already at floor, no suggestion expected")
	}
	if _, ok := out["entity_overlap_threshold"]; ok {
		t.Error("entity_overlap_threshold already below the coverage floor")
	}
}
