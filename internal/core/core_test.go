package core

import (
	"strings"
	"testing"
)

func TestDefaultGroupingConfigIsValid(t *testing.T) {
	if err := DefaultGroupingConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestGroupingConfigValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GroupingConfig)
		wantErr string
	}{
		{"min shared entities below range",
			func(g *GroupingConfig) { g.MinSharedEntities = 0 }, "min_shared_entities"},
		{"min shared entities above range",
			func(g *GroupingConfig) { g.MinSharedEntities = 7 }, "min_shared_entities"},
		{"overlap threshold below floor",
			func(g *GroupingConfig) { g.EntityOverlapThreshold = 0.149 }, "entity_overlap_threshold"},
		{"overlap threshold above ceiling",
			func(g *GroupingConfig) { g.EntityOverlapThreshold = 0.501 }, "entity_overlap_threshold"},
		{"negative title keywords",
			func(g *GroupingConfig) { g.MinTitleKeywords = -1 }, "min_title_keywords"},
		{"title bonus above ceiling",
			func(g *GroupingConfig) { g.TitleKeywordBonus = 0.301 }, "title_keyword_bonus"},
		{"time window too narrow",
			func(g *GroupingConfig) { g.MaxTimeDiffHours = 5 }, "max_time_diff_hours"},
		{"time window too wide",
			func(g *GroupingConfig) { g.MaxTimeDiffHours = 97 }, "max_time_diff_hours"},
		{"entity length floor",
			func(g *GroupingConfig) { g.MinEntityLength = 1 }, "min_entity_length"},
		{"entity length ceiling",
			func(g *GroupingConfig) { g.MaxEntityLength = 81 }, "max_entity_length"},
		{"noise threshold out of range",
			func(g *GroupingConfig) { g.EntityNoiseThreshold = 0.050 }, "entity_noise_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGroupingConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should name %q", err, tt.wantErr)
			}
		})
	}
}

func TestGroupingConfigValidateBoundariesInclusive(t *testing.T) {
	cfg := DefaultGroupingConfig()
	cfg.MinSharedEntities = 6
	cfg.EntityOverlapThreshold = 0.500
	cfg.MinTitleKeywords = 5
	cfg.TitleKeywordBonus = 0.300
	cfg.MaxTimeDiffHours = 96
	cfg.MinEntityLength = 6
	cfg.MaxEntityLength = 80
	cfg.EntityNoiseThreshold = 0.400
	if err := cfg.Validate(); err != nil {
		t.Fatalf("upper bounds are inclusive: %v", err)
	}

	cfg = GroupingConfig{
		MinSharedEntities:      1,
		EntityOverlapThreshold: 0.150,
		MinTitleKeywords:       0,
		TitleKeywordBonus:      0,
		MaxTimeDiffHours:       6,
		MinEntityLength:        2,
		MaxEntityLength:        30,
		EntityNoiseThreshold:   0.100,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("lower bounds are inclusive: %v", err)
	}
}
