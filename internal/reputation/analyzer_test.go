package reputation

import (
	"testing"

	"newsengine/internal/core"
)

func intPtr(v int) *int { return &v }

func TestAwardsScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics core.AgencyMetrics
		want    int
	}{
		{"no awards", core.AgencyMetrics{}, 0},
		{"mixed majors and specialized",
			core.AgencyMetrics{PulitzerAwards: 2, MurrowAwards: 1, PolkAwards: 1, SPJAwards: 2}, 39},
		{"both components capped",
			core.AgencyMetrics{PulitzerAwards: 6, PolkAwards: 3, DuPontAwards: 2}, 60},
		{"specialized only",
			core.AgencyMetrics{DuPontAwards: 1, OtherSpecialized: 3}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AwardsScore(&tt.metrics); got != tt.want {
				t.Errorf("AwardsScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProfessionalScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics core.AgencyMetrics
		want    int
	}{
		{"unknown ranking gets middle band",
			core.AgencyMetrics{
				IndustryMemberships:   []string{"spj", "asne"},
				EditorialIndependence: 10,
				FactCheckingStandards: true,
			}, 18},
		{"everything maxed hits the cap",
			core.AgencyMetrics{
				PressFreedomRanking:   intPtr(10),
				IndustryMemberships:   []string{"a", "b", "c", "d", "e"},
				EditorialIndependence: 10,
				FactCheckingStandards: true,
			}, 25},
		{"bottom band only",
			core.AgencyMetrics{PressFreedomRanking: intPtr(200)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfessionalScore(&tt.metrics); got != tt.want {
				t.Errorf("ProfessionalScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPressFreedomBands(t *testing.T) {
	tests := []struct {
		ranking int
		want    int
	}{
		{1, 10}, {20, 10}, {21, 8}, {50, 8},
		{51, 6}, {100, 6}, {101, 4}, {150, 4}, {151, 2},
	}
	for _, tt := range tests {
		if got := pressFreedomPoints(intPtr(tt.ranking)); got != tt.want {
			t.Errorf("pressFreedomPoints(%d) = %d, want %d", tt.ranking, got, tt.want)
		}
	}
	if got := pressFreedomPoints(nil); got != 5 {
		t.Errorf("pressFreedomPoints(nil) = %d, want 5", got)
	}
}

func TestCredibilityScore(t *testing.T) {
	all := core.AgencyMetrics{
		CorrectionPolicy:       true,
		RetractionTransparency: true,
		OwnershipTransparency:  true,
		FundingDisclosure:      true,
		EthicsCodePublic:       true,
	}
	if got := CredibilityScore(&all); got != 15 {
		t.Errorf("all flags = %d, want 15", got)
	}
	two := core.AgencyMetrics{CorrectionPolicy: true, EthicsCodePublic: true}
	if got := CredibilityScore(&two); got != 6 {
		t.Errorf("two flags = %d, want 6", got)
	}
	if got := CredibilityScore(&core.AgencyMetrics{}); got != 0 {
		t.Errorf("no flags = %d, want 0", got)
	}
}

func TestComputeWritesComponentsAndClamps(t *testing.T) {
	m := core.AgencyMetrics{
		PulitzerAwards:         6,
		PolkAwards:             5,
		PressFreedomRanking:    intPtr(5),
		IndustryMemberships:    []string{"a", "b", "c", "d"},
		EditorialIndependence:  10,
		FactCheckingStandards:  true,
		CorrectionPolicy:       true,
		RetractionTransparency: true,
		OwnershipTransparency:  true,
		FundingDisclosure:      true,
		EthicsCodePublic:       true,
	}
	total := Compute(&m)
	if total != 100 || m.FinalReputationScore != 100 {
		t.Errorf("total = %d (final %d), want 100", total, m.FinalReputationScore)
	}
	if m.AwardsScore != 60 || m.ProfessionalScore != 25 || m.CredibilityScore != 15 {
		t.Errorf("components = %d/%d/%d, want 60/25/15",
			m.AwardsScore, m.ProfessionalScore, m.CredibilityScore)
	}
}

func TestComputeMonotonicInPulitzers(t *testing.T) {
	prev := -1
	for n := 0; n <= 6; n++ {
		m := core.AgencyMetrics{PulitzerAwards: n, FactCheckingStandards: true}
		total := Compute(&m)
		if total < prev {
			t.Fatalf("score dropped from %d to %d at %d pulitzers", prev, total, n)
		}
		prev = total
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		ranking *int
		want    core.PressFreedomTier
	}{
		{nil, core.TierUnknown},
		{intPtr(10), core.TierExcellent},
		{intPtr(30), core.TierGood},
		{intPtr(80), core.TierFair},
		{intPtr(120), core.TierPoor},
	}
	for _, tt := range tests {
		if got := Tier(tt.ranking); got != tt.want {
			t.Errorf("Tier(%v) = %q, want %q", tt.ranking, got, tt.want)
		}
	}
}
