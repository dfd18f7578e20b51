package reputation

import "testing"

func TestSuggestMappings(t *testing.T) {
	agencies := map[string]int{
		"Reuters":          1,
		"Associated Press": 2,
		"The Guardian":     3,
	}

	tests := []struct {
		name       string
		unmapped   []string
		wantAgency map[string]string
	}{
		{"word substring",
			[]string{"Reuters Top News"},
			map[string]string{"Reuters Top News": "Reuters"}},
		{"known variant with no shared word",
			[]string{"AP News"},
			map[string]string{"AP News": "Associated Press"}},
		{"leading-the stripped for variants",
			[]string{"theguardian.com"},
			map[string]string{"theguardian.com": "The Guardian"}},
		{"no plausible match", []string{"Obscure Local Blog"}, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := SuggestMappings(tt.unmapped, agencies)
			if len(suggestions) != len(tt.wantAgency) {
				t.Fatalf("got %d suggestions, want %d: %+v",
					len(suggestions), len(tt.wantAgency), suggestions)
			}
			for _, s := range suggestions {
				if tt.wantAgency[s.Outlet] != s.Agency {
					t.Errorf("outlet %q suggested %q, want %q",
						s.Outlet, s.Agency, tt.wantAgency[s.Outlet])
				}
			}
		})
	}
}

func TestSubstringMatchIgnoresShortWords(t *testing.T) {
	// "the" is too short to count as evidence of a match.
	if substringMatch("the daily bugle", "the times") {
		t.Error("three-letter agency word should not match")
	}
	if !substringMatch("guardian weekend edition", "the guardian") {
		t.Error("long agency word inside the outlet name should match")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.67},
		{33.333333, 33.33},
		{100, 100},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
