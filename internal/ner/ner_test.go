package ner

import (
	"strings"
	"testing"
)

func TestPreprocess(t *testing.T) {
	text := "WASHINGTON (AP) Officials met today.   Photo by Staff Photographer. Follow us on social media\nThe talks continue. #politics @newsdesk"
	cleaned := Preprocess(text)
	for _, artifact := range []string{"(AP)", "Photo by", "Follow us on", "#politics", "@newsdesk"} {
		if strings.Contains(cleaned, artifact) {
			t.Errorf("artifact %q survived preprocessing: %q", artifact, cleaned)
		}
	}
	if strings.Contains(cleaned, "  ") {
		t.Errorf("whitespace not collapsed: %q", cleaned)
	}
	if !strings.Contains(cleaned, "The talks continue.") {
		t.Errorf("body text lost: %q", cleaned)
	}
}

func TestPreprocessTruncates(t *testing.T) {
	long := strings.Repeat("a", maxInputChars+500)
	if got := Preprocess(long); len(got) > maxInputChars {
		t.Errorf("length %d exceeds input cap %d", len(got), maxInputChars)
	}
}

func TestAcceptFilters(t *testing.T) {
	e := New(nil)
	opts := DefaultOptions()
	tests := []struct {
		name     string
		entity   string
		category string
		want     bool
	}{
		{"clean name", "Maria Santos", CategoryPerson, true},
		{"too short", "Al", CategoryPerson, false},
		{"blocklisted word", "Press", CategoryOrg, false},
		{"lowercase noise", "the quick fix", CategoryMisc, false},
		{"speech verb in person", "Santos Said", CategoryPerson, false},
		{"temporal word in location", "Tomorrow Valley", CategoryLocation, false},
		{"overlong org run", "One Two Three Four Five Six Seven", CategoryOrg, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.accept(tt.entity, tt.category, opts); got != tt.want {
				t.Errorf("accept(%q, %s) = %v, want %v", tt.entity, tt.category, got, tt.want)
			}
		})
	}
}

func TestNoiseRatio(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Maria Santos", 0},
		{"Bank of America", 1.0 / 3},
		{"the whole thing", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := noiseRatio(tt.name); got != tt.want {
			t.Errorf("noiseRatio(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCategorizedSkipsThinText(t *testing.T) {
	e := New(NewRuleExtractor())
	result := e.Categorized("too thin", "x", DefaultOptions())
	if len(result.Fields.Persons)+len(result.Fields.Organizations)+
		len(result.Fields.Locations)+len(result.Fields.Others) != 0 {
		t.Errorf("thin text produced entities: %+v", result.Fields)
	}
}

func TestCategorizedWithRuleModel(t *testing.T) {
	e := New(NewRuleExtractor())
	text := "On Tuesday morning, Maria Santos met lawmakers in Washington to discuss the Environmental Protection Agency budget before a summit in Berlin."
	result := e.Categorized(text, "budget talks", DefaultOptions())

	if !containsFold(result.Fields.Locations, "Washington") {
		t.Errorf("locations = %v, want Washington", result.Fields.Locations)
	}
	if !containsFold(result.Fields.Persons, "Maria Santos") {
		t.Errorf("persons = %v, want Maria Santos", result.Fields.Persons)
	}
	if !containsFold(result.Fields.Organizations, "Environmental Protection Agency") {
		t.Errorf("organizations = %v, want Environmental Protection Agency", result.Fields.Organizations)
	}
}

func TestFlatSetLowercasesUnion(t *testing.T) {
	e := New(NewRuleExtractor())
	text := "Lawmakers joined Maria Santos in Washington to discuss the budget before the vote."
	flat := e.FlatSet(text, "budget talks", DefaultOptions())
	if !flat["maria santos"] {
		t.Errorf("flat set %v missing maria santos", flat)
	}
	if !flat["washington"] {
		t.Errorf("flat set %v missing washington", flat)
	}
	for key := range flat {
		if key != strings.ToLower(key) {
			t.Errorf("flat set key %q is not lowercase", key)
		}
	}
}

func TestCategorizedCaching(t *testing.T) {
	calls := 0
	model := &countingModel{calls: &calls}
	e := New(model)
	text := strings.Repeat("Capitol Building vote coverage continued through the evening session. ", 2)

	e.Categorized(text, "title", DefaultOptions())
	e.Categorized(text, "title", DefaultOptions())
	if calls != 1 {
		t.Errorf("model invoked %d times for identical input, want 1", calls)
	}
	e.Categorized(text, "other title", DefaultOptions())
	if calls != 2 {
		t.Errorf("model invoked %d times after distinct input, want 2", calls)
	}
}

type countingModel struct{ calls *int }

func (m *countingModel) Name() string { return "counting" }

func (m *countingModel) Extract(text string) []RawEntity {
	*m.calls++
	return []RawEntity{{Text: "Capitol Building", Category: CategoryOrg, Confidence: 0.9}}
}

func containsFold(list []string, want string) bool {
	for _, item := range list {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}
