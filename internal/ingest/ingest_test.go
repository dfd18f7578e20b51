package ingest

import "testing"

func TestTitleKeywords(t *testing.T) {
	keywords := titleKeywords("The Senate Approves New Budget, Says Chair!")
	for _, want := range []string{"senate", "approves", "budget", "chair"} {
		if !keywords[want] {
			t.Errorf("keywords %v missing %q", keywords, want)
		}
	}
	for _, dropped := range []string{"the", "new", "says"} {
		if keywords[dropped] {
			t.Errorf("stopword %q kept", dropped)
		}
	}
}

func TestKeywordOverlap(t *testing.T) {
	set := func(words ...string) map[string]bool {
		m := make(map[string]bool)
		for _, w := range words {
			m[w] = true
		}
		return m
	}

	if got := keywordOverlap(set("storm", "coast"), set()); got != 0 {
		t.Errorf("empty side = %v, want 0", got)
	}
	if got := keywordOverlap(set("storm", "coast"), set("storm", "coast")); got != 1 {
		t.Errorf("identical sets = %v, want 1", got)
	}
	// Overlap normalizes by the smaller set.
	got := keywordOverlap(set("storm", "coast"), set("storm", "coast", "rain", "wind"))
	if got != 1 {
		t.Errorf("subset = %v, want 1", got)
	}
	got = keywordOverlap(set("storm", "inland"), set("storm", "coast", "rain", "wind"))
	if got != 0.5 {
		t.Errorf("half overlap = %v, want 0.5", got)
	}
}
