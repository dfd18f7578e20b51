package writing

import (
	"strings"
	"testing"
)

func TestAnalyzeShortTextGetsNeutralProfile(t *testing.T) {
	scores := NewAnalyzer().Analyze("too short to judge", "title")
	if scores.Total != 49 {
		t.Errorf("neutral total = %d, want 49", scores.Total)
	}
	if scores.Readability != 15 || scores.Structure != 17 || scores.Linguistic != 10 || scores.Objectivity != 7 {
		t.Errorf("neutral components = %+v", scores)
	}
}

func TestAnalyzeStaysWithinComponentCaps(t *testing.T) {
	text := strings.Repeat("President Maria Santos announced the new infrastructure plan in Washington today. "+
		"Officials said the program would cost 40 billion dollars over 10 years. "+
		"However, critics say the timeline is optimistic. ", 5)
	scores := NewAnalyzer().Analyze(text, "infrastructure plan announced")
	if scores.Readability < 0 || scores.Readability > 30 {
		t.Errorf("readability = %d, outside 0-30", scores.Readability)
	}
	if scores.Structure < 0 || scores.Structure > 35 {
		t.Errorf("structure = %d, outside 0-35", scores.Structure)
	}
	if scores.Linguistic < 0 || scores.Linguistic > 20 {
		t.Errorf("linguistic = %d, outside 0-20", scores.Linguistic)
	}
	if scores.Objectivity < 0 || scores.Objectivity > 15 {
		t.Errorf("objectivity = %d, outside 0-15", scores.Objectivity)
	}
	if scores.Total < 0 || scores.Total > 100 {
		t.Errorf("total = %d, outside 0-100", scores.Total)
	}
	if scores.Total > 0 && scores.Total < 49 {
		t.Errorf("well-sourced news prose scored %d, below the neutral floor", scores.Total)
	}
}

func TestSourceAttribution(t *testing.T) {
	if got := sourceAttribution("Nothing is attributed in this body at all."); got != 2 {
		t.Errorf("no sources = %d, want 2", got)
	}
	one := "John Smith said the deal was close."
	if got := sourceAttribution(one); got != 6 {
		t.Errorf("one named source = %d, want 6", got)
	}
	many := `John Smith said it passed. Officials confirmed the vote. "It is done", said the chair. Mary Jones told reporters more would follow.`
	if got := sourceAttribution(many); got != 10 {
		t.Errorf("four sources = %d, want 10", got)
	}
}

func TestBiasScore(t *testing.T) {
	score, found := biasScore("The committee approved the measure after a two-hour session.")
	if score != 10 || len(found) != 0 {
		t.Errorf("clean text: score %d, indicators %v", score, found)
	}

	score, found = biasScore("The allegedly shocking decision stunned observers.")
	// "shocking" counts once as an indicator and once as emotional language.
	if score != 3 {
		t.Errorf("loaded text: score %d, want 3", score)
	}
	if len(found) != 2 {
		t.Errorf("indicators = %v, want allegedly and shocking", found)
	}
}

func TestMultiplePerspectives(t *testing.T) {
	if got := multiplePerspectives("One voice only."); got != 1 {
		t.Errorf("single perspective = %d, want 1", got)
	}
	if got := multiplePerspectives("However, critics say otherwise."); got != 3 {
		t.Errorf("two markers = %d, want 3", got)
	}
}

func TestGrammarQuality(t *testing.T) {
	if got := grammarQuality("A clean sentence. Another clean one."); got != 10 {
		t.Errorf("clean text = %d, want 10", got)
	}
	sloppy := "bad spacing , here . and here . also here . plus here . one more ."
	if got := grammarQuality(sloppy); got != 5 {
		t.Errorf("sloppy text = %d, want the floor of 5", got)
	}
}

func TestSentenceVariety(t *testing.T) {
	if got := sentenceVariety([]string{"one", "two"}); got != 1 {
		t.Errorf("too few sentences = %d, want 1", got)
	}
	uniform := []string{"three words here", "three more words", "again three words", "still three words"}
	if got := sentenceVariety(uniform); got != 2 {
		t.Errorf("uniform lengths = %d, want 2", got)
	}
	varied := []string{
		"Short.",
		"This one is a medium length sentence with several words in it.",
		"This is a dramatically longer sentence that keeps going with many additional words to push the length variance well past the highest band threshold used by the scorer.",
	}
	if got := sentenceVariety(varied); got != 5 {
		t.Errorf("varied lengths = %d, want 5", got)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"table", 2},
		{"announced", 2},
		{"decided", 3},
		{"the", 1},
		{"readability", 5},
	}
	for _, tt := range tests {
		if got := countSyllables(tt.word); got != tt.want {
			t.Errorf("countSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestFleschFormulas(t *testing.T) {
	stats := textStats{sentences: 2, words: 20, syllables: 28}
	ease := fleschReadingEase(stats)
	// 206.835 - 1.015*10 - 84.6*1.4 = 78.245
	if ease < 78.2 || ease > 78.3 {
		t.Errorf("reading ease = %v, want ~78.245", ease)
	}
	grade := fleschKincaidGrade(stats)
	// 0.39*10 + 11.8*1.4 - 15.59 = 4.83
	if grade < 4.8 || grade > 4.9 {
		t.Errorf("grade = %v, want ~4.83", grade)
	}
	if got := fleschReadingEase(textStats{}); got != 0 {
		t.Errorf("empty stats ease = %v, want 0", got)
	}
}
