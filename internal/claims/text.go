package claims

import (
	"regexp"
	"strings"
)

// sentenceSplit segments text on terminal punctuation, keeping
// abbreviations like "U.S." and "Dr." intact.
var (
	abbreviations = []string{
		"Mr.", "Mrs.", "Ms.", "Dr.", "Prof.", "Gen.", "Gov.", "Sen.",
		"Rep.", "St.", "Jr.", "Sr.", "U.S.", "U.K.", "U.N.", "a.m.", "p.m.",
		"Inc.", "Corp.", "Ltd.", "Co.", "vs.", "etc.", "No.",
	}
	sentenceEnd = regexp.MustCompile(`([.!?])\s+`)
)

// Sentences splits text into trimmed sentences.
func Sentences(text string) []string {
	// Protect abbreviation periods with a placeholder before splitting.
	protected := text
	for _, abbr := range abbreviations {
		protected = strings.ReplaceAll(protected, abbr,
			strings.ReplaceAll(abbr, ".", "\x01"))
	}
	marked := sentenceEnd.ReplaceAllString(protected, "$1\x02")
	parts := strings.Split(marked, "\x02")

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		sentence := strings.TrimSpace(strings.ReplaceAll(part, "\x01", "."))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}

// Subjectivity lexicons. Scores approximate a [0,1] subjectivity rating
// from the density of opinionated and intensifying words.
var (
	subjectiveWords = map[string]float64{
		"good": 0.6, "bad": 0.7, "great": 0.8, "terrible": 1.0,
		"amazing": 0.9, "awful": 1.0, "best": 0.3, "worst": 1.0,
		"beautiful": 1.0, "ugly": 1.0, "wonderful": 1.0, "horrible": 1.0,
		"excellent": 1.0, "poor": 0.6, "stunning": 1.0, "shocking": 1.0,
		"outrageous": 1.0, "brilliant": 1.0, "disastrous": 1.0,
		"incredible": 0.9, "remarkable": 0.75, "important": 0.75,
		"significant": 0.5, "interesting": 0.5, "surprising": 0.9,
		"unfortunate": 1.0, "fortunate": 0.9, "dangerous": 0.6,
		"extreme": 0.75, "radical": 0.75, "massive": 0.6, "huge": 0.6,
		"tiny": 0.5, "clearly": 0.8, "obviously": 1.0, "certainly": 0.7,
		"definitely": 0.9, "absolutely": 1.0, "really": 0.7, "very": 0.3,
		"extremely": 0.9, "highly": 0.5, "quite": 0.5, "rather": 0.5,
		"seems": 0.6, "appears": 0.5, "feel": 0.8, "feels": 0.8,
		"believe": 0.8, "think": 0.7, "hope": 0.8, "fear": 0.8,
		"love": 0.9, "hate": 0.9, "like": 0.5, "dislike": 0.8,
		"should": 0.6, "must": 0.5, "ought": 0.7,
	}

	wordPattern = regexp.MustCompile(`[a-zA-Z']+`)
)

// Subjectivity estimates how opinionated a sentence is, in [0,1].
// Objective news prose scores near 0.
func Subjectivity(sentence string) float64 {
	words := wordPattern.FindAllString(strings.ToLower(sentence), -1)
	if len(words) == 0 {
		return 0
	}
	var total float64
	hits := 0
	for _, word := range words {
		if score, ok := subjectiveWords[word]; ok {
			total += score
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	// Average lexicon score weighted by hit density, as a crude stand-in
	// for a trained subjectivity classifier.
	density := float64(hits) / float64(len(words))
	score := (total / float64(hits)) * (0.5 + density)
	if score > 1 {
		score = 1
	}
	return score
}
