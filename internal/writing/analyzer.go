// Package writing scores article prose on readability, journalistic
// structure, linguistic quality, and objectivity.
package writing

import (
	"regexp"
	"strings"

	"newsengine/internal/claims"
)

// Scores carries the four sub-scores, their total, and the component
// details behind them.
type Scores struct {
	Readability int // 0-30
	Structure   int // 0-35
	Linguistic  int // 0-20
	Objectivity int // 0-15
	Total       int // 0-100

	FleschReadingEase  float64
	FleschKincaidGrade float64
	LeadQuality        int
	SourceAttribution  int
	SentenceVariety    int
	GrammarQuality     int
	BiasIndicators     []string
}

var biasIndicators = []string{
	"allegedly", "reportedly", "supposedly", "it seems", "apparently",
	"shocking", "outrageous", "devastating", "incredible", "amazing",
	"everyone knows", "it is obvious", "clearly", "undoubtedly", "certainly",
}

var (
	whoPattern   = regexp.MustCompile(`(?i)\b(president|minister|official|spokesman|spokesperson|ceo|director|[A-Z][a-z]+ [A-Z][a-z]+)\b`)
	whatPattern  = regexp.MustCompile(`(?i)\b(announced|said|declared|confirmed|revealed|reported|stated)\b`)
	whenPattern  = regexp.MustCompile(`(?i)\b(today|yesterday|monday|tuesday|wednesday|thursday|friday|saturday|sunday|january|february|march|april|may|june|july|august|september|october|november|december|\d{1,2}/\d{1,2}/\d{4})\b`)
	wherePattern = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+|Washington|London|Paris|Berlin|Tokyo|Beijing|Moscow|New York|Los Angeles)\b`)
	vaguePattern = regexp.MustCompile(`(?i)\b(something|things|stuff|important|affect|happened)\b`)

	namedSourcePattern     = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\s+(said|told|confirmed|stated|announced)`)
	officialSourcePattern  = regexp.MustCompile(`(?i)\b(officials?|spokesman|spokesperson|representative|minister|secretary)\s+(said|told|confirmed|stated)`)
	attributedQuotePattern = regexp.MustCompile(`(?i)"[^"]*",?\s*(said|told|confirmed|stated|according to)`)

	numbersDataPattern = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s*(percent|million|billion|dollars?|people|years?|days?|months?)\b`)
	contextPattern     = regexp.MustCompile(`(?i)\b(background|context|previously|earlier|according to|data shows|statistics|research)\b`)

	specificTermPattern = regexp.MustCompile(`(?i)\b(specifically|particularly|precisely|exactly|detailed|comprehensive|thorough)\b`)

	emotionalPattern = regexp.MustCompile(`(?i)\b(shocking|outrageous|devastating|incredible|amazing|terrible|wonderful|fantastic|horrible)\b`)

	perspectivePattern = regexp.MustCompile(`(?i)\b(however|meanwhile|on the other hand|alternatively|critics say|supporters argue|opponents claim)\b`)
	contrastPattern    = regexp.MustCompile(`\b(but [A-Z][a-z]+ [A-Z][a-z]+ said|while .+ argued|however .+ stated)\b`)

	missingCapPattern = regexp.MustCompile(`[.!?]\s+[a-z]`)
	spacingPattern    = regexp.MustCompile(`\s+,|\s+\.`)
	itsPattern        = regexp.MustCompile(`(?i)\b(it's)\s+(own|impact|affect)`)
	theirPattern      = regexp.MustCompile(`(?i)\b(their|there|they're)\b`)
)

// Analyzer scores one article at a time. It is stateless and safe for
// concurrent use.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns the full score profile. Text under 100 chars gets the
// fixed neutral profile so thin pages neither sink nor inflate scores.
func (a *Analyzer) Analyze(text, title string) Scores {
	if len(text) < 100 {
		return neutralScores()
	}

	sentences := claims.Sentences(text)
	stats := analyzeText(text, sentences)
	ease := fleschReadingEase(stats)
	grade := fleschKincaidGrade(stats)

	readability := readabilityScore(ease, grade)
	lead := leadQuality(sentences)
	attribution := sourceAttribution(text)
	completeness := factualCompleteness(text, stats)
	structure := min(35, lead+attribution+completeness)

	variety := sentenceVariety(sentences)
	vocabulary := vocabularyPrecision(text)
	grammar := grammarQuality(text)
	linguistic := min(20, variety+vocabulary+grammar)

	bias, found := biasScore(text)
	perspectives := multiplePerspectives(text)
	objectivity := min(15, bias+perspectives)

	return Scores{
		Readability:        readability,
		Structure:          structure,
		Linguistic:         linguistic,
		Objectivity:        objectivity,
		Total:              min(100, readability+structure+linguistic+objectivity),
		FleschReadingEase:  ease,
		FleschKincaidGrade: grade,
		LeadQuality:        lead,
		SourceAttribution:  attribution,
		SentenceVariety:    variety,
		GrammarQuality:     grammar,
		BiasIndicators:     found,
	}
}

func neutralScores() Scores {
	return Scores{
		Readability:        15,
		Structure:          17,
		Linguistic:         10,
		Objectivity:        7,
		Total:              49,
		FleschReadingEase:  60.0,
		FleschKincaidGrade: 10.0,
		LeadQuality:        5,
		SourceAttribution:  5,
		SentenceVariety:    2,
		GrammarQuality:     5,
	}
}

// readabilityScore maps the two Flesch measures onto 0-30, with bands
// tuned generously for news prose.
func readabilityScore(ease, grade float64) int {
	var easePoints int
	switch {
	case ease >= 70:
		easePoints = 15
	case ease >= 60:
		easePoints = 13
	case ease >= 50:
		easePoints = 11
	case ease >= 40:
		easePoints = 9
	case ease >= 30:
		easePoints = 7
	default:
		easePoints = 5
	}

	var gradePoints int
	switch {
	case grade <= 10:
		gradePoints = 15
	case grade <= 12:
		gradePoints = 13
	case grade <= 14:
		gradePoints = 11
	case grade <= 16:
		gradePoints = 9
	default:
		gradePoints = 7
	}
	return min(30, easePoints+gradePoints)
}

// leadQuality checks the first sentence for who/what/when/where
// coverage, penalized by vague wording. 0-10.
func leadQuality(sentences []string) int {
	if len(sentences) == 0 {
		return 0
	}
	lead := sentences[0]
	elements := len(whoPattern.FindAllString(lead, -1)) +
		len(whatPattern.FindAllString(lead, -1)) +
		len(whenPattern.FindAllString(lead, -1)) +
		len(wherePattern.FindAllString(lead, -1))
	if elements > 4 {
		elements = 4
	}
	vague := len(vaguePattern.FindAllString(lead, -1))

	switch {
	case elements >= 3 && vague == 0:
		return 10
	case elements >= 2 && vague <= 1:
		return 7
	case elements >= 1 && vague <= 2:
		return 4
	case vague >= 3:
		return 1
	default:
		return 2
	}
}

// sourceAttribution counts named, official, and quoted sources. 0-10.
func sourceAttribution(text string) int {
	total := len(namedSourcePattern.FindAllString(text, -1)) +
		len(officialSourcePattern.FindAllString(text, -1)) +
		len(attributedQuotePattern.FindAllString(text, -1))
	switch {
	case total >= 4:
		return 10
	case total >= 2:
		return 8
	case total >= 1:
		return 6
	default:
		return 2
	}
}

// factualCompleteness combines a length band with detail indicators. 0-15.
func factualCompleteness(text string, stats textStats) int {
	var lengthScore int
	switch {
	case stats.words >= 500:
		lengthScore = 5
	case stats.words >= 300:
		lengthScore = 3
	case stats.words >= 150:
		lengthScore = 2
	}

	details := len(numbersDataPattern.FindAllString(text, -1)) +
		len(contextPattern.FindAllString(text, -1))
	detailScore := min(10, details*2)

	return min(15, lengthScore+detailScore)
}

// sentenceVariety rewards variance in sentence length. 0-5.
func sentenceVariety(sentences []string) int {
	if len(sentences) < 3 {
		return 1
	}
	lengths := make([]float64, len(sentences))
	var sum float64
	for i, sentence := range sentences {
		lengths[i] = float64(len(strings.Fields(sentence)))
		sum += lengths[i]
	}
	avg := sum / float64(len(lengths))
	var variance float64
	for _, l := range lengths {
		variance += (l - avg) * (l - avg)
	}
	variance /= float64(len(lengths))

	switch {
	case variance > 30:
		return 5
	case variance > 15:
		return 4
	case variance > 5:
		return 3
	default:
		return 2
	}
}

// vocabularyPrecision combines lexical diversity with precision terms. 0-5.
func vocabularyPrecision(text string) int {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < 50 {
		return 1
	}
	unique := make(map[string]bool, len(words))
	for _, word := range words {
		unique[word] = true
	}
	diversity := float64(len(unique)) / float64(len(words))
	specific := len(specificTermPattern.FindAllString(text, -1))

	switch {
	case diversity > 0.6 && specific > 1:
		return 5
	case diversity > 0.5 || specific > 0:
		return 4
	case diversity > 0.4:
		return 3
	default:
		return 2
	}
}

// grammarQuality deducts from 10 for pattern-detectable issues; the
// floor is 5 since the checks are rough. 0-10.
func grammarQuality(text string) int {
	issues := float64(len(itsPattern.FindAllString(text, -1)))
	issues += float64(len(theirPattern.FindAllString(text, -1))) * 0.1
	issues += float64(len(missingCapPattern.FindAllString(text, -1)))
	issues += float64(len(spacingPattern.FindAllString(text, -1)))

	score := 10 - int(issues)
	if score < 5 {
		score = 5
	}
	return score
}

// biasScore deducts for hedges, emotional language, and unattributed
// absolutes; returns the score and the indicators found. 0-10.
func biasScore(text string) (int, []string) {
	lower := strings.ToLower(text)
	count := 0
	var found []string
	for _, indicator := range biasIndicators {
		n := strings.Count(lower, indicator)
		count += n
		if n > 0 {
			found = append(found, indicator)
		}
	}
	count += len(emotionalPattern.FindAllString(text, -1))

	switch {
	case count == 0:
		return 10, found
	case count <= 2:
		return 7, found
	case count <= 5:
		return 3, found
	default:
		return 0, found
	}
}

// multiplePerspectives rewards contrast markers and contrasting
// attributions. 0-5.
func multiplePerspectives(text string) int {
	total := len(perspectivePattern.FindAllString(text, -1)) +
		len(contrastPattern.FindAllString(text, -1))
	switch {
	case total >= 3:
		return 5
	case total >= 1:
		return 3
	default:
		return 1
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
