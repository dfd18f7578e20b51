package writing

import (
	"strings"
	"unicode"
)

// Flesch Reading Ease and Flesch-Kincaid grade level over plain text.
// Syllables are estimated by vowel-group counting with the usual
// silent-e and -le adjustments.

func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}
	if len(word) <= 3 {
		return 1
	}

	isVowel := func(b byte) bool {
		return strings.IndexByte("aeiouy", b) >= 0
	}

	count := 0
	previousVowel := false
	for i := 0; i < len(word); i++ {
		vowel := isVowel(word[i])
		if vowel && !previousVowel {
			count++
		}
		previousVowel = vowel
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") {
		count--
	}
	if strings.HasSuffix(word, "ed") && count > 1 {
		// Most -ed endings are silent: "walked", "announced".
		last := word[len(word)-3]
		if last != 't' && last != 'd' {
			count--
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}

type textStats struct {
	sentences int
	words     int
	syllables int
}

func analyzeText(text string, sentences []string) textStats {
	stats := textStats{sentences: len(sentences)}
	for _, word := range strings.Fields(text) {
		trimmed := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if trimmed == "" {
			continue
		}
		stats.words++
		stats.syllables += countSyllables(trimmed)
	}
	if stats.sentences == 0 {
		stats.sentences = 1
	}
	return stats
}

// fleschReadingEase returns the standard 206.835-based score; higher is
// easier. News prose typically lands in 50-70.
func fleschReadingEase(stats textStats) float64 {
	if stats.words == 0 {
		return 0
	}
	wordsPerSentence := float64(stats.words) / float64(stats.sentences)
	syllablesPerWord := float64(stats.syllables) / float64(stats.words)
	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// fleschKincaidGrade returns the US grade-level estimate.
func fleschKincaidGrade(stats textStats) float64 {
	if stats.words == 0 {
		return 0
	}
	wordsPerSentence := float64(stats.words) / float64(stats.sentences)
	syllablesPerWord := float64(stats.syllables) / float64(stats.words)
	return 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
}
