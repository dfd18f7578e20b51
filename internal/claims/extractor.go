// Package claims extracts typed claim sentences from article text and
// assigns a heuristic verification label.
package claims

import (
	"regexp"
	"sort"
	"strings"

	"newsengine/internal/core"
)

const (
	maxInputChars    = 100000
	minSentenceChars = 30
	maxSentenceChars = 500
	maxClaimChars    = 1000
	maxClaims        = 20
	dedupPrefixChars = 100

	indicatorConfidence = 0.8
	numericConfidence   = 0.9
)

// claimIndicators are the attribution phrases and numerical patterns
// that mark a sentence as a candidate claim.
var claimIndicators = []string{
	`according to`,
	`studies show`,
	`research indicates`,
	`data suggests`,
	`statistics reveal`,
	`surveys found`,
	`reports indicate`,
	`analysis shows`,
	`evidence suggests`,
	`experts say`,
	`officials confirmed`,
	`sources claim`,
	`it is estimated`,
	`approximately \d+`,
	`\d+\s*percent`,
	`\d+\s*%`,
	`increased by`,
	`decreased by`,
	`rose to`,
	`fell to`,
}

var (
	claimPattern   = regexp.MustCompile(`(?i)` + strings.Join(claimIndicators, "|"))
	numericPattern = regexp.MustCompile(`\b\d[\d,]*\.?\d*\s*(percent|%|million|billion|thousand)`)
	digitPattern   = regexp.MustCompile(`\d`)
	whitespace     = regexp.MustCompile(`\s+`)
)

var predictionWords = []string{
	"will", "could", "might", "expected", "forecast", "predict", "future", "likely",
}

var opinionWords = []string{
	"believe", "think", "feel", "seems", "appears", "arguably", "perhaps", "maybe",
}

var evidentialWords = []string{
	"data", "study", "research", "report", "confirmed",
}

var hedgingWords = []string{
	"allegedly", "reportedly", "claimed", "accused",
}

var disputedWords = []string{
	"controversial", "disputed", "debate", "conflicting",
}

// trustedOutlets get the benefit of the doubt in verification.
var trustedOutlets = map[string]bool{
	"reuters.com": true,
	"apnews.com":  true,
	"bbc.co.uk":   true,
}

// trustedOutletVariants map display names onto the trusted set.
var trustedOutletVariants = map[string]string{
	"reuters":          "reuters.com",
	"associated press": "apnews.com",
	"ap news":          "apnews.com",
	"bbc":              "bbc.co.uk",
	"bbc news":         "bbc.co.uk",
}

// Extractor turns article text into a bounded set of typed claims.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns up to 20 claims from the article, most confident
// first. The returned claims carry no article id; the caller owns
// persistence.
func (e *Extractor) Extract(text, title, outletName string) []core.Claim {
	if text == "" {
		return nil
	}
	full := title + "\n\n" + text
	if len(full) > maxInputChars {
		full = full[:maxInputChars]
	}

	type candidate struct {
		text       string
		confidence float64
	}
	var candidates []candidate
	seen := make(map[string]bool)

	sentences := Sentences(full)
	for _, sentence := range sentences {
		if len(sentence) < minSentenceChars || len(sentence) > maxSentenceChars {
			continue
		}
		if !claimPattern.MatchString(sentence) {
			continue
		}
		normalized := strings.TrimSpace(whitespace.ReplaceAllString(sentence, " "))
		key := dedupKey(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate{normalized, indicatorConfidence})
	}

	// Second pass: numerical claims the indicator list missed.
	for _, sentence := range sentences {
		if len(sentence) < minSentenceChars || len(sentence) > maxSentenceChars {
			continue
		}
		if !numericPattern.MatchString(sentence) {
			continue
		}
		normalized := strings.TrimSpace(whitespace.ReplaceAllString(sentence, " "))
		key := dedupKey(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate{normalized, numericConfidence})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].confidence > candidates[j].confidence
	})
	if len(candidates) > maxClaims {
		candidates = candidates[:maxClaims]
	}

	claims := make([]core.Claim, 0, len(candidates))
	for _, c := range candidates {
		claimText := c.text
		if len(claimText) > maxClaimChars {
			claimText = claimText[:maxClaimChars]
		}
		claim := core.Claim{
			Text:       claimText,
			Type:       classify(claimText),
			Confidence: c.confidence,
		}
		claim.VerifiedState, claim.VerificationSource = verify(claimText, outletName)
		claims = append(claims, claim)
	}
	return claims
}

func dedupKey(sentence string) string {
	key := strings.ToLower(sentence)
	if len(key) > dedupPrefixChars {
		key = key[:dedupPrefixChars]
	}
	return key
}

// classify orders prediction > opinion > fact, defaulting to fact.
func classify(claimText string) core.ClaimType {
	lower := strings.ToLower(claimText)
	if containsAnyWord(lower, predictionWords) {
		return core.ClaimPrediction
	}
	if containsAnyWord(lower, opinionWords) {
		return core.ClaimOpinion
	}
	if digitPattern.MatchString(claimText) || containsAnyWord(lower, evidentialWords) {
		return core.ClaimFact
	}
	if Subjectivity(claimText) > 0.5 {
		return core.ClaimOpinion
	}
	return core.ClaimFact
}

// verify assigns the heuristic label. It is not ground truth and
// downstream scoring treats it as bounded evidence only.
func verify(claimText, outletName string) (core.VerifiedState, *string) {
	lower := strings.ToLower(claimText)
	outlet := canonicalOutlet(outletName)

	if trustedOutlets[outlet] {
		if strings.Contains(lower, "allegedly") || strings.Contains(lower, "reportedly") {
			return core.VerifiedStateUnverified, nil
		}
		source := outlet
		return core.VerifiedStateVerified, &source
	}
	if containsAnyWord(lower, hedgingWords) {
		return core.VerifiedStateUnverified, nil
	}
	if containsAnyWord(lower, disputedWords) {
		return core.VerifiedStateContested, nil
	}
	return core.VerifiedStateUnverified, nil
}

func canonicalOutlet(outletName string) string {
	lower := strings.ToLower(strings.TrimSpace(outletName))
	if trustedOutlets[lower] {
		return lower
	}
	if canonical, ok := trustedOutletVariants[lower]; ok {
		return canonical
	}
	return lower
}

func containsAnyWord(lower string, words []string) bool {
	for _, word := range words {
		if containsWord(lower, word) {
			return true
		}
	}
	return false
}

// containsWord matches on word boundaries so "will" does not fire
// inside "willing".
func containsWord(lower, word string) bool {
	index := 0
	for {
		found := strings.Index(lower[index:], word)
		if found < 0 {
			return false
		}
		start := index + found
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(lower[start-1])
		afterOK := end == len(lower) || !isLetter(lower[end])
		if beforeOK && afterOK {
			return true
		}
		index = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
