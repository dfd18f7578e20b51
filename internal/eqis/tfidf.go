package eqis

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// maxFeatures caps the vocabulary at the most frequent terms across the
// event's articles.
const maxFeatures = 5000

// meanPairwiseCosine vectorizes the texts with TF-IDF and returns the
// mean cosine similarity over all distinct pairs, in [0,1]. Fewer than
// two texts score 0.
func meanPairwiseCosine(texts []string) float64 {
	if len(texts) < 2 {
		return 0
	}

	tokenized := make([][]string, len(texts))
	docFreq := map[string]int{}
	for i, text := range texts {
		tokens := tokenize(text)
		tokenized[i] = tokens
		seen := map[string]bool{}
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				docFreq[t]++
			}
		}
	}

	vocab, idf := buildVocabulary(docFreq, len(texts))
	if len(vocab) == 0 {
		return 0
	}

	vectors := make([][]float64, len(texts))
	for i, tokens := range tokenized {
		vectors[i] = tfidfVector(tokens, vocab, idf)
	}

	var sum float64
	var pairs int
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sum += cosine(vectors[i], vectors[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// buildVocabulary keeps the maxFeatures most document-frequent terms,
// ties broken alphabetically for determinism, and precomputes the
// smoothed IDF per term index.
func buildVocabulary(docFreq map[string]int, docCount int) (map[string]int, []float64) {
	terms := make([]string, 0, len(docFreq))
	for t := range docFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		vocab[t] = i
		idf[i] = math.Log(float64(1+docCount)/float64(1+docFreq[t])) + 1
	}
	return vocab, idf
}

// tfidfVector builds an L2-normalized term-frequency vector weighted by
// the precomputed IDF.
func tfidfVector(tokens []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	for _, t := range tokens {
		if idx, ok := vocab[t]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for idx := range vec {
		if vec[idx] == 0 {
			continue
		}
		vec[idx] *= idf[idx]
		norm += vec[idx] * vec[idx]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	// Vectors are L2-normalized, the dot product is the cosine.
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}

// tokenize lowercases, splits on non-letter-digit runs, and drops
// stopwords and single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || englishStopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

var englishStopwords = buildStopwords()

func buildStopwords() map[string]bool {
	words := strings.Fields(`
		a about above after again against all am an and any are aren as at
		be because been before being below between both but by can cannot
		could couldn did didn do does doesn doing don down during each few
		for from further had hadn has hasn have haven having he her here
		hers herself him himself his how i if in into is isn it its itself
		just me more most mustn my myself no nor not now of off on once
		only or other our ours ourselves out over own same shan she should
		shouldn so some such than that the their theirs them themselves
		then there these they this those through to too under until up
		very was wasn we were weren what when where which while who whom
		why will with won would wouldn you your yours yourself yourselves
	`)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
