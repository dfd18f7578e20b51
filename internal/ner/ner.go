// Package ner extracts categorized named entities from article text,
// with a rule-based fallback when no statistical model is installed.
package ner

import (
	"regexp"
	"strings"

	"newsengine/internal/core"
	"newsengine/internal/logger"
)

const (
	// maxInputChars bounds the text fed to the model.
	maxInputChars = 3000

	// maxPerCategory caps each persisted entity list.
	maxPerCategory = 10

	cacheSize = 1000

	modelConfidence = 0.9
)

// Options are the per-extraction filter bounds, driven by the grouping
// configuration.
type Options struct {
	MinEntityLength int
	MaxEntityLength int
	NoiseThreshold  float64
}

// DefaultOptions match the conservative grouping defaults.
func DefaultOptions() Options {
	return Options{MinEntityLength: 3, MaxEntityLength: 50, NoiseThreshold: 0.200}
}

// Result is one cached extraction outcome.
type Result struct {
	Fields      core.NERFields
	Confidences map[string]float64
}

// Extractor owns the model and the extraction cache.
type Extractor struct {
	model ModelExtractor
	cache *lruCache
}

// New builds an Extractor around a model. A nil model downgrades to the
// rule-based extractor with a warning.
func New(model ModelExtractor) *Extractor {
	if model == nil {
		logger.Warn("statistical NER model unavailable, using rule-based extraction")
		model = NewRuleExtractor()
	}
	return &Extractor{model: model, cache: newLRUCache(cacheSize)}
}

// Categorized extracts the persisted per-category entity lists.
// Results are cached on text+title.
func (e *Extractor) Categorized(text, title string, opts Options) Result {
	key := title + "\x00" + text
	if cached, ok := e.cache.get(key); ok {
		return cached
	}

	cleaned := Preprocess(title + ". " + text)
	result := Result{Confidences: make(map[string]float64)}
	if len(cleaned) < 50 {
		e.cache.put(key, result)
		return result
	}

	seen := make(map[string]bool)
	for _, entity := range e.model.Extract(cleaned) {
		name := strings.TrimSpace(entity.Text)
		if !e.accept(name, entity.Category, opts) {
			continue
		}
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}
		seen[lower] = true

		switch entity.Category {
		case CategoryPerson:
			result.Fields.Persons = appendCapped(result.Fields.Persons, name)
		case CategoryOrg:
			result.Fields.Organizations = appendCapped(result.Fields.Organizations, name)
		case CategoryLocation:
			result.Fields.Locations = appendCapped(result.Fields.Locations, name)
		case CategoryDate:
			result.Fields.Dates = appendCapped(result.Fields.Dates, name)
		default:
			result.Fields.Others = appendCapped(result.Fields.Others, name)
		}
		result.Confidences[lower] = entity.Confidence
	}

	e.cache.put(key, result)
	return result
}

// FlatSet returns the lowercase union of person, org, location, and
// misc entities, the similarity feature used by event grouping.
func (e *Extractor) FlatSet(text, title string, opts Options) map[string]bool {
	result := e.Categorized(text, title, opts)
	flat := make(map[string]bool)
	for _, list := range [][]string{
		result.Fields.Persons,
		result.Fields.Organizations,
		result.Fields.Locations,
		result.Fields.Others,
	} {
		for _, name := range list {
			flat[strings.ToLower(name)] = true
		}
	}
	return flat
}

func appendCapped(list []string, name string) []string {
	if len(list) >= maxPerCategory {
		return list
	}
	return append(list, name)
}

// metadataPatterns strip boilerplate artifacts the page extractor
// leaves behind.
var metadataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)published\s+on[^.\n]*`),
	regexp.MustCompile(`(?i)updated\s+on[^.\n]*`),
	regexp.MustCompile(`(?i)recommended\s+stories[^\n]*`),
	regexp.MustCompile(`(?i)photo\s+by[^.\n]*`),
	regexp.MustCompile(`(?i)getty\s+images[^.\n]*`),
	regexp.MustCompile(`(?i)share\s+(this|on)[^\n]*`),
	regexp.MustCompile(`(?i)follow\s+us\s+on[^\n]*`),
	regexp.MustCompile(`(?i)sign\s+up\s+for[^\n]*`),
	regexp.MustCompile(`(?i)read\s+more:?[^\n]*`),
	regexp.MustCompile(`\(AP\)|\(Reuters\)|\(AFP\)`),
	regexp.MustCompile(`#\w+`),
	regexp.MustCompile(`@\w+`),
}

// Preprocess truncates and strips metadata artifacts before extraction.
func Preprocess(text string) string {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}
	for _, pattern := range metadataPatterns {
		text = pattern.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

// nonEntityBlocklist is the closed set of words never accepted as
// entities on their own.
var nonEntityBlocklist = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"said": true, "says": true, "told": true, "added": true, "asked": true,
	"who": true, "what": true, "when": true, "where": true, "which": true,
	"this": true, "that": true, "these": true, "those": true,
	"press": true, "here": true, "there": true, "today": true,
	"yesterday": true, "tomorrow": true, "breaking": true, "exclusive": true,
	"new": true, "more": true, "also": true, "but": true, "and": true,
}

var speechVerbs = map[string]bool{
	"said": true, "says": true, "told": true, "added": true, "stated": true,
	"announced": true, "reported": true, "claimed": true, "noted": true,
	"explained": true, "confirmed": true, "denied": true,
}

var connectives = map[string]bool{
	"however": true, "meanwhile": true, "although": true, "because": true,
	"therefore": true, "moreover": true, "furthermore": true,
}

var temporalWords = map[string]bool{
	"today": true, "tonight": true, "yesterday": true, "tomorrow": true,
	"morning": true, "evening": true, "afternoon": true, "week": true,
	"month": true, "year": true,
}

func (e *Extractor) accept(name, category string, opts Options) bool {
	length := len(name)
	if length < opts.MinEntityLength || length > opts.MaxEntityLength {
		return false
	}
	lower := strings.ToLower(name)
	if nonEntityBlocklist[lower] {
		return false
	}
	if noiseRatio(name) > opts.NoiseThreshold {
		return false
	}

	words := strings.Fields(lower)
	switch category {
	case CategoryPerson:
		for _, word := range words {
			if speechVerbs[word] {
				return false
			}
		}
		if strings.Contains(lower, "associated press") && name != "Associated Press" {
			return false
		}
	case CategoryOrg:
		if len(words) > 0 && connectives[words[0]] {
			return false
		}
		if len(words) > 6 {
			return false
		}
	case CategoryLocation:
		for _, word := range words {
			if temporalWords[word] {
				return false
			}
		}
		if (lower == "white" || lower == "house") && lower != "white house" {
			return false
		}
	}
	return true
}

// noiseRatio is the fraction of tokens that are lowercase filler.
func noiseRatio(name string) float64 {
	words := strings.Fields(name)
	if len(words) == 0 {
		return 1
	}
	noise := 0
	for _, word := range words {
		first := word[0]
		if first >= 'a' && first <= 'z' {
			noise++
		}
	}
	return float64(noise) / float64(len(words))
}
