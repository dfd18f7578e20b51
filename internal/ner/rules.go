package ner

import (
	"regexp"
	"strings"
)

// Category labels used by every model implementation.
const (
	CategoryPerson   = "PERSON"
	CategoryOrg      = "ORG"
	CategoryLocation = "LOC"
	CategoryDate     = "DATE"
	CategoryMisc     = "MISC"
)

// RawEntity is one candidate entity before post-filtering.
type RawEntity struct {
	Text       string
	Category   string
	Confidence float64
}

// ModelExtractor is the pluggable recognition capability. The
// rule-based extractor is always available; a statistical model can be
// swapped in when present and callers are blind to the choice.
type ModelExtractor interface {
	Name() string
	Extract(text string) []RawEntity
}

// ruleExtractor recognizes entities with capitalization patterns and
// keyword cues. Confidence is fixed at 0.5 to mark the fallback path.
type ruleExtractor struct{}

// NewRuleExtractor returns the pattern-based model.
func NewRuleExtractor() ModelExtractor {
	return ruleExtractor{}
}

func (ruleExtractor) Name() string { return "rules" }

const ruleConfidence = 0.5

var (
	// capitalizedRun matches runs of capitalized words, the candidate pool.
	capitalizedRun = regexp.MustCompile(`\b[A-Z][a-zA-Z'.-]*(?:\s+(?:of|the|and|for|de|la|von|van)\s+)?(?:\s?[A-Z][a-zA-Z'.-]*)*`)

	datePattern = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,\s*\d{4})?\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b|\b(?:19|20)\d{2}\b`)

	orgSuffixes = []string{
		"Inc", "Inc.", "Corp", "Corp.", "Ltd", "LLC", "Co.", "Group",
		"Company", "Corporation", "Agency", "Administration", "Authority",
		"Association", "Committee", "Commission", "Council", "Department",
		"Ministry", "University", "Institute", "Foundation", "Bank",
		"News", "Times", "Post", "Journal", "Press", "Network", "Broadcasting",
		"Party", "Union", "Court", "Organization", "Organisation",
	}

	knownOrgs = map[string]bool{
		"congress": true, "senate": true, "pentagon": true, "nato": true,
		"un": true, "united nations": true, "european union": true, "eu": true,
		"fbi": true, "cia": true, "nasa": true, "who": true, "fed": true,
		"federal reserve": true, "white house": true, "supreme court": true,
		"reuters": true, "associated press": true, "bbc": true, "cnn": true,
	}

	knownLocations = map[string]bool{
		"washington": true, "london": true, "paris": true, "berlin": true,
		"moscow": true, "beijing": true, "tokyo": true, "new york": true,
		"pittsburgh": true, "pennsylvania": true, "california": true,
		"texas": true, "florida": true, "ukraine": true, "russia": true,
		"china": true, "israel": true, "gaza": true, "iran": true,
		"united states": true, "america": true, "europe": true, "africa": true,
		"asia": true, "england": true, "france": true, "germany": true,
		"india": true, "japan": true, "brazil": true, "canada": true,
		"mexico": true, "australia": true,
	}

	locationSuffixes = []string{
		"City", "County", "State", "Province", "Valley", "Island", "Islands",
		"River", "Bay", "Beach", "Coast",
	}

	// personTitles signal the following capitalized run is a name.
	personTitles = []string{
		"President", "Senator", "Rep.", "Gov.", "Mayor", "Dr.", "Mr.",
		"Mrs.", "Ms.", "Prime Minister", "Chancellor", "Secretary",
		"Judge", "Justice", "General", "Chief",
	}
)

func (ruleExtractor) Extract(text string) []RawEntity {
	var entities []RawEntity

	for _, match := range datePattern.FindAllString(text, -1) {
		entities = append(entities, RawEntity{
			Text: strings.TrimSpace(match), Category: CategoryDate, Confidence: ruleConfidence,
		})
	}

	for _, match := range capitalizedRun.FindAllString(text, -1) {
		candidate := strings.TrimSpace(match)
		if candidate == "" || !strings.Contains(candidate, " ") && len(candidate) < 3 {
			continue
		}
		category := classify(candidate, text)
		if category == "" {
			continue
		}
		entities = append(entities, RawEntity{
			Text: candidate, Category: category, Confidence: ruleConfidence,
		})
	}
	return entities
}

func classify(candidate, context string) string {
	lower := strings.ToLower(candidate)

	if knownOrgs[lower] {
		return CategoryOrg
	}
	if knownLocations[lower] {
		return CategoryLocation
	}
	for _, suffix := range orgSuffixes {
		if strings.HasSuffix(candidate, " "+suffix) || candidate == suffix {
			if candidate == suffix {
				return ""
			}
			return CategoryOrg
		}
	}
	for _, suffix := range locationSuffixes {
		if strings.HasSuffix(candidate, " "+suffix) {
			return CategoryLocation
		}
	}
	if titledPerson(candidate, context) {
		return CategoryPerson
	}
	words := strings.Fields(candidate)
	if len(words) == 2 || len(words) == 3 {
		// Multi-word capitalized run with no org/location cue reads as a name.
		if allCapitalizedWords(words) {
			return CategoryPerson
		}
	}
	if len(words) == 1 && len(candidate) >= 3 {
		return CategoryMisc
	}
	return ""
}

func titledPerson(candidate, context string) bool {
	for _, title := range personTitles {
		if strings.Contains(context, title+" "+candidate) {
			return true
		}
	}
	return false
}

func allCapitalizedWords(words []string) bool {
	for _, word := range words {
		if word[0] < 'A' || word[0] > 'Z' {
			return false
		}
	}
	return true
}
