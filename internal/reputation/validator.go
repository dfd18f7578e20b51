package reputation

import (
	"context"
	"fmt"
	"strings"

	"newsengine/internal/logger"
	"newsengine/internal/persistence"
)

// FeedStatus classifies one feed's agency mapping.
type FeedStatus string

const (
	StatusValid         FeedStatus = "VALID"
	StatusMappedNoScore FeedStatus = "AGENCY_MAPPED_NO_SCORE"
	StatusNoMapping     FeedStatus = "NO_AGENCY_MAPPING"
)

// FeedValidation is the per-feed result of the agency mapping check.
type FeedValidation struct {
	FeedID          int64
	OutletName      string
	URL             string
	Status          FeedStatus
	ReputationScore int
}

// MappingSuggestion proposes an existing agency for an unmapped outlet.
type MappingSuggestion struct {
	Outlet string
	Agency string
}

// Report is the aggregate validation summary. Percentages carry two
// decimals.
type Report struct {
	TotalFeeds        int
	Mapped            int
	Scored            int
	Unmapped          int
	MappedUnscored    int
	MappingPercentage float64
	ScoringPercentage float64
	Feeds             []FeedValidation
	Suggestions       []MappingSuggestion
}

// Validator joins active feeds against the agency metrics table. It is
// advisory: it never blocks processing, only logs warnings.
type Validator struct {
	store *persistence.DB
}

// NewValidator creates a Validator over the store.
func NewValidator(store *persistence.DB) *Validator {
	return &Validator{store: store}
}

// Validate joins every active feed with its agency and builds the
// aggregate report, including mapping suggestions for unmapped outlets.
func (v *Validator) Validate(ctx context.Context) (*Report, error) {
	rows, err := v.store.Reputation.ListFeedAgencyJoin(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed validation query failed: %w", err)
	}
	agencies, err := v.store.Reputation.ListAgencyNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("agency list query failed: %w", err)
	}

	report := &Report{}
	var unmapped []string
	for _, row := range rows {
		validation := FeedValidation{
			FeedID:     row.FeedID,
			OutletName: row.OutletName,
			URL:        row.FeedURL,
		}
		switch {
		case row.AgencyID == nil:
			validation.Status = StatusNoMapping
			unmapped = append(unmapped, row.OutletName)
		case row.ReputationScore == nil || *row.ReputationScore == 0:
			validation.Status = StatusMappedNoScore
		default:
			validation.Status = StatusValid
			validation.ReputationScore = *row.ReputationScore
		}
		report.Feeds = append(report.Feeds, validation)
	}

	report.TotalFeeds = len(report.Feeds)
	for _, f := range report.Feeds {
		if f.Status != StatusNoMapping {
			report.Mapped++
		}
		if f.Status == StatusValid {
			report.Scored++
		}
	}
	report.Unmapped = report.TotalFeeds - report.Mapped
	report.MappedUnscored = report.Mapped - report.Scored
	if report.TotalFeeds > 0 {
		report.MappingPercentage = round2(float64(report.Mapped) / float64(report.TotalFeeds) * 100)
		report.ScoringPercentage = round2(float64(report.Scored) / float64(report.TotalFeeds) * 100)
	}
	report.Suggestions = SuggestMappings(unmapped, agencies)
	return report, nil
}

// LogReport emits the startup summary: one info line with the counts
// and a warning per problem class.
func (v *Validator) LogReport(ctx context.Context) {
	report, err := v.Validate(ctx)
	if err != nil {
		logger.Warn("could not generate feed validation report", "error", err.Error())
		return
	}
	logger.Info("feed-to-agency validation summary",
		"total_feeds", report.TotalFeeds,
		"mapped", report.Mapped,
		"scored", report.Scored,
		"mapping_pct", report.MappingPercentage,
		"scoring_pct", report.ScoringPercentage)
	if report.Unmapped > 0 {
		logger.Warn("feeds with no agency mapping", "count", report.Unmapped)
	}
	if report.MappedUnscored > 0 {
		logger.Warn("feeds mapped to agencies without reputation scores",
			"count", report.MappedUnscored)
	}
	for _, s := range report.Suggestions {
		logger.Info("agency mapping suggestion",
			"outlet", s.Outlet, "suggested_agency", s.Agency)
	}
}

// outletVariants are common abbreviations and display-name variants per
// agency, keyed by the agency name with a leading "the " stripped.
var outletVariants = map[string][]string{
	"bbc":                 {"bbc news", "bbc world", "bbc"},
	"cnn":                 {"cnn", "cnn top stories", "cnn.com"},
	"reuters":             {"reuters", "reuters top news", "reuters.com"},
	"associated press":    {"ap", "ap news", "associated press"},
	"new york times":      {"nyt", "nytimes", "new york times"},
	"npr":                 {"npr", "npr news", "national public radio"},
	"washington post":     {"washington post", "washpost"},
	"guardian":            {"guardian", "theguardian.com"},
	"fox news":            {"fox", "fox news", "foxnews.com"},
}

// SuggestMappings matches unmapped outlet names against the existing
// agency set by substring and well-known variants. Best effort only.
func SuggestMappings(unmapped []string, agencies map[string]int) []MappingSuggestion {
	var suggestions []MappingSuggestion
	for _, outletName := range unmapped {
		outlet := strings.ToLower(outletName)
		for agency := range agencies {
			agencyLower := strings.ToLower(agency)
			if substringMatch(outlet, agencyLower) || variantMatch(outlet, agencyLower) {
				suggestions = append(suggestions, MappingSuggestion{
					Outlet: outletName, Agency: agency,
				})
				break
			}
		}
	}
	return suggestions
}

// substringMatch fires when any agency-name word longer than 3 chars
// appears in the outlet name.
func substringMatch(outlet, agency string) bool {
	for _, word := range strings.Fields(agency) {
		if len(word) > 3 && strings.Contains(outlet, word) {
			return true
		}
	}
	return false
}

func variantMatch(outlet, agency string) bool {
	key := strings.TrimSpace(strings.TrimPrefix(agency, "the "))
	for _, variant := range outletVariants[key] {
		if strings.Contains(outlet, variant) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
