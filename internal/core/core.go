// Package core defines the domain types shared across the newsengine services.
package core

import (
	"fmt"
	"time"
)

// Feed represents an RSS/Atom feed source registered for polling.
type Feed struct {
	ID           int64      `json:"id"`                     // Unique identifier for the feed
	URL          string     `json:"url"`                    // Feed URL
	OutletName   string     `json:"outlet_name"`            // Canonical outlet name, the join key for outlet-scoped data
	Active       bool       `json:"active"`                 // Whether the feed is active for polling
	LastFetched  *time.Time `json:"last_fetched"`           // Last time the feed was fetched (nil = never)
	PollInterval int        `json:"fetch_interval_minutes"` // Poll interval in minutes
	AgencyID     *int64     `json:"news_agency_id"`         // Optional reference to the agency reputation record
}

// Article represents a single story identified by URL, owned by one feed.
type Article struct {
	ID                int64      `json:"id"`
	URL               string     `json:"url"`          // Source URL, unique key
	OutletName        string     `json:"outlet_name"`  // Canonical outlet name
	Title             string     `json:"title"`
	Author            *string    `json:"author"`       // Optional byline
	PublishedAt       *time.Time `json:"published_at"` // May be nil: unknown, treated as not-recent
	FetchedAt         time.Time  `json:"fetched_at"`
	Text              string     `json:"text"`     // Cleaned body text, capped at 50k chars
	RawHTML           string     `json:"raw_html"` // Raw HTML, capped at 100k chars
	FeedID            int64      `json:"rss_feed_id"`
	QualityScore      *int       `json:"quality_score"` // 0-100 integer, nil until computed
	QualityComputedAt *time.Time `json:"quality_computed_at"`
	NER               NERFields  `json:"ner"`
	NERExtractedAt    *time.Time `json:"ner_extracted_at"`
	ComputedEventID   *int64     `json:"computed_event_id"` // Back-reference kept for fast lookup
}

// NERFields holds the categorized entities persisted per article.
// Each list is capped to 10 entries.
type NERFields struct {
	Persons       []string `json:"persons"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
	Dates         []string `json:"dates"`
	Others        []string `json:"others"`
}

// ClaimType classifies an extracted claim sentence.
type ClaimType string

const (
	ClaimFact       ClaimType = "fact"
	ClaimOpinion    ClaimType = "opinion"
	ClaimPrediction ClaimType = "prediction"
	ClaimNone       ClaimType = "none" // Placeholder marking an article processed with no claims
)

// VerifiedState is the heuristic verification label for a claim.
// It is not ground truth and downstream scoring must not treat it as such.
type VerifiedState string

const (
	VerifiedStateVerified   VerifiedState = "verified"
	VerifiedStateContested  VerifiedState = "contested"
	VerifiedStateUnverified VerifiedState = "unverified"
)

// Claim is a typed claim sentence extracted from one article.
type Claim struct {
	ID                 int64         `json:"id"`
	ArticleID          int64         `json:"article_id"`
	Text               string        `json:"claim_text"` // Capped at 1000 chars
	Type               ClaimType     `json:"claim_type"`
	VerifiedState      VerifiedState `json:"verified_state"`
	VerificationSource *string       `json:"verification_source"`
	Confidence         float64       `json:"confidence"` // 0..1
}

// Event is a cluster of two or more articles judged to cover the same story.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"` // Concatenated member titles, capped
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Active      bool      `json:"active"`
}

// EventArticle links an article into an event with a relevance score.
type EventArticle struct {
	EventID        int64     `json:"event_id"`
	ArticleID      int64     `json:"article_id"`
	RelevanceScore float64   `json:"relevance_score"` // 0..1
	AddedAt        time.Time `json:"added_at"`
}

// EventMetrics is the persisted EQIS row, one per event.
type EventMetrics struct {
	EventID           int64              `json:"event_id"`
	ComputedAt        time.Time          `json:"computed_at"`
	AgeDays           float64            `json:"age_days"`
	CoverageSites     int                `json:"coverage_sites"`
	KeywordCoherence  float64            `json:"keyword_coherence"`
	BestSource        string             `json:"best_source"`
	CorroborationRate float64            `json:"corroboration_ratio"`
	ContradictionRate float64            `json:"contradiction_rate"`
	CorrectionRisk    float64            `json:"correction_risk"`
	EQISScore         float64            `json:"eqis_score"`
	Components        map[string]float64 `json:"components"` // Numeric sub-scores, stored as JSON
}

// PressFreedomTier buckets a press-freedom ranking for the reputation cache.
type PressFreedomTier string

const (
	TierExcellent PressFreedomTier = "excellent"
	TierGood      PressFreedomTier = "good"
	TierFair      PressFreedomTier = "fair"
	TierPoor      PressFreedomTier = "poor"
	TierUnknown   PressFreedomTier = "unknown"
)

// AgencyMetrics is the administered + derived reputation record for one agency.
type AgencyMetrics struct {
	ID                     int64     `json:"id"`
	OutletName             string    `json:"outlet_name"`
	PulitzerAwards         int       `json:"pulitzer_awards"`
	MurrowAwards           int       `json:"murrow_awards"`
	PeabodyAwards          int       `json:"peabody_awards"`
	EmmyAwards             int       `json:"emmy_awards"`
	PolkAwards             int       `json:"george_polk_awards"`
	DuPontAwards           int       `json:"dupont_awards"`
	SPJAwards              int       `json:"spj_awards"`
	OtherSpecialized       int       `json:"other_specialized_awards"`
	PressFreedomRanking    *int      `json:"press_freedom_ranking"`
	IndustryMemberships    []string  `json:"industry_memberships"`
	EditorialIndependence  float64   `json:"editorial_independence_rating"` // 0..10
	FactCheckingStandards  bool      `json:"fact_checking_standards"`
	CorrectionPolicy       bool      `json:"correction_policy_exists"`
	RetractionTransparency bool      `json:"retraction_transparency"`
	OwnershipTransparency  bool      `json:"ownership_transparency"`
	FundingDisclosure      bool      `json:"funding_disclosure"`
	EthicsCodePublic       bool      `json:"ethics_code_public"`
	AwardsScore            int       `json:"total_awards_score"`          // Derived, 0-60
	ProfessionalScore      int       `json:"professional_standing_score"` // Derived, 0-25
	CredibilityScore       int       `json:"credibility_score"`           // Derived, 0-15
	FinalReputationScore   int       `json:"final_reputation_score"`      // Derived, 0-100
	ResearchNotes          string    `json:"research_notes"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// OutletReputation is the materialized per-outlet reputation cache row.
type OutletReputation struct {
	OutletName       string           `json:"outlet_name"`
	ReputationScore  int              `json:"reputation_score"`
	MetricsID        *int64           `json:"reputation_metrics_id"`
	TotalMajorAwards int              `json:"total_major_awards"`
	HasFactChecking  bool             `json:"has_fact_checking"`
	PressFreedomTier PressFreedomTier `json:"press_freedom_tier"`
	LastUpdated      time.Time        `json:"last_updated"`
}

// GroupingConfig is the parameter set driving the event grouping engine.
// All values live in bounded domains enforced by Validate.
type GroupingConfig struct {
	MinSharedEntities      int     `json:"min_shared_entities"`      // 1-6
	EntityOverlapThreshold float64 `json:"entity_overlap_threshold"` // 0.150-0.500
	MinTitleKeywords       int     `json:"min_title_keywords"`       // 0-5, 0 disables the gate
	TitleKeywordBonus      float64 `json:"title_keyword_bonus"`      // 0.000-0.300
	MaxTimeDiffHours       int     `json:"max_time_diff_hours"`      // 6-96
	AllowSameOutlet        bool    `json:"allow_same_outlet"`
	MinEntityLength        int     `json:"min_entity_length"`     // 2-6
	MaxEntityLength        int     `json:"max_entity_length"`     // 30-80
	EntityNoiseThreshold   float64 `json:"entity_noise_threshold"` // 0.100-0.400
}

// DefaultGroupingConfig returns the conservative defaults used when no
// configuration history exists.
func DefaultGroupingConfig() GroupingConfig {
	return GroupingConfig{
		MinSharedEntities:      2,
		EntityOverlapThreshold: 0.250,
		MinTitleKeywords:       0,
		TitleKeywordBonus:      0.100,
		MaxTimeDiffHours:       48,
		AllowSameOutlet:        false,
		MinEntityLength:        3,
		MaxEntityLength:        50,
		EntityNoiseThreshold:   0.200,
	}
}

// Validate checks every parameter against its bounded domain.
func (g GroupingConfig) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"min_shared_entities", g.MinSharedEntities >= 1 && g.MinSharedEntities <= 6},
		{"entity_overlap_threshold", g.EntityOverlapThreshold >= 0.150 && g.EntityOverlapThreshold <= 0.500},
		{"min_title_keywords", g.MinTitleKeywords >= 0 && g.MinTitleKeywords <= 5},
		{"title_keyword_bonus", g.TitleKeywordBonus >= 0.000 && g.TitleKeywordBonus <= 0.300},
		{"max_time_diff_hours", g.MaxTimeDiffHours >= 6 && g.MaxTimeDiffHours <= 96},
		{"min_entity_length", g.MinEntityLength >= 2 && g.MinEntityLength <= 6},
		{"max_entity_length", g.MaxEntityLength >= 30 && g.MaxEntityLength <= 80},
		{"entity_noise_threshold", g.EntityNoiseThreshold >= 0.100 && g.EntityNoiseThreshold <= 0.400},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("grouping config: %s out of range", check.name)
		}
	}
	return nil
}

// BatchMetrics are the raw counters measured for one grouping batch.
type BatchMetrics struct {
	ArticlesProcessed   int     `json:"articles_processed"`
	EventsCreated       int     `json:"events_created"`
	ProcessingTimeMS    int64   `json:"processing_time_ms"`
	EntitiesExtracted   int     `json:"entities_extracted"`
	EventCreationRate   float64 `json:"event_creation_rate"`
	CoveragePercentage  float64 `json:"coverage_percentage"`
	AvgArticlesPerEvent float64 `json:"avg_articles_per_event"`
	SingletonEvents     int     `json:"singleton_events_count"`
	EntitiesPerArticle  float64 `json:"entities_per_article"`
}

// PerformanceScores are the derived 0-100 component scores for a batch.
type PerformanceScores struct {
	Effectiveness float64 `json:"effectiveness_score"`
	Efficiency    float64 `json:"efficiency_score"`
	Coverage      float64 `json:"coverage_score"`
	Precision     float64 `json:"precision_score"`
	Overall       float64 `json:"overall_score"`
}

// PerformanceSnapshot is one append-only row recording the grouping
// configuration and the measured performance of the batch run under it.
type PerformanceSnapshot struct {
	ID              int64             `json:"id"`
	Config          GroupingConfig    `json:"config"`
	Metrics         BatchMetrics      `json:"metrics"`
	Scores          PerformanceScores `json:"scores"`
	Source          ConfigSource      `json:"config_source"`
	ServiceInstance string            `json:"service_instance"`
	Generation      int               `json:"generation"`
	Notes           string            `json:"notes"`
	Trend           ScoreTrend        `json:"trend"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ConfigSource records how a configuration snapshot came to be.
type ConfigSource string

const (
	ConfigSourceStartup  ConfigSource = "startup"
	ConfigSourceRuntime  ConfigSource = "runtime"
	ConfigSourceManual   ConfigSource = "manual"
	ConfigSourceAutoTune ConfigSource = "auto_tune"
)

// ScoreTrend classifies batch performance relative to the previous snapshot.
type ScoreTrend string

const (
	TrendInitial   ScoreTrend = "initial"
	TrendStable    ScoreTrend = "stable"
	TrendImproving ScoreTrend = "improving"
	TrendDeclining ScoreTrend = "declining"
)

// CleanupStatus is the lifecycle state of a retention cleanup run.
type CleanupStatus string

const (
	CleanupRunning   CleanupStatus = "running"
	CleanupCompleted CleanupStatus = "completed"
	CleanupError     CleanupStatus = "error"
)

// CleanupLog is one append-only record of a retention cleanup run.
type CleanupLog struct {
	ID             int64         `json:"id"`
	RunID          string        `json:"run_id"` // Correlation id for log lines of one run
	CleanupType    string        `json:"cleanup_type"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at"`
	RecordsDeleted int           `json:"records_deleted"`
	BatchCount     int           `json:"batch_count"`
	Status         CleanupStatus `json:"status"`
	ErrorMessage   string        `json:"error_message"`
}

// ConfigChangeEvent is one append-only row in the parameter change log.
type ConfigChangeEvent struct {
	ID                int64    `json:"id"`
	ParameterName     string   `json:"parameter_name"`
	OldValue          string   `json:"old_value"`
	NewValue          string   `json:"new_value"`
	ChangeReason      string   `json:"change_reason"`
	PreviousScore     *float64 `json:"previous_score"`
	TargetImprovement string   `json:"target_improvement"`
	SnapshotID        *int64   `json:"config_snapshot_id"`
	TriggeredBy       string   `json:"triggered_by"`
}
