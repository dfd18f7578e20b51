package grouping

import (
	"strings"
	"testing"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/ner"
)

// wordModel emits every token as a MISC entity so tests control the
// entity sets through article text alone. Lowercase filler is still
// dropped by the extractor's noise filter.
type wordModel struct{}

func (wordModel) Name() string { return "words" }

func (wordModel) Extract(text string) []ner.RawEntity {
	var entities []ner.RawEntity
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,")
		entities = append(entities, ner.RawEntity{Text: w, Category: ner.CategoryMisc, Confidence: 0.9})
	}
	return entities
}

func testEngine() *Engine {
	return NewEngine(nil, ner.New(wordModel{}))
}

func pubAt(t time.Time) *time.Time { return &t }

// body pads capitalized marker words out to the minimum text length the
// extractor requires; the lowercase padding is filtered as noise.
func body(markers ...string) string {
	return strings.Join(markers, " ") + " padding padding padding padding padding padding padding"
}

func TestGroupMatchesOnSharedEntities(t *testing.T) {
	now := time.Now()
	articles := []core.Article{
		{ID: 1, OutletName: "alpha", Title: "senate budget vote", PublishedAt: pubAt(now),
			Text: body("Senate", "Budget", "Vote", "Deficit")},
		{ID: 2, OutletName: "beta", Title: "senate passes budget", PublishedAt: pubAt(now.Add(time.Hour)),
			Text: body("Senate", "Budget", "Vote", "Spending")},
		{ID: 3, OutletName: "gamma", Title: "storm hits coastline", PublishedAt: pubAt(now),
			Text: body("Storm", "Coastline", "Rainfall", "Evacuation")},
	}

	result := testEngine().Group(articles, core.DefaultGroupingConfig())
	if len(result.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(result.Clusters))
	}
	cluster := result.Clusters[0]
	if len(cluster.Articles) != 2 || cluster.Articles[0].ID != 1 || cluster.Articles[1].ID != 2 {
		t.Errorf("expected articles 1 and 2 grouped, got %+v", cluster.Articles)
	}
	if result.Metrics.SingletonEvents != 1 {
		t.Errorf("expected 1 singleton seed, got %d", result.Metrics.SingletonEvents)
	}
}

func TestGroupRespectsOutletPolicy(t *testing.T) {
	now := time.Now()
	articles := []core.Article{
		{ID: 1, OutletName: "alpha", Title: "senate budget vote", PublishedAt: pubAt(now),
			Text: body("Senate", "Budget", "Vote")},
		{ID: 2, OutletName: "alpha", Title: "senate budget follow-up", PublishedAt: pubAt(now),
			Text: body("Senate", "Budget", "Vote")},
	}

	cfg := core.DefaultGroupingConfig()
	result := testEngine().Group(articles, cfg)
	if len(result.Clusters) != 0 {
		t.Fatalf("same-outlet articles must not group, got %d clusters", len(result.Clusters))
	}

	cfg.AllowSameOutlet = true
	result = testEngine().Group(articles, cfg)
	if len(result.Clusters) != 1 {
		t.Fatalf("with allow_same_outlet the pair should group, got %d clusters", len(result.Clusters))
	}
}

func TestGroupRespectsTimeWindow(t *testing.T) {
	now := time.Now()
	articles := []core.Article{
		{ID: 1, OutletName: "alpha", Title: "senate budget vote", PublishedAt: pubAt(now),
			Text: body("Senate", "Budget", "Vote")},
		{ID: 2, OutletName: "beta", Title: "senate budget vote", PublishedAt: pubAt(now.Add(49 * time.Hour)),
			Text: body("Senate", "Budget", "Vote")},
		{ID: 3, OutletName: "gamma", Title: "senate budget vote", PublishedAt: nil,
			Text: body("Senate", "Budget", "Vote")},
	}

	result := testEngine().Group(articles, core.DefaultGroupingConfig())
	if len(result.Clusters) != 0 {
		t.Fatalf("articles outside the window or undated must not group, got %d clusters", len(result.Clusters))
	}
}

func TestGroupMembershipIsExclusive(t *testing.T) {
	now := time.Now()
	shared := body("Senate", "Budget", "Vote", "Deficit")
	articles := []core.Article{
		{ID: 1, OutletName: "alpha", Title: "senate budget vote", PublishedAt: pubAt(now), Text: shared},
		{ID: 2, OutletName: "beta", Title: "senate budget vote", PublishedAt: pubAt(now), Text: shared},
		{ID: 3, OutletName: "gamma", Title: "senate budget vote", PublishedAt: pubAt(now), Text: shared},
		{ID: 4, OutletName: "delta", Title: "senate budget vote", PublishedAt: pubAt(now), Text: shared},
	}

	result := testEngine().Group(articles, core.DefaultGroupingConfig())
	seen := map[int64]int{}
	for _, cluster := range result.Clusters {
		for _, a := range cluster.Articles {
			seen[a.ID]++
		}
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("article %d appears in %d clusters", id, n)
		}
	}
	if len(result.Clusters) != 1 || len(result.Clusters[0].Articles) != 4 {
		t.Errorf("expected one cluster of 4, got %+v", result.Clusters)
	}
}

func TestGroupEntityRequirementScalesWithOverlapThreshold(t *testing.T) {
	now := time.Now()
	// One shared marker out of six per side: groups only when the
	// proportional requirement stays low.
	articles := []core.Article{
		{ID: 1, OutletName: "alpha", Title: "first report", PublishedAt: pubAt(now),
			Text: body("Shared", "UniqueA", "UniqueB", "UniqueC", "UniqueD", "UniqueE")},
		{ID: 2, OutletName: "beta", Title: "second report", PublishedAt: pubAt(now),
			Text: body("Shared", "OtherA", "OtherB", "OtherC", "OtherD", "OtherE")},
	}

	cfg := core.DefaultGroupingConfig()
	cfg.MinSharedEntities = 1
	cfg.EntityOverlapThreshold = 0.450
	if result := testEngine().Group(articles, cfg); len(result.Clusters) != 0 {
		t.Fatalf("high overlap threshold should block a single shared entity")
	}

	cfg.EntityOverlapThreshold = 0.150
	if result := testEngine().Group(articles, cfg); len(result.Clusters) != 1 {
		t.Fatalf("low overlap threshold should let the pair group")
	}
}

func TestGroupTitleKeywordGate(t *testing.T) {
	now := time.Now()
	articles := []core.Article{
		{ID: 1, OutletName: "alpha", Title: "wildfire spreads north", PublishedAt: pubAt(now),
			Text: body("Wildfire", "Containment", "Acres")},
		{ID: 2, OutletName: "beta", Title: "markets rally again", PublishedAt: pubAt(now),
			Text: body("Wildfire", "Containment", "Acres")},
	}

	cfg := core.DefaultGroupingConfig()
	cfg.MinTitleKeywords = 1
	if result := testEngine().Group(articles, cfg); len(result.Clusters) != 0 {
		t.Fatalf("title gate should block articles with no title overlap")
	}
}

func TestBatchCountersCoverage(t *testing.T) {
	articles := make([]core.Article, 10)
	clusters := []Cluster{
		{Articles: articles[:3]},
		{Articles: articles[3:5]},
	}
	m := batchCounters(articles, clusters, 40, 2, 250*time.Millisecond)
	if m.ArticlesProcessed != 10 || m.EventsCreated != 2 {
		t.Fatalf("unexpected counters: %+v", m)
	}
	if m.CoveragePercentage != 50 {
		t.Errorf("coverage = %v, want 50", m.CoveragePercentage)
	}
	if m.EventCreationRate != 0.2 {
		t.Errorf("event rate = %v, want 0.2", m.EventCreationRate)
	}
	if m.AvgArticlesPerEvent != 2.5 {
		t.Errorf("avg articles/event = %v, want 2.5", m.AvgArticlesPerEvent)
	}
	if m.EntitiesPerArticle != 4 {
		t.Errorf("entities/article = %v, want 4", m.EntitiesPerArticle)
	}
	if m.SingletonEvents != 2 {
		t.Errorf("singletons = %d, want 2", m.SingletonEvents)
	}
}

func TestDescribeEventCapsLength(t *testing.T) {
	long := strings.Repeat("t", 400)
	articles := []core.Article{{Title: long}, {Title: long}, {Title: long}}
	if got := describeEvent(articles); len(got) != descriptionCap {
		t.Errorf("description length = %d, want %d", len(got), descriptionCap)
	}
}
