// Package grouping clusters recent articles into events using an
// entity/time/title rule set, scores each batch's performance, and
// drives the performance-based configuration loop.
package grouping

import (
	"context"
	"strings"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/ner"
	"newsengine/internal/persistence"
)

const (
	// groupingTextChars bounds the body text used for entity matching.
	groupingTextChars = 2000

	// descriptionCap bounds the concatenated-title event description.
	descriptionCap = 1000
)

// Cluster is one pending event: the member articles in input order.
type Cluster struct {
	Articles []core.Article
}

// BatchResult is what a grouping pass produced plus its raw counters.
type BatchResult struct {
	Clusters []Cluster
	Metrics  core.BatchMetrics
}

// Engine matches articles into clusters and persists them as events.
type Engine struct {
	store     *persistence.DB
	extractor *ner.Extractor
}

// NewEngine creates an Engine.
func NewEngine(store *persistence.DB, extractor *ner.Extractor) *Engine {
	return &Engine{store: store, extractor: extractor}
}

// Group partitions a subset of the articles into clusters of size >= 2
// under the configuration, and fills in the batch counters.
func (e *Engine) Group(articles []core.Article, cfg core.GroupingConfig) BatchResult {
	start := time.Now()
	opts := ner.Options{
		MinEntityLength: cfg.MinEntityLength,
		MaxEntityLength: cfg.MaxEntityLength,
		NoiseThreshold:  cfg.EntityNoiseThreshold,
	}

	entitySets := make([]map[string]bool, len(articles))
	titleSets := make([]map[string]bool, len(articles))
	entitiesTotal := 0
	for i, a := range articles {
		body := a.Text
		if len(body) > groupingTextChars {
			body = body[:groupingTextChars]
		}
		entitySets[i] = e.extractor.FlatSet(body, a.Title, opts)
		titleSets[i] = titleKeywords(a.Title)
		entitiesTotal += len(entitySets[i])
	}

	used := make([]bool, len(articles))
	var clusters []Cluster
	singletons := 0
	for i := range articles {
		if used[i] {
			continue
		}
		members := []int{i}
		for j := i + 1; j < len(articles); j++ {
			if used[j] {
				continue
			}
			if !e.match(articles, entitySets, titleSets, members, j, cfg) {
				continue
			}
			members = append(members, j)
			used[j] = true
		}
		if len(members) < 2 {
			// Seed found no partner; not emitted, counted against
			// effectiveness.
			singletons++
			continue
		}
		used[i] = true
		cluster := Cluster{Articles: make([]core.Article, 0, len(members))}
		for _, idx := range members {
			cluster.Articles = append(cluster.Articles, articles[idx])
		}
		clusters = append(clusters, cluster)
	}

	result := BatchResult{Clusters: clusters}
	result.Metrics = batchCounters(articles, clusters, entitiesTotal, singletons, time.Since(start))
	return result
}

// match tests candidate j against the cluster seeded at members[0].
// Outlet and time gates apply against every current member so the
// emitted event honors the window and same-outlet invariants as a
// whole, not just pairwise with the seed.
func (e *Engine) match(articles []core.Article, entitySets, titleSets []map[string]bool, members []int, j int, cfg core.GroupingConfig) bool {
	seed := members[0]
	for _, m := range members {
		if !cfg.AllowSameOutlet && articles[m].OutletName == articles[j].OutletName {
			return false
		}
		if !withinWindow(articles[m].PublishedAt, articles[j].PublishedAt, cfg.MaxTimeDiffHours) {
			return false
		}
	}

	shared := intersectionSize(entitySets[seed], entitySets[j])
	smaller := len(entitySets[seed])
	if len(entitySets[j]) < smaller {
		smaller = len(entitySets[j])
	}
	if smaller == 0 {
		return false
	}

	required := float64(cfg.MinSharedEntities)
	if overlap := float64(smaller) * cfg.EntityOverlapThreshold; overlap > required {
		required = overlap
	}

	titleShared := intersectionSize(titleSets[seed], titleSets[j])
	if titleShared >= cfg.MinTitleKeywords {
		credit := float64(titleShared) * cfg.TitleKeywordBonus
		if cap := required * 0.5; credit > cap {
			credit = cap
		}
		required -= credit
	} else if cfg.MinTitleKeywords > 0 {
		return false
	}

	return float64(shared) >= required
}

// withinWindow treats a nil publish time as unknown, which never
// passes: an undated article cannot be placed in a time-bounded event.
func withinWindow(a, b *time.Time, maxHours int) bool {
	if a == nil || b == nil {
		return false
	}
	diff := a.Sub(*b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(maxHours)*time.Hour
}

// Persist writes each cluster as an event with its links and article
// back-references, one transaction per event. A failed event is logged
// and skipped; siblings continue. Returns the number created.
func (e *Engine) Persist(ctx context.Context, result BatchResult) int {
	created := 0
	for _, cluster := range result.Clusters {
		event := core.Event{
			Title:       longestTitle(cluster.Articles),
			Description: describeEvent(cluster.Articles),
		}
		members := make([]persistence.MemberLink, 0, len(cluster.Articles))
		for _, a := range cluster.Articles {
			members = append(members, persistence.MemberLink{ArticleID: a.ID, Relevance: 1.0})
		}
		eventID, err := e.store.Events.InsertWithArticles(ctx, &event, members)
		if err != nil {
			logger.Error("failed to persist event", err,
				"title", event.Title, "members", len(members))
			continue
		}
		created++
		metrics.EventsCreated.Inc()
		logger.Info("event created", "event_id", eventID,
			"articles", len(members), "title", event.Title)
	}
	return created
}

func longestTitle(articles []core.Article) string {
	title := ""
	for _, a := range articles {
		if len(a.Title) > len(title) {
			title = a.Title
		}
	}
	return title
}

func describeEvent(articles []core.Article) string {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	description := strings.Join(titles, " | ")
	if len(description) > descriptionCap {
		description = description[:descriptionCap]
	}
	return description
}

func batchCounters(articles []core.Article, clusters []Cluster, entitiesTotal, singletons int, elapsed time.Duration) core.BatchMetrics {
	m := core.BatchMetrics{
		ArticlesProcessed: len(articles),
		EventsCreated:     len(clusters),
		ProcessingTimeMS:  elapsed.Milliseconds(),
		EntitiesExtracted: entitiesTotal,
		SingletonEvents:   singletons,
	}
	grouped := 0
	for _, c := range clusters {
		grouped += len(c.Articles)
	}
	if m.ArticlesProcessed > 0 {
		m.EventCreationRate = float64(m.EventsCreated) / float64(m.ArticlesProcessed)
		m.CoveragePercentage = float64(grouped) / float64(m.ArticlesProcessed) * 100
		m.EntitiesPerArticle = float64(entitiesTotal) / float64(m.ArticlesProcessed)
	}
	if m.EventsCreated > 0 {
		m.AvgArticlesPerEvent = float64(grouped) / float64(m.EventsCreated)
	}
	return m
}

// titleStopwords is the fixed stopword set removed from title keywords
// before overlap counting.
var titleStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"day": true, "get": true, "has": true, "him": true, "his": true,
	"how": true, "man": true, "new": true, "now": true, "old": true,
	"see": true, "two": true, "who": true, "boy": true, "did": true,
	"its": true, "let": true, "put": true, "say": true, "she": true,
	"too": true, "use": true, "said": true, "says": true, "will": true,
	"with": true, "from": true, "after": true, "over": true, "into": true,
}

func titleKeywords(title string) map[string]bool {
	keywords := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,:;!?'\"()[]-")
		if len(word) < 3 || titleStopwords[word] {
			continue
		}
		keywords[word] = true
	}
	return keywords
}

func intersectionSize(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for key := range a {
		if b[key] {
			n++
		}
	}
	return n
}
