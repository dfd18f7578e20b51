// Package ingest turns feed entries into stored articles.
package ingest

import (
	"context"
	"strings"
	"time"

	"newsengine/internal/core"
	"newsengine/internal/feeds"
	"newsengine/internal/fetch"
	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/persistence"
)

const (
	// maxEntriesPerRun caps how many entries of one feed are processed
	// in a single scheduler pass.
	maxEntriesPerRun = 20

	// linkWindowHours bounds which active events a fresh article may be
	// linked to.
	linkWindowHours = 48

	// linkRelevanceThreshold is the minimum title-keyword overlap for
	// linking a fresh article to an ongoing event.
	linkRelevanceThreshold = 0.2
)

// Ingester processes one feed at a time: parse entries, fetch article
// pages, extract bodies, and upsert by URL.
type Ingester struct {
	store   *persistence.DB
	parser  *feeds.Parser
	fetcher *fetch.Fetcher
}

// New creates an Ingester.
func New(store *persistence.DB, parser *feeds.Parser, fetcher *fetch.Fetcher) *Ingester {
	return &Ingester{store: store, parser: parser, fetcher: fetcher}
}

// ProcessFeed runs one ingestion pass over a feed. Per-entry errors are
// logged and do not abort the pass.
func (in *Ingester) ProcessFeed(ctx context.Context, feed core.Feed) (int, error) {
	entries, err := in.parser.Fetch(ctx, feed.URL)
	if err != nil {
		return 0, err
	}
	if len(entries) > maxEntriesPerRun {
		entries = entries[:maxEntriesPerRun]
	}

	inserted := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		ok, err := in.processEntry(ctx, feed, entry)
		if err != nil {
			logger.Warn("entry ingestion failed",
				"feed", feed.OutletName, "url", entry.Link, "error", err.Error())
			continue
		}
		if ok {
			inserted++
		}
	}
	if inserted > 0 {
		logger.Info("feed ingested",
			"feed", feed.OutletName, "entries", len(entries), "new_articles", inserted)
	}
	metrics.ArticlesIngested.Add(float64(inserted))
	return inserted, nil
}

func (in *Ingester) processEntry(ctx context.Context, feed core.Feed, entry feeds.Entry) (bool, error) {
	if entry.Link == "" {
		return false, nil
	}
	exists, err := in.store.Articles.Exists(ctx, entry.Link)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	article := core.Article{
		URL:         entry.Link,
		OutletName:  feed.OutletName,
		Title:       entry.Title,
		FeedID:      feed.ID,
		FetchedAt:   time.Now().UTC(),
		PublishedAt: entry.Published,
	}
	if entry.Author != "" {
		author := entry.Author
		article.Author = &author
	}

	extraction, err := in.fetcher.Fetch(ctx, entry.Link)
	if err != nil {
		logger.Warn("article fetch failed, falling back to summary",
			"url", entry.Link, "error", err.Error())
	} else {
		article.Text = extraction.Text
		article.RawHTML = extraction.RawHTML
		if article.Author == nil && extraction.Author != "" {
			author := extraction.Author
			article.Author = &author
		}
		if article.PublishedAt == nil {
			article.PublishedAt = extraction.PublishedAt
		}
	}
	if article.Text == "" {
		article.Text = entry.Summary
	}
	if len(article.Text) > fetch.MaxTextChars {
		article.Text = article.Text[:fetch.MaxTextChars]
	}

	id, created, err := in.store.Articles.UpsertByURL(ctx, &article)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}
	article.ID = id

	if err := in.linkToActiveEvents(ctx, &article); err != nil {
		logger.Warn("event linking failed", "article_id", id, "error", err.Error())
	}
	return true, nil
}

// linkToActiveEvents attaches the fresh article to ongoing events whose
// titles overlap its own. Grouping proper happens later in the
// composition worker; this keeps breaking stories current in between.
func (in *Ingester) linkToActiveEvents(ctx context.Context, article *core.Article) error {
	events, err := in.store.Events.ListActiveSince(ctx, linkWindowHours)
	if err != nil {
		return err
	}
	articleKeywords := titleKeywords(article.Title)
	if len(articleKeywords) == 0 {
		return nil
	}
	for _, event := range events {
		eventKeywords := titleKeywords(event.Title + " " + event.Description)
		relevance := keywordOverlap(articleKeywords, eventKeywords)
		if relevance <= linkRelevanceThreshold {
			continue
		}
		if err := in.store.Events.LinkArticle(ctx, event.ID, article.ID, relevance); err != nil {
			return err
		}
		logger.Debug("article linked to active event",
			"article_id", article.ID, "event_id", event.ID, "relevance", relevance)
	}
	return nil
}

var titleStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "after": true,
	"over": true, "amid": true, "into": true, "its": true, "his": true,
	"her": true, "their": true, "new": true, "says": true, "say": true,
}

func titleKeywords(title string) map[string]bool {
	keywords := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,:;!?'\"()[]")
		if len(word) < 3 || titleStopwords[word] {
			continue
		}
		keywords[word] = true
	}
	return keywords
}

func keywordOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for word := range a {
		if b[word] {
			shared++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}
