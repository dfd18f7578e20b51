// Package feeds provides RSS/Atom feed fetching and parsing.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsengine/internal/logger"
)

// UserAgent is the fixed identifier sent on every outbound request.
const UserAgent = "newsengine-fetcher/1.0"

// feedTimeout bounds one feed download + parse.
const feedTimeout = 5 * time.Second

// Entry is one feed item normalized across RSS 2.0 and Atom 1.0.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Author    string
	Published *time.Time
}

// Parser fetches and parses feeds. Malformed feeds are accepted
// best-effort; a parse failure is returned to the caller for feed-level
// logging.
type Parser struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewParser creates a feed parser with the hard feed timeout.
func NewParser() *Parser {
	return &Parser{
		client: &http.Client{Timeout: feedTimeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads and parses the feed, retrying twice with 1-2-4 s
// backoff on server errors and network failures. 4xx is terminal.
func (p *Parser) Fetch(ctx context.Context, feedURL string) ([]Entry, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= 2; attempt++ {
		if attempt > 0 {
			logger.Warn("feed fetch retrying",
				"url", feedURL, "attempt", attempt, "backoff", backoff.String())
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
		entries, retryable, err := p.fetchOnce(ctx, feedURL)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (p *Parser) fetchOnce(ctx context.Context, feedURL string) ([]Entry, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("feed %s returned status %d", feedURL, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("feed %s returned status %d", feedURL, resp.StatusCode)
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	return normalize(feed), true, nil
}

func normalize(feed *gofeed.Feed) []Entry {
	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entry := Entry{
			Title:   strings.TrimSpace(item.Title),
			Link:    strings.TrimSpace(item.Link),
			Summary: strings.TrimSpace(item.Description),
		}
		if item.Author != nil {
			entry.Author = strings.TrimSpace(item.Author.Name)
		}
		if item.PublishedParsed != nil {
			published := item.PublishedParsed.UTC()
			entry.Published = &published
		} else if item.UpdatedParsed != nil {
			updated := item.UpdatedParsed.UTC()
			entry.Published = &updated
		}
		entries = append(entries, entry)
	}
	return entries
}

// Validate fetches a URL once to confirm it parses as a feed.
func (p *Parser) Validate(ctx context.Context, feedURL string) error {
	_, _, err := p.fetchOnce(ctx, feedURL)
	return err
}
