// Package fetch downloads article pages and extracts their main body
// text, byline, and publish date from the HTML.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxTextChars bounds the cleaned body text kept per article.
	MaxTextChars = 50000
	// MaxHTMLChars bounds the raw HTML kept per article.
	MaxHTMLChars = 100000

	articleTimeout = 10 * time.Second
	maxRetries     = 2
)

// Extraction is the result of fetching and parsing one article page.
type Extraction struct {
	Text        string
	RawHTML     string
	Author      string
	PublishedAt *time.Time
}

// Fetcher downloads article HTML with a hard timeout and a fixed
// User-Agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a Fetcher.
func New(userAgent string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: articleTimeout},
		userAgent: userAgent,
	}
}

// Fetch downloads the page and extracts its content. Server errors and
// network failures are retried twice with 1-2-4 s backoff; 4xx is
// terminal.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Extraction, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
		extraction, retryable, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return extraction, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*Extraction, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("%s returned status %d", pageURL, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%s returned status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(MaxHTMLChars)*4))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	html := string(body)
	if len(html) > MaxHTMLChars {
		html = html[:MaxHTMLChars]
	}
	extraction, err := Extract(string(body))
	if err != nil {
		return nil, false, err
	}
	extraction.RawHTML = html
	return extraction, false, nil
}

// mainContentSelectors are tried in order; the first non-empty match wins.
var mainContentSelectors = []string{
	"article", "main", "[role='main']",
	".article-body", ".entry-content", ".post-content", ".story-body",
	".main-content", "#content", ".content",
}

// Extract parses HTML and pulls the main text, author, and publish
// date. The fallback chain is main-content selectors, then all body
// paragraphs.
func Extract(html string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	text := ""
	for _, selector := range mainContentSelectors {
		if selection := doc.Find(selector).First(); selection.Length() > 0 {
			text = blockText(selection)
			if text != "" {
				break
			}
		}
	}
	if text == "" {
		text = blockText(doc.Find("body"))
	}
	if len(text) > MaxTextChars {
		text = text[:MaxTextChars]
	}

	return &Extraction{
		Text:        text,
		Author:      extractAuthor(doc),
		PublishedAt: extractPublished(doc),
	}, nil
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

func blockText(selection *goquery.Selection) string {
	var b strings.Builder
	selection.Find("p, h1, h2, h3, li, blockquote").Each(func(_ int, item *goquery.Selection) {
		line := strings.TrimSpace(item.Text())
		if line == "" {
			return
		}
		b.WriteString(line)
		b.WriteString("\n\n")
	})
	return strings.TrimSpace(multiNewline.ReplaceAllString(b.String(), "\n\n"))
}

func extractAuthor(doc *goquery.Document) string {
	if author, ok := doc.Find("meta[name='author']").Attr("content"); ok {
		return strings.TrimSpace(author)
	}
	if author, ok := doc.Find("meta[property='article:author']").Attr("content"); ok {
		if !strings.HasPrefix(author, "http") {
			return strings.TrimSpace(author)
		}
	}
	if byline := doc.Find(".byline, .author").First().Text(); byline != "" {
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(byline), "By "))
	}
	return ""
}

var publishedMetaSelectors = []string{
	"meta[property='article:published_time']",
	"meta[name='pubdate']",
	"meta[name='publish-date']",
	"meta[itemprop='datePublished']",
}

func extractPublished(doc *goquery.Document) *time.Time {
	for _, selector := range publishedMetaSelectors {
		raw, ok := doc.Find(selector).Attr("content")
		if !ok {
			continue
		}
		if t := parseDate(raw); t != nil {
			return t
		}
	}
	if raw, ok := doc.Find("time[datetime]").Attr("datetime"); ok {
		return parseDate(raw)
	}
	return nil
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, format := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(format, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
