package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <meta name="author" content="Jordan Reyes">
  <meta property="article:published_time" content="2026-08-24T10:30:00Z">
  <script>window.tracker = true;</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Council approves budget</h1>
    <p>The city council approved the annual budget on Monday.</p>
    <p>The vote followed two weeks of public hearings.</p>
  </article>
  <footer>Copyright notice</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	extraction, err := Extract(samplePage)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(extraction.Text, "approved the annual budget") {
		t.Errorf("body paragraph missing from text: %q", extraction.Text)
	}
	if !strings.Contains(extraction.Text, "Council approves budget") {
		t.Errorf("headline missing from text: %q", extraction.Text)
	}
	for _, stripped := range []string{"window.tracker", "Home", "Copyright"} {
		if strings.Contains(extraction.Text, stripped) {
			t.Errorf("boilerplate %q leaked into text", stripped)
		}
	}
	if extraction.Author != "Jordan Reyes" {
		t.Errorf("author = %q, want Jordan Reyes", extraction.Author)
	}
	want := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	if extraction.PublishedAt == nil || !extraction.PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", extraction.PublishedAt, want)
	}
}

func TestExtractFallsBackToBodyParagraphs(t *testing.T) {
	html := `<html><body><div><p>No article element on this page at all.</p></div></body></html>`
	extraction, err := Extract(html)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(extraction.Text, "No article element") {
		t.Errorf("fallback text = %q", extraction.Text)
	}
}

func TestExtractBylineFallback(t *testing.T) {
	html := `<html><body><article><div class="byline">By Dana Okafor</div><p>Body text here.</p></article></body></html>`
	extraction, err := Extract(html)
	if err != nil {
		t.Fatal(err)
	}
	if extraction.Author != "Dana Okafor" {
		t.Errorf("author = %q, want Dana Okafor", extraction.Author)
	}
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2026-08-24T10:30:00Z", time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)},
		{"2026-08-24T10:30:00", time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)},
		{"2026-08-24", time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := parseDate(tt.raw)
		if got == nil || !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
	if got := parseDate("next Tuesday"); got != nil {
		t.Errorf("parseDate on garbage = %v, want nil", got)
	}
}

func TestFetchCapsStoredHTML(t *testing.T) {
	filler := strings.Repeat("<p>padding paragraph content</p>", 8000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><article>" + filler + "</article></body></html>"))
	}))
	defer server.Close()

	extraction, err := New("newsengine-fetcher/1.0").Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(extraction.RawHTML) > MaxHTMLChars {
		t.Errorf("raw HTML length %d exceeds cap %d", len(extraction.RawHTML), MaxHTMLChars)
	}
	if len(extraction.Text) > MaxTextChars {
		t.Errorf("text length %d exceeds cap %d", len(extraction.Text), MaxTextChars)
	}
}

func TestFetchNotFoundIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := New("test-agent").Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("404 should surface as an error")
	}
}
