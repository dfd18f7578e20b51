package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Wire</title>
    <item>
      <title>  Council approves budget  </title>
      <link>https://example.com/budget</link>
      <description>The council approved the budget.</description>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Storm warning issued</title>
      <link>https://example.com/storm</link>
      <description>A storm warning was issued.</description>
    </item>
  </channel>
</rss>`

func TestFetchParsesAndNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != UserAgent {
			t.Errorf("User-Agent = %q, want %q", got, UserAgent)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	entries, err := NewParser().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Title != "Council approves budget" {
		t.Errorf("title not trimmed: %q", entries[0].Title)
	}
	if entries[0].Published == nil {
		t.Error("pubDate should populate Published")
	}
	if entries[1].Published != nil {
		t.Error("item without dates should have nil Published")
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	entries, err := NewParser().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries after retries, want 2", len(entries))
	}
	if calls.Load() != 3 {
		t.Errorf("server hit %d times, want 3", calls.Load())
	}
}

func TestFetchClientErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewParser().Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("404 should be a terminal error")
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (no retries on 4xx)", calls.Load())
	}
}

func TestFetchHonorsContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewParser().Fetch(ctx, server.URL); err == nil {
		t.Fatal("cancelled context should abort the retry wait")
	}
}

func TestValidateRejectsNonFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>not a feed</body></html>"))
	}))
	defer server.Close()

	if err := NewParser().Validate(context.Background(), server.URL); err == nil {
		t.Fatal("HTML page should fail feed validation")
	}
}
