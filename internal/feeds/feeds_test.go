package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"diderot/internal/core"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Top stories - Google News</title>
    <item>
      <title>Senate Votes on Budget Bill - Reuters</title>
      <link>https://news.google.com/articles/abc</link>
      <pubDate>Tue, 11 Mar 2025 14:00:00 GMT</pubDate>
      <source url="https://www.reuters.com">Reuters</source>
    </item>
    <item>
      <title>Untitled source item</title>
      <link>https://example.com/b</link>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>World</title>
  <entry>
    <title>UN Security Council Meets</title>
    <link rel="alternate" href="https://example.org/un"/>
    <updated>2025-03-11T10:00:00Z</updated>
    <id>urn:1</id>
    <author><name>Example Wire</name></author>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	entries, err := Parse([]byte(sampleRSS))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Source != "Reuters" {
		t.Errorf("expected source Reuters, got %q", first.Source)
	}
	if first.Published.IsZero() {
		t.Error("expected published date to be parsed")
	}
	if entries[1].Source != UnknownSource {
		t.Errorf("expected missing source to default to %q, got %q", UnknownSource, entries[1].Source)
	}
	if !entries[1].Published.IsZero() {
		t.Error("expected zero time for missing pubDate")
	}
}

func TestParseAtom(t *testing.T) {
	entries, err := Parse([]byte(sampleAtom))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Link != "https://example.org/un" {
		t.Errorf("unexpected link %q", entries[0].Link)
	}
	if entries[0].Source != "Example Wire" {
		t.Errorf("unexpected source %q", entries[0].Source)
	}
	if entries[0].Published.IsZero() {
		t.Error("expected updated date to be used when published is missing")
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("<html><body>nope</body></html>"))
	if !errors.Is(err, core.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestFetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rss":
			if r.Header.Get("User-Agent") != "TestAgent" {
				t.Errorf("expected custom user agent, got %q", r.Header.Get("User-Agent"))
			}
			w.Write([]byte(sampleRSS))
		case "/atom":
			w.Write([]byte(sampleAtom))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fm := NewFeedManager(5*time.Second, WithUserAgent("TestAgent"), WithMaxItems(1))

	entries, err := fm.FetchAll(context.Background(), []string{server.URL + "/rss", server.URL + "/missing", server.URL + "/atom"})
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (1 per working feed), got %d", len(entries))
	}
	if entries[0].Title != "Senate Votes on Budget Bill - Reuters" {
		t.Errorf("expected feed order to be preserved, got %q", entries[0].Title)
	}
}

func TestFetchAllEveryFeedFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fm := NewFeedManager(time.Second)
	_, err := fm.FetchAll(context.Background(), []string{server.URL + "/a", server.URL + "/b"})
	if !errors.Is(err, core.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}
