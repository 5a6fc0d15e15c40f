package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"diderot/internal/config"

	"google.golang.org/api/option"
)

const duckDuckGoPage = `<html><body>
<div class="result results_links">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.reuters.com%2Fworld%2Fsenate-budget&rut=abc">Senate passes budget bill</a>
  <a class="result__snippet">The Senate voted 51-49 on Tuesday.</a>
</div>
<div class="result">
  <a class="result__a" href="https://apnews.com/article/budget">Budget vote explained</a>
</div>
<div class="result">
  <a class="result__a" href="/relative/ignored">Ignored</a>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	p := NewDuckDuckGoProvider(WithBaseURL(server.URL), WithInterval(time.Millisecond))
	results, err := p.Search(context.Background(), "Senate budget", Config{MaxResults: 5, Site: "reuters.com"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "Senate budget site:reuters.com" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://www.reuters.com/world/senate-budget" {
		t.Errorf("expected decoded redirect URL, got %q", results[0].URL)
	}
	if results[0].Domain != "reuters.com" {
		t.Errorf("expected domain reuters.com, got %q", results[0].Domain)
	}
	if results[0].Snippet == "" {
		t.Error("expected snippet")
	}
	if results[1].Rank != 2 {
		t.Errorf("expected rank 2, got %d", results[1].Rank)
	}
}

func TestDuckDuckGoMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	p := NewDuckDuckGoProvider(WithBaseURL(server.URL), WithInterval(time.Millisecond))
	results, err := p.Search(context.Background(), "budget", Config{MaxResults: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestDuckDuckGoNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>No results.</body></html>"))
	}))
	defer server.Close()

	p := NewDuckDuckGoProvider(WithBaseURL(server.URL), WithInterval(time.Millisecond))
	_, err := p.Search(context.Background(), "nothing", Config{MaxResults: 3})
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestDuckDuckGoTimeFilter(t *testing.T) {
	p := NewDuckDuckGoProvider()
	u := p.buildSearchURL("q", Config{SinceTime: 24 * time.Hour})
	if !strings.Contains(u, "df=d") {
		t.Errorf("expected past-day filter in %s", u)
	}
}

func TestExtractFinalURL(t *testing.T) {
	tests := map[string]string{
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa&rut=x": "https://example.com/a",
		"/l/?uddg=https%3A%2F%2Fexample.com%2Fb":                       "https://example.com/b",
		"https://direct.example.com":                                   "https://direct.example.com",
		"/relative":                                                    "",
	}
	for input, want := range tests {
		if got := extractFinalURL(input); got != want {
			t.Errorf("extractFinalURL(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGoogleSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("cx") != "cse-id" {
			t.Errorf("expected cx parameter, got %q", q.Get("cx"))
		}
		if q.Get("siteSearch") != "foxnews.com" {
			t.Errorf("expected siteSearch parameter, got %q", q.Get("siteSearch"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"title": "Budget fight", "link": "https://www.foxnews.com/politics/budget", "snippet": "s"}]}`))
	}))
	defer server.Close()

	p, err := NewGoogleProvider(context.Background(), "key", "cse-id",
		option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewGoogleProvider failed: %v", err)
	}

	results, err := p.Search(context.Background(), "budget", Config{MaxResults: 3, Site: "foxnews.com"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Domain != "foxnews.com" {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), config.Search{Provider: "none"}, time.Second)
	if err != nil || p != nil {
		t.Errorf("expected nil provider for none, got %v, %v", p, err)
	}

	p, err = NewProvider(context.Background(), config.Search{Provider: "duckduckgo"}, time.Second)
	if err != nil || p.GetName() != "DuckDuckGo" {
		t.Errorf("expected DuckDuckGo provider, got %v, %v", p, err)
	}

	_, err = NewProvider(context.Background(), config.Search{Provider: "google"}, time.Second)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}

	_, err = NewProvider(context.Background(), config.Search{Provider: "bing"}, time.Second)
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestSiteQuery(t *testing.T) {
	if got := SiteQuery("q", ""); got != "q" {
		t.Errorf("expected unchanged query, got %q", got)
	}
	if got := SiteQuery("q", "cnn.com"); got != "q site:cnn.com" {
		t.Errorf("unexpected query %q", got)
	}
}
