package extraction

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pantry-cookbook/internal/core/ai/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const thinPage = `<html><head><script type="application/ld+json">
{"@type":"Recipe","name":"Toast","recipeIngredient":["1 slice bread"]}
</script></head><body></body></html>`

type memRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (m *memRecorder) RecordScrape(_ context.Context, e LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memRecorder) RecentScrapes(_ context.Context, limit int) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return append([]LogEntry{}, m.entries[len(m.entries)-limit:]...), nil
}

type recipeSite struct {
	*httptest.Server
	robotsHits atomic.Int32
}

func newRecipeSite(t *testing.T) *recipeSite {
	t.Helper()
	site := &recipeSite{}
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		site.robotsHits.Add(1)
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	html := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/recipe", html(jsonLDPage))
	mux.HandleFunc("/thin", html(thinPage))
	mux.HandleFunc("/private/recipe", html(jsonLDPage))
	mux.HandleFunc("/empty", html("<html><body></body></html>"))
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"not a page"}`)
	})
	site.Server = httptest.NewServer(mux)
	t.Cleanup(site.Close)
	return site
}

func newTestService(t *testing.T, rec Recorder) *Service {
	t.Helper()
	robotsCache := cache.New(cache.Options{MaxSize: 16, TTL: time.Minute})
	t.Cleanup(func() { _ = robotsCache.Close() })
	return NewService(
		NewPipeline(nil, nil),
		NewHTTPFetcher("pantry-test", 5*time.Second, 1<<20),
		NewRobotsChecker("pantry-test", 5*time.Second, robotsCache),
		NewDomainLimiter(0),
		rec,
		2,
	)
}

func TestScrapeURLSuccess(t *testing.T) {
	site := newRecipeSite(t)
	rec := &memRecorder{}
	svc := newTestService(t, rec)

	res := svc.ScrapeURL(context.Background(), site.URL+"/recipe")

	require.True(t, res.Success, res.Errors)
	assert.Empty(t, res.Errors)
	assert.True(t, res.RobotsAllowed)
	assert.True(t, res.HTMLRetrieved)
	assert.True(t, res.ParsingAttempted)
	require.NotNil(t, res.Record)
	assert.Equal(t, "Tomato Soup & Basil", res.Record.Title)
	assert.Equal(t, MethodJSONLD, res.Record.Method)

	require.Len(t, rec.entries, 1)
	assert.True(t, rec.entries[0].Success)
	assert.Equal(t, MethodJSONLD, rec.entries[0].Method)
	assert.Empty(t, rec.entries[0].FailureReason)
}

func TestScrapeURLCachesRobots(t *testing.T) {
	site := newRecipeSite(t)
	svc := newTestService(t, nil)

	svc.ScrapeURL(context.Background(), site.URL+"/recipe")
	svc.ScrapeURL(context.Background(), site.URL+"/thin")
	assert.Equal(t, int32(1), site.robotsHits.Load())
}

func TestScrapeURLFailures(t *testing.T) {
	site := newRecipeSite(t)

	tests := []struct {
		name    string
		url     string
		reason  string
		message string
		robots  bool
		html    bool
	}{
		{"invalid scheme", "ftp://example.com/x", FailValidation, "[validation] Invalid URL format", false, false},
		{"no host", "https://", FailValidation, "[validation] Invalid URL format", false, false},
		{"robots disallow", site.URL + "/private/recipe", FailRobots, "[robots] Scraping disallowed by robots.txt", false, false},
		{"not found", site.URL + "/missing", FailFetch, "[fetch] Failed to retrieve HTML content", true, false},
		{"non html", site.URL + "/data.json", FailFetch, "[fetch] Failed to retrieve HTML content", true, false},
		{"empty page", site.URL + "/empty", FailParsing, "[parsing] Failed to parse recipe data from HTML", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			res := newTestService(t, rec).ScrapeURL(context.Background(), tt.url)

			assert.False(t, res.Success)
			assert.Nil(t, res.Record)
			assert.Equal(t, []string{tt.message}, res.Errors)
			assert.Equal(t, tt.reason, res.FailureReason())
			assert.Equal(t, tt.robots, res.RobotsAllowed)
			assert.Equal(t, tt.html, res.HTMLRetrieved)

			require.Len(t, rec.entries, 1)
			assert.False(t, rec.entries[0].Success)
			assert.Equal(t, tt.reason, rec.entries[0].FailureReason)
		})
	}
}

func TestScrapeURLInsufficientDataStillSucceeds(t *testing.T) {
	site := newRecipeSite(t)
	res := newTestService(t, nil).ScrapeURL(context.Background(), site.URL+"/thin")

	assert.True(t, res.Success)
	require.NotNil(t, res.Record)
	assert.Equal(t, "Toast", res.Record.Title)
	assert.Equal(t, []string{"[validation] Insufficient recipe data extracted"}, res.Errors)
	assert.Contains(t, res.Warnings, "[json-ld] Recipe may need manual review")
	assert.LessOrEqual(t, res.Record.Confidence, 0.7)
	assert.Equal(t, FailValidation, res.FailureReason())
}

func TestScrapeURLWithoutRobotsPolicy(t *testing.T) {
	site := newRecipeSite(t)
	svc := NewService(NewPipeline(nil, nil), NewHTTPFetcher("pantry-test", 5*time.Second, 0), nil, nil, nil, 1)

	res := svc.ScrapeURL(context.Background(), site.URL+"/private/recipe")
	assert.True(t, res.Success)
	assert.True(t, res.RobotsAllowed)
	assert.Zero(t, site.robotsHits.Load())
}

func TestScrapeManyKeepsOrder(t *testing.T) {
	site := newRecipeSite(t)
	svc := newTestService(t, nil)

	results := svc.ScrapeMany(context.Background(), []string{
		site.URL + "/recipe",
		"not a url",
		site.URL + "/missing",
		site.URL + "/thin",
	})

	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.Equal(t, FailValidation, results[1].FailureReason())
	assert.Equal(t, FailFetch, results[2].FailureReason())
	assert.Equal(t, "Toast", results[3].Record.Title)
}

func TestRecentScrapes(t *testing.T) {
	site := newRecipeSite(t)
	rec := &memRecorder{}
	svc := newTestService(t, rec)

	svc.ScrapeURL(context.Background(), site.URL+"/recipe")
	svc.ScrapeURL(context.Background(), site.URL+"/missing")

	entries, err := svc.RecentScrapes(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = NewService(NewPipeline(nil, nil), nil, nil, nil, nil, 1).RecentScrapes(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResultFailureReason(t *testing.T) {
	r := Result{}
	assert.Empty(t, r.FailureReason())
	r.Errors = []string{"no tag"}
	assert.Empty(t, r.FailureReason())
	r.Errors = []string{"[robots] blocked", "[fetch] later"}
	assert.Equal(t, "robots", r.FailureReason())
}

func TestHTTPFetcherLimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher("pantry-test", time.Second, 16).Fetch(context.Background(), srv.URL)
	assert.Error(t, err)

	body, err := NewHTTPFetcher("pantry-test", time.Second, 64).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, 64)
}

func TestRobotsCheckerAllowsWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	checker := NewRobotsChecker("pantry-test", time.Second, nil)
	assert.True(t, checker.Allowed(context.Background(), srv.URL+"/anything"))
	assert.False(t, checker.Allowed(context.Background(), "://bad"))
}

func TestRobotsCheckerAllowsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.True(t, NewRobotsChecker("pantry-test", time.Second, nil).Allowed(context.Background(), srv.URL+"/x"))
}

func TestDomainLimiter(t *testing.T) {
	ctx := context.Background()

	var nilLimiter *DomainLimiter
	assert.NoError(t, nilLimiter.Wait(ctx, "example.com"))
	assert.NoError(t, NewDomainLimiter(0).Wait(ctx, "example.com"))

	l := NewDomainLimiter(time.Hour)
	require.NoError(t, l.Wait(ctx, "www.example.com"))
	require.NoError(t, l.Wait(ctx, "other.com"))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(short, "example.com"))
}

func TestDomainLimiterSpacesRequests(t *testing.T) {
	l := NewDomainLimiter(60 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "example.com"))
	require.NoError(t, l.Wait(ctx, "example.com"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
