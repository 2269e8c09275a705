package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealhive/dealsaggregator/internal/scraper"
)

type stubScraper struct {
	mu       sync.Mutex
	requests [][]string
	results  map[string][]scraper.Deal
}

func (s *stubScraper) Scrape(_ context.Context, names []string) map[string][]scraper.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, names)
	out := make(map[string][]scraper.Deal)
	for _, name := range names {
		if records, ok := s.results[name]; ok {
			out[name] = records
		}
	}
	return out
}

func (s *stubScraper) lastRequest() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

type stubCache struct {
	mu      sync.Mutex
	cleared int
}

func (c *stubCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
}

func newTestServer(sc *stubScraper, cache *stubCache, sourceNames []string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	var sources []scraper.SourceConfig
	for _, name := range sourceNames {
		sources = append(sources, scraper.SourceConfig{
			Name: name,
			URL:  "https://" + name + ".test/",
		})
	}
	catalog := scraper.NewCatalogFromSources(sources)
	return New(sc, cache, catalog, []string{"*"}).Router()
}

func strPtr(s string) *string { return &s }

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(&stubScraper{}, &stubCache{}, []string{"x"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestScrapeEndpoint(t *testing.T) {
	sc := &stubScraper{results: map[string][]scraper.Deal{
		"x": {{Title: strPtr("Widget"), Link: strPtr("https://x.test/a"), Price: strPtr("$9.99")}},
		"y": {},
	}}
	router := newTestServer(sc, &stubCache{}, []string{"x", "y"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scrape?sources=x,y", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"x", "y"}, sc.lastRequest())

	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	require.Len(t, body["x"], 1)
	assert.Equal(t, "Widget", body["x"][0]["title"])
	// Absent fields serialize as explicit nulls
	assert.Contains(t, body["x"][0], "image")
	assert.Nil(t, body["x"][0]["image"])
	assert.Empty(t, body["y"])
}

func TestScrapeEndpointDefaultsToAllSources(t *testing.T) {
	sc := &stubScraper{results: map[string][]scraper.Deal{"x": {}, "y": {}}}
	router := newTestServer(sc, &stubCache{}, []string{"x", "y"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scrape", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"x", "y"}, sc.lastRequest())
}

func TestScrapeEndpointIgnoresBlankEntries(t *testing.T) {
	sc := &stubScraper{results: map[string][]scraper.Deal{"x": {}}}
	router := newTestServer(sc, &stubCache{}, []string{"x"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scrape?sources=%20x%20,,%20", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"x"}, sc.lastRequest())
}

func TestScrapeEndpointUnknownSourceOmitted(t *testing.T) {
	sc := &stubScraper{results: map[string][]scraper.Deal{"x": {}}}
	router := newTestServer(sc, &stubCache{}, []string{"x"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scrape?sources=x,nope", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "x")
	assert.NotContains(t, body, "nope")
}

func TestClearCacheEndpoint(t *testing.T) {
	cache := &stubCache{}
	router := newTestServer(&stubScraper{}, cache, []string{"x"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clear-cache", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, 1, cache.cleared)
}

func TestClearCacheRejectsGet(t *testing.T) {
	router := newTestServer(&stubScraper{}, &stubCache{}, []string{"x"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clear-cache", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
