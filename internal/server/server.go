package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dealhive/dealsaggregator/internal/scraper"
	"dealhive/dealsaggregator/logger"
)

// DealScraper is the orchestration surface the server drives
type DealScraper interface {
	Scrape(ctx context.Context, names []string) map[string][]scraper.Deal
}

// CacheClearer invalidates every cached source result
type CacheClearer interface {
	Clear()
}

// Server exposes the scrape API consumed by the frontend
type Server struct {
	scraper DealScraper
	cache   CacheClearer
	catalog *scraper.Catalog
	origins []string
	log     *logger.Logger
}

// New creates a server around the given scraper and cache
func New(sc DealScraper, cache CacheClearer, catalog *scraper.Catalog, corsOrigins []string) *Server {
	return &Server{
		scraper: sc,
		cache:   cache,
		catalog: catalog,
		origins: corsOrigins,
		log:     logger.ForServer(),
	}
}

// Router builds the gin engine with all routes and middleware
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/", s.handleHealth)
	r.GET("/scrape", s.handleScrape)
	r.POST("/clear-cache", s.handleClearCache)

	return r
}

// corsConfig builds the CORS policy from the configured origin allow-list
func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	if len(s.origins) == 1 && s.origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleScrape serves GET /scrape?sources=a,b. Unknown names are silently
// ignored; with no sources parameter every catalog source is scraped.
func (s *Server) handleScrape(c *gin.Context) {
	names := splitNames(c.Query("sources"))
	if len(names) == 0 {
		names = s.catalog.Names()
	}

	s.log.Info().Strs("sources", names).Msg("Scrape requested")

	results := s.scraper.Scrape(c.Request.Context(), names)
	c.JSON(http.StatusOK, results)
}

// handleClearCache drops every cached entry so the next scrape re-fetches
func (s *Server) handleClearCache(c *gin.Context) {
	s.cache.Clear()
	s.log.Info().Msg("Cache cleared")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// splitNames parses the comma-separated sources parameter
func splitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
