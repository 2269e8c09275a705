package scraper

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"dealhive/dealsaggregator/config"
	"dealhive/dealsaggregator/helpers"
	"dealhive/dealsaggregator/logger"
	"dealhive/dealsaggregator/pkg/errors"
	"dealhive/dealsaggregator/services/cache"
	"dealhive/dealsaggregator/services/publisher"
)

// Scraper runs the render-extract-sanitize pipeline per source, cache-aware,
// and merges the per-source outcomes. One source failing never fails, delays
// or retries the others.
type Scraper struct {
	ctx         context.Context
	catalog     *Catalog
	renderer    Renderer
	store       *cache.Store[[]Deal]
	publisher   publisher.Publisher
	navTimeout  time.Duration
	waitTimeout time.Duration
}

// New creates a scraper. ctx bounds background work (cache fills detached
// from client requests), not individual scrape calls.
func New(
	ctx context.Context,
	catalog *Catalog,
	renderer Renderer,
	store *cache.Store[[]Deal],
	pub publisher.Publisher,
	cfg *config.Config,
) *Scraper {
	return &Scraper{
		ctx:         ctx,
		catalog:     catalog,
		renderer:    renderer,
		store:       store,
		publisher:   pub,
		navTimeout:  cfg.NavigationTimeout,
		waitTimeout: cfg.SelectorTimeout,
	}
}

// Scrape resolves each requested name against the catalog and scrapes the
// known ones concurrently. The result has exactly one key per valid requested
// name; unknown names are omitted, and a failed source contributes an empty
// list rather than an error.
func (s *Scraper) Scrape(ctx context.Context, names []string) map[string][]Deal {
	results := make(map[string][]Deal)

	var valid []SourceConfig
	for _, name := range names {
		src, ok := s.catalog.Get(name)
		if !ok {
			continue
		}
		if _, requested := results[name]; requested {
			continue
		}
		results[name] = []Deal{}
		valid = append(valid, src)
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)

	for _, src := range valid {
		g.Go(func() error {
			records := s.scrapeSource(src)
			mu.Lock()
			results[src.Name] = records
			mu.Unlock()
			return nil
		})
	}

	// Tasks never return errors; failures are already folded into results
	_ = g.Wait()
	return results
}

// scrapeSource serves one source from the cache, fetching through the
// pipeline on a miss. Failures surface as an empty list only.
func (s *Scraper) scrapeSource(src SourceConfig) []Deal {
	records, err := s.store.GetOrFetch(src.Name, func() ([]Deal, error) {
		return s.fetchSource(src)
	})
	if err != nil {
		// Cause stays in the logs; clients only ever see the empty list
		logger.ForSource(src.Name).Warn().Err(err).Msg("Scrape failed")
		return []Deal{}
	}
	if records == nil {
		records = []Deal{}
	}
	return records
}

// fetchSource is the render-extract-sanitize pipeline for one source. It runs
// at most once per cache refresh, so freshly fetched records are published
// from here.
func (s *Scraper) fetchSource(src SourceConfig) ([]Deal, error) {
	log := logger.ForSource(src.Name)

	doc, err := s.loadDocument(src)
	if err != nil {
		return nil, err
	}

	deals := ExtractDeals(doc, src.Selector, src.URL)
	deals = SanitizeDeals(deals, src.AllowedHosts)

	log.Debug().Int("records", len(deals)).Msg("Extracted records")

	s.publishDeals(src, deals)
	return deals, nil
}

// loadDocument fetches and parses the source page, through the shared browser
// session or a plain HTTP request depending on the source
func (s *Scraper) loadDocument(src SourceConfig) (*goquery.Document, error) {
	if src.UseBrowser {
		waitTimeout := src.WaitTimeout
		if waitTimeout == 0 {
			waitTimeout = s.waitTimeout
		}

		html, err := s.renderer.Render(s.ctx, src.URL, RenderOptions{
			WaitSelector: src.Selector,
			NavTimeout:   s.navTimeout,
			WaitTimeout:  waitTimeout,
			SettleDelay:  src.SettleDelay,
		})
		if err != nil {
			return nil, errors.NewRender(src.Name, "failed to render page", err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, errors.NewParsing(src.Name, "failed to parse rendered markup", err)
		}
		return doc, nil
	}

	body, err := helpers.FetchWithRandomHeaders(src.URL)
	if err != nil {
		return nil, errors.NewRender(src.Name, "failed to fetch page", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParsing(src.Name, "failed to parse page", err)
	}
	return doc, nil
}

// publishDeals forwards freshly scraped records downstream; publish trouble
// never affects the scrape result
func (s *Scraper) publishDeals(src SourceConfig, deals []Deal) {
	for _, deal := range deals {
		data, err := json.Marshal(deal)
		if err != nil {
			logger.LogError("publisher", err, "failed to marshal deal for %s", src.Name)
			continue
		}
		if err := s.publisher.Publish(src.Name, data); err != nil {
			logger.LogError("publisher", errors.NewPublisher(src.Name, "failed to publish deal", err), "publish failed")
			return
		}
	}
}
