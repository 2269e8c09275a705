package scraper

import (
	"time"

	"dealhive/dealsaggregator/config"
)

// Catalog is the read-only lookup from source name to SourceConfig. It is the
// only place sources are defined; callers can never inject URLs or selectors
// of their own, which keeps request-driven fetching inside the allow-list.
type Catalog struct {
	sources map[string]SourceConfig
	order   []string
}

// NewCatalog builds the catalog of known sources. URLs come from the
// configuration so deployments can point individual sources elsewhere.
func NewCatalog(cfg *config.Config) *Catalog {
	return NewCatalogFromSources([]SourceConfig{
		{
			Name:         "deal4real",
			URL:          cfg.Deal4RealURL,
			Selector:     ".product-card-wrapper .product-card, .product-card",
			AllowedHosts: []string{"deal4real.co.il", "www.deal4real.co.il"},
			UseBrowser:   true,
		},
		{
			Name:         "zuzu",
			URL:          cfg.ZuzuURL,
			Selector:     ".col_item",
			AllowedHosts: []string{"zuzu.deals", "www.zuzu.deals"},
			UseBrowser:   true,
		},
		{
			Name:         "buywithus",
			URL:          cfg.BuywithusURL,
			Selector:     ".col_item",
			AllowedHosts: []string{"buywithus.org", "www.buywithus.org"},
			UseBrowser:   true,
		},
		{
			// Client-side rendered dashboard; give the framework time to
			// paint before capturing markup
			Name:         "beedeals",
			URL:          cfg.BeedealsURL,
			Selector:     ".pin.nfDealItemsPin",
			AllowedHosts: []string{"il.bee.deals", "www.il.bee.deals"},
			UseBrowser:   true,
			WaitTimeout:  10 * time.Second,
			SettleDelay:  2 * time.Second,
		},
	})
}

// NewCatalogFromSources builds a catalog from an explicit source list,
// preserving its order
func NewCatalogFromSources(sources []SourceConfig) *Catalog {
	c := &Catalog{
		sources: make(map[string]SourceConfig, len(sources)),
		order:   make([]string, 0, len(sources)),
	}
	for _, src := range sources {
		c.sources[src.Name] = src
		c.order = append(c.order, src.Name)
	}
	return c
}

// Get returns the source configuration for a name
func (c *Catalog) Get(name string) (SourceConfig, bool) {
	src, ok := c.sources[name]
	return src, ok
}

// Names returns all known source names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}
