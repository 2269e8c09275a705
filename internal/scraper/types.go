package scraper

import (
	"context"
	"time"
)

// Deal represents one normalized deal listing. Any field may be absent, in
// which case it serializes as null.
type Deal struct {
	Title *string `json:"title"`
	Link  *string `json:"link"`
	Price *string `json:"price"`
	Image *string `json:"image"`
}

// SourceConfig describes one external deals listing page. Instances live in
// the catalog and are never mutated after construction.
type SourceConfig struct {
	// Name is the public identifier clients request
	Name string
	// URL is the page to render
	URL string
	// Selector matches one listing element per deal
	Selector string
	// AllowedHosts is the set of hosts extracted links may resolve to
	AllowedHosts []string
	// UseBrowser selects headless rendering over a plain HTTP fetch
	UseBrowser bool
	// WaitTimeout overrides the default selector wait when non-zero
	WaitTimeout time.Duration
	// SettleDelay is an extra pause after the selector appears, for pages
	// that keep rendering client-side
	SettleDelay time.Duration
}

// RenderOptions control a single page render
type RenderOptions struct {
	// WaitSelector is waited for after navigation, best-effort
	WaitSelector string
	// NavTimeout bounds the navigation itself
	NavTimeout time.Duration
	// WaitTimeout bounds the selector wait
	WaitTimeout time.Duration
	// SettleDelay is applied after the selector wait
	SettleDelay time.Duration
}

// Renderer produces fully rendered document markup for a URL
type Renderer interface {
	Render(ctx context.Context, url string, opts RenderOptions) (string, error)
	Close() error
}
