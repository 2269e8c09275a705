package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"dealhive/dealsaggregator/logger"
)

const desktopChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// ChromeRenderer renders pages through one long-lived headless Chrome
// instance. Every Render call opens its own tab, so a timeout or cancellation
// in one call cannot poison the shared browser session for the others.
type ChromeRenderer struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	log           *logger.Logger
}

var _ Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer launches the shared browser. The context bounds the
// browser's lifetime, not individual renders.
func NewChromeRenderer(ctx context.Context) (*ChromeRenderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(desktopChromeUA),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a broken Chrome install fails startup
	// instead of the first scrape
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	r := &ChromeRenderer{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		log:           logger.ForRenderer(),
	}
	r.log.Info().Msg("Headless browser launched")
	return r, nil
}

// Render navigates a fresh tab to the URL and returns the rendered markup.
// The tab is derived from the browser's lifecycle context rather than the
// caller's, so an impatient caller does not abort a render that concurrent
// callers may be waiting on; the tab itself is always closed on return.
func (r *ChromeRenderer) Render(ctx context.Context, url string, opts RenderOptions) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()

	navCtx, navCancel := context.WithTimeout(tabCtx, opts.NavTimeout)
	defer navCancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	if opts.WaitSelector != "" {
		// Best-effort: capture whatever markup exists if the selector
		// never shows up
		waitCtx, waitCancel := context.WithTimeout(tabCtx, opts.WaitTimeout)
		if err := chromedp.Run(waitCtx, chromedp.WaitReady(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			r.log.Debug().
				Str("url", url).
				Str("selector", opts.WaitSelector).
				Err(err).
				Msg("Selector did not appear before timeout")
		}
		waitCancel()
	}

	if opts.SettleDelay > 0 {
		settleCtx, settleCancel := context.WithTimeout(tabCtx, opts.SettleDelay+opts.WaitTimeout)
		_ = chromedp.Run(settleCtx, chromedp.Sleep(opts.SettleDelay))
		settleCancel()
	}

	var html string
	if err := chromedp.Run(navCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture markup for %s: %w", url, err)
	}

	return html, nil
}

// Close tears down the shared browser session
func (r *ChromeRenderer) Close() error {
	r.browserCancel()
	r.allocCancel()
	r.log.Info().Msg("Headless browser closed")
	return nil
}
