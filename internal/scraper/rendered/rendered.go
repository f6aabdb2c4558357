// Package rendered loads a product page in headless Chrome so client-side
// scripts run before price and image are read from the live DOM.
package rendered

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"refresh_service/internal/lib/price"
	"refresh_service/internal/models"

	"github.com/chromedp/chromedp"
)

const (
	priceSelector = "span.a-price-whole"
	imageSelector = "img#landingImage"

	DefaultSettleDelay  = 3 * time.Second
	DefaultFieldTimeout = 2 * time.Second
)

type Options struct {
	UserAgent string
	// SettleDelay is how long to wait after navigation for scripts to render.
	SettleDelay time.Duration
	// FieldTimeout bounds each DOM lookup so a missing element fails fast.
	FieldTimeout time.Duration
	// ExecPath overrides the Chrome binary; empty means chromedp's lookup.
	ExecPath string
}

type Fetcher struct {
	log  *slog.Logger
	opts Options
}

func New(log *slog.Logger, opts Options) *Fetcher {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.FieldTimeout <= 0 {
		opts.FieldTimeout = DefaultFieldTimeout
	}

	return &Fetcher{
		log:  log,
		opts: opts,
	}
}

func (f *Fetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.opts.UserAgent),
	)

	if f.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.opts.ExecPath))
	}

	return opts
}

// Fetch starts a fresh browser for url and tears it down before returning.
// Missing fields are left empty; only browser or navigation failures are
// returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.ScrapeResult, error) {
	const op = "scraper.rendered.Fetch"

	log := f.log.With(
		slog.String("op", op),
		slog.String("url", url),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.opts.SettleDelay),
	); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &models.ScrapeResult{}

	var priceText string
	if err := f.runField(browserCtx, chromedp.Text(priceSelector, &priceText, chromedp.ByQuery)); err != nil {
		log.Debug("price element not found")
	} else {
		res.Price = price.Ptr(priceText)
	}

	var src, hires string
	var okSrc, okHires bool
	if err := f.runField(browserCtx,
		chromedp.AttributeValue(imageSelector, "src", &src, &okSrc, chromedp.ByQuery),
		chromedp.AttributeValue(imageSelector, "data-old-hires", &hires, &okHires, chromedp.ByQuery),
	); err != nil {
		log.Debug("image element not found")
	} else {
		res.Image = src
		if res.Image == "" {
			res.Image = hires
		}
	}

	return res, nil
}

func (f *Fetcher) runField(ctx context.Context, actions ...chromedp.Action) error {
	fieldCtx, cancel := context.WithTimeout(ctx, f.opts.FieldTimeout)
	defer cancel()

	return chromedp.Run(fieldCtx, actions...)
}
