// Package structured fetches a product page with a plain HTTP GET and
// extracts price and image from the static markup, without running scripts.
package structured

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	sl "refresh_service/internal/lib/logger"
	"refresh_service/internal/lib/price"
	"refresh_service/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Price selectors are tried in order, the first element present wins.
var priceSelectors = []string{
	"span.a-price-whole",
	"span#priceblock_dealprice",
	"span#priceblock_ourprice",
}

const imageSelector = "img#landingImage"

type Options struct {
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
}

type Fetcher struct {
	log  *slog.Logger
	opts Options
}

func New(log *slog.Logger, opts Options) *Fetcher {
	return &Fetcher{
		log:  log,
		opts: opts,
	}
}

// Fetch downloads url and extracts what it can. A nil result means the page
// could not be fetched at all; transport errors are logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) *models.ScrapeResult {
	const op = "scraper.structured.Fetch"

	log := f.log.With(
		slog.String("op", op),
		slog.String("url", url),
	)

	if err := ctx.Err(); err != nil {
		log.Error("fetch cancelled", sl.Err(err))
		return nil
	}

	var body []byte

	c := f.collector(ctx)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		log.Error("failed to fetch page", sl.Err(err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Error("failed to parse page", sl.Err(err))
		return nil
	}

	return Extract(doc)
}

func (f *Fetcher) collector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(f.opts.UserAgent),
		colly.AllowURLRevisit(),
	)

	if f.opts.Timeout > 0 {
		c.SetRequestTimeout(f.opts.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		for k, v := range f.opts.Headers {
			r.Headers.Set(k, v)
		}
	})

	return c
}

// Extract reads price and image from a parsed product page.
func Extract(doc *goquery.Document) *models.ScrapeResult {
	return &models.ScrapeResult{
		Price: extractPrice(doc),
		Image: extractImage(doc),
	}
}

func extractPrice(doc *goquery.Document) *float64 {
	for _, sel := range priceSelectors {
		tag := doc.Find(sel).First()
		if tag.Length() == 0 {
			continue
		}

		return price.Ptr(tag.Text())
	}

	return nil
}

func extractImage(doc *goquery.Document) string {
	tag := doc.Find(imageSelector).First()
	if tag.Length() == 0 {
		return ""
	}

	if src := tag.AttrOr("src", ""); src != "" {
		return src
	}

	if hires := tag.AttrOr("data-old-hires", ""); hires != "" {
		return hires
	}

	return firstKey(tag.AttrOr("data-a-dynamic-image", ""))
}

// firstKey returns the first key of a JSON object in document order,
// e.g. {"https://m.media-amazon.com/a.jpg":[500,500],...}.
func firstKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !json.Valid([]byte(raw)) {
		return ""
	}

	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ""
	}

	tok, err = dec.Token()
	if err != nil {
		return ""
	}

	key, _ := tok.(string)

	return key
}
