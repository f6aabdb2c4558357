package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"refresh_service/internal/models"
)

// DefaultImage is used when the browser fallback found no image either.
const DefaultImage = "/default-product.png"

type StructuredFetcher interface {
	Fetch(ctx context.Context, url string) *models.ScrapeResult
}

type RenderedFetcher interface {
	Fetch(ctx context.Context, url string) (*models.ScrapeResult, error)
}

// Hybrid prefers the cheap static fetch and only starts a browser when the
// static page yielded neither price nor image.
type Hybrid struct {
	log        *slog.Logger
	structured StructuredFetcher
	rendered   RenderedFetcher
}

func New(log *slog.Logger, s StructuredFetcher, r RenderedFetcher) *Hybrid {
	return &Hybrid{
		log:        log,
		structured: s,
		rendered:   r,
	}
}

func (h *Hybrid) Scrape(ctx context.Context, url string) (*models.ScrapeResult, error) {
	const op = "scraper.Hybrid.Scrape"

	res := h.structured.Fetch(ctx, url)
	if res != nil && !res.Empty() {
		return res, nil
	}

	h.log.Info("falling back to rendered fetch",
		slog.String("op", op),
		slog.String("url", url),
	)

	res, err := h.rendered.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res.Image == "" {
		res.Image = DefaultImage
	}

	return res, nil
}
