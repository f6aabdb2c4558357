package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "refresh_service/internal/lib/logger"
	"refresh_service/internal/models"

	"github.com/google/uuid"
)

const (
	// SpinnerImage is stored when the scrape produced no image at all.
	SpinnerImage = "/spinner.gif"

	// DateLayout is the day-granularity layout of price history entries.
	DateLayout = "06-01-02"
)

var ErrNotConfigured = errors.New("updater is not configured")

type ProductStore interface {
	Products(ctx context.Context) ([]models.Product, error)
	UpdateScraped(ctx context.Context, productID string, fields models.ScrapedFields) error
}

type Scraper interface {
	Scrape(ctx context.Context, url string) (*models.ScrapeResult, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, msg any) error
}

type Stats struct {
	Total   int
	Updated int
	Skipped int
}

type Updater struct {
	log       *slog.Logger
	store     ProductStore
	scraper   Scraper
	publisher Publisher
	now       func() time.Time
}

// New builds an Updater. publisher may be nil.
func New(log *slog.Logger, store ProductStore, s Scraper, publisher Publisher) *Updater {
	return &Updater{
		log:       log,
		store:     store,
		scraper:   s,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for history dates.
func (u *Updater) WithClock(now func() time.Time) *Updater {
	u.now = now
	return u
}

// Start runs UpdateAll in a detached goroutine and returns its run id.
// Nobody waits for the pass: its outcome only reaches the logs.
func (u *Updater) Start(ctx context.Context) (string, error) {
	if u == nil || u.store == nil || u.scraper == nil {
		return "", ErrNotConfigured
	}

	runID := uuid.NewString()
	ctx = context.WithoutCancel(ctx)

	go func() {
		log := u.log.With(slog.String("run_id", runID))

		stats, err := u.run(ctx, runID)
		if err != nil {
			log.Error("product update aborted",
				sl.Err(err),
				slog.Int("updated", stats.Updated),
				slog.Int("skipped", stats.Skipped),
			)
			return
		}

		log.Info("all products updated successfully",
			slog.Int("total", stats.Total),
			slog.Int("updated", stats.Updated),
			slog.Int("skipped", stats.Skipped),
		)
	}()

	return runID, nil
}

// UpdateAll refreshes every stored product once, sequentially.
func (u *Updater) UpdateAll(ctx context.Context) (Stats, error) {
	return u.run(ctx, uuid.NewString())
}

func (u *Updater) run(ctx context.Context, runID string) (Stats, error) {
	const op = "updater.UpdateAll"

	log := u.log.With(
		slog.String("op", op),
		slog.String("run_id", runID),
	)

	var stats Stats

	products, err := u.store.Products(ctx)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	stats.Total = len(products)

	for _, p := range products {
		if p.Link == "" {
			stats.Skipped++
			continue
		}

		res, err := u.scraper.Scrape(ctx, p.Link)
		if err != nil || res == nil {
			attrs := []any{slog.String("link", p.Link)}
			if err != nil {
				attrs = append(attrs, sl.Err(err))
			}
			log.Warn("skipping product", attrs...)

			stats.Skipped++
			continue
		}

		fields := Resolve(p, res, u.now())

		if err := u.store.UpdateScraped(ctx, p.ID, fields); err != nil {
			return stats, fmt.Errorf("%s: product %s: %w", op, p.ID, err)
		}

		stats.Updated++

		log.Info("product updated",
			slog.String("name", p.Name),
			slog.Float64("price", fields.Price),
			slog.String("image", fields.Image),
			slog.Int("history_length", len(fields.PriceHistory)),
		)

		u.publish(ctx, log, runID, p, fields)
	}

	return stats, nil
}

func (u *Updater) publish(ctx context.Context, log *slog.Logger, runID string, p models.Product, fields models.ScrapedFields) {
	if u.publisher == nil {
		return
	}

	msg := models.PriceUpdate{
		RunID:       runID,
		ProductID:   p.ID,
		Name:        p.Name,
		Link:        p.Link,
		Price:       fields.Price,
		OldPrice:    p.Price,
		TargetPrice: p.TargetPrice,
		Date:        fields.Entry.Date,
	}

	if err := u.publisher.PublishJSON(ctx, msg); err != nil {
		log.Error("failed to publish price update",
			sl.Err(err),
			slog.String("product_id", p.ID),
		)
	}
}

// Resolve merges a scrape result into the stored product. The stored price
// survives a missing scraped price, and history always grows by one entry.
func Resolve(p models.Product, res *models.ScrapeResult, now time.Time) models.ScrapedFields {
	var newPrice float64
	switch {
	case res.Price != nil:
		newPrice = *res.Price
	case p.Price != nil:
		newPrice = *p.Price
	}

	image := res.Image
	if image == "" {
		image = SpinnerImage
	}

	entry := models.PriceHistoryEntry{
		Price: newPrice,
		Date:  now.UTC().Format(DateLayout),
	}

	history := make([]models.PriceHistoryEntry, 0, len(p.PriceHistory)+1)
	history = append(history, p.PriceHistory...)
	history = append(history, entry)

	return models.ScrapedFields{
		Price:        newPrice,
		Image:        image,
		Entry:        entry,
		PriceHistory: history,
	}
}
