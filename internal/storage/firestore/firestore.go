package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"refresh_service/internal/models"
	"refresh_service/internal/storage"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreRepo struct {
	client     *firestore.Client
	collection string
}

// New authenticates with the service account file and opens a client.
// An empty projectID is detected from the credentials.
func New(ctx context.Context, credentialsFile, projectID string) (*FirestoreRepo, error) {
	const op = "storage.firestore.New"

	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("%s: credentials file: %w", op, err)
	}

	if projectID == "" {
		projectID = firestore.DetectProjectID
	}

	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &FirestoreRepo{
		client:     client,
		collection: storage.ProductsCollection,
	}, nil
}

// Products streams the whole collection.
func (r *FirestoreRepo) Products(ctx context.Context) ([]models.Product, error) {
	const op = "storage.firestore.Products"

	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	var products []models.Product

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		products = append(products, productFromData(doc.Ref.ID, doc.Data()))
	}

	return products, nil
}

// UpdateScraped sets price and image and appends one entry to priceHistory.
// The stored history is re-read and extended as is, so entries this service
// cannot decode are kept untouched.
func (r *FirestoreRepo) UpdateScraped(ctx context.Context, productID string, fields models.ScrapedFields) error {
	const op = "storage.firestore.UpdateScraped"

	ref := r.client.Collection(r.collection).Doc(productID)

	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return storage.ErrProductNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	history := appendHistory(snap.Data()["priceHistory"], fields.Entry)

	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "price", Value: fields.Price},
		{Path: "image", Value: fields.Image},
		{Path: "priceHistory", Value: history},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return storage.ErrProductNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// appendHistory extends the raw stored array with entry. A missing or
// non-array field starts a new history.
func appendHistory(stored any, entry models.PriceHistoryEntry) []any {
	raw, _ := stored.([]any)

	history := make([]any, 0, len(raw)+1)
	history = append(history, raw...)

	return append(history, map[string]any{
		"price": entry.Price,
		"date":  entry.Date,
	})
}

func (r *FirestoreRepo) Close() {
	r.client.Close()
}

func productFromData(id string, data map[string]any) models.Product {
	p := models.Product{
		ID:          id,
		Price:       storage.Float(data["price"]),
		TargetPrice: storage.Float(data["targetPrice"]),
	}

	p.Name, _ = data["name"].(string)
	p.Link, _ = data["link"].(string)
	p.Image, _ = data["image"].(string)

	history, _ := data["priceHistory"].([]any)
	for _, raw := range history {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		e := models.PriceHistoryEntry{}
		if v := storage.Float(entry["price"]); v != nil {
			e.Price = *v
		}
		e.Date, _ = entry["date"].(string)

		p.PriceHistory = append(p.PriceHistory, e)
	}

	return p
}
